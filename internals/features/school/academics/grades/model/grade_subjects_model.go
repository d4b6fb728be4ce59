// file: internals/features/school/academics/grades/model/grade_subjects_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GradeSubjectModel binds a subject to a grade for the grade's academic
// year, optionally with the assigned subject teacher. Rows are deleted
// together with their grade when a transition is rolled back.
type GradeSubjectModel struct {
	// PK
	GradeSubjectsID uuid.UUID `gorm:"type:uuid;primaryKey;column:grade_subjects_id" json:"grade_subjects_id"`

	// Relasi wajib
	GradeSubjectsGradeID   uuid.UUID `gorm:"type:uuid;not null;column:grade_subjects_grade_id;index:idx_grade_subjects_grade" json:"grade_subjects_grade_id"`
	GradeSubjectsSubjectID uuid.UUID `gorm:"type:uuid;not null;column:grade_subjects_subject_id;index:idx_grade_subjects_subject" json:"grade_subjects_subject_id"`

	// Fenn muellimi (opsional)
	GradeSubjectsTeacherID *uuid.UUID `gorm:"type:uuid;column:grade_subjects_teacher_id;index:idx_grade_subjects_teacher" json:"grade_subjects_teacher_id,omitempty"`

	// Saat/hefte
	GradeSubjectsWeeklyHours int `gorm:"not null;default:0;column:grade_subjects_weekly_hours" json:"grade_subjects_weekly_hours"`

	// Timestamps (soft delete)
	GradeSubjectsCreatedAt time.Time      `gorm:"column:grade_subjects_created_at;autoCreateTime" json:"grade_subjects_created_at"`
	GradeSubjectsUpdatedAt time.Time      `gorm:"column:grade_subjects_updated_at;autoUpdateTime" json:"grade_subjects_updated_at"`
	GradeSubjectsDeletedAt gorm.DeletedAt `gorm:"column:grade_subjects_deleted_at;index" json:"grade_subjects_deleted_at,omitempty"`
}

func (GradeSubjectModel) TableName() string { return "grade_subjects" }

func (m *GradeSubjectModel) BeforeCreate(tx *gorm.DB) error {
	if m.GradeSubjectsID == uuid.Nil {
		m.GradeSubjectsID = uuid.New()
	}
	return nil
}
