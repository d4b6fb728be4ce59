// file: internals/features/school/academics/grades/model/grades_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GradeModel is one class/section of an institution for a single academic
// year. A grade in the source year and its counterpart in the target year
// are distinct rows, linked only through the transition grade mapping.
type GradeModel struct {
	// PK
	GradesID uuid.UUID `gorm:"type:uuid;primaryKey;column:grades_id" json:"grades_id"`

	// Relasi wajib
	GradesInstitutionID  uuid.UUID `gorm:"type:uuid;not null;column:grades_institution_id;index:idx_grades_institution" json:"grades_institution_id"`
	GradesAcademicYearID uuid.UUID `gorm:"type:uuid;not null;column:grades_academic_year_id;index:idx_grades_year" json:"grades_academic_year_id"`

	// Identitas (class_level 1..12+, name like "A", "B")
	GradesClassLevel int    `gorm:"not null;column:grades_class_level;index:idx_grades_level" json:"grades_class_level"`
	GradesName       string `gorm:"size:100;not null;column:grades_name" json:"grades_name"`

	// Sinif rehberi (homeroom)
	GradesHomeroomTeacherID  *uuid.UUID `gorm:"type:uuid;column:grades_homeroom_teacher_id;index:idx_grades_homeroom" json:"grades_homeroom_teacher_id,omitempty"`
	GradesHomeroomAssignedAt *time.Time `gorm:"column:grades_homeroom_assigned_at" json:"grades_homeroom_assigned_at,omitempty"`

	// Counter caches (denormalized for fast listing)
	GradesStudentCount       int `gorm:"not null;default:0;column:grades_student_count" json:"grades_student_count"`
	GradesMaleStudentCount   int `gorm:"not null;default:0;column:grades_male_student_count" json:"grades_male_student_count"`
	GradesFemaleStudentCount int `gorm:"not null;default:0;column:grades_female_student_count" json:"grades_female_student_count"`

	// Timestamps (soft delete)
	GradesCreatedAt time.Time      `gorm:"column:grades_created_at;autoCreateTime" json:"grades_created_at"`
	GradesUpdatedAt time.Time      `gorm:"column:grades_updated_at;autoUpdateTime" json:"grades_updated_at"`
	GradesDeletedAt gorm.DeletedAt `gorm:"column:grades_deleted_at;index" json:"grades_deleted_at,omitempty"`
}

func (GradeModel) TableName() string { return "grades" }

func (m *GradeModel) BeforeCreate(tx *gorm.DB) error {
	if m.GradesID == uuid.Nil {
		m.GradesID = uuid.New()
	}
	return nil
}

// Label combines level and name the way operators read it ("5-A").
func (m *GradeModel) Label() string {
	return gradeLabel(m.GradesClassLevel, m.GradesName)
}
