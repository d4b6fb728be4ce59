// file: internals/features/school/academics/teaching_loads/model/teaching_loads_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ======================================================
   ENUM: teaching_load_schedule_status
====================================================== */

type LoadScheduleStatus string

const (
	LoadSchedulePending    LoadScheduleStatus = "pending"
	LoadScheduleScheduled  LoadScheduleStatus = "scheduled"
	LoadScheduleConflicted LoadScheduleStatus = "conflicted"
)

/* ======================================================
   Model: teaching_loads
====================================================== */

// TeachingLoadModel is a teacher's weekly-hour commitment to a subject
// (optionally pinned to a grade) for one academic year. Positional
// timetable slots are year-specific, so copies always restart at
// schedule status "pending".
type TeachingLoadModel struct {
	// PK
	TeachingLoadsID uuid.UUID `gorm:"type:uuid;primaryKey;column:teaching_loads_id" json:"teaching_loads_id"`

	// Relasi wajib
	TeachingLoadsInstitutionID  uuid.UUID `gorm:"type:uuid;not null;column:teaching_loads_institution_id;index:idx_loads_institution" json:"teaching_loads_institution_id"`
	TeachingLoadsAcademicYearID uuid.UUID `gorm:"type:uuid;not null;column:teaching_loads_academic_year_id;index:idx_loads_year" json:"teaching_loads_academic_year_id"`
	TeachingLoadsTeacherID      uuid.UUID `gorm:"type:uuid;not null;column:teaching_loads_teacher_id;index:idx_loads_teacher" json:"teaching_loads_teacher_id"`
	TeachingLoadsSubjectID      uuid.UUID `gorm:"type:uuid;not null;column:teaching_loads_subject_id;index:idx_loads_subject" json:"teaching_loads_subject_id"`

	// Relasi opsional
	TeachingLoadsGradeID *uuid.UUID `gorm:"type:uuid;column:teaching_loads_grade_id;index:idx_loads_grade" json:"teaching_loads_grade_id,omitempty"`

	// Saatlar
	TeachingLoadsWeeklyHours int `gorm:"not null;default:0;column:teaching_loads_weekly_hours" json:"teaching_loads_weekly_hours"`
	TeachingLoadsTotalHours  int `gorm:"not null;default:0;column:teaching_loads_total_hours" json:"teaching_loads_total_hours"`

	// Planlama
	TeachingLoadsConstraints    datatypes.JSON     `gorm:"type:jsonb;column:teaching_loads_constraints" json:"teaching_loads_constraints,omitempty"`
	TeachingLoadsScheduleStatus LoadScheduleStatus `gorm:"type:varchar(20);not null;default:'pending';column:teaching_loads_schedule_status" json:"teaching_loads_schedule_status"`
	TeachingLoadsScheduleNotes  *string            `gorm:"type:text;column:teaching_loads_schedule_notes" json:"teaching_loads_schedule_notes,omitempty"`

	// Status
	TeachingLoadsIsActive bool `gorm:"not null;default:true;column:teaching_loads_is_active;index:idx_loads_active" json:"teaching_loads_is_active"`

	// Timestamps (soft delete)
	TeachingLoadsCreatedAt time.Time      `gorm:"column:teaching_loads_created_at;autoCreateTime" json:"teaching_loads_created_at"`
	TeachingLoadsUpdatedAt time.Time      `gorm:"column:teaching_loads_updated_at;autoUpdateTime" json:"teaching_loads_updated_at"`
	TeachingLoadsDeletedAt gorm.DeletedAt `gorm:"column:teaching_loads_deleted_at;index" json:"teaching_loads_deleted_at,omitempty"`
}

func (TeachingLoadModel) TableName() string { return "teaching_loads" }

func (m *TeachingLoadModel) BeforeCreate(tx *gorm.DB) error {
	if m.TeachingLoadsID == uuid.Nil {
		m.TeachingLoadsID = uuid.New()
	}
	return nil
}
