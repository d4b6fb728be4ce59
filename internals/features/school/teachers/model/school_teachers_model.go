// file: internals/features/school/teachers/model/school_teachers_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mektebim_backend/internals/constants"
)

type SchoolTeacherModel struct {
	// PK
	SchoolTeachersID uuid.UUID `gorm:"type:uuid;primaryKey;column:school_teachers_id" json:"school_teachers_id"`

	// Relasi
	SchoolTeachersInstitutionID uuid.UUID  `gorm:"type:uuid;not null;column:school_teachers_institution_id;index:idx_school_teachers_institution" json:"school_teachers_institution_id"`
	SchoolTeachersUserID        *uuid.UUID `gorm:"type:uuid;column:school_teachers_user_id" json:"school_teachers_user_id,omitempty"`

	// Identitas
	SchoolTeachersFullName string `gorm:"size:120;not null;column:school_teachers_full_name" json:"school_teachers_full_name"`
	SchoolTeachersRole     string `gorm:"size:50;not null;default:'teacher';column:school_teachers_role" json:"school_teachers_role"`

	// Status
	SchoolTeachersIsActive bool `gorm:"not null;default:true;column:school_teachers_is_active;index:idx_school_teachers_active" json:"school_teachers_is_active"`

	// Timestamps (soft delete)
	SchoolTeachersCreatedAt time.Time      `gorm:"column:school_teachers_created_at;autoCreateTime" json:"school_teachers_created_at"`
	SchoolTeachersUpdatedAt time.Time      `gorm:"column:school_teachers_updated_at;autoUpdateTime" json:"school_teachers_updated_at"`
	SchoolTeachersDeletedAt gorm.DeletedAt `gorm:"column:school_teachers_deleted_at;index" json:"school_teachers_deleted_at,omitempty"`
}

func (SchoolTeacherModel) TableName() string { return "school_teachers" }

func (m *SchoolTeacherModel) BeforeCreate(tx *gorm.DB) error {
	if m.SchoolTeachersID == uuid.Nil {
		m.SchoolTeachersID = uuid.New()
	}
	return nil
}

// CanTeachAt reports whether the teacher may carry assignments for the
// given institution: active, same institution, teaching-capable role.
func (m *SchoolTeacherModel) CanTeachAt(institutionID uuid.UUID) bool {
	return m.SchoolTeachersIsActive &&
		m.SchoolTeachersInstitutionID == institutionID &&
		constants.TeachingCapableRoles[m.SchoolTeachersRole]
}
