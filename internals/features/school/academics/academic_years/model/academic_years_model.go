// file: internals/features/school/academics/academic_years/model/academic_years_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AcademicYearModel struct {
	// PK
	AcademicYearsID uuid.UUID `gorm:"type:uuid;primaryKey;column:academic_years_id" json:"academic_years_id"`

	// Identitas
	AcademicYearsName      string    `gorm:"size:50;not null;column:academic_years_name" json:"academic_years_name"` // e.g. "2025-2026"
	AcademicYearsStartDate time.Time `gorm:"type:date;not null;column:academic_years_start_date" json:"academic_years_start_date"`
	AcademicYearsEndDate   time.Time `gorm:"type:date;not null;column:academic_years_end_date" json:"academic_years_end_date"`

	// Status
	AcademicYearsIsActive bool `gorm:"not null;default:false;column:academic_years_is_active;index:idx_academic_years_active" json:"academic_years_is_active"`

	// Timestamps (soft delete)
	AcademicYearsCreatedAt time.Time      `gorm:"column:academic_years_created_at;autoCreateTime" json:"academic_years_created_at"`
	AcademicYearsUpdatedAt time.Time      `gorm:"column:academic_years_updated_at;autoUpdateTime" json:"academic_years_updated_at"`
	AcademicYearsDeletedAt gorm.DeletedAt `gorm:"column:academic_years_deleted_at;index" json:"academic_years_deleted_at,omitempty"`
}

func (AcademicYearModel) TableName() string { return "academic_years" }

func (m *AcademicYearModel) BeforeCreate(tx *gorm.DB) error {
	if m.AcademicYearsID == uuid.Nil {
		m.AcademicYearsID = uuid.New()
	}
	return nil
}
