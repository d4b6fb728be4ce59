// file: internals/features/school/institutions/model/institutions_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InstitutionModel struct {
	// PK
	InstitutionsID uuid.UUID `gorm:"type:uuid;primaryKey;column:institutions_id" json:"institutions_id"`

	// Identitas
	InstitutionsName string  `gorm:"size:160;not null;column:institutions_name" json:"institutions_name"`
	InstitutionsCode *string `gorm:"size:50;column:institutions_code" json:"institutions_code,omitempty"`

	// Status
	InstitutionsIsActive bool `gorm:"not null;default:true;column:institutions_is_active" json:"institutions_is_active"`

	// Timestamps (soft delete)
	InstitutionsCreatedAt time.Time      `gorm:"column:institutions_created_at;autoCreateTime" json:"institutions_created_at"`
	InstitutionsUpdatedAt time.Time      `gorm:"column:institutions_updated_at;autoUpdateTime" json:"institutions_updated_at"`
	InstitutionsDeletedAt gorm.DeletedAt `gorm:"column:institutions_deleted_at;index" json:"institutions_deleted_at,omitempty"`
}

func (InstitutionModel) TableName() string { return "institutions" }

func (m *InstitutionModel) BeforeCreate(tx *gorm.DB) error {
	if m.InstitutionsID == uuid.Nil {
		m.InstitutionsID = uuid.New()
	}
	return nil
}
