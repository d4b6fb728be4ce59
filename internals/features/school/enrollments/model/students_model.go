// file: internals/features/school/enrollments/model/students_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentModel struct {
	// PK
	StudentsID uuid.UUID `gorm:"type:uuid;primaryKey;column:students_id" json:"students_id"`

	// Identitas
	StudentsFullName string  `gorm:"size:120;not null;column:students_full_name" json:"students_full_name"`
	StudentsGender   *string `gorm:"size:10;column:students_gender" json:"students_gender,omitempty"` // "male" | "female"

	// Timestamps (soft delete)
	StudentsCreatedAt time.Time      `gorm:"column:students_created_at;autoCreateTime" json:"students_created_at"`
	StudentsUpdatedAt time.Time      `gorm:"column:students_updated_at;autoUpdateTime" json:"students_updated_at"`
	StudentsDeletedAt gorm.DeletedAt `gorm:"column:students_deleted_at;index" json:"students_deleted_at,omitempty"`
}

func (StudentModel) TableName() string { return "students" }

func (m *StudentModel) BeforeCreate(tx *gorm.DB) error {
	if m.StudentsID == uuid.Nil {
		m.StudentsID = uuid.New()
	}
	return nil
}
