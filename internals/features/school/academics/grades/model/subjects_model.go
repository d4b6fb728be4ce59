// file: internals/features/school/academics/grades/model/subjects_model.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubjectModel struct {
	// PK
	SubjectsID uuid.UUID `gorm:"type:uuid;primaryKey;column:subjects_id" json:"subjects_id"`

	// Relasi
	SubjectsInstitutionID uuid.UUID `gorm:"type:uuid;not null;column:subjects_institution_id;index:idx_subjects_institution" json:"subjects_institution_id"`

	// Identitas
	SubjectsName string  `gorm:"size:160;not null;column:subjects_name" json:"subjects_name"`
	SubjectsCode *string `gorm:"size:50;column:subjects_code" json:"subjects_code,omitempty"`

	// Timestamps (soft delete)
	SubjectsCreatedAt time.Time      `gorm:"column:subjects_created_at;autoCreateTime" json:"subjects_created_at"`
	SubjectsUpdatedAt time.Time      `gorm:"column:subjects_updated_at;autoUpdateTime" json:"subjects_updated_at"`
	SubjectsDeletedAt gorm.DeletedAt `gorm:"column:subjects_deleted_at;index" json:"subjects_deleted_at,omitempty"`
}

func (SubjectModel) TableName() string { return "subjects" }

func (m *SubjectModel) BeforeCreate(tx *gorm.DB) error {
	if m.SubjectsID == uuid.Nil {
		m.SubjectsID = uuid.New()
	}
	return nil
}

func gradeLabel(level int, name string) string {
	return fmt.Sprintf("%d-%s", level, name)
}
