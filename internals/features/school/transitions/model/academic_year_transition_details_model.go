// file: internals/features/school/transitions/model/academic_year_transition_details_model.go
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ======================================================
   ENUM pair: entity type / action
   (tagged variant — rollback matches on these)
====================================================== */

type TransitionEntityType string

const (
	EntityStudentEnrollment TransitionEntityType = "student_enrollment"
	EntityHomeroomTeacher   TransitionEntityType = "homeroom_teacher"
	EntityGradeSubject      TransitionEntityType = "grade_subject"
	EntityTeachingLoad      TransitionEntityType = "teaching_load"
)

type TransitionAction string

const (
	ActionPromoted  TransitionAction = "promoted"
	ActionGraduated TransitionAction = "graduated"
	ActionRetained  TransitionAction = "retained"
	ActionSkipped   TransitionAction = "skipped"
	ActionCopied    TransitionAction = "copied"
	ActionFailed    TransitionAction = "failed"
)

/* ======================================================
   Model: academic_year_transition_details
   Append-only audit trail; one row per entity-level action.
   Doubles as the undo index for rollback.
====================================================== */

type AcademicYearTransitionDetailModel struct {
	// PK
	AcademicYearTransitionDetailsID uuid.UUID `gorm:"type:uuid;primaryKey;column:academic_year_transition_details_id" json:"academic_year_transition_details_id"`

	// Parent
	AcademicYearTransitionDetailsTransitionID uuid.UUID `gorm:"type:uuid;not null;column:academic_year_transition_details_transition_id;index:idx_transition_details_transition" json:"academic_year_transition_details_transition_id"`

	// Tagged variant
	AcademicYearTransitionDetailsEntityType TransitionEntityType `gorm:"type:varchar(30);not null;column:academic_year_transition_details_entity_type;index:idx_transition_details_entity" json:"academic_year_transition_details_entity_type"`
	AcademicYearTransitionDetailsAction     TransitionAction     `gorm:"type:varchar(20);not null;column:academic_year_transition_details_action;index:idx_transition_details_action" json:"academic_year_transition_details_action"`

	// Entity refs
	AcademicYearTransitionDetailsSourceEntityID uuid.UUID  `gorm:"type:uuid;not null;column:academic_year_transition_details_source_entity_id" json:"academic_year_transition_details_source_entity_id"`
	AcademicYearTransitionDetailsTargetEntityID *uuid.UUID `gorm:"type:uuid;column:academic_year_transition_details_target_entity_id" json:"academic_year_transition_details_target_entity_id,omitempty"`

	// Reason (set when skipped/failed) + human-readable context block
	AcademicYearTransitionDetailsReason  *string        `gorm:"type:text;column:academic_year_transition_details_reason" json:"academic_year_transition_details_reason,omitempty"`
	AcademicYearTransitionDetailsContext datatypes.JSON `gorm:"type:jsonb;column:academic_year_transition_details_context" json:"academic_year_transition_details_context,omitempty"`

	AcademicYearTransitionDetailsCreatedAt time.Time `gorm:"column:academic_year_transition_details_created_at;autoCreateTime" json:"academic_year_transition_details_created_at"`
}

func (AcademicYearTransitionDetailModel) TableName() string {
	return "academic_year_transition_details"
}

func (m *AcademicYearTransitionDetailModel) BeforeCreate(tx *gorm.DB) error {
	if m.AcademicYearTransitionDetailsID == uuid.Nil {
		m.AcademicYearTransitionDetailsID = uuid.New()
	}
	return nil
}

// LogDetail appends one audit row inside the caller's transaction. A
// persistence failure here is a system error, never a business rejection.
func LogDetail(
	tx *gorm.DB,
	transitionID uuid.UUID,
	entityType TransitionEntityType,
	action TransitionAction,
	sourceEntityID uuid.UUID,
	targetEntityID *uuid.UUID,
	reason *string,
	context map[string]any,
) (*AcademicYearTransitionDetailModel, error) {
	row := &AcademicYearTransitionDetailModel{
		AcademicYearTransitionDetailsTransitionID:   transitionID,
		AcademicYearTransitionDetailsEntityType:     entityType,
		AcademicYearTransitionDetailsAction:         action,
		AcademicYearTransitionDetailsSourceEntityID: sourceEntityID,
		AcademicYearTransitionDetailsTargetEntityID: targetEntityID,
		AcademicYearTransitionDetailsReason:         reason,
	}
	if context != nil {
		b, err := json.Marshal(context)
		if err != nil {
			return nil, err
		}
		row.AcademicYearTransitionDetailsContext = datatypes.JSON(b)
	}
	if err := tx.Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
