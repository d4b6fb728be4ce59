// file: internals/features/school/transitions/model/academic_year_transitions_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ======================================================
   ENUM: transition_status
====================================================== */

type TransitionStatus string

const (
	TransitionPending    TransitionStatus = "pending"
	TransitionInProgress TransitionStatus = "in_progress"
	TransitionCompleted  TransitionStatus = "completed"
	TransitionFailed     TransitionStatus = "failed"
	TransitionRolledBack TransitionStatus = "rolled_back"
)

// NonTerminalStatuses block a second transition for the same
// (institution, target year) pair.
var NonTerminalStatuses = []TransitionStatus{TransitionPending, TransitionInProgress}

// RollbackWindow is how long a completed transition stays reversible.
const RollbackWindow = 30 * 24 * time.Hour

/* ======================================================
   Model: academic_year_transitions
====================================================== */

type AcademicYearTransitionModel struct {
	// PK
	AcademicYearTransitionsID uuid.UUID `gorm:"type:uuid;primaryKey;column:academic_year_transitions_id" json:"academic_year_transitions_id"`

	// Scope
	AcademicYearTransitionsSourceAcademicYearID uuid.UUID `gorm:"type:uuid;not null;column:academic_year_transitions_source_academic_year_id" json:"academic_year_transitions_source_academic_year_id"`
	AcademicYearTransitionsTargetAcademicYearID uuid.UUID `gorm:"type:uuid;not null;column:academic_year_transitions_target_academic_year_id;index:idx_transitions_target_year" json:"academic_year_transitions_target_academic_year_id"`
	AcademicYearTransitionsInstitutionID        uuid.UUID `gorm:"type:uuid;not null;column:academic_year_transitions_institution_id;index:idx_transitions_institution" json:"academic_year_transitions_institution_id"`
	AcademicYearTransitionsInitiatedBy          uuid.UUID `gorm:"type:uuid;not null;column:academic_year_transitions_initiated_by" json:"academic_year_transitions_initiated_by"`

	// State machine
	AcademicYearTransitionsStatus             TransitionStatus `gorm:"type:varchar(20);not null;default:'pending';column:academic_year_transitions_status;index:idx_transitions_status" json:"academic_year_transitions_status"`
	AcademicYearTransitionsProgressPercentage int              `gorm:"not null;default:0;column:academic_year_transitions_progress_percentage" json:"academic_year_transitions_progress_percentage"`
	AcademicYearTransitionsCurrentStep        *string          `gorm:"size:200;column:academic_year_transitions_current_step" json:"academic_year_transitions_current_step,omitempty"`

	// Counters
	AcademicYearTransitionsGradesCreated            int `gorm:"not null;default:0;column:academic_year_transitions_grades_created" json:"academic_year_transitions_grades_created"`
	AcademicYearTransitionsGradesSkipped            int `gorm:"not null;default:0;column:academic_year_transitions_grades_skipped" json:"academic_year_transitions_grades_skipped"`
	AcademicYearTransitionsStudentsPromoted         int `gorm:"not null;default:0;column:academic_year_transitions_students_promoted" json:"academic_year_transitions_students_promoted"`
	AcademicYearTransitionsStudentsGraduated        int `gorm:"not null;default:0;column:academic_year_transitions_students_graduated" json:"academic_year_transitions_students_graduated"`
	AcademicYearTransitionsStudentsRetained         int `gorm:"not null;default:0;column:academic_year_transitions_students_retained" json:"academic_year_transitions_students_retained"`
	AcademicYearTransitionsStudentsSkipped          int `gorm:"not null;default:0;column:academic_year_transitions_students_skipped" json:"academic_year_transitions_students_skipped"`
	AcademicYearTransitionsTeacherAssignmentsCopied int `gorm:"not null;default:0;column:academic_year_transitions_teacher_assignments_copied" json:"academic_year_transitions_teacher_assignments_copied"`

	// Snapshots
	AcademicYearTransitionsOptions      datatypes.JSON `gorm:"type:jsonb;column:academic_year_transitions_options" json:"academic_year_transitions_options,omitempty"`
	AcademicYearTransitionsRollbackData datatypes.JSON `gorm:"type:jsonb;column:academic_year_transitions_rollback_data" json:"academic_year_transitions_rollback_data,omitempty"`

	// Outcome
	AcademicYearTransitionsErrorMessage      *string    `gorm:"type:text;column:academic_year_transitions_error_message" json:"academic_year_transitions_error_message,omitempty"`
	AcademicYearTransitionsCanRollback       bool       `gorm:"not null;default:false;column:academic_year_transitions_can_rollback" json:"academic_year_transitions_can_rollback"`
	AcademicYearTransitionsRollbackExpiresAt *time.Time `gorm:"column:academic_year_transitions_rollback_expires_at" json:"academic_year_transitions_rollback_expires_at,omitempty"`
	AcademicYearTransitionsStartedAt         *time.Time `gorm:"column:academic_year_transitions_started_at" json:"academic_year_transitions_started_at,omitempty"`
	AcademicYearTransitionsCompletedAt       *time.Time `gorm:"column:academic_year_transitions_completed_at" json:"academic_year_transitions_completed_at,omitempty"`

	// Timestamps
	AcademicYearTransitionsCreatedAt time.Time `gorm:"column:academic_year_transitions_created_at;autoCreateTime;index:idx_transitions_created_at,sort:desc" json:"academic_year_transitions_created_at"`
	AcademicYearTransitionsUpdatedAt time.Time `gorm:"column:academic_year_transitions_updated_at;autoUpdateTime" json:"academic_year_transitions_updated_at"`
}

func (AcademicYearTransitionModel) TableName() string { return "academic_year_transitions" }

func (m *AcademicYearTransitionModel) BeforeCreate(tx *gorm.DB) error {
	if m.AcademicYearTransitionsID == uuid.Nil {
		m.AcademicYearTransitionsID = uuid.New()
	}
	return nil
}

/* ======================================================
   State helpers
====================================================== */

func (m *AcademicYearTransitionModel) MarkAsStarted(db *gorm.DB, now time.Time) error {
	m.AcademicYearTransitionsStatus = TransitionInProgress
	m.AcademicYearTransitionsStartedAt = &now
	return db.Model(m).Updates(map[string]any{
		"academic_year_transitions_status":     TransitionInProgress,
		"academic_year_transitions_started_at": now,
	}).Error
}

func (m *AcademicYearTransitionModel) UpdateProgress(db *gorm.DB, percentage int, step string) error {
	m.AcademicYearTransitionsProgressPercentage = percentage
	m.AcademicYearTransitionsCurrentStep = &step
	return db.Model(m).Updates(map[string]any{
		"academic_year_transitions_progress_percentage": percentage,
		"academic_year_transitions_current_step":        step,
	}).Error
}

// MarkAsCompleted finalizes the record and opens the rollback window.
func (m *AcademicYearTransitionModel) MarkAsCompleted(db *gorm.DB, now time.Time) error {
	expires := now.Add(RollbackWindow)
	step := "Completed"
	m.AcademicYearTransitionsStatus = TransitionCompleted
	m.AcademicYearTransitionsProgressPercentage = 100
	m.AcademicYearTransitionsCurrentStep = &step
	m.AcademicYearTransitionsCompletedAt = &now
	m.AcademicYearTransitionsCanRollback = true
	m.AcademicYearTransitionsRollbackExpiresAt = &expires
	return db.Model(m).Updates(map[string]any{
		"academic_year_transitions_status":              TransitionCompleted,
		"academic_year_transitions_progress_percentage": 100,
		"academic_year_transitions_current_step":        step,
		"academic_year_transitions_completed_at":        now,
		"academic_year_transitions_can_rollback":        true,
		"academic_year_transitions_rollback_expires_at": expires,
	}).Error
}

func (m *AcademicYearTransitionModel) MarkAsFailed(db *gorm.DB, message string, now time.Time) error {
	m.AcademicYearTransitionsStatus = TransitionFailed
	m.AcademicYearTransitionsErrorMessage = &message
	m.AcademicYearTransitionsCompletedAt = &now
	return db.Model(m).Updates(map[string]any{
		"academic_year_transitions_status":        TransitionFailed,
		"academic_year_transitions_error_message": message,
		"academic_year_transitions_completed_at":  now,
	}).Error
}

func (m *AcademicYearTransitionModel) MarkAsRolledBack(db *gorm.DB) error {
	m.AcademicYearTransitionsStatus = TransitionRolledBack
	m.AcademicYearTransitionsCanRollback = false
	return db.Model(m).Updates(map[string]any{
		"academic_year_transitions_status":       TransitionRolledBack,
		"academic_year_transitions_can_rollback": false,
	}).Error
}

// CanBeRolledBack: only a completed run, flagged reversible, inside the
// rollback window.
func (m *AcademicYearTransitionModel) CanBeRolledBack(now time.Time) bool {
	if m.AcademicYearTransitionsStatus != TransitionCompleted || !m.AcademicYearTransitionsCanRollback {
		return false
	}
	if exp := m.AcademicYearTransitionsRollbackExpiresAt; exp != nil && now.After(*exp) {
		return false
	}
	return true
}

// Summary aggregates the per-category counters for status responses and
// the completion log line.
func (m *AcademicYearTransitionModel) Summary() map[string]int {
	return map[string]int{
		"grades_created":             m.AcademicYearTransitionsGradesCreated,
		"grades_skipped":             m.AcademicYearTransitionsGradesSkipped,
		"students_promoted":          m.AcademicYearTransitionsStudentsPromoted,
		"students_graduated":         m.AcademicYearTransitionsStudentsGraduated,
		"students_retained":          m.AcademicYearTransitionsStudentsRetained,
		"students_skipped":           m.AcademicYearTransitionsStudentsSkipped,
		"teacher_assignments_copied": m.AcademicYearTransitionsTeacherAssignmentsCopied,
	}
}
