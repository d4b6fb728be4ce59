// file: internals/features/school/transitions/service/options.go
package service

import "github.com/google/uuid"

// GradeMapping associates each source grade with the grade that continues
// it in the target year. Produced by the grade planner, consumed by both
// the promotion and the teacher-assignment engines.
type GradeMapping = map[uuid.UUID]uuid.UUID

// TransitionOptions is the strongly-typed options bag accepted by
// InitiateTransition. Snapshotted verbatim onto the transition record.
type TransitionOptions struct {
	CopySubjects         bool        `json:"copy_subjects"`
	CopyTeachers         bool        `json:"copy_teachers"`
	PromoteStudents      bool        `json:"promote_students"`
	CopyHomeroomTeachers bool        `json:"copy_homeroom_teachers"`
	CopySubjectTeachers  bool        `json:"copy_subject_teachers"`
	CopyTeachingLoads    bool        `json:"copy_teaching_loads"`
	ExcludeStudentIDs    []uuid.UUID `json:"exclude_student_ids"`
	RetainStudentIDs     []uuid.UUID `json:"retain_student_ids"`
}

func DefaultTransitionOptions() TransitionOptions {
	return TransitionOptions{
		CopySubjects:    true,
		PromoteStudents: true,
	}
}

// RollbackData is the snapshot persisted on completion. Rollback is
// reconstructed from this plus the audit trail, not from entity copies.
type RollbackData struct {
	GradeMapping GradeMapping      `json:"grade_mapping"`
	Options      TransitionOptions `json:"options"`
}
