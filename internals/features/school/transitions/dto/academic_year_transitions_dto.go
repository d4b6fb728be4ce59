// file: internals/features/school/transitions/dto/academic_year_transitions_dto.go
package dto

import (
	"github.com/google/uuid"

	"mektebim_backend/internals/features/school/transitions/service"
)

/* ============================
   Requests
============================ */

// CreateTransitionRequest starts a transition. Option fields use
// pointers so "absent" can fall back to the documented defaults
// (copy_subjects and promote_students on, everything else off).
type CreateTransitionRequest struct {
	SourceAcademicYearID uuid.UUID `json:"source_academic_year_id" validate:"required"`
	TargetAcademicYearID uuid.UUID `json:"target_academic_year_id" validate:"required"`
	InstitutionID        uuid.UUID `json:"institution_id" validate:"required"`

	CopySubjects         *bool       `json:"copy_subjects"`
	CopyTeachers         *bool       `json:"copy_teachers"`
	PromoteStudents      *bool       `json:"promote_students"`
	CopyHomeroomTeachers *bool       `json:"copy_homeroom_teachers"`
	CopySubjectTeachers  *bool       `json:"copy_subject_teachers"`
	CopyTeachingLoads    *bool       `json:"copy_teaching_loads"`
	ExcludeStudentIDs    []uuid.UUID `json:"exclude_student_ids"`
	RetainStudentIDs     []uuid.UUID `json:"retain_student_ids"`
}

// Options folds the request flags over the defaults.
func (r *CreateTransitionRequest) Options() service.TransitionOptions {
	opts := service.DefaultTransitionOptions()
	if r.CopySubjects != nil {
		opts.CopySubjects = *r.CopySubjects
	}
	if r.CopyTeachers != nil {
		opts.CopyTeachers = *r.CopyTeachers
	}
	if r.PromoteStudents != nil {
		opts.PromoteStudents = *r.PromoteStudents
	}
	if r.CopyHomeroomTeachers != nil {
		opts.CopyHomeroomTeachers = *r.CopyHomeroomTeachers
	}
	if r.CopySubjectTeachers != nil {
		opts.CopySubjectTeachers = *r.CopySubjectTeachers
	}
	if r.CopyTeachingLoads != nil {
		opts.CopyTeachingLoads = *r.CopyTeachingLoads
	}
	opts.ExcludeStudentIDs = r.ExcludeStudentIDs
	opts.RetainStudentIDs = r.RetainStudentIDs
	return opts
}

type PreviewTransitionRequest struct {
	SourceAcademicYearID uuid.UUID `json:"source_academic_year_id" validate:"required"`
	TargetAcademicYearID uuid.UUID `json:"target_academic_year_id" validate:"required"`
	InstitutionID        uuid.UUID `json:"institution_id" validate:"required"`
}
