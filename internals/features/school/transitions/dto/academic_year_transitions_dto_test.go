// file: internals/features/school/transitions/dto/academic_year_transitions_dto_test.go
package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCreateTransitionRequest_OptionsDefaults(t *testing.T) {
	req := CreateTransitionRequest{}
	opts := req.Options()

	assert.True(t, opts.CopySubjects)
	assert.True(t, opts.PromoteStudents)
	assert.False(t, opts.CopyTeachers)
	assert.False(t, opts.CopyHomeroomTeachers)
	assert.False(t, opts.CopySubjectTeachers)
	assert.False(t, opts.CopyTeachingLoads)
}

func TestCreateTransitionRequest_OptionsOverride(t *testing.T) {
	no, yes := false, true
	exclude := []uuid.UUID{uuid.New()}
	req := CreateTransitionRequest{
		CopySubjects:      &no,
		PromoteStudents:   &no,
		CopyTeachingLoads: &yes,
		ExcludeStudentIDs: exclude,
	}
	opts := req.Options()

	assert.False(t, opts.CopySubjects)
	assert.False(t, opts.PromoteStudents)
	assert.True(t, opts.CopyTeachingLoads)
	assert.Equal(t, exclude, opts.ExcludeStudentIDs)
}
