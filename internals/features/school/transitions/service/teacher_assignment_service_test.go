// file: internals/features/school/transitions/service/teacher_assignment_service_test.go
package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gradeModel "mektebim_backend/internals/features/school/academics/grades/model"
	loadModel "mektebim_backend/internals/features/school/academics/teaching_loads/model"
	trModel "mektebim_backend/internals/features/school/transitions/model"
)

func TestCopyHomeroomAssignments_CarriesEligibleTeacher(t *testing.T) {
	f := newFixture(t)
	svc := &TeacherAssignmentTransitionService{DB: f.DB, Clock: fixedClock{testNow}}
	tr := f.newTransition(t)

	teacher := f.addTeacher(t, "Aylin Hoca", "teacher", true)
	src := f.addGrade(t, f.SourceYear.AcademicYearsID, 5, "A")
	tgt := f.addGrade(t, f.TargetYear.AcademicYearsID, 6, "A")
	require.NoError(t, f.DB.Model(src).Updates(map[string]any{
		"grades_homeroom_teacher_id": teacher.SchoolTeachersID,
	}).Error)

	res, err := svc.CopyHomeroomAssignments(f.DB, f.Institution.InstitutionsID, GradeMapping{src.GradesID: tgt.GradesID}, tr)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Copied)
	assert.Zero(t, res.Skipped)

	var reloaded gradeModel.GradeModel
	require.NoError(t, f.DB.Where("grades_id = ?", tgt.GradesID).First(&reloaded).Error)
	require.NotNil(t, reloaded.GradesHomeroomTeacherID)
	assert.Equal(t, teacher.SchoolTeachersID, *reloaded.GradesHomeroomTeacherID)
	require.NotNil(t, reloaded.GradesHomeroomAssignedAt)
	assert.True(t, reloaded.GradesHomeroomAssignedAt.Equal(testNow))
}

func TestCopyHomeroomAssignments_SkipsIneligibleAndMissing(t *testing.T) {
	f := newFixture(t)
	svc := &TeacherAssignmentTransitionService{DB: f.DB, Clock: fixedClock{testNow}}
	tr := f.newTransition(t)

	inactive := f.addTeacher(t, "Eski Hoca", "teacher", false)
	adminStaff := f.addTeacher(t, "Idareci", "admin_staff", true)

	srcA := f.addGrade(t, f.SourceYear.AcademicYearsID, 5, "A")
	srcB := f.addGrade(t, f.SourceYear.AcademicYearsID, 5, "B")
	srcC := f.addGrade(t, f.SourceYear.AcademicYearsID, 5, "C") // no homeroom at all
	tgtA := f.addGrade(t, f.TargetYear.AcademicYearsID, 6, "A")
	tgtB := f.addGrade(t, f.TargetYear.AcademicYearsID, 6, "B")
	tgtC := f.addGrade(t, f.TargetYear.AcademicYearsID, 6, "C")

	require.NoError(t, f.DB.Model(srcA).Update("grades_homeroom_teacher_id", inactive.SchoolTeachersID).Error)
	require.NoError(t, f.DB.Model(srcB).Update("grades_homeroom_teacher_id", adminStaff.SchoolTeachersID).Error)

	res, err := svc.CopyHomeroomAssignments(f.DB, f.Institution.InstitutionsID, GradeMapping{
		srcA.GradesID: tgtA.GradesID,
		srcB.GradesID: tgtB.GradesID,
		srcC.GradesID: tgtC.GradesID,
	}, tr)
	require.NoError(t, err)
	assert.Zero(t, res.Copied)
	assert.Equal(t, 3, res.Skipped)

	var cnt int64
	require.NoError(t, f.DB.Model(&gradeModel.GradeModel{}).
		Where("grades_academic_year_id = ?", f.TargetYear.AcademicYearsID).
		Where("grades_homeroom_teacher_id IS NOT NULL").
		Count(&cnt).Error)
	assert.Zero(t, cnt)
}

func TestCopyHomeroomAssignments_NoDoubleHomeroomInTargetYear(t *testing.T) {
	f := newFixture(t)
	svc := &TeacherAssignmentTransitionService{DB: f.DB, Clock: fixedClock{testNow}}
	tr := f.newTransition(t)

	teacher := f.addTeacher(t, "Aylin Hoca", "teacher", true)

	srcA := f.addGrade(t, f.SourceYear.AcademicYearsID, 5, "A")
	tgtA := f.addGrade(t, f.TargetYear.AcademicYearsID, 6, "A")
	require.NoError(t, f.DB.Model(srcA).Update("grades_homeroom_teacher_id", teacher.SchoolTeachersID).Error)

	// the teacher is already homeroom of another target-year grade
	other := f.addGrade(t, f.TargetYear.AcademicYearsID, 7, "B")
	require.NoError(t, f.DB.Model(other).Update("grades_homeroom_teacher_id", teacher.SchoolTeachersID).Error)

	res, err := svc.CopyHomeroomAssignments(f.DB, f.Institution.InstitutionsID, GradeMapping{srcA.GradesID: tgtA.GradesID}, tr)
	require.NoError(t, err)
	assert.Zero(t, res.Copied)
	assert.Equal(t, 1, res.Skipped)

	var reloaded gradeModel.GradeModel
	require.NoError(t, f.DB.Where("grades_id = ?", tgtA.GradesID).First(&reloaded).Error)
	assert.Nil(t, reloaded.GradesHomeroomTeacherID)
}

func TestCopySubjectTeacherAssignments_MatchesBySubject(t *testing.T) {
	f := newFixture(t)
	svc := &TeacherAssignmentTransitionService{DB: f.DB, Clock: fixedClock{testNow}}
	tr := f.newTransition(t)

	teacher := f.addTeacher(t, "Mehmet Hoca", "subject_teacher", true)
	math := f.addSubject(t, "Mathematics")
	physics := f.addSubject(t, "Physics")

	src := f.addGrade(t, f.SourceYear.AcademicYearsID, 5, "A")
	tgt := f.addGrade(t, f.TargetYear.AcademicYearsID, 6, "A")

	f.addGradeSubject(t, src.GradesID, math.SubjectsID, &teacher.SchoolTeachersID, 4)
	f.addGradeSubject(t, src.GradesID, physics.SubjectsID, &teacher.SchoolTeachersID, 2)
	// math exists in the target grade, physics does not
	tgtMath := f.addGradeSubject(t, tgt.GradesID, math.SubjectsID, nil, 4)

	res, err := svc.CopySubjectTeacherAssignments(f.DB, f.Institution.InstitutionsID, GradeMapping{src.GradesID: tgt.GradesID}, tr)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Copied)
	assert.Equal(t, 1, res.Skipped)

	var reloaded gradeModel.GradeSubjectModel
	require.NoError(t, f.DB.Where("grade_subjects_id = ?", tgtMath.GradeSubjectsID).First(&reloaded).Error)
	require.NotNil(t, reloaded.GradeSubjectsTeacherID)
	assert.Equal(t, teacher.SchoolTeachersID, *reloaded.GradeSubjectsTeacherID)
}

func TestCopyTeachingLoads_CopiesAndRemapsGrade(t *testing.T) {
	f := newFixture(t)
	svc := &TeacherAssignmentTransitionService{DB: f.DB, Clock: fixedClock{testNow}}
	tr := f.newTransition(t)

	teacher := f.addTeacher(t, "Mehmet Hoca", "teacher", true)
	math := f.addSubject(t, "Mathematics")
	src := f.addGrade(t, f.SourceYear.AcademicYearsID, 5, "A")
	tgt := f.addGrade(t, f.TargetYear.AcademicYearsID, 6, "A")

	f.addLoad(t, f.SourceYear.AcademicYearsID, teacher.SchoolTeachersID, math.SubjectsID, &src.GradesID, 6)

	res, err := svc.CopyTeachingLoads(f.DB, f.SourceYear.AcademicYearsID, f.TargetYear.AcademicYearsID, f.Institution.InstitutionsID,
		GradeMapping{src.GradesID: tgt.GradesID}, tr)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Copied)

	var copied loadModel.TeachingLoadModel
	require.NoError(t, f.DB.
		Where("teaching_loads_academic_year_id = ?", f.TargetYear.AcademicYearsID).
		First(&copied).Error)
	require.NotNil(t, copied.TeachingLoadsGradeID)
	assert.Equal(t, tgt.GradesID, *copied.TeachingLoadsGradeID)
	assert.Equal(t, 6, copied.TeachingLoadsWeeklyHours)
	assert.Equal(t, loadModel.LoadSchedulePending, copied.TeachingLoadsScheduleStatus)
	require.NotNil(t, copied.TeachingLoadsScheduleNotes)
	assert.Equal(t, "Not yet scheduled", *copied.TeachingLoadsScheduleNotes)
}

func TestCopyTeachingLoads_SkipsDuplicate(t *testing.T) {
	f := newFixture(t)
	svc := &TeacherAssignmentTransitionService{DB: f.DB, Clock: fixedClock{testNow}}
	tr := f.newTransition(t)

	teacher := f.addTeacher(t, "Mehmet Hoca", "teacher", true)
	math := f.addSubject(t, "Mathematics")

	f.addLoad(t, f.SourceYear.AcademicYearsID, teacher.SchoolTeachersID, math.SubjectsID, nil, 6)

	// first copy succeeds, second is idempotent
	res, err := svc.CopyTeachingLoads(f.DB, f.SourceYear.AcademicYearsID, f.TargetYear.AcademicYearsID, f.Institution.InstitutionsID, GradeMapping{}, tr)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Copied)

	res, err = svc.CopyTeachingLoads(f.DB, f.SourceYear.AcademicYearsID, f.TargetYear.AcademicYearsID, f.Institution.InstitutionsID, GradeMapping{}, tr)
	require.NoError(t, err)
	assert.Zero(t, res.Copied)
	assert.Equal(t, 1, res.Skipped)

	var cnt int64
	require.NoError(t, f.DB.Model(&loadModel.TeachingLoadModel{}).
		Where("teaching_loads_academic_year_id = ?", f.TargetYear.AcademicYearsID).
		Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)

	var detail trModel.AcademicYearTransitionDetailModel
	require.NoError(t, f.DB.
		Where("academic_year_transition_details_transition_id = ?", tr.AcademicYearTransitionsID).
		Where("academic_year_transition_details_action = ?", trModel.ActionSkipped).
		First(&detail).Error)
	require.NotNil(t, detail.AcademicYearTransitionDetailsReason)
	assert.Equal(t, "Equivalent load already exists in target year", *detail.AcademicYearTransitionDetailsReason)
}

func TestCopyTeachingLoads_SkipsIneligibleTeacher(t *testing.T) {
	f := newFixture(t)
	svc := &TeacherAssignmentTransitionService{DB: f.DB, Clock: fixedClock{testNow}}
	tr := f.newTransition(t)

	inactive := f.addTeacher(t, "Eski Hoca", "teacher", false)
	math := f.addSubject(t, "Mathematics")
	f.addLoad(t, f.SourceYear.AcademicYearsID, inactive.SchoolTeachersID, math.SubjectsID, nil, 4)

	res, err := svc.CopyTeachingLoads(f.DB, f.SourceYear.AcademicYearsID, f.TargetYear.AcademicYearsID, f.Institution.InstitutionsID, GradeMapping{}, tr)
	require.NoError(t, err)
	assert.Zero(t, res.Copied)
	assert.Equal(t, 1, res.Skipped)
}

func TestGetTeacherAssignmentPreview_Counts(t *testing.T) {
	f := newFixture(t)
	svc := &TeacherAssignmentTransitionService{DB: f.DB, Clock: fixedClock{testNow}}

	teacher := f.addTeacher(t, "Aylin Hoca", "teacher", true)
	math := f.addSubject(t, "Mathematics")
	src := f.addGrade(t, f.SourceYear.AcademicYearsID, 5, "A")
	require.NoError(t, f.DB.Model(src).Update("grades_homeroom_teacher_id", teacher.SchoolTeachersID).Error)
	f.addGradeSubject(t, src.GradesID, math.SubjectsID, &teacher.SchoolTeachersID, 4)
	f.addLoad(t, f.SourceYear.AcademicYearsID, teacher.SchoolTeachersID, math.SubjectsID, &src.GradesID, 4)

	preview, err := svc.GetTeacherAssignmentPreview(f.DB, f.SourceYear.AcademicYearsID, f.Institution.InstitutionsID)
	require.NoError(t, err)
	assert.Equal(t, 1, preview.HomeroomAssignments)
	assert.Equal(t, 1, preview.SubjectAssignments)
	assert.Equal(t, 1, preview.ActiveLoads)
}
