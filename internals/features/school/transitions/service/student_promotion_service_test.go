// file: internals/features/school/transitions/service/student_promotion_service_test.go
package service

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gradeModel "mektebim_backend/internals/features/school/academics/grades/model"
	enrollModel "mektebim_backend/internals/features/school/enrollments/model"
	trModel "mektebim_backend/internals/features/school/transitions/model"
)

func TestBulkPromoteStudents_PromotesThroughMapping(t *testing.T) {
	f := newFixture(t)
	svc := &StudentPromotionService{DB: f.DB, Clock: fixedClock{testNow}}
	tr := f.newTransition(t)

	src := f.addGrade(t, f.SourceYear.AcademicYearsID, 5, "A")
	tgt := f.addGrade(t, f.TargetYear.AcademicYearsID, 6, "A")
	mapping := GradeMapping{src.GradesID: tgt.GradesID}

	students := []*enrollModel.StudentModel{
		f.addStudent(t, "Ali Demir", "male"),
		f.addStudent(t, "Zeynep Kaya", "female"),
		f.addStudent(t, "Emre Can", "male"),
	}
	for i, s := range students {
		f.enroll(t, s.StudentsID, src.GradesID, f.SourceYear.AcademicYearsID, string(rune('1'+i)))
	}

	res, err := svc.BulkPromoteStudents(f.DB, f.SourceYear.AcademicYearsID, f.TargetYear.AcademicYearsID, f.Institution.InstitutionsID, mapping, tr, PromotionOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Promoted)
	assert.Zero(t, res.Graduated)
	assert.Zero(t, res.Retained)
	assert.Zero(t, res.Skipped)

	// every student now has exactly one active enrollment, in the target year
	for _, s := range students {
		var active []enrollModel.StudentEnrollmentModel
		require.NoError(t, f.DB.
			Where("student_enrollments_student_id = ? AND student_enrollments_status = ?", s.StudentsID, enrollModel.EnrollmentActive).
			Find(&active).Error)
		require.Len(t, active, 1)
		assert.Equal(t, f.TargetYear.AcademicYearsID, active[0].StudentEnrollmentsAcademicYearID)
		assert.Equal(t, tgt.GradesID, active[0].StudentEnrollmentsGradeID)
	}

	// counters on the target grade were refreshed
	var reloaded gradeModel.GradeModel
	require.NoError(t, f.DB.Where("grades_id = ?", tgt.GradesID).First(&reloaded).Error)
	assert.Equal(t, 3, reloaded.GradesStudentCount)
	assert.Equal(t, 2, reloaded.GradesMaleStudentCount)
	assert.Equal(t, 1, reloaded.GradesFemaleStudentCount)

	// audit rows exist per promotion
	var details int64
	require.NoError(t, f.DB.Model(&trModel.AcademicYearTransitionDetailModel{}).
		Where("academic_year_transition_details_transition_id = ?", tr.AcademicYearTransitionsID).
		Where("academic_year_transition_details_action = ?", trModel.ActionPromoted).
		Count(&details).Error)
	assert.EqualValues(t, 3, details)
}

func TestBulkPromoteStudents_GraduatesFinalLevel(t *testing.T) {
	f := newFixture(t)
	svc := &StudentPromotionService{DB: f.DB, Clock: fixedClock{testNow}}
	tr := f.newTransition(t)

	src := f.addGrade(t, f.SourceYear.AcademicYearsID, 12, "A")
	student := f.addStudent(t, "Fatma Arslan", "female")
	enr := f.enroll(t, student.StudentsID, src.GradesID, f.SourceYear.AcademicYearsID, "1201")

	res, err := svc.BulkPromoteStudents(f.DB, f.SourceYear.AcademicYearsID, f.TargetYear.AcademicYearsID, f.Institution.InstitutionsID, GradeMapping{}, tr, PromotionOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Graduated)

	var reloaded enrollModel.StudentEnrollmentModel
	require.NoError(t, f.DB.Where("student_enrollments_id = ?", enr.StudentEnrollmentsID).First(&reloaded).Error)
	assert.Equal(t, enrollModel.EnrollmentGraduated, reloaded.StudentEnrollmentsStatus)
	require.NotNil(t, reloaded.StudentEnrollmentsWithdrawalDate)
	require.NotNil(t, reloaded.StudentEnrollmentsWithdrawalReason)
	assert.Equal(t, "Completed final grade", *reloaded.StudentEnrollmentsWithdrawalReason)

	// no successor enrollment
	var cnt int64
	require.NoError(t, f.DB.Model(&enrollModel.StudentEnrollmentModel{}).
		Where("student_enrollments_student_id = ?", student.StudentsID).
		Where("student_enrollments_academic_year_id = ?", f.TargetYear.AcademicYearsID).
		Count(&cnt).Error)
	assert.Zero(t, cnt)
}

func TestBulkPromoteStudents_GraduationBeatsRetainList(t *testing.T) {
	f := newFixture(t)
	svc := &StudentPromotionService{DB: f.DB, Clock: fixedClock{testNow}}
	tr := f.newTransition(t)

	src := f.addGrade(t, f.SourceYear.AcademicYearsID, 12, "A")
	f.addGrade(t, f.TargetYear.AcademicYearsID, 12, "A") // retention target, must stay unused
	student := f.addStudent(t, "Kerem Aksoy", "male")
	f.enroll(t, student.StudentsID, src.GradesID, f.SourceYear.AcademicYearsID, "1202")

	res, err := svc.BulkPromoteStudents(f.DB, f.SourceYear.AcademicYearsID, f.TargetYear.AcademicYearsID, f.Institution.InstitutionsID, GradeMapping{}, tr, PromotionOptions{
		RetainStudentIDs: []uuid.UUID{student.StudentsID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Graduated)
	assert.Zero(t, res.Retained)
}

func TestBulkPromoteStudents_ExcludeBeatsEverything(t *testing.T) {
	f := newFixture(t)
	svc := &StudentPromotionService{DB: f.DB, Clock: fixedClock{testNow}}
	tr := f.newTransition(t)

	src := f.addGrade(t, f.SourceYear.AcademicYearsID, 12, "A")
	student := f.addStudent(t, "Deniz Yildiz", "female")
	enr := f.enroll(t, student.StudentsID, src.GradesID, f.SourceYear.AcademicYearsID, "1203")

	res, err := svc.BulkPromoteStudents(f.DB, f.SourceYear.AcademicYearsID, f.TargetYear.AcademicYearsID, f.Institution.InstitutionsID, GradeMapping{}, tr, PromotionOptions{
		ExcludeStudentIDs: []uuid.UUID{student.StudentsID},
		RetainStudentIDs:  []uuid.UUID{student.StudentsID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.Graduated)

	var reloaded enrollModel.StudentEnrollmentModel
	require.NoError(t, f.DB.Where("student_enrollments_id = ?", enr.StudentEnrollmentsID).First(&reloaded).Error)
	assert.Equal(t, enrollModel.EnrollmentActive, reloaded.StudentEnrollmentsStatus, "excluded students are left untouched")

	var detail trModel.AcademicYearTransitionDetailModel
	require.NoError(t, f.DB.
		Where("academic_year_transition_details_transition_id = ?", tr.AcademicYearTransitionsID).
		Where("academic_year_transition_details_action = ?", trModel.ActionSkipped).
		First(&detail).Error)
	require.NotNil(t, detail.AcademicYearTransitionDetailsReason)
	assert.Equal(t, "Held for manual decision", *detail.AcademicYearTransitionDetailsReason)
}

func TestBulkPromoteStudents_RetainsAtSameLevel(t *testing.T) {
	f := newFixture(t)
	svc := &StudentPromotionService{DB: f.DB, Clock: fixedClock{testNow}}
	tr := f.newTransition(t)

	src := f.addGrade(t, f.SourceYear.AcademicYearsID, 5, "A")
	tgt6A := f.addGrade(t, f.TargetYear.AcademicYearsID, 6, "A")
	tgt5A := f.addGrade(t, f.TargetYear.AcademicYearsID, 5, "A")
	mapping := GradeMapping{src.GradesID: tgt6A.GradesID}

	student := f.addStudent(t, "Murat Sen", "male")
	f.enroll(t, student.StudentsID, src.GradesID, f.SourceYear.AcademicYearsID, "501")

	res, err := svc.BulkPromoteStudents(f.DB, f.SourceYear.AcademicYearsID, f.TargetYear.AcademicYearsID, f.Institution.InstitutionsID, mapping, tr, PromotionOptions{
		RetainStudentIDs: []uuid.UUID{student.StudentsID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Retained)
	assert.Zero(t, res.Promoted)

	var successor enrollModel.StudentEnrollmentModel
	require.NoError(t, f.DB.
		Where("student_enrollments_student_id = ?", student.StudentsID).
		Where("student_enrollments_academic_year_id = ?", f.TargetYear.AcademicYearsID).
		First(&successor).Error)
	assert.Equal(t, tgt5A.GradesID, successor.StudentEnrollmentsGradeID, "retention stays at the same class level")
	require.NotNil(t, successor.StudentEnrollmentsEnrollmentNotes)
	assert.Equal(t, "Retained from previous year", *successor.StudentEnrollmentsEnrollmentNotes)
}

func TestBulkPromoteStudents_RetentionWithoutTargetGradeFails(t *testing.T) {
	f := newFixture(t)
	svc := &StudentPromotionService{DB: f.DB, Clock: fixedClock{testNow}}
	tr := f.newTransition(t)

	src := f.addGrade(t, f.SourceYear.AcademicYearsID, 5, "A")
	student := f.addStudent(t, "Elif Kurt", "female")
	f.enroll(t, student.StudentsID, src.GradesID, f.SourceYear.AcademicYearsID, "502")

	_, err := svc.BulkPromoteStudents(f.DB, f.SourceYear.AcademicYearsID, f.TargetYear.AcademicYearsID, f.Institution.InstitutionsID, GradeMapping{}, tr, PromotionOptions{
		RetainStudentIDs: []uuid.UUID{student.StudentsID},
	})
	require.Error(t, err)
	fe, ok := err.(*fiber.Error)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusNotFound, fe.Code)
}

func TestBulkPromoteStudents_SkipsUnmappedGrade(t *testing.T) {
	f := newFixture(t)
	svc := &StudentPromotionService{DB: f.DB, Clock: fixedClock{testNow}}
	tr := f.newTransition(t)

	src := f.addGrade(t, f.SourceYear.AcademicYearsID, 5, "B")
	student := f.addStudent(t, "Baran Ozturk", "male")
	enr := f.enroll(t, student.StudentsID, src.GradesID, f.SourceYear.AcademicYearsID, "503")

	res, err := svc.BulkPromoteStudents(f.DB, f.SourceYear.AcademicYearsID, f.TargetYear.AcademicYearsID, f.Institution.InstitutionsID, GradeMapping{}, tr, PromotionOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)

	var reloaded enrollModel.StudentEnrollmentModel
	require.NoError(t, f.DB.Where("student_enrollments_id = ?", enr.StudentEnrollmentsID).First(&reloaded).Error)
	assert.Equal(t, enrollModel.EnrollmentActive, reloaded.StudentEnrollmentsStatus)

	var detail trModel.AcademicYearTransitionDetailModel
	require.NoError(t, f.DB.
		Where("academic_year_transition_details_transition_id = ?", tr.AcademicYearTransitionsID).
		First(&detail).Error)
	require.NotNil(t, detail.AcademicYearTransitionDetailsReason)
	assert.Equal(t, "No target grade found", *detail.AcademicYearTransitionDetailsReason)
}

func TestBulkPromoteStudents_ConflictOnExistingActiveTargetEnrollment(t *testing.T) {
	f := newFixture(t)
	svc := &StudentPromotionService{DB: f.DB, Clock: fixedClock{testNow}}
	tr := f.newTransition(t)

	src := f.addGrade(t, f.SourceYear.AcademicYearsID, 5, "A")
	tgt := f.addGrade(t, f.TargetYear.AcademicYearsID, 6, "A")
	mapping := GradeMapping{src.GradesID: tgt.GradesID}

	student := f.addStudent(t, "Cem Polat", "male")
	f.enroll(t, student.StudentsID, src.GradesID, f.SourceYear.AcademicYearsID, "504")
	// pre-existing enrollment in the target year
	f.enroll(t, student.StudentsID, tgt.GradesID, f.TargetYear.AcademicYearsID, "504")

	_, err := svc.BulkPromoteStudents(f.DB, f.SourceYear.AcademicYearsID, f.TargetYear.AcademicYearsID, f.Institution.InstitutionsID, mapping, tr, PromotionOptions{})
	require.Error(t, err)
	fe, ok := err.(*fiber.Error)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusConflict, fe.Code)

	// the failure was recorded
	var cnt int64
	require.NoError(t, f.DB.Model(&trModel.AcademicYearTransitionDetailModel{}).
		Where("academic_year_transition_details_transition_id = ?", tr.AcademicYearTransitionsID).
		Where("academic_year_transition_details_action = ?", trModel.ActionFailed).
		Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)
}

func TestGetPromotionPreview_Classification(t *testing.T) {
	f := newFixture(t)
	svc := &StudentPromotionService{DB: f.DB, Clock: fixedClock{testNow}}

	src5 := f.addGrade(t, f.SourceYear.AcademicYearsID, 5, "A")
	src12 := f.addGrade(t, f.SourceYear.AcademicYearsID, 12, "A")
	srcOrphan := f.addGrade(t, f.SourceYear.AcademicYearsID, 7, "B")
	tgt6 := f.addGrade(t, f.TargetYear.AcademicYearsID, 6, "A")
	mapping := GradeMapping{src5.GradesID: tgt6.GradesID}

	f.enroll(t, f.addStudent(t, "S1", "male").StudentsID, src5.GradesID, f.SourceYear.AcademicYearsID, "1")
	f.enroll(t, f.addStudent(t, "S2", "female").StudentsID, src12.GradesID, f.SourceYear.AcademicYearsID, "2")
	f.enroll(t, f.addStudent(t, "S3", "male").StudentsID, srcOrphan.GradesID, f.SourceYear.AcademicYearsID, "3")

	preview, err := svc.GetPromotionPreview(f.DB, f.SourceYear.AcademicYearsID, f.TargetYear.AcademicYearsID, f.Institution.InstitutionsID, mapping)
	require.NoError(t, err)

	assert.Equal(t, 3, preview.Total)
	assert.Equal(t, 1, preview.ToPromote)
	assert.Equal(t, 1, preview.ToGraduate)
	assert.Equal(t, 1, preview.NoTargetGrade)
	assert.Equal(t, 1, preview.ByClassLevel[5])
	assert.Equal(t, 1, preview.ByClassLevel[7])
	assert.Equal(t, 1, preview.ByClassLevel[12])
}

func TestGetStudentsForPreview_FilterByGrade(t *testing.T) {
	f := newFixture(t)
	svc := &StudentPromotionService{DB: f.DB, Clock: fixedClock{testNow}}

	src5 := f.addGrade(t, f.SourceYear.AcademicYearsID, 5, "A")
	src12 := f.addGrade(t, f.SourceYear.AcademicYearsID, 12, "A")
	f.enroll(t, f.addStudent(t, "Ali Demir", "male").StudentsID, src5.GradesID, f.SourceYear.AcademicYearsID, "1")
	f.enroll(t, f.addStudent(t, "Zeynep Kaya", "female").StudentsID, src12.GradesID, f.SourceYear.AcademicYearsID, "2")

	all, err := svc.GetStudentsForPreview(f.DB, f.SourceYear.AcademicYearsID, f.Institution.InstitutionsID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	only12, err := svc.GetStudentsForPreview(f.DB, f.SourceYear.AcademicYearsID, f.Institution.InstitutionsID, &src12.GradesID)
	require.NoError(t, err)
	require.Len(t, only12, 1)
	assert.Equal(t, "Zeynep Kaya", only12[0].StudentName)
	assert.True(t, only12[0].IsGraduating)
	assert.Equal(t, "12-A", only12[0].GradeName)
}
