// file: internals/features/school/transitions/service/testutil_test.go
package service

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	yearModel "mektebim_backend/internals/features/school/academics/academic_years/model"
	gradeModel "mektebim_backend/internals/features/school/academics/grades/model"
	loadModel "mektebim_backend/internals/features/school/academics/teaching_loads/model"
	enrollModel "mektebim_backend/internals/features/school/enrollments/model"
	instModel "mektebim_backend/internals/features/school/institutions/model"
	teacherModel "mektebim_backend/internals/features/school/teachers/model"
	trModel "mektebim_backend/internals/features/school/transitions/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // :memory: is per-connection

	require.NoError(t, db.AutoMigrate(
		&instModel.InstitutionModel{},
		&yearModel.AcademicYearModel{},
		&gradeModel.GradeModel{},
		&gradeModel.SubjectModel{},
		&gradeModel.GradeSubjectModel{},
		&teacherModel.SchoolTeacherModel{},
		&enrollModel.StudentModel{},
		&enrollModel.StudentEnrollmentModel{},
		&loadModel.TeachingLoadModel{},
		&trModel.AcademicYearTransitionModel{},
		&trModel.AcademicYearTransitionDetailModel{},
	))
	return db
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)

/* ============================
   Fixture builder
============================ */

type fixture struct {
	DB          *gorm.DB
	Institution *instModel.InstitutionModel
	SourceYear  *yearModel.AcademicYearModel
	TargetYear  *yearModel.AcademicYearModel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	inst := &instModel.InstitutionModel{InstitutionsName: "Test School"}
	require.NoError(t, db.Create(inst).Error)

	source := &yearModel.AcademicYearModel{
		AcademicYearsName:      "2025-2026",
		AcademicYearsStartDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		AcademicYearsEndDate:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		AcademicYearsIsActive:  true,
	}
	target := &yearModel.AcademicYearModel{
		AcademicYearsName:      "2026-2027",
		AcademicYearsStartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		AcademicYearsEndDate:   time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(source).Error)
	require.NoError(t, db.Create(target).Error)

	return &fixture{DB: db, Institution: inst, SourceYear: source, TargetYear: target}
}

func (f *fixture) addGrade(t *testing.T, yearID uuid.UUID, level int, name string) *gradeModel.GradeModel {
	t.Helper()
	g := &gradeModel.GradeModel{
		GradesInstitutionID:  f.Institution.InstitutionsID,
		GradesAcademicYearID: yearID,
		GradesClassLevel:     level,
		GradesName:           name,
	}
	require.NoError(t, f.DB.Create(g).Error)
	return g
}

func (f *fixture) addStudent(t *testing.T, name, gender string) *enrollModel.StudentModel {
	t.Helper()
	s := &enrollModel.StudentModel{StudentsFullName: name}
	if gender != "" {
		s.StudentsGender = &gender
	}
	require.NoError(t, f.DB.Create(s).Error)
	return s
}

func (f *fixture) enroll(t *testing.T, studentID, gradeID, yearID uuid.UUID, number string) *enrollModel.StudentEnrollmentModel {
	t.Helper()
	e := &enrollModel.StudentEnrollmentModel{
		StudentEnrollmentsStudentID:      studentID,
		StudentEnrollmentsGradeID:        gradeID,
		StudentEnrollmentsAcademicYearID: yearID,
		StudentEnrollmentsStatus:         enrollModel.EnrollmentActive,
		StudentEnrollmentsStudentNumber:  number,
		StudentEnrollmentsEnrollmentDate: testNow.AddDate(-1, 0, 0),
	}
	require.NoError(t, f.DB.Create(e).Error)
	return e
}

func (f *fixture) addTeacher(t *testing.T, name, role string, active bool) *teacherModel.SchoolTeacherModel {
	t.Helper()
	m := &teacherModel.SchoolTeacherModel{
		SchoolTeachersInstitutionID: f.Institution.InstitutionsID,
		SchoolTeachersFullName:      name,
		SchoolTeachersRole:          role,
		SchoolTeachersIsActive:      active,
	}
	require.NoError(t, f.DB.Create(m).Error)
	if !active {
		// the column's default:true tag makes GORM drop a zero-valued
		// field on insert, so force the flag explicitly
		require.NoError(t, f.DB.Model(m).Update("school_teachers_is_active", false).Error)
	}
	return m
}

func (f *fixture) addSubject(t *testing.T, name string) *gradeModel.SubjectModel {
	t.Helper()
	s := &gradeModel.SubjectModel{
		SubjectsInstitutionID: f.Institution.InstitutionsID,
		SubjectsName:          name,
	}
	require.NoError(t, f.DB.Create(s).Error)
	return s
}

func (f *fixture) addGradeSubject(t *testing.T, gradeID, subjectID uuid.UUID, teacherID *uuid.UUID, hours int) *gradeModel.GradeSubjectModel {
	t.Helper()
	gs := &gradeModel.GradeSubjectModel{
		GradeSubjectsGradeID:     gradeID,
		GradeSubjectsSubjectID:   subjectID,
		GradeSubjectsTeacherID:   teacherID,
		GradeSubjectsWeeklyHours: hours,
	}
	require.NoError(t, f.DB.Create(gs).Error)
	return gs
}

func (f *fixture) addLoad(t *testing.T, yearID, teacherID, subjectID uuid.UUID, gradeID *uuid.UUID, weekly int) *loadModel.TeachingLoadModel {
	t.Helper()
	l := &loadModel.TeachingLoadModel{
		TeachingLoadsInstitutionID:  f.Institution.InstitutionsID,
		TeachingLoadsAcademicYearID: yearID,
		TeachingLoadsTeacherID:      teacherID,
		TeachingLoadsSubjectID:      subjectID,
		TeachingLoadsGradeID:        gradeID,
		TeachingLoadsWeeklyHours:    weekly,
		TeachingLoadsScheduleStatus: loadModel.LoadSchedulePending,
		TeachingLoadsIsActive:       true,
	}
	require.NoError(t, f.DB.Create(l).Error)
	return l
}

func (f *fixture) newTransition(t *testing.T) *trModel.AcademicYearTransitionModel {
	t.Helper()
	tr := &trModel.AcademicYearTransitionModel{
		AcademicYearTransitionsSourceAcademicYearID: f.SourceYear.AcademicYearsID,
		AcademicYearTransitionsTargetAcademicYearID: f.TargetYear.AcademicYearsID,
		AcademicYearTransitionsInstitutionID:        f.Institution.InstitutionsID,
		AcademicYearTransitionsInitiatedBy:          uuid.New(),
		AcademicYearTransitionsStatus:               trModel.TransitionPending,
	}
	require.NoError(t, f.DB.Create(tr).Error)
	return tr
}
