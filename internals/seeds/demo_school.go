// file: internals/seeds/demo_school.go
package seeds

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"mektebim_backend/internals/constants"
	yearModel "mektebim_backend/internals/features/school/academics/academic_years/model"
	gradeModel "mektebim_backend/internals/features/school/academics/grades/model"
	enrollModel "mektebim_backend/internals/features/school/enrollments/model"
	instModel "mektebim_backend/internals/features/school/institutions/model"
	teacherModel "mektebim_backend/internals/features/school/teachers/model"
)

// SeedDemoSchool loads one institution with two academic years, grades
// 1-A through 5-A in the current year and a handful of students, enough
// to exercise a transition end to end. Idempotent: bails out when the
// institution already exists.
func SeedDemoSchool(db *gorm.DB) error {
	var cnt int64
	if err := db.Model(&instModel.InstitutionModel{}).
		Where("institutions_name = ?", "Mektebim Demo School").
		Count(&cnt).Error; err != nil {
		return err
	}
	if cnt > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		inst := &instModel.InstitutionModel{InstitutionsName: "Mektebim Demo School"}
		if err := tx.Create(inst).Error; err != nil {
			return err
		}

		current := &yearModel.AcademicYearModel{
			AcademicYearsName:      "2025-2026",
			AcademicYearsStartDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			AcademicYearsEndDate:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
			AcademicYearsIsActive:  true,
		}
		next := &yearModel.AcademicYearModel{
			AcademicYearsName:      "2026-2027",
			AcademicYearsStartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			AcademicYearsEndDate:   time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
		}
		if err := tx.Create(current).Error; err != nil {
			return err
		}
		if err := tx.Create(next).Error; err != nil {
			return err
		}

		homeroom := &teacherModel.SchoolTeacherModel{
			SchoolTeachersInstitutionID: inst.InstitutionsID,
			SchoolTeachersFullName:      "Aylin Yilmaz",
			SchoolTeachersRole:          constants.RoleTeacher,
			SchoolTeachersIsActive:      true,
		}
		if err := tx.Create(homeroom).Error; err != nil {
			return err
		}

		genders := []string{"male", "female"}
		for level := 1; level <= 5; level++ {
			grade := &gradeModel.GradeModel{
				GradesInstitutionID:  inst.InstitutionsID,
				GradesAcademicYearID: current.AcademicYearsID,
				GradesClassLevel:     level,
				GradesName:           "A",
			}
			if level == 1 {
				grade.GradesHomeroomTeacherID = &homeroom.SchoolTeachersID
			}
			if err := tx.Create(grade).Error; err != nil {
				return err
			}

			for i := 0; i < 4; i++ {
				gender := genders[i%2]
				student := &enrollModel.StudentModel{
					StudentsFullName: fmt.Sprintf("Demo Student %d-%d", level, i+1),
					StudentsGender:   &gender,
				}
				if err := tx.Create(student).Error; err != nil {
					return err
				}
				enrollment := &enrollModel.StudentEnrollmentModel{
					StudentEnrollmentsStudentID:      student.StudentsID,
					StudentEnrollmentsGradeID:        grade.GradesID,
					StudentEnrollmentsAcademicYearID: current.AcademicYearsID,
					StudentEnrollmentsStatus:         enrollModel.EnrollmentActive,
					StudentEnrollmentsStudentNumber:  fmt.Sprintf("%d%02d", level, i+1),
					StudentEnrollmentsEnrollmentDate: current.AcademicYearsStartDate,
				}
				if err := tx.Create(enrollment).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
