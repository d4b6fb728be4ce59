// file: internals/seeds/runner.go
package seeds

import (
	"log"

	"gorm.io/gorm"

	yearModel "mektebim_backend/internals/features/school/academics/academic_years/model"
	gradeModel "mektebim_backend/internals/features/school/academics/grades/model"
	loadModel "mektebim_backend/internals/features/school/academics/teaching_loads/model"
	enrollModel "mektebim_backend/internals/features/school/enrollments/model"
	instModel "mektebim_backend/internals/features/school/institutions/model"
	teacherModel "mektebim_backend/internals/features/school/teachers/model"
	trModel "mektebim_backend/internals/features/school/transitions/model"
)

// RunAllSeeds migrates the schema and loads the demo fixtures. Intended
// for local development only (guarded by RUN_SEEDS in main).
func RunAllSeeds(db *gorm.DB) {
	if err := db.AutoMigrate(
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
	); err != nil {
		log.Fatalf("[ERROR] automigrate failed: %v", err)
	}

	if err := SeedDemoSchool(db); err != nil {
		log.Fatalf("[ERROR] seed failed: %v", err)
	}
	log.Println("[INFO] seeds done.")
}
