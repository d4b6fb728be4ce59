// file: internals/features/school/transitions/service/teacher_assignment_service.go
package service

import (
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	gradeModel "mektebim_backend/internals/features/school/academics/grades/model"
	loadModel "mektebim_backend/internals/features/school/academics/teaching_loads/model"
	teacherModel "mektebim_backend/internals/features/school/teachers/model"
	trModel "mektebim_backend/internals/features/school/transitions/model"
)

type AssignmentResult struct {
	Copied  int `json:"copied"`
	Skipped int `json:"skipped"`
}

type TeacherAssignmentPreview struct {
	HomeroomAssignments int `json:"homeroom_assignments"`
	SubjectAssignments  int `json:"subject_assignments"`
	ActiveLoads         int `json:"active_loads"`
}

// TeacherAssignmentTransitionService carries homeroom assignments,
// subject-teacher assignments and teaching loads across the year
// boundary. Every carried teacher is re-validated against the target
// institution; an ineligible teacher skips the row, never fails the run.
type TeacherAssignmentTransitionService struct {
	DB    *gorm.DB
	Clock Clock
}

func NewTeacherAssignmentTransitionService(db *gorm.DB) *TeacherAssignmentTransitionService {
	return &TeacherAssignmentTransitionService{DB: db, Clock: realClock{}}
}

// sortedMappingPairs iterates the grade mapping in a stable order so two
// runs over the same data produce identical audit trails.
func sortedMappingPairs(mapping GradeMapping) [][2]uuid.UUID {
	pairs := make([][2]uuid.UUID, 0, len(mapping))
	for src, tgt := range mapping {
		pairs = append(pairs, [2]uuid.UUID{src, tgt})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i][0].String() < pairs[j][0].String()
	})
	return pairs
}

func (s *TeacherAssignmentTransitionService) teacherEligible(tx *gorm.DB, teacherID, institutionID uuid.UUID) (bool, error) {
	var teacher teacherModel.SchoolTeacherModel
	err := tx.Where("school_teachers_id = ?", teacherID).First(&teacher).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, fiber.NewError(fiber.StatusInternalServerError, "Failed to load teacher")
	}
	return teacher.CanTeachAt(institutionID), nil
}

/* ============================
   Homeroom assignments
============================ */

func (s *TeacherAssignmentTransitionService) CopyHomeroomAssignments(
	tx *gorm.DB,
	institutionID uuid.UUID,
	mapping GradeMapping,
	transition *trModel.AcademicYearTransitionModel,
) (*AssignmentResult, error) {
	result := &AssignmentResult{}
	transitionID := transition.AcademicYearTransitionsID

	for _, pair := range sortedMappingPairs(mapping) {
		sourceGradeID, targetGradeID := pair[0], pair[1]

		var source gradeModel.GradeModel
		if err := tx.Where("grades_id = ?", sourceGradeID).First(&source).Error; err != nil {
			continue
		}

		if source.GradesHomeroomTeacherID == nil {
			result.Skipped++
			reason := "Source grade has no homeroom teacher"
			if _, err := trModel.LogDetail(tx, transitionID, trModel.EntityHomeroomTeacher, trModel.ActionSkipped,
				sourceGradeID, nil, &reason, map[string]any{"grade": source.Label()}); err != nil {
				return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to write transition detail")
			}
			continue
		}
		teacherID := *source.GradesHomeroomTeacherID

		ok, err := s.teacherEligible(tx, teacherID, institutionID)
		if err != nil {
			return nil, err
		}
		if !ok {
			result.Skipped++
			reason := "Teacher is no longer eligible"
			if _, err := trModel.LogDetail(tx, transitionID, trModel.EntityHomeroomTeacher, trModel.ActionSkipped,
				sourceGradeID, nil, &reason, map[string]any{
					"grade":      source.Label(),
					"teacher_id": teacherID,
				}); err != nil {
				return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to write transition detail")
			}
			continue
		}

		var target gradeModel.GradeModel
		if err := tx.Where("grades_id = ?", targetGradeID).First(&target).Error; err != nil {
			continue
		}

		// A teacher may be homeroom of at most one grade per year.
		var cnt int64
		if err := tx.Model(&gradeModel.GradeModel{}).
			Where("grades_academic_year_id = ?", target.GradesAcademicYearID).
			Where("grades_homeroom_teacher_id = ?", teacherID).
			Where("grades_id <> ?", targetGradeID).
			Count(&cnt).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to check homeroom uniqueness")
		}
		if cnt > 0 {
			result.Skipped++
			reason := "Teacher is already homeroom of another grade in the target year"
			if _, err := trModel.LogDetail(tx, transitionID, trModel.EntityHomeroomTeacher, trModel.ActionSkipped,
				sourceGradeID, &targetGradeID, &reason, map[string]any{
					"grade":      target.Label(),
					"teacher_id": teacherID,
				}); err != nil {
				return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to write transition detail")
			}
			continue
		}

		now := s.Clock.Now()
		if err := tx.Model(&target).Updates(map[string]any{
			"grades_homeroom_teacher_id":  teacherID,
			"grades_homeroom_assigned_at": now,
		}).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to assign homeroom teacher")
		}

		if _, err := trModel.LogDetail(tx, transitionID, trModel.EntityHomeroomTeacher, trModel.ActionCopied,
			sourceGradeID, &targetGradeID, nil, map[string]any{
				"teacher_id": teacherID,
				"from_grade": source.Label(),
				"to_grade":   target.Label(),
			}); err != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to write transition detail")
		}
		result.Copied++
	}
	return result, nil
}

/* ============================
   Subject-teacher assignments
============================ */

// CopySubjectTeacherAssignments fills the teacher column on target-year
// grade_subjects rows from their source counterparts, matched by subject
// within the mapped grade. Rows already carrying a teacher are left
// untouched.
func (s *TeacherAssignmentTransitionService) CopySubjectTeacherAssignments(
	tx *gorm.DB,
	institutionID uuid.UUID,
	mapping GradeMapping,
	transition *trModel.AcademicYearTransitionModel,
) (*AssignmentResult, error) {
	result := &AssignmentResult{}
	transitionID := transition.AcademicYearTransitionsID

	for _, pair := range sortedMappingPairs(mapping) {
		sourceGradeID, targetGradeID := pair[0], pair[1]

		var sourceRows []gradeModel.GradeSubjectModel
		if err := tx.
			Where("grade_subjects_grade_id = ?", sourceGradeID).
			Where("grade_subjects_teacher_id IS NOT NULL").
			Find(&sourceRows).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load source grade subjects")
		}
		sort.Slice(sourceRows, func(i, j int) bool {
			return sourceRows[i].GradeSubjectsSubjectID.String() < sourceRows[j].GradeSubjectsSubjectID.String()
		})

		for i := range sourceRows {
			src := &sourceRows[i]
			teacherID := *src.GradeSubjectsTeacherID

			var target gradeModel.GradeSubjectModel
			err := tx.
				Where("grade_subjects_grade_id = ?", targetGradeID).
				Where("grade_subjects_subject_id = ?", src.GradeSubjectsSubjectID).
				First(&target).Error
			if err != nil {
				result.Skipped++
				reason := "Subject not present in target grade"
				if _, lerr := trModel.LogDetail(tx, transitionID, trModel.EntityGradeSubject, trModel.ActionSkipped,
					src.GradeSubjectsID, nil, &reason, map[string]any{
						"subject_id": src.GradeSubjectsSubjectID,
					}); lerr != nil {
					return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to write transition detail")
				}
				continue
			}

			if target.GradeSubjectsTeacherID != nil {
				result.Skipped++
				reason := "Target subject already has a teacher"
				if _, lerr := trModel.LogDetail(tx, transitionID, trModel.EntityGradeSubject, trModel.ActionSkipped,
					src.GradeSubjectsID, &target.GradeSubjectsID, &reason, nil); lerr != nil {
					return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to write transition detail")
				}
				continue
			}

			ok, err := s.teacherEligible(tx, teacherID, institutionID)
			if err != nil {
				return nil, err
			}
			if !ok {
				result.Skipped++
				reason := "Teacher is no longer eligible"
				if _, lerr := trModel.LogDetail(tx, transitionID, trModel.EntityGradeSubject, trModel.ActionSkipped,
					src.GradeSubjectsID, &target.GradeSubjectsID, &reason, map[string]any{
						"teacher_id": teacherID,
					}); lerr != nil {
					return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to write transition detail")
				}
				continue
			}

			if err := tx.Model(&target).
				Update("grade_subjects_teacher_id", teacherID).Error; err != nil {
				return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to assign subject teacher")
			}

			if _, err := trModel.LogDetail(tx, transitionID, trModel.EntityGradeSubject, trModel.ActionCopied,
				src.GradeSubjectsID, &target.GradeSubjectsID, nil, map[string]any{
					"teacher_id": teacherID,
					"subject_id": src.GradeSubjectsSubjectID,
				}); err != nil {
				return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to write transition detail")
			}
			result.Copied++
		}
	}
	return result, nil
}

/* ============================
   Teaching loads
============================ */

// CopyTeachingLoads replicates active source-year loads into the target
// year. Copies restart at schedule status "pending": timetable slots do
// not survive the year boundary. The audit trail rows double as the undo
// index for rollback.
func (s *TeacherAssignmentTransitionService) CopyTeachingLoads(
	tx *gorm.DB,
	sourceYearID, targetYearID, institutionID uuid.UUID,
	mapping GradeMapping,
	transition *trModel.AcademicYearTransitionModel,
) (*AssignmentResult, error) {
	result := &AssignmentResult{}
	transitionID := transition.AcademicYearTransitionsID

	var loads []loadModel.TeachingLoadModel
	if err := tx.
		Where("teaching_loads_academic_year_id = ? AND teaching_loads_institution_id = ?", sourceYearID, institutionID).
		Where("teaching_loads_is_active = ?", true).
		Order("teaching_loads_created_at ASC").
		Find(&loads).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load source teaching loads")
	}

	for i := range loads {
		src := &loads[i]

		ok, err := s.teacherEligible(tx, src.TeachingLoadsTeacherID, institutionID)
		if err != nil {
			return nil, err
		}
		if !ok {
			result.Skipped++
			reason := "Teacher is no longer eligible"
			if _, lerr := trModel.LogDetail(tx, transitionID, trModel.EntityTeachingLoad, trModel.ActionSkipped,
				src.TeachingLoadsID, nil, &reason, map[string]any{
					"teacher_id": src.TeachingLoadsTeacherID,
				}); lerr != nil {
				return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to write transition detail")
			}
			continue
		}

		// Grade-pinned loads follow the mapping; loads pinned to an
		// unmapped grade lose the pin rather than the whole load.
		var targetGradeID *uuid.UUID
		if src.TeachingLoadsGradeID != nil {
			if mapped, ok := mapping[*src.TeachingLoadsGradeID]; ok {
				id := mapped
				targetGradeID = &id
			}
		}

		dupQ := tx.Model(&loadModel.TeachingLoadModel{}).
			Where("teaching_loads_academic_year_id = ?", targetYearID).
			Where("teaching_loads_teacher_id = ?", src.TeachingLoadsTeacherID).
			Where("teaching_loads_subject_id = ?", src.TeachingLoadsSubjectID)
		if targetGradeID != nil {
			dupQ = dupQ.Where("teaching_loads_grade_id = ?", *targetGradeID)
		} else {
			dupQ = dupQ.Where("teaching_loads_grade_id IS NULL")
		}
		var cnt int64
		if err := dupQ.Count(&cnt).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to check for duplicate load")
		}
		if cnt > 0 {
			result.Skipped++
			reason := "Equivalent load already exists in target year"
			if _, lerr := trModel.LogDetail(tx, transitionID, trModel.EntityTeachingLoad, trModel.ActionSkipped,
				src.TeachingLoadsID, nil, &reason, nil); lerr != nil {
				return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to write transition detail")
			}
			continue
		}

		notes := "Not yet scheduled"
		target := &loadModel.TeachingLoadModel{
			TeachingLoadsInstitutionID:  institutionID,
			TeachingLoadsAcademicYearID: targetYearID,
			TeachingLoadsTeacherID:      src.TeachingLoadsTeacherID,
			TeachingLoadsSubjectID:      src.TeachingLoadsSubjectID,
			TeachingLoadsGradeID:        targetGradeID,
			TeachingLoadsWeeklyHours:    src.TeachingLoadsWeeklyHours,
			TeachingLoadsTotalHours:     src.TeachingLoadsTotalHours,
			TeachingLoadsConstraints:    src.TeachingLoadsConstraints,
			TeachingLoadsScheduleStatus: loadModel.LoadSchedulePending,
			TeachingLoadsScheduleNotes:  &notes,
			TeachingLoadsIsActive:       true,
		}
		if err := tx.Create(target).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to copy teaching load")
		}

		targetID := target.TeachingLoadsID
		if _, err := trModel.LogDetail(tx, transitionID, trModel.EntityTeachingLoad, trModel.ActionCopied,
			src.TeachingLoadsID, &targetID, nil, map[string]any{
				"teacher_id": src.TeachingLoadsTeacherID,
				"subject_id": src.TeachingLoadsSubjectID,
			}); err != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to write transition detail")
		}
		result.Copied++
	}
	return result, nil
}

/* ============================
   Preview
============================ */

func (s *TeacherAssignmentTransitionService) GetTeacherAssignmentPreview(
	db *gorm.DB,
	sourceYearID, institutionID uuid.UUID,
) (*TeacherAssignmentPreview, error) {
	preview := &TeacherAssignmentPreview{}

	var homerooms int64
	if err := db.Model(&gradeModel.GradeModel{}).
		Where("grades_academic_year_id = ? AND grades_institution_id = ?", sourceYearID, institutionID).
		Where("grades_homeroom_teacher_id IS NOT NULL").
		Count(&homerooms).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to count homeroom assignments")
	}
	preview.HomeroomAssignments = int(homerooms)

	var subjects int64
	if err := db.Model(&gradeModel.GradeSubjectModel{}).
		Joins("JOIN grades ON grades_id = grade_subjects_grade_id AND grades_deleted_at IS NULL").
		Where("grades_academic_year_id = ? AND grades_institution_id = ?", sourceYearID, institutionID).
		Where("grade_subjects_teacher_id IS NOT NULL").
		Count(&subjects).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to count subject assignments")
	}
	preview.SubjectAssignments = int(subjects)

	var loads int64
	if err := db.Model(&loadModel.TeachingLoadModel{}).
		Where("teaching_loads_academic_year_id = ? AND teaching_loads_institution_id = ?", sourceYearID, institutionID).
		Where("teaching_loads_is_active = ?", true).
		Count(&loads).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to count teaching loads")
	}
	preview.ActiveLoads = int(loads)

	return preview, nil
}
