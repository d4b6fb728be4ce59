// file: internals/features/school/transitions/service/academic_year_transition_service.go
package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	yearModel "mektebim_backend/internals/features/school/academics/academic_years/model"
	gradeModel "mektebim_backend/internals/features/school/academics/grades/model"
	loadModel "mektebim_backend/internals/features/school/academics/teaching_loads/model"
	enrollModel "mektebim_backend/internals/features/school/enrollments/model"
	instModel "mektebim_backend/internals/features/school/institutions/model"
	trModel "mektebim_backend/internals/features/school/transitions/model"
)

/* ============================
   Orchestrator
============================ */

// AcademicYearTransitionService drives the whole year-rollover pipeline:
// copy grades, promote students, carry teacher assignments — all inside
// one transaction, with progress and per-entity audit rows persisted
// along the way.
type AcademicYearTransitionService struct {
	DB       *gorm.DB
	Clock    Clock
	Grades   GradePlanner
	Students *StudentPromotionService
	Teachers *TeacherAssignmentTransitionService
}

func NewAcademicYearTransitionService(db *gorm.DB) *AcademicYearTransitionService {
	return NewAcademicYearTransitionServiceWithClock(db, realClock{})
}

// NewAcademicYearTransitionServiceWithClock wires the sub-services onto a
// shared clock so every stamped timestamp in one run agrees.
func NewAcademicYearTransitionServiceWithClock(db *gorm.DB, clock Clock) *AcademicYearTransitionService {
	return &AcademicYearTransitionService{
		DB:       db,
		Clock:    clock,
		Grades:   &GradeTransitionService{DB: db, Clock: clock},
		Students: &StudentPromotionService{DB: db, Clock: clock},
		Teachers: &TeacherAssignmentTransitionService{DB: db, Clock: clock},
	}
}

/* ============================
   Initiate + execute
============================ */

// InitiateTransition validates the request, creates the pending
// transition record, then executes the pipeline synchronously. The
// returned model reflects the final state (completed or failed).
func (s *AcademicYearTransitionService) InitiateTransition(
	ctx context.Context,
	sourceYearID, targetYearID, institutionID, initiatedBy uuid.UUID,
	opts TransitionOptions,
) (*trModel.AcademicYearTransitionModel, error) {
	db := s.DB.WithContext(ctx)

	if sourceYearID == targetYearID {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Source and target academic years must differ")
	}

	var sourceYear yearModel.AcademicYearModel
	if err := db.Where("academic_years_id = ?", sourceYearID).First(&sourceYear).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Source academic year not found")
	}
	var targetYear yearModel.AcademicYearModel
	if err := db.Where("academic_years_id = ?", targetYearID).First(&targetYear).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Target academic year not found")
	}
	var institution instModel.InstitutionModel
	if err := db.Where("institutions_id = ?", institutionID).First(&institution).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Institution not found")
	}

	// One live transition per (institution, target year).
	var cnt int64
	if err := db.Model(&trModel.AcademicYearTransitionModel{}).
		Where("academic_year_transitions_institution_id = ?", institutionID).
		Where("academic_year_transitions_target_academic_year_id = ?", targetYearID).
		Where("academic_year_transitions_status IN ?", trModel.NonTerminalStatuses).
		Count(&cnt).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to check existing transitions")
	}
	if cnt > 0 {
		return nil, fiber.NewError(fiber.StatusConflict, "A transition to this academic year is already in progress")
	}

	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to encode transition options")
	}

	transition := &trModel.AcademicYearTransitionModel{
		AcademicYearTransitionsSourceAcademicYearID: sourceYearID,
		AcademicYearTransitionsTargetAcademicYearID: targetYearID,
		AcademicYearTransitionsInstitutionID:        institutionID,
		AcademicYearTransitionsInitiatedBy:          initiatedBy,
		AcademicYearTransitionsStatus:               trModel.TransitionPending,
		AcademicYearTransitionsOptions:              datatypes.JSON(optsJSON),
	}
	if err := db.Create(transition).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to create transition record")
	}

	if err := s.executeTransition(db, transition, opts); err != nil {
		_ = transition.MarkAsFailed(db, err.Error(), s.Clock.Now())
		return transition, err
	}
	return transition, nil
}

// executeTransition runs the three phases inside one transaction. The
// status record itself is stamped outside the transaction so a failed
// run still shows in_progress → failed history.
func (s *AcademicYearTransitionService) executeTransition(
	db *gorm.DB,
	transition *trModel.AcademicYearTransitionModel,
	opts TransitionOptions,
) error {
	if err := transition.MarkAsStarted(db, s.Clock.Now()); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to start transition")
	}

	sourceYearID := transition.AcademicYearTransitionsSourceAcademicYearID
	targetYearID := transition.AcademicYearTransitionsTargetAcademicYearID
	institutionID := transition.AcademicYearTransitionsInstitutionID

	var mapping GradeMapping

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := transition.UpdateProgress(tx, 5, "Copying grades"); err != nil {
			return err
		}

		gradeResult, err := s.Grades.CopyGradesToNewYear(tx, sourceYearID, targetYearID, institutionID, transition, GradeCopyOptions{
			CopySubjects: opts.CopySubjects,
			CopyTeachers: opts.CopyTeachers,
		})
		if err != nil {
			return err
		}
		transition.AcademicYearTransitionsGradesCreated = gradeResult.Created
		transition.AcademicYearTransitionsGradesSkipped = gradeResult.Skipped
		if err := tx.Model(transition).Updates(map[string]any{
			"academic_year_transitions_grades_created": gradeResult.Created,
			"academic_year_transitions_grades_skipped": gradeResult.Skipped,
		}).Error; err != nil {
			return err
		}
		if err := transition.UpdateProgress(tx, 20, "Resolving grade mapping"); err != nil {
			return err
		}

		mapping, err = s.Grades.GetGradeMapping(tx, sourceYearID, targetYearID, institutionID)
		if err != nil {
			return err
		}
		if err := transition.UpdateProgress(tx, 25, "Promoting students"); err != nil {
			return err
		}

		if opts.PromoteStudents {
			promo, err := s.Students.BulkPromoteStudents(tx, sourceYearID, targetYearID, institutionID, mapping, transition, PromotionOptions{
				ExcludeStudentIDs: opts.ExcludeStudentIDs,
				RetainStudentIDs:  opts.RetainStudentIDs,
			})
			if err != nil {
				return err
			}
			transition.AcademicYearTransitionsStudentsPromoted = promo.Promoted
			transition.AcademicYearTransitionsStudentsGraduated = promo.Graduated
			transition.AcademicYearTransitionsStudentsRetained = promo.Retained
			transition.AcademicYearTransitionsStudentsSkipped = promo.Skipped
			if err := tx.Model(transition).Updates(map[string]any{
				"academic_year_transitions_students_promoted":  promo.Promoted,
				"academic_year_transitions_students_graduated": promo.Graduated,
				"academic_year_transitions_students_retained":  promo.Retained,
				"academic_year_transitions_students_skipped":   promo.Skipped,
			}).Error; err != nil {
				return err
			}
		}
		if err := transition.UpdateProgress(tx, 50, "Carrying teacher assignments"); err != nil {
			return err
		}

		assignmentsCopied := 0

		if opts.CopyHomeroomTeachers {
			if err := transition.UpdateProgress(tx, 55, "Copying homeroom assignments"); err != nil {
				return err
			}
			res, err := s.Teachers.CopyHomeroomAssignments(tx, institutionID, mapping, transition)
			if err != nil {
				return err
			}
			assignmentsCopied += res.Copied
		}

		if opts.CopySubjectTeachers {
			if err := transition.UpdateProgress(tx, 65, "Copying subject teacher assignments"); err != nil {
				return err
			}
			res, err := s.Teachers.CopySubjectTeacherAssignments(tx, institutionID, mapping, transition)
			if err != nil {
				return err
			}
			assignmentsCopied += res.Copied
		}

		if err := transition.UpdateProgress(tx, 75, "Copying teaching loads"); err != nil {
			return err
		}
		if opts.CopyTeachingLoads {
			res, err := s.Teachers.CopyTeachingLoads(tx, sourceYearID, targetYearID, institutionID, mapping, transition)
			if err != nil {
				return err
			}
			assignmentsCopied += res.Copied
		}

		transition.AcademicYearTransitionsTeacherAssignmentsCopied = assignmentsCopied
		if err := tx.Model(transition).Updates(map[string]any{
			"academic_year_transitions_teacher_assignments_copied": assignmentsCopied,
		}).Error; err != nil {
			return err
		}
		if err := transition.UpdateProgress(tx, 90, "Persisting rollback snapshot"); err != nil {
			return err
		}

		rollbackJSON, err := json.Marshal(RollbackData{GradeMapping: mapping, Options: opts})
		if err != nil {
			return err
		}
		transition.AcademicYearTransitionsRollbackData = datatypes.JSON(rollbackJSON)
		if err := tx.Model(transition).Updates(map[string]any{
			"academic_year_transitions_rollback_data": datatypes.JSON(rollbackJSON),
		}).Error; err != nil {
			return err
		}

		return transition.UpdateProgress(tx, 95, "Finalizing")
	})
	if err != nil {
		return err
	}

	if err := transition.MarkAsCompleted(db, s.Clock.Now()); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to finalize transition")
	}

	log.Printf("[INFO] academic year transition completed | transition=%s institution=%s summary=%v",
		transition.AcademicYearTransitionsID, institutionID, transition.Summary())
	return nil
}

/* ============================
   Rollback
============================ */

// RollbackTransition undoes a completed transition inside the rollback
// window: created grades (plus their subjects) are removed, enrollment
// statuses are restored from the audit trail, copied loads are deleted.
// Deletions run child-first; no database-level cascade is relied on.
func (s *AcademicYearTransitionService) RollbackTransition(
	ctx context.Context,
	transition *trModel.AcademicYearTransitionModel,
) error {
	db := s.DB.WithContext(ctx)

	if !transition.CanBeRolledBack(s.Clock.Now()) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Transition can no longer be rolled back")
	}

	var snapshot RollbackData
	if len(transition.AcademicYearTransitionsRollbackData) > 0 {
		if err := json.Unmarshal(transition.AcademicYearTransitionsRollbackData, &snapshot); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rollback snapshot is corrupt")
		}
	}

	transitionID := transition.AcademicYearTransitionsID

	err := db.Transaction(func(tx *gorm.DB) error {
		// 1. Copied teaching loads, located through the audit trail.
		var loadDetails []trModel.AcademicYearTransitionDetailModel
		if err := tx.
			Where("academic_year_transition_details_transition_id = ?", transitionID).
			Where("academic_year_transition_details_entity_type = ?", trModel.EntityTeachingLoad).
			Where("academic_year_transition_details_action = ?", trModel.ActionCopied).
			Find(&loadDetails).Error; err != nil {
			return err
		}
		for i := range loadDetails {
			if id := loadDetails[i].AcademicYearTransitionDetailsTargetEntityID; id != nil {
				if err := tx.Unscoped().
					Where("teaching_loads_id = ?", *id).
					Delete(&loadModel.TeachingLoadModel{}).Error; err != nil {
					return err
				}
			}
		}

		// 2. Enrollments: restore the source row, remove the successor.
		var enrollDetails []trModel.AcademicYearTransitionDetailModel
		if err := tx.
			Where("academic_year_transition_details_transition_id = ?", transitionID).
			Where("academic_year_transition_details_entity_type = ?", trModel.EntityStudentEnrollment).
			Where("academic_year_transition_details_action IN ?", []trModel.TransitionAction{
				trModel.ActionPromoted, trModel.ActionGraduated, trModel.ActionRetained,
			}).
			Find(&enrollDetails).Error; err != nil {
			return err
		}
		for i := range enrollDetails {
			d := &enrollDetails[i]
			if err := tx.Model(&enrollModel.StudentEnrollmentModel{}).
				Where("student_enrollments_id = ?", d.AcademicYearTransitionDetailsSourceEntityID).
				Updates(map[string]any{
					"student_enrollments_status":            enrollModel.EnrollmentActive,
					"student_enrollments_withdrawal_date":   nil,
					"student_enrollments_withdrawal_reason": nil,
				}).Error; err != nil {
				return err
			}
			if id := d.AcademicYearTransitionDetailsTargetEntityID; id != nil {
				if err := tx.Unscoped().
					Where("student_enrollments_id = ?", *id).
					Delete(&enrollModel.StudentEnrollmentModel{}).Error; err != nil {
					return err
				}
			}
		}

		// 3. Created grades: subjects first, then the grade rows.
		targetGradeIDs := make([]uuid.UUID, 0, len(snapshot.GradeMapping))
		for _, id := range snapshot.GradeMapping {
			targetGradeIDs = append(targetGradeIDs, id)
		}
		if len(targetGradeIDs) > 0 {
			if err := tx.Unscoped().
				Where("grade_subjects_grade_id IN ?", targetGradeIDs).
				Delete(&gradeModel.GradeSubjectModel{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().
				Where("grades_id IN ?", targetGradeIDs).
				Delete(&gradeModel.GradeModel{}).Error; err != nil {
				return err
			}
		}

		return transition.MarkAsRolledBack(tx)
	})
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return fe
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Rollback failed")
	}

	log.Printf("[INFO] academic year transition rolled back | transition=%s", transitionID)
	return nil
}

/* ============================
   Status / history / preview
============================ */

type TransitionStatusSnapshot struct {
	Transition      *trModel.AcademicYearTransitionModel `json:"transition"`
	SourceYearName  string                               `json:"source_year_name"`
	TargetYearName  string                               `json:"target_year_name"`
	InstitutionName string                               `json:"institution_name"`
	Summary         map[string]int                       `json:"summary"`
	CanRollback     bool                                 `json:"can_rollback"`
}

func (s *AcademicYearTransitionService) GetTransitionByID(ctx context.Context, id uuid.UUID) (*trModel.AcademicYearTransitionModel, error) {
	var transition trModel.AcademicYearTransitionModel
	err := s.DB.WithContext(ctx).
		Where("academic_year_transitions_id = ?", id).
		First(&transition).Error
	if err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Transition not found")
	}
	return &transition, nil
}

func (s *AcademicYearTransitionService) GetTransitionStatus(ctx context.Context, id uuid.UUID) (*TransitionStatusSnapshot, error) {
	transition, err := s.GetTransitionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	snapshot := &TransitionStatusSnapshot{
		Transition:  transition,
		Summary:     transition.Summary(),
		CanRollback: transition.CanBeRolledBack(s.Clock.Now()),
	}

	var year yearModel.AcademicYearModel
	if err := db.Where("academic_years_id = ?", transition.AcademicYearTransitionsSourceAcademicYearID).
		First(&year).Error; err == nil {
		snapshot.SourceYearName = year.AcademicYearsName
	}
	if err := db.Where("academic_years_id = ?", transition.AcademicYearTransitionsTargetAcademicYearID).
		First(&year).Error; err == nil {
		snapshot.TargetYearName = year.AcademicYearsName
	}
	var institution instModel.InstitutionModel
	if err := db.Where("institutions_id = ?", transition.AcademicYearTransitionsInstitutionID).
		First(&institution).Error; err == nil {
		snapshot.InstitutionName = institution.InstitutionsName
	}

	return snapshot, nil
}

// GetTransitionHistory lists an institution's transitions, newest first.
func (s *AcademicYearTransitionService) GetTransitionHistory(
	ctx context.Context,
	institutionID uuid.UUID,
	limit, offset int,
) ([]trModel.AcademicYearTransitionModel, int64, error) {
	db := s.DB.WithContext(ctx)

	q := db.Model(&trModel.AcademicYearTransitionModel{}).
		Where("academic_year_transitions_institution_id = ?", institutionID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fiber.NewError(fiber.StatusInternalServerError, "Failed to count transitions")
	}

	var rows []trModel.AcademicYearTransitionModel
	if err := q.
		Order("academic_year_transitions_created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, fiber.NewError(fiber.StatusInternalServerError, "Failed to list transitions")
	}
	return rows, total, nil
}

/* ============================
   Preview
============================ */

type TransitionWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type TransitionPreview struct {
	Grades   *GradeTransitionPreview   `json:"grades"`
	Students *PromotionPreview         `json:"students"`
	Teachers *TeacherAssignmentPreview `json:"teachers"`
	Warnings []TransitionWarning       `json:"warnings"`
}

// PreviewTransition is the read-only dry run shown before confirmation.
// Nothing is written; mapping is computed against the current target
// year state.
func (s *AcademicYearTransitionService) PreviewTransition(
	ctx context.Context,
	sourceYearID, targetYearID, institutionID uuid.UUID,
) (*TransitionPreview, error) {
	db := s.DB.WithContext(ctx)

	if sourceYearID == targetYearID {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Source and target academic years must differ")
	}
	var year yearModel.AcademicYearModel
	if err := db.Where("academic_years_id = ?", sourceYearID).First(&year).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Source academic year not found")
	}
	if err := db.Where("academic_years_id = ?", targetYearID).First(&year).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Target academic year not found")
	}
	var institution instModel.InstitutionModel
	if err := db.Where("institutions_id = ?", institutionID).First(&institution).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Institution not found")
	}

	gradePreview, err := s.Grades.PreviewGradeTransition(db, sourceYearID, targetYearID, institutionID)
	if err != nil {
		return nil, err
	}
	mapping, err := s.Grades.GetGradeMapping(db, sourceYearID, targetYearID, institutionID)
	if err != nil {
		return nil, err
	}
	studentPreview, err := s.Students.GetPromotionPreview(db, sourceYearID, targetYearID, institutionID, mapping)
	if err != nil {
		return nil, err
	}
	teacherPreview, err := s.Teachers.GetTeacherAssignmentPreview(db, sourceYearID, institutionID)
	if err != nil {
		return nil, err
	}

	preview := &TransitionPreview{
		Grades:   gradePreview,
		Students: studentPreview,
		Teachers: teacherPreview,
		Warnings: []TransitionWarning{},
	}
	if n := len(gradePreview.AlreadyExist); n > 0 {
		preview.Warnings = append(preview.Warnings, TransitionWarning{
			Code:    "grade_exists",
			Message: "Some continuation grades already exist in the target year and will be reused",
			Count:   n,
		})
	}
	if studentPreview.NoTargetGrade > 0 {
		preview.Warnings = append(preview.Warnings, TransitionWarning{
			Code:    "no_target_grade",
			Message: "Some students have no target grade and will be skipped",
			Count:   studentPreview.NoTargetGrade,
		})
	}
	if studentPreview.ToGraduate > 0 {
		preview.Warnings = append(preview.Warnings, TransitionWarning{
			Code:    "graduating",
			Message: "Final-level students will be graduated, not promoted",
			Count:   studentPreview.ToGraduate,
		})
	}
	return preview, nil
}
