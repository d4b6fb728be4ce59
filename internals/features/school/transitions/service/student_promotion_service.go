// file: internals/features/school/transitions/service/student_promotion_service.go
package service

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	gradeModel "mektebim_backend/internals/features/school/academics/grades/model"
	enrollModel "mektebim_backend/internals/features/school/enrollments/model"
	trModel "mektebim_backend/internals/features/school/transitions/model"
)

type PromotionOptions struct {
	ExcludeStudentIDs []uuid.UUID
	RetainStudentIDs  []uuid.UUID
}

type PromotionResult struct {
	Promoted  int `json:"promoted"`
	Graduated int `json:"graduated"`
	Retained  int `json:"retained"`
	Skipped   int `json:"skipped"`
}

type PromotionPreview struct {
	Total         int         `json:"total"`
	ToPromote     int         `json:"to_promote"`
	ToGraduate    int         `json:"to_graduate"`
	NoTargetGrade int         `json:"no_target_grade"`
	ByClassLevel  map[int]int `json:"by_class_level"`
}

type StudentPreviewRow struct {
	EnrollmentID  uuid.UUID `json:"enrollment_id"`
	StudentID     uuid.UUID `json:"student_id"`
	StudentName   string    `json:"student_name"`
	StudentNumber string    `json:"student_number"`
	GradeID       uuid.UUID `json:"grade_id"`
	GradeName     string    `json:"grade_name"`
	ClassLevel    int       `json:"class_level"`
	IsGraduating  bool      `json:"is_graduating"`
}

// StudentPromotionService classifies every active source enrollment into
// promote / graduate / retain / skip and performs the mutation. Order of
// checks per enrollment: exclude list, graduation (final level), retain
// list, grade mapping.
type StudentPromotionService struct {
	DB    *gorm.DB
	Clock Clock
}

func NewStudentPromotionService(db *gorm.DB) *StudentPromotionService {
	return &StudentPromotionService{DB: db, Clock: realClock{}}
}

/* ============================
   Bulk promotion
============================ */

func (s *StudentPromotionService) BulkPromoteStudents(
	tx *gorm.DB,
	sourceYearID, targetYearID, institutionID uuid.UUID,
	gradeMapping GradeMapping,
	transition *trModel.AcademicYearTransitionModel,
	opts PromotionOptions,
) (*PromotionResult, error) {
	excludeSet := idSet(opts.ExcludeStudentIDs)
	retainSet := idSet(opts.RetainStudentIDs)

	enrollments, err := s.activeSourceEnrollments(tx, sourceYearID, institutionID, nil)
	if err != nil {
		return nil, err
	}
	grades, err := s.gradeIndex(tx, enrollments)
	if err != nil {
		return nil, err
	}
	studentNames, err := s.studentNameIndex(tx, enrollments)
	if err != nil {
		return nil, err
	}

	result := &PromotionResult{}
	transitionID := transition.AcademicYearTransitionsID

	for i := range enrollments {
		enr := &enrollments[i]
		grade := grades[enr.StudentEnrollmentsGradeID]
		studentName := studentNames[enr.StudentEnrollmentsStudentID]

		// Held back for a manual decision later — always wins.
		if _, excluded := excludeSet[enr.StudentEnrollmentsStudentID]; excluded {
			result.Skipped++
			reason := "Held for manual decision"
			ctxBlock := map[string]any{
				"student_id":   enr.StudentEnrollmentsStudentID,
				"student_name": studentName,
			}
			if grade != nil {
				ctxBlock["source_grade"] = grade.Label()
			}
			if _, err := trModel.LogDetail(tx, transitionID, trModel.EntityStudentEnrollment, trModel.ActionSkipped,
				enr.StudentEnrollmentsID, nil, &reason, ctxBlock); err != nil {
				return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to write transition detail")
			}
			continue
		}

		// Final class level graduates before retention is even considered.
		if grade != nil && grade.GradesClassLevel >= finalClassLevel {
			if err := s.processGraduation(tx, enr, grade, studentName, transitionID); err != nil {
				return nil, s.logFailure(tx, transitionID, enr, err)
			}
			result.Graduated++
			continue
		}

		if _, retained := retainSet[enr.StudentEnrollmentsStudentID]; retained {
			if err := s.processRetention(tx, enr, grade, studentName, targetYearID, transitionID); err != nil {
				return nil, s.logFailure(tx, transitionID, enr, err)
			}
			result.Retained++
			continue
		}

		targetGradeID, ok := gradeMapping[enr.StudentEnrollmentsGradeID]
		if !ok || targetGradeID == uuid.Nil {
			result.Skipped++
			reason := "No target grade found"
			if _, err := trModel.LogDetail(tx, transitionID, trModel.EntityStudentEnrollment, trModel.ActionSkipped,
				enr.StudentEnrollmentsID, nil, &reason, map[string]any{
					"student_id":      enr.StudentEnrollmentsStudentID,
					"source_grade_id": enr.StudentEnrollmentsGradeID,
				}); err != nil {
				return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to write transition detail")
			}
			continue
		}

		if _, err := s.promoteStudent(tx, enr, grade, studentName, targetGradeID, targetYearID, transitionID); err != nil {
			return nil, s.logFailure(tx, transitionID, enr, err)
		}
		result.Promoted++
	}

	// Keep the denormalized grade counters consistent with what was created.
	if err := s.updateGradeStudentCounts(tx, targetYearID, institutionID); err != nil {
		return nil, err
	}

	return result, nil
}

// logFailure records the failed enrollment in the audit trail and hands
// the original error back so the whole bulk run aborts.
func (s *StudentPromotionService) logFailure(tx *gorm.DB, transitionID uuid.UUID, enr *enrollModel.StudentEnrollmentModel, cause error) error {
	log.Printf("[ERROR] student promotion failed | enrollment=%s student=%s | %v",
		enr.StudentEnrollmentsID, enr.StudentEnrollmentsStudentID, cause)

	reason := cause.Error()
	_, _ = trModel.LogDetail(tx, transitionID, trModel.EntityStudentEnrollment, trModel.ActionFailed,
		enr.StudentEnrollmentsID, nil, &reason, map[string]any{
			"student_id": enr.StudentEnrollmentsStudentID,
		})
	return cause
}

/* ============================
   Single-enrollment operations
============================ */

func (s *StudentPromotionService) promoteStudent(
	tx *gorm.DB,
	enr *enrollModel.StudentEnrollmentModel,
	grade *gradeModel.GradeModel,
	studentName string,
	targetGradeID, targetYearID uuid.UUID,
	transitionID uuid.UUID,
) (*enrollModel.StudentEnrollmentModel, error) {
	// One active enrollment per (student, academic year).
	var cnt int64
	if err := tx.Model(&enrollModel.StudentEnrollmentModel{}).
		Where("student_enrollments_student_id = ?", enr.StudentEnrollmentsStudentID).
		Where("student_enrollments_academic_year_id = ?", targetYearID).
		Where("student_enrollments_status = ?", enrollModel.EnrollmentActive).
		Count(&cnt).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to check target year enrollment")
	}
	if cnt > 0 {
		return nil, fiber.NewError(fiber.StatusConflict, "Student already has an active enrollment in the target year")
	}

	if err := tx.Model(enr).
		Update("student_enrollments_status", enrollModel.EnrollmentPromoted).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to update source enrollment")
	}
	enr.StudentEnrollmentsStatus = enrollModel.EnrollmentPromoted

	successor := enr.CloneForYear(targetGradeID, targetYearID, s.Clock.Now())
	if err := tx.Create(successor).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to create target enrollment")
	}

	ctxBlock := map[string]any{
		"student_id":   enr.StudentEnrollmentsStudentID,
		"student_name": studentName,
	}
	if grade != nil {
		ctxBlock["from_grade"] = grade.Label()
	}
	var targetGrade gradeModel.GradeModel
	if err := tx.Where("grades_id = ?", targetGradeID).First(&targetGrade).Error; err == nil {
		ctxBlock["to_grade"] = targetGrade.Label()
	}

	targetID := successor.StudentEnrollmentsID
	if _, err := trModel.LogDetail(tx, transitionID, trModel.EntityStudentEnrollment, trModel.ActionPromoted,
		enr.StudentEnrollmentsID, &targetID, nil, ctxBlock); err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to write transition detail")
	}

	return successor, nil
}

// processGraduation terminally withdraws a final-level enrollment. No
// successor record is created.
func (s *StudentPromotionService) processGraduation(
	tx *gorm.DB,
	enr *enrollModel.StudentEnrollmentModel,
	grade *gradeModel.GradeModel,
	studentName string,
	transitionID uuid.UUID,
) error {
	now := s.Clock.Now()
	withdrawalReason := "Completed final grade"
	if err := tx.Model(enr).Updates(map[string]any{
		"student_enrollments_status":            enrollModel.EnrollmentGraduated,
		"student_enrollments_withdrawal_date":   now,
		"student_enrollments_withdrawal_reason": withdrawalReason,
	}).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to graduate enrollment")
	}
	enr.StudentEnrollmentsStatus = enrollModel.EnrollmentGraduated
	enr.StudentEnrollmentsWithdrawalDate = &now
	enr.StudentEnrollmentsWithdrawalReason = &withdrawalReason

	reason := "Completed final grade"
	ctxBlock := map[string]any{
		"student_id":   enr.StudentEnrollmentsStudentID,
		"student_name": studentName,
	}
	if grade != nil {
		ctxBlock["grade"] = grade.Label()
	}
	if _, err := trModel.LogDetail(tx, transitionID, trModel.EntityStudentEnrollment, trModel.ActionGraduated,
		enr.StudentEnrollmentsID, nil, &reason, ctxBlock); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to write transition detail")
	}
	return nil
}

// processRetention re-enrolls the student at the same class level in the
// target year, preferring the grade with the same name.
func (s *StudentPromotionService) processRetention(
	tx *gorm.DB,
	enr *enrollModel.StudentEnrollmentModel,
	grade *gradeModel.GradeModel,
	studentName string,
	targetYearID uuid.UUID,
	transitionID uuid.UUID,
) error {
	if grade == nil {
		return fiber.NewError(fiber.StatusNotFound, "Source grade not found for retention")
	}

	var targetGrade gradeModel.GradeModel
	err := tx.
		Where("grades_academic_year_id = ? AND grades_institution_id = ?", targetYearID, grade.GradesInstitutionID).
		Where("grades_class_level = ? AND grades_name = ?", grade.GradesClassLevel, grade.GradesName).
		First(&targetGrade).Error
	if err != nil {
		// fall back to any grade of the same level
		err = tx.
			Where("grades_academic_year_id = ? AND grades_institution_id = ?", targetYearID, grade.GradesInstitutionID).
			Where("grades_class_level = ?", grade.GradesClassLevel).
			Order("grades_name ASC").
			First(&targetGrade).Error
	}
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound,
			fmt.Sprintf("No target grade found for retention (level %d)", grade.GradesClassLevel))
	}

	if err := tx.Model(enr).
		Update("student_enrollments_status", enrollModel.EnrollmentRetained).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update source enrollment")
	}
	enr.StudentEnrollmentsStatus = enrollModel.EnrollmentRetained

	successor := enr.CloneForYear(targetGrade.GradesID, targetYearID, s.Clock.Now())
	notes := "Retained from previous year"
	successor.StudentEnrollmentsEnrollmentNotes = &notes
	if err := tx.Create(successor).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create retention enrollment")
	}

	reason := "Retained at same class level"
	targetID := successor.StudentEnrollmentsID
	if _, err := trModel.LogDetail(tx, transitionID, trModel.EntityStudentEnrollment, trModel.ActionRetained,
		enr.StudentEnrollmentsID, &targetID, &reason, map[string]any{
			"student_id":   enr.StudentEnrollmentsStudentID,
			"student_name": studentName,
			"grade_level":  grade.GradesClassLevel,
		}); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to write transition detail")
	}
	return nil
}

/* ============================
   Previews
============================ */

// GetPromotionPreview is a read-only dry run for the confirmation screen.
func (s *StudentPromotionService) GetPromotionPreview(
	db *gorm.DB,
	sourceYearID, targetYearID, institutionID uuid.UUID,
	gradeMapping GradeMapping,
) (*PromotionPreview, error) {
	enrollments, err := s.activeSourceEnrollments(db, sourceYearID, institutionID, nil)
	if err != nil {
		return nil, err
	}
	grades, err := s.gradeIndex(db, enrollments)
	if err != nil {
		return nil, err
	}

	preview := &PromotionPreview{
		Total:        len(enrollments),
		ByClassLevel: map[int]int{},
	}
	for i := range enrollments {
		enr := &enrollments[i]
		grade := grades[enr.StudentEnrollmentsGradeID]

		level := 0
		if grade != nil {
			level = grade.GradesClassLevel
		}
		preview.ByClassLevel[level]++

		switch {
		case grade != nil && grade.GradesClassLevel >= finalClassLevel:
			preview.ToGraduate++
		default:
			if id, ok := gradeMapping[enr.StudentEnrollmentsGradeID]; ok && id != uuid.Nil {
				preview.ToPromote++
			} else {
				preview.NoTargetGrade++
			}
		}
	}
	return preview, nil
}

// GetStudentsForPreview lists the affected students, optionally for one
// grade only.
func (s *StudentPromotionService) GetStudentsForPreview(
	db *gorm.DB,
	sourceYearID, institutionID uuid.UUID,
	gradeID *uuid.UUID,
) ([]StudentPreviewRow, error) {
	enrollments, err := s.activeSourceEnrollments(db, sourceYearID, institutionID, gradeID)
	if err != nil {
		return nil, err
	}
	grades, err := s.gradeIndex(db, enrollments)
	if err != nil {
		return nil, err
	}
	names, err := s.studentNameIndex(db, enrollments)
	if err != nil {
		return nil, err
	}

	rows := make([]StudentPreviewRow, 0, len(enrollments))
	for i := range enrollments {
		enr := &enrollments[i]
		row := StudentPreviewRow{
			EnrollmentID:  enr.StudentEnrollmentsID,
			StudentID:     enr.StudentEnrollmentsStudentID,
			StudentName:   names[enr.StudentEnrollmentsStudentID],
			StudentNumber: enr.StudentEnrollmentsStudentNumber,
			GradeID:       enr.StudentEnrollmentsGradeID,
		}
		if g := grades[enr.StudentEnrollmentsGradeID]; g != nil {
			row.GradeName = g.Label()
			row.ClassLevel = g.GradesClassLevel
			row.IsGraduating = g.GradesClassLevel >= finalClassLevel
		}
		rows = append(rows, row)
	}
	return rows, nil
}

/* ============================
   Internal loaders
============================ */

func (s *StudentPromotionService) activeSourceEnrollments(
	db *gorm.DB,
	sourceYearID, institutionID uuid.UUID,
	gradeID *uuid.UUID,
) ([]enrollModel.StudentEnrollmentModel, error) {
	q := db.Model(&enrollModel.StudentEnrollmentModel{}).
		Joins("JOIN grades ON grades_id = student_enrollments_grade_id AND grades_deleted_at IS NULL").
		Where("student_enrollments_academic_year_id = ?", sourceYearID).
		Where("student_enrollments_status = ?", enrollModel.EnrollmentActive).
		Where("grades_institution_id = ?", institutionID).
		Order("student_enrollments_student_number ASC")
	if gradeID != nil {
		q = q.Where("student_enrollments_grade_id = ?", *gradeID)
	}

	var enrollments []enrollModel.StudentEnrollmentModel
	if err := q.Find(&enrollments).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load source enrollments")
	}
	return enrollments, nil
}

func (s *StudentPromotionService) gradeIndex(db *gorm.DB, enrollments []enrollModel.StudentEnrollmentModel) (map[uuid.UUID]*gradeModel.GradeModel, error) {
	ids := make([]uuid.UUID, 0, len(enrollments))
	seen := make(map[uuid.UUID]struct{}, len(enrollments))
	for i := range enrollments {
		id := enrollments[i].StudentEnrollmentsGradeID
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	idx := make(map[uuid.UUID]*gradeModel.GradeModel, len(ids))
	if len(ids) == 0 {
		return idx, nil
	}

	var grades []gradeModel.GradeModel
	if err := db.Where("grades_id IN ?", ids).Find(&grades).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load grades")
	}
	for i := range grades {
		idx[grades[i].GradesID] = &grades[i]
	}
	return idx, nil
}

func (s *StudentPromotionService) studentNameIndex(db *gorm.DB, enrollments []enrollModel.StudentEnrollmentModel) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0, len(enrollments))
	seen := make(map[uuid.UUID]struct{}, len(enrollments))
	for i := range enrollments {
		id := enrollments[i].StudentEnrollmentsStudentID
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	idx := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return idx, nil
	}

	var students []enrollModel.StudentModel
	if err := db.Where("students_id IN ?", ids).Find(&students).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load students")
	}
	for i := range students {
		idx[students[i].StudentsID] = students[i].StudentsFullName
	}
	return idx, nil
}

/* ============================
   Grade counter cache
============================ */

// updateGradeStudentCounts recomputes the denormalized student counters
// on every target-year grade from the active enrollments.
func (s *StudentPromotionService) updateGradeStudentCounts(tx *gorm.DB, academicYearID, institutionID uuid.UUID) error {
	var grades []gradeModel.GradeModel
	if err := tx.
		Where("grades_academic_year_id = ? AND grades_institution_id = ?", academicYearID, institutionID).
		Find(&grades).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load grades for counting")
	}

	for i := range grades {
		g := &grades[i]

		var row struct {
			Total  int64
			Male   int64
			Female int64
		}
		err := tx.Model(&enrollModel.StudentEnrollmentModel{}).
			Select(`COUNT(*) AS total,
				COALESCE(SUM(CASE WHEN students_gender = 'male' THEN 1 ELSE 0 END), 0) AS male,
				COALESCE(SUM(CASE WHEN students_gender = 'female' THEN 1 ELSE 0 END), 0) AS female`).
			Joins("LEFT JOIN students ON students_id = student_enrollments_student_id AND students_deleted_at IS NULL").
			Where("student_enrollments_grade_id = ?", g.GradesID).
			Where("student_enrollments_status = ?", enrollModel.EnrollmentActive).
			Scan(&row).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to count grade students")
		}

		if err := tx.Model(g).Updates(map[string]any{
			"grades_student_count":        row.Total,
			"grades_male_student_count":   row.Male,
			"grades_female_student_count": row.Female,
		}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to update grade counters")
		}
	}
	return nil
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
