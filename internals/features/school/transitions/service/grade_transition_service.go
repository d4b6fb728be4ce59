// file: internals/features/school/transitions/service/grade_transition_service.go
package service

import (
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	gradeModel "mektebim_backend/internals/features/school/academics/grades/model"
	trModel "mektebim_backend/internals/features/school/transitions/model"
)

/* ============================
   Planner contract
============================ */

type GradeCopyOptions struct {
	CopySubjects bool
	CopyTeachers bool
}

type GradeCopyResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type GradePreviewEntry struct {
	SourceGradeID uuid.UUID `json:"source_grade_id"`
	Name          string    `json:"name"`
	ClassLevel    int       `json:"class_level"`
	TargetLevel   int       `json:"target_level"`
}

type GradeTransitionPreview struct {
	TotalSource  int                 `json:"total_source"`
	ToCreate     []GradePreviewEntry `json:"to_create"`
	AlreadyExist []GradePreviewEntry `json:"already_exist"`
	Graduating   []GradePreviewEntry `json:"graduating"`
}

// GradePlanner is the external planner contract consumed by the
// orchestrator. GradeTransitionService is the in-repo default; callers
// may substitute their own implementation.
type GradePlanner interface {
	PreviewGradeTransition(db *gorm.DB, sourceYearID, targetYearID, institutionID uuid.UUID) (*GradeTransitionPreview, error)
	GetGradeMapping(db *gorm.DB, sourceYearID, targetYearID, institutionID uuid.UUID) (GradeMapping, error)
	CopyGradesToNewYear(tx *gorm.DB, sourceYearID, targetYearID, institutionID uuid.UUID, transition *trModel.AcademicYearTransitionModel, opts GradeCopyOptions) (*GradeCopyResult, error)
}

/* ============================
   Default implementation
============================ */

// GradeTransitionService continues each source grade one class level up
// in the target year, matching counterparts by (class_level+1, name).
// Final-level grades have no continuation; their students graduate.
type GradeTransitionService struct {
	DB    *gorm.DB
	Clock Clock
}

func NewGradeTransitionService(db *gorm.DB) *GradeTransitionService {
	return &GradeTransitionService{DB: db, Clock: realClock{}}
}

const finalClassLevel = 12

func (s *GradeTransitionService) sourceGrades(db *gorm.DB, sourceYearID, institutionID uuid.UUID) ([]gradeModel.GradeModel, error) {
	var grades []gradeModel.GradeModel
	err := db.
		Where("grades_academic_year_id = ? AND grades_institution_id = ?", sourceYearID, institutionID).
		Order("grades_class_level ASC, grades_name ASC").
		Find(&grades).Error
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load source grades")
	}
	return grades, nil
}

func (s *GradeTransitionService) targetGradeIndex(db *gorm.DB, targetYearID, institutionID uuid.UUID) (map[gradeKey]uuid.UUID, error) {
	var grades []gradeModel.GradeModel
	err := db.
		Where("grades_academic_year_id = ? AND grades_institution_id = ?", targetYearID, institutionID).
		Find(&grades).Error
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load target grades")
	}
	idx := make(map[gradeKey]uuid.UUID, len(grades))
	for i := range grades {
		idx[gradeKey{grades[i].GradesClassLevel, grades[i].GradesName}] = grades[i].GradesID
	}
	return idx, nil
}

type gradeKey struct {
	Level int
	Name  string
}

// PreviewGradeTransition classifies source grades without mutating.
func (s *GradeTransitionService) PreviewGradeTransition(db *gorm.DB, sourceYearID, targetYearID, institutionID uuid.UUID) (*GradeTransitionPreview, error) {
	source, err := s.sourceGrades(db, sourceYearID, institutionID)
	if err != nil {
		return nil, err
	}
	targetIdx, err := s.targetGradeIndex(db, targetYearID, institutionID)
	if err != nil {
		return nil, err
	}

	preview := &GradeTransitionPreview{
		TotalSource:  len(source),
		ToCreate:     []GradePreviewEntry{},
		AlreadyExist: []GradePreviewEntry{},
		Graduating:   []GradePreviewEntry{},
	}
	for i := range source {
		g := &source[i]
		entry := GradePreviewEntry{
			SourceGradeID: g.GradesID,
			Name:          g.GradesName,
			ClassLevel:    g.GradesClassLevel,
			TargetLevel:   g.GradesClassLevel + 1,
		}
		if g.GradesClassLevel >= finalClassLevel {
			entry.TargetLevel = g.GradesClassLevel
			preview.Graduating = append(preview.Graduating, entry)
			continue
		}
		if _, ok := targetIdx[gradeKey{g.GradesClassLevel + 1, g.GradesName}]; ok {
			preview.AlreadyExist = append(preview.AlreadyExist, entry)
		} else {
			preview.ToCreate = append(preview.ToCreate, entry)
		}
	}
	return preview, nil
}

// GetGradeMapping resolves source grade id → continuation grade id in the
// target year. Final-level grades and grades without a counterpart are
// simply absent from the map.
func (s *GradeTransitionService) GetGradeMapping(db *gorm.DB, sourceYearID, targetYearID, institutionID uuid.UUID) (GradeMapping, error) {
	source, err := s.sourceGrades(db, sourceYearID, institutionID)
	if err != nil {
		return nil, err
	}
	targetIdx, err := s.targetGradeIndex(db, targetYearID, institutionID)
	if err != nil {
		return nil, err
	}

	mapping := make(GradeMapping, len(source))
	for i := range source {
		g := &source[i]
		if g.GradesClassLevel >= finalClassLevel {
			continue
		}
		if id, ok := targetIdx[gradeKey{g.GradesClassLevel + 1, g.GradesName}]; ok {
			mapping[g.GradesID] = id
		}
	}
	return mapping, nil
}

// CopyGradesToNewYear creates the continuation grade for every non-final
// source grade, skipping ones the target year already has. Subject rows
// travel with the grade when CopySubjects is set; the subject teacher id
// only travels when CopyTeachers is set as well (the assignment engine
// re-validates teachers separately).
func (s *GradeTransitionService) CopyGradesToNewYear(
	tx *gorm.DB,
	sourceYearID, targetYearID, institutionID uuid.UUID,
	transition *trModel.AcademicYearTransitionModel,
	opts GradeCopyOptions,
) (*GradeCopyResult, error) {
	source, err := s.sourceGrades(tx, sourceYearID, institutionID)
	if err != nil {
		return nil, err
	}
	targetIdx, err := s.targetGradeIndex(tx, targetYearID, institutionID)
	if err != nil {
		return nil, err
	}

	result := &GradeCopyResult{}
	for i := range source {
		src := &source[i]
		if src.GradesClassLevel >= finalClassLevel {
			continue
		}

		key := gradeKey{src.GradesClassLevel + 1, src.GradesName}
		if _, ok := targetIdx[key]; ok {
			result.Skipped++
			continue
		}

		target := &gradeModel.GradeModel{
			GradesInstitutionID:  institutionID,
			GradesAcademicYearID: targetYearID,
			GradesClassLevel:     src.GradesClassLevel + 1,
			GradesName:           src.GradesName,
		}
		if err := tx.Create(target).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to create target grade")
		}
		targetIdx[key] = target.GradesID

		if opts.CopySubjects {
			if err := s.copyGradeSubjects(tx, src.GradesID, target.GradesID, opts.CopyTeachers); err != nil {
				return nil, err
			}
		}

		result.Created++
	}
	return result, nil
}

func (s *GradeTransitionService) copyGradeSubjects(tx *gorm.DB, sourceGradeID, targetGradeID uuid.UUID, copyTeachers bool) error {
	var rows []gradeModel.GradeSubjectModel
	if err := tx.
		Where("grade_subjects_grade_id = ?", sourceGradeID).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load source grade subjects")
	}

	// stable order keeps copies reproducible
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].GradeSubjectsSubjectID.String() < rows[j].GradeSubjectsSubjectID.String()
	})

	for i := range rows {
		src := &rows[i]
		target := &gradeModel.GradeSubjectModel{
			GradeSubjectsGradeID:     targetGradeID,
			GradeSubjectsSubjectID:   src.GradeSubjectsSubjectID,
			GradeSubjectsWeeklyHours: src.GradeSubjectsWeeklyHours,
		}
		if copyTeachers {
			target.GradeSubjectsTeacherID = src.GradeSubjectsTeacherID
		}
		if err := tx.Create(target).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to copy grade subject")
		}
	}
	return nil
}
