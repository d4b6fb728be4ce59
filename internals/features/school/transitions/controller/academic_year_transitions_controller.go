// file: internals/features/school/transitions/controller/academic_year_transitions_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	helper "mektebim_backend/internals/helpers"
	helperAuth "mektebim_backend/internals/helpers/auth"

	"mektebim_backend/internals/features/school/transitions/dto"
	"mektebim_backend/internals/features/school/transitions/service"
)

type AcademicYearTransitionController struct {
	DB      *gorm.DB
	Service *service.AcademicYearTransitionService
}

func NewAcademicYearTransitionController(db *gorm.DB) *AcademicYearTransitionController {
	return &AcademicYearTransitionController{
		DB:      db,
		Service: service.NewAcademicYearTransitionService(db),
	}
}

/* ============================
   POST /api/a/academic-year-transitions/preview
============================ */

func (ctl *AcademicYearTransitionController) Preview(c *fiber.Ctx) error {
	var req dto.PreviewTransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	preview, err := ctl.Service.PreviewTransition(c.Context(),
		req.SourceAcademicYearID, req.TargetAcademicYearID, req.InstitutionID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Transition preview generated", preview)
}

/* ============================
   GET /api/a/academic-year-transitions/preview/students
============================ */

func (ctl *AcademicYearTransitionController) PreviewStudents(c *fiber.Ctx) error {
	sourceYearID, err := uuid.Parse(c.Query("source_academic_year_id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "source_academic_year_id is required")
	}
	institutionID, err := uuid.Parse(c.Query("institution_id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "institution_id is required")
	}
	var gradeID *uuid.UUID
	if raw := c.Query("grade_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid grade_id")
		}
		gradeID = &id
	}

	rows, err := ctl.Service.Students.GetStudentsForPreview(
		ctl.DB.WithContext(c.Context()), sourceYearID, institutionID, gradeID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Students affected by transition", rows)
}

/* ============================
   POST /api/a/academic-year-transitions
============================ */

func (ctl *AcademicYearTransitionController) Create(c *fiber.Ctx) error {
	initiatedBy, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.CreateTransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	transition, err := ctl.Service.InitiateTransition(c.Context(),
		req.SourceAcademicYearID, req.TargetAcademicYearID, req.InstitutionID,
		initiatedBy, req.Options())
	if err != nil {
		// A failed run still returns the stamped record alongside the error.
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Academic year transition completed", transition)
}

/* ============================
   GET /api/a/academic-year-transitions/:id/status
============================ */

func (ctl *AcademicYearTransitionController) Status(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid transition id")
	}

	snapshot, err := ctl.Service.GetTransitionStatus(c.Context(), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Transition status", snapshot)
}

/* ============================
   GET /api/a/academic-year-transitions?institution_id=...
============================ */

func (ctl *AcademicYearTransitionController) List(c *fiber.Ctx) error {
	institutionID, err := uuid.Parse(c.Query("institution_id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "institution_id is required")
	}

	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctl.Service.GetTransitionHistory(c.Context(), institutionID, p.Limit, p.Offset)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "Transition history", rows,
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

/* ============================
   POST /api/a/academic-year-transitions/:id/rollback
============================ */

func (ctl *AcademicYearTransitionController) Rollback(c *fiber.Ctx) error {
	if _, err := helperAuth.GetUserIDFromToken(c); err != nil {
		return helper.FromFiberError(c, err)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid transition id")
	}

	transition, err := ctl.Service.GetTransitionByID(c.Context(), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := ctl.Service.RollbackTransition(c.Context(), transition); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Transition rolled back", transition)
}
