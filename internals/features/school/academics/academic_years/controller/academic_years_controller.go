// file: internals/features/school/academics/academic_years/controller/academic_years_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	helper "mektebim_backend/internals/helpers"

	"mektebim_backend/internals/features/school/academics/academic_years/dto"
	"mektebim_backend/internals/features/school/academics/academic_years/model"
)

type AcademicYearController struct {
	DB *gorm.DB
}

func NewAcademicYearController(db *gorm.DB) *AcademicYearController {
	return &AcademicYearController{DB: db}
}

// GET /api/a/academic-years
func (ctl *AcademicYearController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)

	q := ctl.DB.WithContext(c.Context()).Model(&model.AcademicYearModel{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count academic years")
	}

	var rows []model.AcademicYearModel
	if err := q.
		Order("academic_years_start_date DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to list academic years")
	}

	return helper.JsonList(c, "Academic years", rows,
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// GET /api/a/academic-years/:id
func (ctl *AcademicYearController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid academic year id")
	}

	var year model.AcademicYearModel
	if err := ctl.DB.WithContext(c.Context()).
		Where("academic_years_id = ?", id).
		First(&year).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Academic year not found")
	}
	return helper.JsonOK(c, "Academic year", year)
}

// POST /api/a/academic-years
func (ctl *AcademicYearController) Create(c *fiber.Ctx) error {
	var req dto.CreateAcademicYearRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if !req.EndDate.After(req.StartDate) {
		return helper.JsonError(c, fiber.StatusBadRequest, "end_date must be after start_date")
	}

	year := req.ToModel()
	if err := ctl.DB.WithContext(c.Context()).Create(year).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create academic year")
	}
	return helper.JsonCreated(c, "Academic year created", year)
}
