// file: internals/features/school/academics/academic_years/route/admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mektebim_backend/internals/features/school/academics/academic_years/controller"
)

func AcademicYearAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewAcademicYearController(db)

	group := admin.Group("/academic-years")
	group.Get("/", ctl.List)
	group.Get("/:id", ctl.GetByID)
	group.Post("/", ctl.Create)
}
