// file: internals/features/school/transitions/route/admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mektebim_backend/internals/features/school/transitions/controller"
)

// TransitionAdminRoutes mounts the transition endpoints under the
// already-authenticated admin group.
func TransitionAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewAcademicYearTransitionController(db)

	group := admin.Group("/academic-year-transitions")
	group.Post("/preview", ctl.Preview)
	group.Get("/preview/students", ctl.PreviewStudents)
	group.Post("/", ctl.Create)
	group.Get("/", ctl.List)
	group.Get("/:id/status", ctl.Status)
	group.Post("/:id/rollback", ctl.Rollback)
}
