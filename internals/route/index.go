// file: internals/route/index.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mektebim_backend/internals/configs"
	database "mektebim_backend/internals/databases"
	"mektebim_backend/internals/middlewares"

	academicYearRoute "mektebim_backend/internals/features/school/academics/academic_years/route"
	transitionRoute "mektebim_backend/internals/features/school/transitions/route"
)

// SetupRoutes mounts every feature group. /api/a is the authenticated
// admin surface; everything under it goes through the JWT middleware.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	app.Get("/health", func(c *fiber.Ctx) error {
		if err := database.Ping(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	admin := api.Group("/a", middlewares.AuthJWT(middlewares.AuthJWTOpts{
		Secret:              configs.JWTSecret,
		AllowCookieFallback: true,
	}))

	academicYearRoute.AcademicYearAdminRoutes(admin, db)
	transitionRoute.TransitionAdminRoutes(admin, db)
}
