package patternRoutes

import (
	patternControllers "meetly/controllers/pattern"
	"meetly/middleware"
	"meetly/models"
	patternValidators "meetly/validators/pattern"

	"github.com/gofiber/fiber/v2"
)

func SetupPatternRoutes(app *fiber.App) {
	hostGroup := app.Group("/host/pattern")

	hostOnly := middleware.RequireRole(models.RoleHost, models.RoleAdmin)

	hostGroup.Post("/create", patternValidators.CreatePattern(), middleware.JWTMiddleware, hostOnly, patternControllers.CreatePattern)
	hostGroup.Put("/update", patternValidators.UpdatePattern(), middleware.JWTMiddleware, hostOnly, patternControllers.UpdatePattern)
	hostGroup.Patch("/toggle", patternValidators.TogglePattern(), middleware.JWTMiddleware, hostOnly, patternControllers.TogglePattern)
	hostGroup.Delete("/delete", patternValidators.DeletePattern(), middleware.JWTMiddleware, hostOnly, patternControllers.DeletePattern)
	hostGroup.Get("/list", middleware.JWTMiddleware, hostOnly, patternControllers.ListMyPatterns)

	// Public weekly slot view for the booking page.
	app.Get("/public/pattern/:id/slots", patternValidators.ListSlots(), patternControllers.ListSlots)
}
