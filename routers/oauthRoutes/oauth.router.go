package oauthRoutes

import (
	oauthControllers "meetly/controllers/oauth"
	"meetly/middleware"
	"meetly/models"
	oauthValidators "meetly/validators/oauth"

	"github.com/gofiber/fiber/v2"
)

func SetupOAuthRoutes(app *fiber.App) {
	oauthGroup := app.Group("/oauth")

	hostOnly := middleware.RequireRole(models.RoleHost, models.RoleAdmin)

	oauthGroup.Get("/connect/:provider", oauthValidators.Provider(), middleware.JWTMiddleware, hostOnly, oauthControllers.ConnectURL)
	oauthGroup.Post("/disconnect", oauthValidators.Disconnect(), middleware.JWTMiddleware, hostOnly, oauthControllers.Disconnect)
	oauthGroup.Get("/connections", middleware.JWTMiddleware, hostOnly, oauthControllers.ListConnections)

	// Provider redirect target. The signed state parameter carries the user,
	// so no session is needed here.
	oauthGroup.Get("/callback", oauthValidators.Callback(), oauthControllers.Callback)
}
