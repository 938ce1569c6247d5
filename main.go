package main

import (
	"log"

	"meetly/config"
	"meetly/database"
	authRoutes "meetly/routers/authRoutes"
	bookingRoutes "meetly/routers/bookingRoutes"
	oauthRoutes "meetly/routers/oauthRoutes"
	patternRoutes "meetly/routers/patternRoutes"
	"meetly/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	patternRoutes.SetupPatternRoutes(app)
	bookingRoutes.SetupBookingRoutes(app)
	oauthRoutes.SetupOAuthRoutes(app)

	// Background jobs: booking completion and reminder emails.
	utils.InitializeBookingScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
