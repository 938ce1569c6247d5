package bookingRoutes

import (
	bookingControllers "meetly/controllers/booking"
	"meetly/middleware"
	"meetly/models"
	bookingValidators "meetly/validators/booking"

	"github.com/gofiber/fiber/v2"
)

func SetupBookingRoutes(app *fiber.App) {
	// Public guest booking, reachable without an account.
	app.Post("/public/booking/create", bookingValidators.GuestBooking(), bookingControllers.CreateGuestBooking)

	memberGroup := app.Group("/booking")
	memberGroup.Post("/create", bookingValidators.MemberBooking(), middleware.JWTMiddleware, bookingControllers.CreateMemberBooking)

	hostGroup := app.Group("/host/booking")
	hostOnly := middleware.RequireRole(models.RoleHost, models.RoleAdmin)

	hostGroup.Post("/adhoc", bookingValidators.AdhocBooking(), middleware.JWTMiddleware, hostOnly, bookingControllers.CreateAdhocBooking)
	hostGroup.Get("/list", bookingValidators.ListBookings(), middleware.JWTMiddleware, hostOnly, bookingControllers.ListHostBookings)
	hostGroup.Patch("/reschedule", bookingValidators.Reschedule(), middleware.JWTMiddleware, hostOnly, bookingControllers.RescheduleBooking)
	hostGroup.Patch("/cancel", bookingValidators.BookingID("validatedCancel"), middleware.JWTMiddleware, hostOnly, bookingControllers.CancelBooking)
	hostGroup.Post("/retry-meeting", bookingValidators.BookingID("validatedRetryMeeting"), middleware.JWTMiddleware, hostOnly, bookingControllers.RetryMeeting)
}
