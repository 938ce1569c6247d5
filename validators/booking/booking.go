package bookingValidator

import (
	"strings"
	"time"

	"meetly/middleware"
	"meetly/models"

	"github.com/gofiber/fiber/v2"
)

// GuestBookingRequest books a slot for an unauthenticated guest.
type GuestBookingRequest struct {
	PatternID  uint   `json:"patternId"`
	StartTime  string `json:"startTime"` // RFC3339
	GuestName  string `json:"guestName"`
	GuestEmail string `json:"guestEmail"`
	Notes      string `json:"notes"`

	Start time.Time `json:"-"`
}

// MemberBookingRequest books a slot for the authenticated member.
type MemberBookingRequest struct {
	PatternID uint   `json:"patternId"`
	StartTime string `json:"startTime"`
	Notes     string `json:"notes"`

	Start time.Time `json:"-"`
}

// AdhocBookingRequest creates a host booking that is not tied to a pattern.
type AdhocBookingRequest struct {
	Title       string `json:"title"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Timezone    string `json:"timezone"`
	SubjectID   *uint  `json:"subjectId"`
	GuestName   string `json:"guestName"`
	GuestEmail  string `json:"guestEmail"`
	MeetingType string `json:"meetingType"`
	ManualValue string `json:"manualValue"`
	Notes       string `json:"notes"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

// RescheduleRequest moves a booking to a new start time.
type RescheduleRequest struct {
	BookingID uint   `json:"bookingId"`
	StartTime string `json:"startTime"`

	Start time.Time `json:"-"`
}

// BookingIDRequest targets one booking (cancel, retry provisioning).
type BookingIDRequest struct {
	BookingID uint `json:"bookingId"`
}

// GuestBooking validates a public guest booking request
func GuestBooking() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(GuestBookingRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errs := make(map[string]string)
		if reqData.PatternID == 0 {
			errs["patternId"] = "Pattern ID is required!"
		}
		if reqData.GuestName == "" {
			errs["guestName"] = "Guest name is required!"
		}
		if reqData.GuestEmail == "" || !strings.Contains(reqData.GuestEmail, "@") {
			errs["guestEmail"] = "A valid guest email is required!"
		}
		start, err := time.Parse(time.RFC3339, reqData.StartTime)
		if err != nil {
			errs["startTime"] = "Start time must be RFC3339!"
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		reqData.Start = start

		c.Locals("validatedGuestBooking", reqData)
		return c.Next()
	}
}

// MemberBooking validates a member booking request
func MemberBooking() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(MemberBookingRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errs := make(map[string]string)
		if reqData.PatternID == 0 {
			errs["patternId"] = "Pattern ID is required!"
		}
		start, err := time.Parse(time.RFC3339, reqData.StartTime)
		if err != nil {
			errs["startTime"] = "Start time must be RFC3339!"
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		reqData.Start = start

		c.Locals("validatedMemberBooking", reqData)
		return c.Next()
	}
}

// AdhocBooking validates a host's ad hoc booking request
func AdhocBooking() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AdhocBookingRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errs := make(map[string]string)
		if reqData.Title == "" {
			errs["title"] = "Title is required!"
		}
		start, err := time.Parse(time.RFC3339, reqData.StartTime)
		if err != nil {
			errs["startTime"] = "Start time must be RFC3339!"
		}
		end, err := time.Parse(time.RFC3339, reqData.EndTime)
		if err != nil {
			errs["endTime"] = "End time must be RFC3339!"
		} else if !end.After(start) {
			errs["endTime"] = "End time must be after the start time!"
		}

		// Exactly one identity form: a member reference or guest details.
		hasSubject := reqData.SubjectID != nil && *reqData.SubjectID != 0
		hasGuest := reqData.GuestName != "" || reqData.GuestEmail != ""
		if hasSubject == hasGuest {
			errs["subjectId"] = "Provide either a member or guest details, not both!"
		} else if hasGuest {
			if reqData.GuestName == "" {
				errs["guestName"] = "Guest name is required!"
			}
			if reqData.GuestEmail == "" || !strings.Contains(reqData.GuestEmail, "@") {
				errs["guestEmail"] = "A valid guest email is required!"
			}
		}

		if reqData.MeetingType == "" {
			reqData.MeetingType = models.MeetingTypeManual
		}
		switch reqData.MeetingType {
		case models.MeetingTypeGoogle, models.MeetingTypeZoom:
		case models.MeetingTypeManual, models.MeetingTypePhysical:
			if reqData.ManualValue == "" {
				errs["manualValue"] = "A link or location is required for this meeting type!"
			}
		default:
			errs["meetingType"] = "Unknown meeting type!"
		}

		if reqData.Timezone == "" {
			reqData.Timezone = "UTC"
		} else if _, err := time.LoadLocation(reqData.Timezone); err != nil {
			errs["timezone"] = "Unknown timezone!"
		}

		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		reqData.Start = start
		reqData.End = end

		c.Locals("validatedAdhocBooking", reqData)
		return c.Next()
	}
}

// Reschedule validates a reschedule request
func Reschedule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RescheduleRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errs := make(map[string]string)
		if reqData.BookingID == 0 {
			errs["bookingId"] = "Booking ID is required!"
		}
		start, err := time.Parse(time.RFC3339, reqData.StartTime)
		if err != nil {
			errs["startTime"] = "Start time must be RFC3339!"
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		reqData.Start = start

		c.Locals("validatedReschedule", reqData)
		return c.Next()
	}
}

// BookingID validates requests that target one booking by id
func BookingID(localsKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(BookingIDRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.BookingID == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Booking ID is required!", nil)
		}

		c.Locals(localsKey, reqData)
		return c.Next()
	}
}

// ListBookings validates the host booking list query
func ListBookings() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page   *int    `query:"page"`
			Limit  *int    `query:"limit"`
			Status *string `query:"status"`
		})
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request query!", nil)
		}

		errs := make(map[string]string)
		if reqData.Page == nil {
			defaultPage := 1
			reqData.Page = &defaultPage
		} else if *reqData.Page < 1 {
			errs["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit == nil {
			defaultLimit := 10
			reqData.Limit = &defaultLimit
		} else if *reqData.Limit < 1 {
			errs["limit"] = "Limit must be greater than 0!"
		}
		if reqData.Status != nil && *reqData.Status != "" {
			switch *reqData.Status {
			case models.BookingStatusUpcoming, models.BookingStatusCompleted, models.BookingStatusCancelled:
			default:
				errs["status"] = "Status must be UPCOMING, COMPLETED or CANCELLED!"
			}
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("validatedListBookings", reqData)
		return c.Next()
	}
}
