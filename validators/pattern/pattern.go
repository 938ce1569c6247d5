package patternValidator

import (
	"errors"
	"time"

	"meetly/middleware"
	"meetly/models"
	"meetly/scheduling"

	"github.com/gofiber/fiber/v2"
)

// CreatePatternRequest is the validated payload for pattern creation.
type CreatePatternRequest struct {
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	DurationMinutes int                     `json:"durationMinutes"`
	WeeklySchedule  scheduling.WeekSchedule `json:"weeklySchedule"`
	Timezone        string                  `json:"timezone"`
	DateRangeStart  string                  `json:"dateRangeStart"` // YYYY-MM-DD
	DateRangeEnd    *string                 `json:"dateRangeEnd"`
	MeetingType     string                  `json:"meetingType"`
	ManualValue     string                  `json:"manualValue"`
}

// UpdatePatternRequest reuses the create payload plus the target id.
type UpdatePatternRequest struct {
	PatternID uint `json:"patternId"`
	CreatePatternRequest
}

// TogglePatternRequest enables or disables a pattern.
type TogglePatternRequest struct {
	PatternID uint `json:"patternId"`
	IsActive  bool `json:"isActive"`
}

// DeletePatternRequest targets one pattern for deletion.
type DeletePatternRequest struct {
	PatternID uint `json:"patternId"`
}

func validMeetingType(v string) bool {
	switch v {
	case models.MeetingTypeGoogle, models.MeetingTypeZoom, models.MeetingTypeManual, models.MeetingTypePhysical:
		return true
	}
	return false
}

func validatePatternFields(req *CreatePatternRequest) map[string]string {
	errs := make(map[string]string)

	if req.Title == "" {
		errs["title"] = "Title is required!"
	}
	if req.DurationMinutes <= 0 {
		errs["durationMinutes"] = "Duration must be greater than 0!"
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		errs["timezone"] = "Unknown timezone!"
	}
	if req.MeetingType == "" {
		req.MeetingType = models.MeetingTypeManual
	}
	if !validMeetingType(req.MeetingType) {
		errs["meetingType"] = "Meeting type must be GOOGLE_MEET, ZOOM, MANUAL_LINK or PHYSICAL_LOCATION!"
	}
	if (req.MeetingType == models.MeetingTypeManual || req.MeetingType == models.MeetingTypePhysical) && req.ManualValue == "" {
		errs["manualValue"] = "A link or location is required for this meeting type!"
	}

	if req.DateRangeStart == "" {
		errs["dateRangeStart"] = "Start date is required!"
	} else if start, err := time.Parse("2006-01-02", req.DateRangeStart); err != nil {
		errs["dateRangeStart"] = "Start date must be YYYY-MM-DD!"
	} else if req.DateRangeEnd != nil {
		if end, err := time.Parse("2006-01-02", *req.DateRangeEnd); err != nil {
			errs["dateRangeEnd"] = "End date must be YYYY-MM-DD!"
		} else if end.Before(start) {
			errs["dateRangeEnd"] = "End date must not be before the start date!"
		}
	}

	// Malformed schedules are rejected here, at save time; the expander
	// assumes a valid pattern.
	if req.DurationMinutes > 0 {
		if err := scheduling.ValidateSchedule(req.WeeklySchedule, req.DurationMinutes); err != nil {
			var vErr *scheduling.ValidationError
			if errors.As(err, &vErr) {
				errs["weeklySchedule"] = vErr.Message
			} else {
				errs["weeklySchedule"] = "Invalid weekly schedule!"
			}
		}
	}

	return errs
}

// CreatePattern validates a pattern creation request
func CreatePattern() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreatePatternRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errs := validatePatternFields(reqData); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("validatedCreatePattern", reqData)
		return c.Next()
	}
}

// UpdatePattern validates a pattern update request
func UpdatePattern() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdatePatternRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errs := validatePatternFields(&reqData.CreatePatternRequest)
		if reqData.PatternID == 0 {
			errs["patternId"] = "Pattern ID is required!"
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("validatedUpdatePattern", reqData)
		return c.Next()
	}
}

// TogglePattern validates an activate/deactivate request
func TogglePattern() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(TogglePatternRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.PatternID == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Pattern ID is required!", nil)
		}

		c.Locals("validatedTogglePattern", reqData)
		return c.Next()
	}
}

// DeletePattern validates a deletion request
func DeletePattern() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(DeletePatternRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.PatternID == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Pattern ID is required!", nil)
		}

		c.Locals("validatedDeletePattern", reqData)
		return c.Next()
	}
}

// ListSlots validates the public slot listing query
func ListSlots() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Week string `query:"week"` // YYYY-MM-DD anchor, defaults to the current week
		})
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request query!", nil)
		}
		if reqData.Week != "" {
			if _, err := time.Parse("2006-01-02", reqData.Week); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Week must be YYYY-MM-DD!", nil)
			}
		}

		c.Locals("validatedListSlots", reqData.Week)
		return c.Next()
	}
}
