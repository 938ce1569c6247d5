package patternController

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"meetly/database"
	"meetly/middleware"
	"meetly/models"
	"meetly/scheduling"
	patternValidator "meetly/validators/pattern"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func scheduleJSON(schedule scheduling.WeekSchedule) (datatypes.JSON, error) {
	raw, err := json.Marshal(schedule)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func applyPatternFields(pattern *models.AvailabilityPattern, req *patternValidator.CreatePatternRequest) error {
	raw, err := scheduleJSON(req.WeeklySchedule)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(req.Timezone)
	if err != nil {
		return err
	}
	rangeStart, err := time.ParseInLocation("2006-01-02", req.DateRangeStart, loc)
	if err != nil {
		return err
	}
	var rangeEnd *time.Time
	if req.DateRangeEnd != nil {
		end, err := time.ParseInLocation("2006-01-02", *req.DateRangeEnd, loc)
		if err != nil {
			return err
		}
		rangeEnd = &end
	}

	pattern.Title = req.Title
	pattern.Description = req.Description
	pattern.DurationMinutes = req.DurationMinutes
	pattern.WeeklySchedule = raw
	pattern.Timezone = req.Timezone
	pattern.DateRangeStart = rangeStart
	pattern.DateRangeEnd = rangeEnd
	pattern.MeetingType = req.MeetingType
	pattern.ManualValue = req.ManualValue
	return nil
}

// CreatePattern stores a new availability pattern for the host
func CreatePattern(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	reqData, ok := c.Locals("validatedCreatePattern").(*patternValidator.CreatePatternRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	pattern := &models.AvailabilityPattern{
		OwnerID:  userId,
		IsActive: true,
	}
	if err := applyPatternFields(pattern, reqData); err != nil {
		log.Printf("[PATTERN] Failed to build pattern: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create pattern!", nil)
	}

	if err := database.Database.Db.Create(pattern).Error; err != nil {
		log.Printf("[PATTERN] Failed to create pattern: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create pattern!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Pattern created successfully!", fiber.Map{"pattern": pattern})
}

func ownedPattern(db *gorm.DB, patternID, userId uint) (*models.AvailabilityPattern, error) {
	var pattern models.AvailabilityPattern
	err := db.Where("id = ? AND owner_id = ? AND is_deleted = false", patternID, userId).First(&pattern).Error
	if err != nil {
		return nil, err
	}
	return &pattern, nil
}

// UpdatePattern replaces an owned pattern's definition. Existing bookings
// keep their original times; only future slot expansion changes.
func UpdatePattern(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	reqData, ok := c.Locals("validatedUpdatePattern").(*patternValidator.UpdatePatternRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	pattern, err := ownedPattern(db, reqData.PatternID, userId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Pattern not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load pattern!", nil)
	}

	if err := applyPatternFields(pattern, &reqData.CreatePatternRequest); err != nil {
		log.Printf("[PATTERN] Failed to build pattern update: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update pattern!", nil)
	}
	if err := db.Save(pattern).Error; err != nil {
		log.Printf("[PATTERN] Failed to update pattern %d: %v", pattern.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update pattern!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pattern updated successfully!", fiber.Map{"pattern": pattern})
}

// TogglePattern activates or deactivates an owned pattern
func TogglePattern(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	reqData, ok := c.Locals("validatedTogglePattern").(*patternValidator.TogglePatternRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	pattern, err := ownedPattern(db, reqData.PatternID, userId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Pattern not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load pattern!", nil)
	}

	if err := db.Model(pattern).Update("is_active", reqData.IsActive).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update pattern!", nil)
	}
	pattern.IsActive = reqData.IsActive

	message := "Pattern deactivated."
	if reqData.IsActive {
		message = "Pattern activated."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{"pattern": pattern})
}

// DeletePattern removes an owned pattern. A pattern that was never booked is
// deleted outright; one with booking history is deactivated and hidden so
// its bookings survive.
func DeletePattern(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	reqData, ok := c.Locals("validatedDeletePattern").(*patternValidator.DeletePatternRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	pattern, err := ownedPattern(db, reqData.PatternID, userId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Pattern not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load pattern!", nil)
	}

	hardDeleted, err := database.NewPatternRepo(db).Delete(pattern)
	if err != nil {
		log.Printf("[PATTERN] Failed to delete pattern %d: %v", pattern.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete pattern!", nil)
	}

	message := "Pattern deleted. Its booking history is kept."
	if hardDeleted {
		message = "Pattern deleted."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, nil)
}

// ListMyPatterns lists the host's patterns
func ListMyPatterns(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var patterns []models.AvailabilityPattern
	err := database.Database.Db.
		Where("owner_id = ? AND is_deleted = false", userId).
		Order("created_at DESC").
		Find(&patterns).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch patterns!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Patterns fetched successfully!", fiber.Map{"patterns": patterns})
}

// ListSlots is the public weekly slot view of one pattern: the expanded
// slots for the requested week, each annotated with whether it can still
// be booked.
func ListSlots(c *fiber.Ctx) error {
	patternID, err := c.ParamsInt("id")
	if err != nil || patternID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid pattern id!", nil)
	}
	week, _ := c.Locals("validatedListSlots").(string)

	db := database.Database.Db
	var pattern models.AvailabilityPattern
	err = db.Where("id = ? AND is_active = true AND is_deleted = false", patternID).First(&pattern).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Pattern not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load pattern!", nil)
	}

	exp, err := pattern.ExpansionPattern()
	if err != nil {
		log.Printf("[PATTERN] Failed to parse pattern %d: %v", pattern.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to expand pattern!", nil)
	}

	anchor := time.Now().In(exp.Location)
	if week != "" {
		parsed, err := time.ParseInLocation("2006-01-02", week, exp.Location)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Week must be YYYY-MM-DD!", nil)
		}
		anchor = parsed
	}

	weekCfg := &now.Config{WeekStartDay: time.Monday, TimeLocation: exp.Location}
	weekStart := weekCfg.With(anchor).BeginningOfWeek()
	weekEnd := weekStart.AddDate(0, 0, 7)

	slots := scheduling.Expand(exp, weekStart, weekEnd, time.Now())

	claims, err := database.NewBookingRepo(db).ActiveClaims(pattern.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load bookings!", nil)
	}

	annotated := scheduling.Annotate(slots, claims, nil)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Slots fetched successfully!", fiber.Map{
		"pattern": fiber.Map{
			"id":              pattern.ID,
			"title":           pattern.Title,
			"description":     pattern.Description,
			"durationMinutes": pattern.DurationMinutes,
			"timezone":        pattern.Timezone,
			"meetingType":     pattern.MeetingType,
		},
		"weekStart": weekStart,
		"weekEnd":   weekEnd,
		"slots":     annotated,
	})
}
