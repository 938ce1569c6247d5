package bookingController

import (
	"errors"
	"log"
	"time"

	"meetly/database"
	"meetly/meeting"
	"meetly/middleware"
	"meetly/models"
	"meetly/scheduling"
	"meetly/utils"
	bookingValidator "meetly/validators/booking"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func activePattern(db *gorm.DB, patternID uint) (*models.AvailabilityPattern, error) {
	var pattern models.AvailabilityPattern
	err := db.Where("id = ? AND is_active = true AND is_deleted = false", patternID).First(&pattern).Error
	if err != nil {
		return nil, err
	}
	return &pattern, nil
}

// slotIsOffered re-derives the requested day's slots and checks membership,
// so a direct API call can never book a time the pattern does not offer (or
// one that already started).
func slotIsOffered(pattern *models.AvailabilityPattern, start time.Time) (bool, error) {
	exp, err := pattern.ExpansionPattern()
	if err != nil {
		return false, err
	}
	local := start.In(exp.Location)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, exp.Location)
	slots := scheduling.Expand(exp, dayStart, dayStart.AddDate(0, 0, 1), time.Now())
	for _, s := range slots {
		if s.Start.Equal(start) {
			return true, nil
		}
	}
	return false, nil
}

// provisionMeeting attaches a remote meeting to the booking. The booking row
// already exists; a failure here leaves it confirmed without a link, which
// the caller reports so the user can retry or fall back to a manual link.
func provisionMeeting(db *gorm.DB, booking *models.Booking) error {
	providerName, ok := utils.ProviderNameFor(booking.MeetingType)
	if !ok {
		return nil
	}
	if booking.MeetingURL != "" && booking.ProviderMeetingID != "" {
		return nil
	}

	// The provision key is persisted before the first remote call so a
	// retried attempt reuses it instead of minting a new one.
	if booking.ProvisionKey == "" {
		booking.ProvisionKey = uuid.NewString()
		if err := db.Model(booking).Update("provision_key", booking.ProvisionKey).Error; err != nil {
			return err
		}
	}

	var attendees []string
	if email := booking.AttendeeEmail(db); email != "" {
		attendees = append(attendees, email)
	}

	result, err := utils.MeetingProvisioner().CreateMeeting(booking.OwnerID, providerName, meeting.MeetingRequest{
		Title:       booking.Title,
		Description: booking.Notes,
		Start:       booking.BookingStartTime,
		End:         booking.BookingEndTime,
		Timezone:    booking.Timezone,
		Attendees:   attendees,
		RequestID:   booking.ProvisionKey,
	})
	if err != nil {
		return err
	}

	booking.MeetingURL = result.JoinURL
	booking.ProviderMeetingID = result.MeetingID
	return db.Model(booking).Updates(map[string]interface{}{
		"meeting_url":         booking.MeetingURL,
		"provider_meeting_id": booking.ProviderMeetingID,
	}).Error
}

// provisioningMessage maps provisioning failures onto user-facing guidance.
func provisioningMessage(err error) string {
	var pErr *meeting.ProviderError
	switch {
	case errors.Is(err, meeting.ErrNoActiveConnection):
		return "The host has no active connection for this meeting provider."
	case errors.Is(err, meeting.ErrTokenRefreshFailed):
		return "The provider connection could not be refreshed. Reconnect the provider and retry."
	case errors.As(err, &pErr):
		return "The meeting provider rejected the request: " + pErr.Message
	default:
		return "The meeting link could not be created."
	}
}

func createSlotBooking(c *fiber.Ctx, patternID uint, start time.Time, subjectID *uint, guestName, guestEmail, notes string) error {
	db := database.Database.Db

	pattern, err := activePattern(db, patternID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Pattern not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load pattern!", nil)
	}

	offered, err := slotIsOffered(pattern, start)
	if err != nil {
		log.Printf("[BOOKING] Failed to expand pattern %d: %v", pattern.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check the requested slot!", nil)
	}
	if !offered {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "The requested time is not an open slot of this pattern!", nil)
	}

	booking := &models.Booking{
		Reference:        uuid.NewString(),
		PatternID:        &pattern.ID,
		OwnerID:          pattern.OwnerID,
		SubjectID:        subjectID,
		GuestName:        guestName,
		GuestEmail:       guestEmail,
		Title:            pattern.Title,
		Notes:            notes,
		BookingStartTime: start,
		BookingEndTime:   start.Add(time.Duration(pattern.DurationMinutes) * time.Minute),
		Timezone:         pattern.Timezone,
		Status:           models.BookingStatusUpcoming,
		MeetingType:      pattern.MeetingType,
	}
	if !pattern.RequiresGeneration() {
		booking.MeetingURL = pattern.ManualValue
	}

	// Claim the slot first, provision second: a lost race must not leave an
	// orphaned remote meeting behind.
	repo := database.NewBookingRepo(db)
	if err := repo.CreateIfSlotFree(booking); err != nil {
		if errors.Is(err, database.ErrSlotAlreadyBooked) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "This slot was just booked by someone else. Please pick another one.", nil)
		}
		log.Printf("[BOOKING] Failed to create booking: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create booking!", nil)
	}

	meetingErr := provisionMeeting(db, booking)
	if meetingErr != nil {
		log.Printf("[BOOKING] Provisioning failed for %s: %v", booking.Reference, meetingErr)
	}

	go func(b models.Booking) {
		db := database.Database.Db
		if email := b.AttendeeEmail(db); email != "" {
			utils.SendBookingConfirmation(b.AttendeeName(db), email, &b)
		}
	}(*booking)

	if meetingErr != nil {
		return middleware.JsonResponse(c, fiber.StatusCreated, true,
			"Booking confirmed, but no meeting link was attached: "+provisioningMessage(meetingErr),
			fiber.Map{"booking": booking, "meetingError": provisioningMessage(meetingErr)})
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Booking confirmed!", fiber.Map{"booking": booking})
}

// CreateGuestBooking books a slot for an unauthenticated guest
func CreateGuestBooking(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedGuestBooking").(*bookingValidator.GuestBookingRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	return createSlotBooking(c, reqData.PatternID, reqData.Start, nil, reqData.GuestName, reqData.GuestEmail, reqData.Notes)
}

// CreateMemberBooking books a slot for the authenticated member
func CreateMemberBooking(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	reqData, ok := c.Locals("validatedMemberBooking").(*bookingValidator.MemberBookingRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	return createSlotBooking(c, reqData.PatternID, reqData.Start, &userId, "", "", reqData.Notes)
}

// CreateAdhocBooking creates a host booking outside any pattern
func CreateAdhocBooking(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	reqData, ok := c.Locals("validatedAdhocBooking").(*bookingValidator.AdhocBookingRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	booking := &models.Booking{
		Reference:        uuid.NewString(),
		OwnerID:          userId,
		SubjectID:        reqData.SubjectID,
		GuestName:        reqData.GuestName,
		GuestEmail:       reqData.GuestEmail,
		Title:            reqData.Title,
		Notes:            reqData.Notes,
		BookingStartTime: reqData.Start,
		BookingEndTime:   reqData.End,
		Timezone:         reqData.Timezone,
		Status:           models.BookingStatusUpcoming,
		MeetingType:      reqData.MeetingType,
		MeetingURL:       reqData.ManualValue,
	}

	repo := database.NewBookingRepo(db)
	if err := repo.CreateIfSlotFree(booking); err != nil {
		log.Printf("[BOOKING] Failed to create ad hoc booking: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create booking!", nil)
	}

	meetingErr := provisionMeeting(db, booking)
	if meetingErr != nil {
		log.Printf("[BOOKING] Provisioning failed for %s: %v", booking.Reference, meetingErr)
		return middleware.JsonResponse(c, fiber.StatusCreated, true,
			"Booking created, but no meeting link was attached: "+provisioningMessage(meetingErr),
			fiber.Map{"booking": booking, "meetingError": provisioningMessage(meetingErr)})
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Booking created!", fiber.Map{"booking": booking})
}

// ListHostBookings lists the host's bookings with pagination
func ListHostBookings(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	reqData, ok := c.Locals("validatedListBookings").(*struct {
		Page   *int    `query:"page"`
		Limit  *int    `query:"limit"`
		Status *string `query:"status"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	query := db.Model(&models.Booking{}).Where("owner_id = ?", userId)
	if reqData.Status != nil && *reqData.Status != "" {
		query = query.Where("status = ?", *reqData.Status)
	}

	var total int64
	query.Count(&total)

	offset := (*reqData.Page - 1) * (*reqData.Limit)
	var bookings []models.Booking
	if err := query.Order("booking_start_time ASC").Offset(offset).Limit(*reqData.Limit).Find(&bookings).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch bookings!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Bookings fetched successfully!", fiber.Map{
		"bookings": bookings,
		"total":    total,
		"page":     *reqData.Page,
		"limit":    *reqData.Limit,
	})
}

func ownedUpcomingBooking(db *gorm.DB, bookingID, userId uint) (*models.Booking, error) {
	var booking models.Booking
	if err := db.Where("id = ? AND owner_id = ?", bookingID, userId).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// RescheduleBooking moves an upcoming booking to a new start time. When a
// remote meeting exists it is moved first; the local times are only
// persisted after the provider accepted the change.
func RescheduleBooking(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	reqData, ok := c.Locals("validatedReschedule").(*bookingValidator.RescheduleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	booking, err := ownedUpcomingBooking(db, reqData.BookingID, userId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Booking not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load booking!", nil)
	}
	if booking.Status != models.BookingStatusUpcoming {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Only upcoming bookings can be rescheduled!", nil)
	}
	if !reqData.Start.After(time.Now()) {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "The new start time must be in the future!", nil)
	}

	duration := booking.BookingEndTime.Sub(booking.BookingStartTime)
	newStart := reqData.Start.UTC()
	newEnd := newStart.Add(duration)

	// Optimistic pre-check; the partial unique index is the real guard.
	if booking.PatternID != nil {
		var count int64
		if err := db.Model(&models.Booking{}).
			Where("pattern_id = ? AND booking_start_time = ? AND status <> ? AND id <> ?",
				*booking.PatternID, newStart, models.BookingStatusCancelled, booking.ID).
			Count(&count).Error; err == nil && count > 0 {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "The new slot is already booked!", nil)
		}
	}

	if booking.ProviderMeetingID != "" {
		providerName, hasProvider := utils.ProviderNameFor(booking.MeetingType)
		if hasProvider {
			err := utils.MeetingProvisioner().UpdateMeeting(booking.OwnerID, providerName, booking.ProviderMeetingID, meeting.MeetingRequest{
				Title:       booking.Title,
				Description: booking.Notes,
				Start:       newStart,
				End:         newEnd,
				Timezone:    booking.Timezone,
			})
			if err != nil {
				log.Printf("[BOOKING] Provider update failed for %s: %v", booking.Reference, err)
				return middleware.JsonResponse(c, fiber.StatusBadGateway, false,
					"The meeting could not be moved: "+provisioningMessage(err), nil)
			}
		}
	}

	err = db.Model(booking).Updates(map[string]interface{}{
		"booking_start_time": newStart,
		"booking_end_time":   newEnd,
		"reminder_sent":      false,
	}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "The new slot is already booked!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reschedule booking!", nil)
	}
	booking.BookingStartTime = newStart
	booking.BookingEndTime = newEnd

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Booking rescheduled!", fiber.Map{"booking": booking})
}

// CancelBooking transitions an upcoming booking to CANCELLED. The local
// transition is authoritative; remote meeting cleanup is best-effort and a
// meeting that is already gone upstream is fine.
func CancelBooking(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	reqData, ok := c.Locals("validatedCancel").(*bookingValidator.BookingIDRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	booking, err := ownedUpcomingBooking(db, reqData.BookingID, userId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Booking not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load booking!", nil)
	}
	if booking.Status != models.BookingStatusUpcoming {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Only upcoming bookings can be cancelled!", nil)
	}

	now := time.Now().UTC()
	if err := db.Model(booking).Updates(map[string]interface{}{
		"status":       models.BookingStatusCancelled,
		"cancelled_at": now,
	}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to cancel booking!", nil)
	}
	booking.Status = models.BookingStatusCancelled
	booking.CancelledAt = &now

	if booking.ProviderMeetingID != "" {
		if providerName, hasProvider := utils.ProviderNameFor(booking.MeetingType); hasProvider {
			if err := utils.MeetingProvisioner().DeleteMeeting(booking.OwnerID, providerName, booking.ProviderMeetingID); err != nil {
				log.Printf("[BOOKING] Remote meeting cleanup failed for %s: %v", booking.Reference, err)
			}
		}
	}

	go func(b models.Booking) {
		db := database.Database.Db
		if email := b.AttendeeEmail(db); email != "" {
			utils.SendBookingCancellation(b.AttendeeName(db), email, &b)
		}
	}(*booking)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Booking cancelled!", fiber.Map{"booking": booking})
}

// RetryMeeting re-attempts provisioning for a confirmed booking that has no
// meeting link yet.
func RetryMeeting(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	reqData, ok := c.Locals("validatedRetryMeeting").(*bookingValidator.BookingIDRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	booking, err := ownedUpcomingBooking(db, reqData.BookingID, userId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Booking not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load booking!", nil)
	}
	if booking.Status != models.BookingStatusUpcoming {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Only upcoming bookings can get a meeting link!", nil)
	}
	if _, hasProvider := utils.ProviderNameFor(booking.MeetingType); !hasProvider {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "This booking does not use a meeting provider!", nil)
	}
	if booking.MeetingURL != "" {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "The booking already has a meeting link.", fiber.Map{"booking": booking})
	}

	if err := provisionMeeting(db, booking); err != nil {
		log.Printf("[BOOKING] Retry provisioning failed for %s: %v", booking.Reference, err)
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, provisioningMessage(err), nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Meeting link attached!", fiber.Map{"booking": booking})
}
