package database

import (
	"errors"

	"meetly/models"
	"meetly/scheduling"

	"gorm.io/gorm"
)

// ErrSlotAlreadyBooked is the expected loser branch of a slot-claim race.
// Callers handle it as control flow, not as a fault.
var ErrSlotAlreadyBooked = errors.New("slot already booked")

// BookingRepo is the persistence gateway for bookings.
type BookingRepo struct {
	db *gorm.DB
}

func NewBookingRepo(db *gorm.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// CreateIfSlotFree atomically claims (patternID, startTime) and inserts the
// booking. The in-transaction re-check handles the common case and the
// partial unique index is the backstop under real concurrency; either path
// reports ErrSlotAlreadyBooked to the loser. Ad hoc bookings (nil pattern)
// carry no slot claim and insert directly.
func (r *BookingRepo) CreateIfSlotFree(booking *models.Booking) error {
	booking.BookingStartTime = booking.BookingStartTime.UTC()
	booking.BookingEndTime = booking.BookingEndTime.UTC()

	if booking.PatternID == nil {
		return r.db.Create(booking).Error
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Booking{}).
			Where("pattern_id = ? AND booking_start_time = ? AND status <> ?",
				*booking.PatternID, booking.BookingStartTime, models.BookingStatusCancelled).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrSlotAlreadyBooked
		}
		if err := tx.Create(booking).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSlotAlreadyBooked
			}
			return err
		}
		return nil
	})
}

// ListForPattern returns the pattern's bookings, optionally filtered by status.
func (r *BookingRepo) ListForPattern(patternID uint, statusFilter []string) ([]models.Booking, error) {
	query := r.db.Where("pattern_id = ?", patternID)
	if len(statusFilter) > 0 {
		query = query.Where("status IN ?", statusFilter)
	}
	var bookings []models.Booking
	if err := query.Order("booking_start_time ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// ActiveClaims returns the slot claims held by the pattern's non-cancelled
// bookings, in the shape the conflict resolver consumes.
func (r *BookingRepo) ActiveClaims(patternID uint) ([]scheduling.BookedSlot, error) {
	bookings, err := r.ListForPattern(patternID, []string{models.BookingStatusUpcoming, models.BookingStatusCompleted})
	if err != nil {
		return nil, err
	}
	claims := make([]scheduling.BookedSlot, 0, len(bookings))
	for _, b := range bookings {
		claims = append(claims, scheduling.BookedSlot{PatternID: patternID, Start: b.BookingStartTime})
	}
	return claims, nil
}

// HasBookings reports whether a pattern ever produced a booking. Pattern
// deletion only cascades when it never did.
func (r *BookingRepo) HasBookings(patternID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Booking{}).Where("pattern_id = ?", patternID).Count(&count).Error
	return count > 0, err
}
