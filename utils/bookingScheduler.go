package utils

import (
	"log"
	"time"

	"meetly/database"
	"meetly/models"

	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[BOOKING-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// InitializeBookingScheduler starts the background jobs that advance booking
// state and send reminders.
func InitializeBookingScheduler() {
	logScheduler("Initializing booking scheduler...")

	c := cron.New()

	// Complete finished bookings every 10 minutes
	c.AddFunc("*/10 * * * *", func() {
		CompletePastBookings()
	})

	// Reminder mails daily at 8 AM server time
	c.AddFunc("0 8 * * *", func() {
		SendUpcomingReminders()
	})

	c.Start()
	logScheduler("Booking scheduler started")
}

// CompletePastBookings transitions UPCOMING bookings whose end time has
// passed to COMPLETED. The transition is forward-only; cancelled bookings
// are never touched.
func CompletePastBookings() {
	db := database.Database.Db
	now := time.Now().UTC()

	result := db.Model(&models.Booking{}).
		Where("status = ? AND booking_end_time <= ?", models.BookingStatusUpcoming, now).
		Update("status", models.BookingStatusCompleted)
	if result.Error != nil {
		logScheduler("Error completing past bookings: " + result.Error.Error())
		return
	}
	if result.RowsAffected > 0 {
		logScheduler("Marked bookings as completed")
	}
}

// SendUpcomingReminders mails attendees of bookings starting within the next
// 24 hours that have not been reminded yet.
func SendUpcomingReminders() {
	db := database.Database.Db
	now := time.Now().UTC()
	cutoff := now.Add(24 * time.Hour)

	var bookings []models.Booking
	if err := db.
		Where("status = ? AND reminder_sent = false", models.BookingStatusUpcoming).
		Where("booking_start_time BETWEEN ? AND ?", now, cutoff).
		Find(&bookings).Error; err != nil {
		logScheduler("Error fetching upcoming bookings: " + err.Error())
		return
	}

	for _, booking := range bookings {
		email := booking.AttendeeEmail(db)
		if email == "" {
			continue
		}
		SendBookingReminder(booking.AttendeeName(db), email, &booking)
		if err := db.Model(&booking).Update("reminder_sent", true).Error; err != nil {
			logScheduler("Error marking reminder sent: " + err.Error())
		}
	}
}
