package database

import (
	"sync"
	"testing"
	"time"

	"meetly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps the in-memory database alive and serializes
	// concurrent transactions the way a server-side database would.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	RunMigrations(db)
	return db
}

func slotBooking(patternID uint, start time.Time) *models.Booking {
	return &models.Booking{
		Reference:        "bk-" + start.UTC().Format("20060102T1504"),
		PatternID:        &patternID,
		OwnerID:          1,
		GuestName:        "Ada",
		GuestEmail:       "ada@example.com",
		Title:            "Intro call",
		BookingStartTime: start,
		BookingEndTime:   start.Add(time.Hour),
		Status:           models.BookingStatusUpcoming,
	}
}

func TestCreateIfSlotFree(t *testing.T) {
	db := testDB(t)
	repo := NewBookingRepo(db)
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	first := slotBooking(7, start)
	first.Reference = "bk-first"
	require.NoError(t, repo.CreateIfSlotFree(first))

	second := slotBooking(7, start)
	second.Reference = "bk-second"
	assert.ErrorIs(t, repo.CreateIfSlotFree(second), ErrSlotAlreadyBooked)

	// Same start on a different pattern is a different slot.
	other := slotBooking(8, start)
	other.Reference = "bk-other-pattern"
	assert.NoError(t, repo.CreateIfSlotFree(other))

	// Differently-zoned representation of the same instant still collides.
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	same := slotBooking(7, time.Date(2025, 3, 10, 15, 30, 0, 0, kolkata))
	same.Reference = "bk-same-instant"
	assert.ErrorIs(t, repo.CreateIfSlotFree(same), ErrSlotAlreadyBooked)
}

func TestCancelledBookingFreesSlot(t *testing.T) {
	db := testDB(t)
	repo := NewBookingRepo(db)
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	first := slotBooking(7, start)
	first.Reference = "bk-cancelled"
	require.NoError(t, repo.CreateIfSlotFree(first))
	require.NoError(t, db.Model(first).Updates(map[string]interface{}{
		"status":       models.BookingStatusCancelled,
		"cancelled_at": time.Now(),
	}).Error)

	second := slotBooking(7, start)
	second.Reference = "bk-rebooked"
	assert.NoError(t, repo.CreateIfSlotFree(second))
}

func TestAdHocBookingsCarryNoClaim(t *testing.T) {
	db := testDB(t)
	repo := NewBookingRepo(db)
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	for i, ref := range []string{"adhoc-1", "adhoc-2"} {
		b := slotBooking(0, start)
		b.PatternID = nil
		b.Reference = ref
		require.NoError(t, repo.CreateIfSlotFree(b), "ad hoc booking %d", i)
	}
}

func TestConcurrentClaimsHaveOneWinner(t *testing.T) {
	db := testDB(t)
	repo := NewBookingRepo(db)
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	const racers = 8
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := slotBooking(7, start)
			b.Reference = "bk-racer-" + string(rune('a'+i))
			errs[i] = repo.CreateIfSlotFree(b)
		}(i)
	}
	wg.Wait()

	winners, losers := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case err == ErrSlotAlreadyBooked:
			losers++
		default:
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, racers-1, losers)
}

func TestActiveClaimsSkipCancelled(t *testing.T) {
	db := testDB(t)
	repo := NewBookingRepo(db)
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	kept := slotBooking(7, start)
	kept.Reference = "bk-kept"
	require.NoError(t, repo.CreateIfSlotFree(kept))

	gone := slotBooking(7, start.Add(time.Hour))
	gone.Reference = "bk-gone"
	require.NoError(t, repo.CreateIfSlotFree(gone))
	require.NoError(t, db.Model(gone).Update("status", models.BookingStatusCancelled).Error)

	claims, err := repo.ActiveClaims(7)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.True(t, claims[0].Start.Equal(start))

	has, err := repo.HasBookings(7)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = repo.HasBookings(99)
	require.NoError(t, err)
	assert.False(t, has)
}
