package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekdayPattern(t *testing.T) Pattern {
	t.Helper()
	return Pattern{
		ID:              7,
		DurationMinutes: 60,
		Schedule: WeekSchedule{
			DayMon: {{Start: "09:00", End: "12:00"}},
			DayWed: {{Start: "09:00", End: "12:00"}},
		},
		Location:  time.UTC,
		DateStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestExpandWeekScenario(t *testing.T) {
	p := weekdayPattern(t)

	// Window: one week starting Monday 2025-03-10, now = that Monday 08:00.
	windowStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 0, 7)
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	slots := Expand(p, windowStart, windowEnd, now)
	require.Len(t, slots, 6)

	wantStarts := []time.Time{
		time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 12, 11, 0, 0, 0, time.UTC),
	}
	for i, s := range slots {
		assert.True(t, s.Start.Equal(wantStarts[i]), "slot %d start %v", i, s.Start)
		assert.Equal(t, 60*time.Minute, s.End.Sub(s.Start))
		assert.Equal(t, uint(7), s.PatternID)
	}
}

func TestExpandIsDeterministic(t *testing.T) {
	p := weekdayPattern(t)
	windowStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 0, 7)
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	first := Expand(p, windowStart, windowEnd, now)
	second := Expand(p, windowStart, windowEnd, now)
	assert.Equal(t, first, second)
}

func TestExpandDropsPastSlots(t *testing.T) {
	p := weekdayPattern(t)
	windowStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 0, 1)

	// now = Monday 10:00 exactly: the 09:00 slot is past, the 10:00 slot has
	// already begun, so only 11:00 remains.
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	slots := Expand(p, windowStart, windowEnd, now)
	require.Len(t, slots, 1)
	assert.True(t, slots[0].Start.Equal(time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)))

	for _, s := range slots {
		assert.True(t, s.Start.After(now))
	}
}

func TestExpandNoTrailingPartialSlot(t *testing.T) {
	p := Pattern{
		ID:              1,
		DurationMinutes: 30,
		Schedule: WeekSchedule{
			DayMon: {{Start: "09:00", End: "09:50"}},
		},
		Location:  time.UTC,
		DateStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	windowStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	slots := Expand(p, windowStart, windowStart.AddDate(0, 0, 1), windowStart)

	// 09:00-09:30 fits, 09:30-10:00 would overrun 09:50.
	require.Len(t, slots, 1)
	assert.True(t, slots[0].Start.Equal(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)))
	assert.True(t, slots[0].End.Equal(time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)))
}

func TestExpandRespectsDateRange(t *testing.T) {
	endDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	p := weekdayPattern(t)
	p.DateEnd = &endDate

	windowStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 0, 7)
	now := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)

	// Pattern ends on the Monday: the Wednesday slots must not appear.
	slots := Expand(p, windowStart, windowEnd, now)
	require.Len(t, slots, 3)
	for _, s := range slots {
		assert.Equal(t, time.Monday, s.Start.Weekday())
	}

	// Window entirely before the pattern starts yields nothing.
	p.DateStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	p.DateEnd = nil
	assert.Empty(t, Expand(p, windowStart, windowEnd, now))
}

func TestExpandUsesPatternTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	p := weekdayPattern(t)
	p.Location = loc

	windowStart := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
	windowEnd := windowStart.AddDate(0, 0, 1)
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)

	slots := Expand(p, windowStart, windowEnd, now)
	require.Len(t, slots, 3)
	// 09:00 New York is 13:00 UTC during DST.
	assert.True(t, slots[0].Start.Equal(time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)))
}

func TestExpandKeepsWallClockAcrossDSTTransitions(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	p := Pattern{
		ID:              3,
		DurationMinutes: 60,
		Schedule: WeekSchedule{
			DaySun: {{Start: "09:00", End: "11:00"}},
		},
		Location:  loc,
		DateStart: time.Date(2025, 1, 1, 0, 0, 0, 0, loc),
	}

	// Spring forward: 2025-03-09 has a 23-hour day. 09:00 wall time must stay
	// 09:00, not drift to 10:00 via midnight-offset arithmetic.
	windowStart := time.Date(2025, 3, 9, 0, 0, 0, 0, loc)
	slots := Expand(p, windowStart, windowStart.AddDate(0, 0, 1), windowStart)
	require.Len(t, slots, 2)
	assert.True(t, slots[0].Start.Equal(time.Date(2025, 3, 9, 9, 0, 0, 0, loc)), "got %v", slots[0].Start)
	assert.True(t, slots[0].Start.Equal(time.Date(2025, 3, 9, 13, 0, 0, 0, time.UTC)))

	// Fall back: 2025-11-02 has a 25-hour day, same wall-time expectation.
	windowStart = time.Date(2025, 11, 2, 0, 0, 0, 0, loc)
	slots = Expand(p, windowStart, windowStart.AddDate(0, 0, 1), windowStart)
	require.Len(t, slots, 2)
	assert.True(t, slots[0].Start.Equal(time.Date(2025, 11, 2, 9, 0, 0, 0, loc)), "got %v", slots[0].Start)
	assert.True(t, slots[0].Start.Equal(time.Date(2025, 11, 2, 14, 0, 0, 0, time.UTC)))
}

func TestExpandSkipsUnscheduledDays(t *testing.T) {
	p := weekdayPattern(t)
	windowStart := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC) // Tuesday
	slots := Expand(p, windowStart, windowStart.AddDate(0, 0, 1), windowStart)
	assert.Empty(t, slots)
}
