package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotateBlocksBookedSlot(t *testing.T) {
	p := Pattern{
		ID:              7,
		DurationMinutes: 60,
		Schedule: WeekSchedule{
			DayMon: {{Start: "09:00", End: "12:00"}},
			DayWed: {{Start: "09:00", End: "12:00"}},
		},
		Location:  time.UTC,
		DateStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	windowStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	slots := Expand(p, windowStart, windowStart.AddDate(0, 0, 7), now)
	require.Len(t, slots, 6)

	booked := []BookedSlot{{PatternID: 7, Start: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)}}
	annotated := Annotate(slots, booked, nil)
	require.Len(t, annotated, 6)

	blocked := 0
	for _, a := range annotated {
		if !a.Bookable {
			blocked++
			assert.True(t, a.Start.Equal(booked[0].Start))
		}
	}
	assert.Equal(t, 1, blocked)
}

func TestAnnotateComparesInstantsNotSerializations(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	slot := Slot{
		PatternID: 3,
		Start:     time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		End:       time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
	}
	// Same instant, different zone representation.
	booked := []BookedSlot{{PatternID: 3, Start: time.Date(2025, 3, 10, 15, 30, 0, 0, kolkata)}}

	annotated := Annotate([]Slot{slot}, booked, nil)
	require.Len(t, annotated, 1)
	assert.False(t, annotated[0].Bookable)
}

func TestAnnotateIgnoresOtherPatterns(t *testing.T) {
	slot := Slot{
		PatternID: 3,
		Start:     time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		End:       time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
	}
	booked := []BookedSlot{{PatternID: 4, Start: slot.Start}}

	annotated := Annotate([]Slot{slot}, booked, nil)
	require.Len(t, annotated, 1)
	assert.True(t, annotated[0].Bookable)
}

func TestAnnotateBlocksBusyIntervals(t *testing.T) {
	slots := []Slot{
		{PatternID: 1, Start: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), End: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)},
		{PatternID: 1, Start: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), End: time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)},
	}
	// Busy 09:30-10:00 overlaps the first slot only; interval ends are exclusive.
	busy := []Interval{{
		Start: time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
	}}

	annotated := Annotate(slots, nil, busy)
	require.Len(t, annotated, 2)
	assert.False(t, annotated[0].Bookable)
	assert.True(t, annotated[1].Bookable)
}
