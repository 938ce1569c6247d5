package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9*60+30, m)

	for _, bad := range []string{"9", "24:00", "09:60", "ab:cd", ""} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestWeekdayCode(t *testing.T) {
	assert.Equal(t, DayMon, WeekdayCode(time.Monday))
	assert.Equal(t, DaySun, WeekdayCode(time.Sunday))
}

func TestValidateSchedule(t *testing.T) {
	ok := WeekSchedule{
		DayMon: {{Start: "09:00", End: "12:00"}, {Start: "14:00", End: "17:00"}},
	}
	assert.NoError(t, ValidateSchedule(ok, 30))

	var vErr *ValidationError

	// start >= end
	bad := WeekSchedule{DayMon: {{Start: "12:00", End: "09:00"}}}
	err := ValidateSchedule(bad, 30)
	require.ErrorAs(t, err, &vErr)

	// overlapping ranges within a day
	bad = WeekSchedule{DayMon: {{Start: "09:00", End: "12:00"}, {Start: "11:00", End: "13:00"}}}
	require.ErrorAs(t, ValidateSchedule(bad, 30), &vErr)

	// duration does not fit the shortest configured range
	bad = WeekSchedule{DayMon: {{Start: "09:00", End: "09:20"}}}
	require.ErrorAs(t, ValidateSchedule(bad, 30), &vErr)

	// unknown day code
	bad = WeekSchedule{"FUNDAY": {{Start: "09:00", End: "12:00"}}}
	require.ErrorAs(t, ValidateSchedule(bad, 30), &vErr)

	// empty schedule
	require.ErrorAs(t, ValidateSchedule(WeekSchedule{}, 30), &vErr)

	// non-positive duration
	require.ErrorAs(t, ValidateSchedule(ok, 0), &vErr)
}

func TestOverlaps(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2025, 3, 10, h, 0, 0, 0, time.UTC) }

	assert.True(t, Overlaps(at(9), at(11), at(10), at(12)))
	assert.True(t, Overlaps(at(10), at(12), at(9), at(11)))
	assert.False(t, Overlaps(at(9), at(10), at(10), at(11)), "touching intervals do not overlap")
	assert.True(t, Overlaps(at(9), at(12), at(10), at(11)), "containment overlaps")
}
