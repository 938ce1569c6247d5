package scheduling

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Weekday codes used in weekly schedules
const (
	DayMon = "MON"
	DayTue = "TUE"
	DayWed = "WED"
	DayThu = "THU"
	DayFri = "FRI"
	DaySat = "SAT"
	DaySun = "SUN"
)

var weekdayCodes = map[time.Weekday]string{
	time.Monday:    DayMon,
	time.Tuesday:   DayTue,
	time.Wednesday: DayWed,
	time.Thursday:  DayThu,
	time.Friday:    DayFri,
	time.Saturday:  DaySat,
	time.Sunday:    DaySun,
}

// WeekdayCode maps a time.Weekday to its schedule key (MON..SUN).
func WeekdayCode(d time.Weekday) string {
	return weekdayCodes[d]
}

// IsValidDayCode reports whether code is one of MON..SUN.
func IsValidDayCode(code string) bool {
	switch code {
	case DayMon, DayTue, DayWed, DayThu, DayFri, DaySat, DaySun:
		return true
	}
	return false
}

// TimeRange is a time-of-day range in "HH:mm", local to the pattern's timezone.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WeekSchedule maps weekday codes to the day's availability ranges.
type WeekSchedule map[string][]TimeRange

// ValidationError rejects a malformed pattern or schedule before expansion.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ParseClock parses "HH:mm" into minutes since midnight.
func ParseClock(v string) (int, error) {
	parts := strings.Split(v, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:mm", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", v)
	}
	return h*60 + m, nil
}

// Minutes returns the range bounds as minutes since midnight.
func (r TimeRange) Minutes() (start, end int, err error) {
	start, err = ParseClock(r.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err = ParseClock(r.End)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ValidateSchedule checks a weekly schedule against the invariants enforced
// at pattern-save time: known day codes, start < end for every range, ranges
// within a day disjoint, and the slot duration fitting at least once in every
// configured range.
func ValidateSchedule(schedule WeekSchedule, durationMinutes int) error {
	if durationMinutes <= 0 {
		return &ValidationError{Message: "duration must be greater than zero"}
	}
	configured := false
	for day, ranges := range schedule {
		if !IsValidDayCode(day) {
			return &ValidationError{Message: fmt.Sprintf("unknown day code %q", day)}
		}
		type span struct{ start, end int }
		spans := make([]span, 0, len(ranges))
		for _, r := range ranges {
			start, end, err := r.Minutes()
			if err != nil {
				return &ValidationError{Message: err.Error()}
			}
			if start >= end {
				return &ValidationError{Message: fmt.Sprintf("%s: range %s-%s must start before it ends", day, r.Start, r.End)}
			}
			if end-start < durationMinutes {
				return &ValidationError{Message: fmt.Sprintf("%s: range %s-%s is shorter than the slot duration", day, r.Start, r.End)}
			}
			spans = append(spans, span{start, end})
			configured = true
		}
		sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
		for i := 1; i < len(spans); i++ {
			if spans[i].start < spans[i-1].end {
				return &ValidationError{Message: fmt.Sprintf("%s: ranges overlap", day)}
			}
		}
	}
	if !configured {
		return &ValidationError{Message: "schedule has no time ranges"}
	}
	return nil
}
