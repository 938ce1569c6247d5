package scheduling

import "time"

// Pattern is the expansion input: a validated recurring weekly availability.
// Callers run ValidateSchedule at save time; Expand assumes the schedule is
// well formed and only defends against past-time leakage.
type Pattern struct {
	ID              uint
	DurationMinutes int
	Schedule        WeekSchedule
	Location        *time.Location
	DateStart       time.Time  // first day the pattern applies (date semantics)
	DateEnd         *time.Time // nil = open-ended
}

// Slot is a concrete bookable interval derived from a pattern. Identity is
// (PatternID, Start); slots are computed on read, never stored.
type Slot struct {
	PatternID uint      `json:"patternId"`
	Start     time.Time `json:"startTime"`
	End       time.Time `json:"endTime"`
}

// Expand materializes the slots of p that begin inside [windowStart,
// windowEnd) and start strictly after now. Slots are walked per day and per
// range in DurationMinutes steps; a slot is only emitted when it fits fully
// inside its range. Output is ordered by ascending start time and is
// deterministic for identical inputs.
func Expand(p Pattern, windowStart, windowEnd, now time.Time) []Slot {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}

	// Date-range bounds carry date semantics; rebuild them in the pattern's
	// own timezone so a UTC-midnight date column never shifts the boundary day.
	rangeStart := time.Date(p.DateStart.Year(), p.DateStart.Month(), p.DateStart.Day(), 0, 0, 0, 0, loc)
	var rangeEnd time.Time
	if p.DateEnd != nil {
		rangeEnd = time.Date(p.DateEnd.Year(), p.DateEnd.Month(), p.DateEnd.Day(), 0, 0, 0, 0, loc)
	}

	slots := []Slot{}
	day := dayOf(windowStart.In(loc))
	end := windowEnd.In(loc)

	for ; day.Before(end); day = day.AddDate(0, 0, 1) {
		if day.Before(rangeStart) {
			continue
		}
		if p.DateEnd != nil && day.After(rangeEnd) {
			break
		}
		ranges := p.Schedule[WeekdayCode(day.Weekday())]
		for _, r := range ranges {
			startMin, endMin, err := r.Minutes()
			if err != nil {
				continue
			}
			for m := startMin; m+p.DurationMinutes <= endMin; m += p.DurationMinutes {
				// Wall-clock construction, not midnight arithmetic: on a DST
				// transition day the two differ by the shifted hour.
				start := time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, loc)
				if !start.Before(windowStart) && start.Before(windowEnd) && start.After(now) {
					slots = append(slots, Slot{
						PatternID: p.ID,
						Start:     start,
						End:       start.Add(time.Duration(p.DurationMinutes) * time.Minute),
					})
				}
			}
		}
	}
	return slots
}

// dayOf truncates t to midnight in its own location.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
