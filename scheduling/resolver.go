package scheduling

import "time"

// BookedSlot identifies an existing non-cancelled booking's claim on a slot.
type BookedSlot struct {
	PatternID uint
	Start     time.Time
}

// Interval is an externally sourced busy window (e.g. from a connected
// calendar). Advisory only; it never replaces the write-time uniqueness check.
type Interval struct {
	Start time.Time
	End   time.Time
}

// AnnotatedSlot is a slot plus its display-time bookability hint.
type AnnotatedSlot struct {
	Slot
	Bookable bool `json:"bookable"`
}

// Annotate marks each candidate slot bookable or blocked. A slot is blocked
// when a non-cancelled booking holds the same (patternID, start) claim —
// compared at instant precision, so differing serializations of one UTC
// instant still match — or when it overlaps a supplied busy interval.
//
// The result is an optimistic hint for display. The authoritative guard is
// the atomic check-and-insert performed at booking-creation time.
func Annotate(slots []Slot, booked []BookedSlot, busy []Interval) []AnnotatedSlot {
	out := make([]AnnotatedSlot, 0, len(slots))
	for _, s := range slots {
		bookable := true
		for _, b := range booked {
			if b.PatternID == s.PatternID && b.Start.Equal(s.Start) {
				bookable = false
				break
			}
		}
		if bookable {
			for _, iv := range busy {
				if Overlaps(s.Start, s.End, iv.Start, iv.End) {
					bookable = false
					break
				}
			}
		}
		out = append(out, AnnotatedSlot{Slot: s, Bookable: bookable})
	}
	return out
}
