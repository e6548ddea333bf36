package availability

import (
	"time"

	"booking-api/internal/slotpolicy"
	"booking-api/internal/timewindow"
)

// BusyInterval is an occupied UTC time range derived from a calendar event.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// Slot is an open bookable window, produced fresh per request and never
// persisted.
type Slot struct {
	Date  timewindow.Date
	Label string
	Start time.Time
	End   time.Time
}

// OpenSlots returns the policy slots on date that do not overlap any busy
// interval, in policy order (chronological by construction). Intervals are
// half-open: a busy interval ending exactly at a slot start, or starting
// exactly at its end, does not conflict. Deterministic for identical inputs.
func OpenSlots(date timewindow.Date, defs []slotpolicy.SlotDefinition, busy []BusyInterval, rule timewindow.Rule) ([]Slot, error) {
	open := make([]Slot, 0, len(defs))
	for _, def := range defs {
		start, end, err := rule.SlotRange(date, def.Start.Hour, def.Start.Minute, def.DurationMinutes)
		if err != nil {
			return nil, err
		}
		if overlapsAny(start, end, busy) {
			continue
		}
		open = append(open, Slot{Date: date, Label: def.Label(), Start: start, End: end})
	}
	return open, nil
}

func overlapsAny(start, end time.Time, busy []BusyInterval) bool {
	for _, b := range busy {
		// [start,end) overlaps [b.Start,b.End) iff start < b.End && b.Start < end.
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}
