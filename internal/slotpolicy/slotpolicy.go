package slotpolicy

import (
	"fmt"
	"time"

	"booking-api/internal/apperrors"
)

// TimeOfDay is a wall-clock slot start.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, apperrors.Validationf("invalid time %q, expected HH:MM", s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// SlotDefinition is one candidate bookable window within a day.
type SlotDefinition struct {
	Start           TimeOfDay
	DurationMinutes int
}

func (s SlotDefinition) Label() string { return s.Start.String() }

func (s SlotDefinition) startMinute() int { return s.Start.Hour*60 + s.Start.Minute }

// Policy is the ordered, non-overlapping set of candidate slots for any day.
// Whether it is a fixed list or a grid is a configuration choice made once
// at startup.
type Policy struct {
	slots []SlotDefinition
}

// Fixed builds a policy from an explicit list of daily start times, all
// sharing one duration.
func Fixed(times []TimeOfDay, durationMinutes int) (Policy, error) {
	if len(times) == 0 {
		return Policy{}, apperrors.Configf("slot policy: at least one time required")
	}
	if durationMinutes <= 0 {
		return Policy{}, apperrors.Configf("slot policy: duration must be positive, got %d", durationMinutes)
	}
	slots := make([]SlotDefinition, 0, len(times))
	for _, tod := range times {
		if tod.Hour < 0 || tod.Hour > 23 || tod.Minute < 0 || tod.Minute > 59 {
			return Policy{}, apperrors.Configf("slot policy: time %02d:%02d out of range", tod.Hour, tod.Minute)
		}
		slots = append(slots, SlotDefinition{Start: tod, DurationMinutes: durationMinutes})
	}
	for i := 1; i < len(slots); i++ {
		prev, cur := slots[i-1], slots[i]
		if cur.startMinute() <= prev.startMinute() {
			return Policy{}, apperrors.Configf("slot policy: times must be strictly increasing, %s after %s", cur.Label(), prev.Label())
		}
		if prev.startMinute()+prev.DurationMinutes > cur.startMinute() {
			return Policy{}, apperrors.Configf("slot policy: slots %s and %s overlap", prev.Label(), cur.Label())
		}
	}
	return Policy{slots: slots}, nil
}

// Grid builds consecutive slots from startHour to endHour with step equal to
// the duration. The span must divide evenly into whole slots.
func Grid(startHour, endHour, durationMinutes int) (Policy, error) {
	if startHour < 0 || startHour > 23 || endHour < 1 || endHour > 24 {
		return Policy{}, apperrors.Configf("slot policy: grid hours %d-%d out of range", startHour, endHour)
	}
	if startHour >= endHour {
		return Policy{}, apperrors.Configf("slot policy: grid start hour %d must be before end hour %d", startHour, endHour)
	}
	if durationMinutes <= 0 {
		return Policy{}, apperrors.Configf("slot policy: duration must be positive, got %d", durationMinutes)
	}
	span := (endHour - startHour) * 60
	if span%durationMinutes != 0 {
		return Policy{}, apperrors.Configf("slot policy: %d minutes does not divide the %d-%d grid evenly", durationMinutes, startHour, endHour)
	}
	var slots []SlotDefinition
	for m := startHour * 60; m+durationMinutes <= endHour*60; m += durationMinutes {
		slots = append(slots, SlotDefinition{
			Start:           TimeOfDay{Hour: m / 60, Minute: m % 60},
			DurationMinutes: durationMinutes,
		})
	}
	return Policy{slots: slots}, nil
}

// Slots returns the definitions in chronological order.
func (p Policy) Slots() []SlotDefinition {
	out := make([]SlotDefinition, len(p.slots))
	copy(out, p.slots)
	return out
}

// Match returns the definition whose start equals the given "HH:MM" label.
// Arbitrary minutes not on a policy boundary do not match.
func (p Policy) Match(label string) (SlotDefinition, bool) {
	for _, s := range p.slots {
		if s.Label() == label {
			return s, true
		}
	}
	return SlotDefinition{}, false
}
