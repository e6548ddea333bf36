package availability

import (
	"context"
	"time"

	"go.uber.org/zap"

	"booking-api/internal/apperrors"
	"booking-api/internal/calendar"
	"booking-api/internal/slotpolicy"
	"booking-api/internal/timewindow"
)

// Service answers availability queries against the calendar provider.
// It holds no mutable state; every query re-derives availability from a
// fresh provider read, so the provider stays the single source of truth.
type Service struct {
	gw      calendar.Gateway
	policy  slotpolicy.Policy
	rule    timewindow.Rule
	padding time.Duration
	log     *zap.Logger
}

func NewService(gw calendar.Gateway, policy slotpolicy.Policy, rule timewindow.Rule, log *zap.Logger) *Service {
	return &Service{
		gw:      gw,
		policy:  policy,
		rule:    rule,
		padding: timewindow.DefaultPadding,
		log:     log,
	}
}

// DaySlots returns the open slots on the given local date.
func (s *Service) DaySlots(ctx context.Context, d timewindow.Date) ([]Slot, error) {
	from, to := s.rule.DayWindow(d, s.padding)
	events, err := s.gw.ListEvents(ctx, from, to)
	if err != nil {
		s.log.Error("calendar fetch failed",
			zap.String("date", d.String()),
			zap.Time("window_start", from),
			zap.Time("window_end", to),
			zap.Error(err))
		return nil, err
	}
	return OpenSlots(d, s.policy.Slots(), s.busyFromEvents(events), s.rule)
}

// MonthUnavailableDates returns the dates in the month with zero open slots.
// The month's events are fetched in a single provider call and reused for
// each day's pure computation; that reuse never outlives this request.
func (s *Service) MonthUnavailableDates(ctx context.Context, year int, month time.Month) ([]timewindow.Date, error) {
	if month < time.January || month > time.December {
		return nil, apperrors.Validationf("month %d out of range", month)
	}
	if year < 1 || year > 9999 {
		return nil, apperrors.Validationf("year %d out of range", year)
	}

	from, to := s.rule.MonthWindow(year, month, s.padding)
	events, err := s.gw.ListEvents(ctx, from, to)
	if err != nil {
		s.log.Error("calendar fetch failed",
			zap.Int("year", year),
			zap.Int("month", int(month)),
			zap.Error(err))
		return nil, err
	}
	busy := s.busyFromEvents(events)
	defs := s.policy.Slots()

	var unavailable []timewindow.Date
	for day := 1; day <= timewindow.DaysInMonth(year, month); day++ {
		d := timewindow.Date{Year: year, Month: month, Day: day}
		open, err := OpenSlots(d, defs, busy, s.rule)
		if err != nil {
			return nil, err
		}
		if len(open) == 0 {
			unavailable = append(unavailable, d)
		}
	}
	return unavailable, nil
}

// busyFromEvents maps provider events to busy intervals. Date-only events
// occupy the full local day(s) in the booking timezone.
func (s *Service) busyFromEvents(events []calendar.Event) []BusyInterval {
	busy := make([]BusyInterval, 0, len(events))
	for _, ev := range events {
		start, end := ev.Start, ev.End
		if ev.AllDay {
			sd := timewindow.Date{Year: ev.Start.Year(), Month: ev.Start.Month(), Day: ev.Start.Day()}
			ed := timewindow.Date{Year: ev.End.Year(), Month: ev.End.Month(), Day: ev.End.Day()}
			start = s.rule.LocalMidnight(sd)
			end = s.rule.LocalMidnight(ed) // provider end date is exclusive
			if !end.After(start) {
				end = s.rule.LocalMidnight(sd.AddDays(1))
			}
		}
		if !end.After(start) {
			continue
		}
		busy = append(busy, BusyInterval{Start: start, End: end})
	}
	return busy
}
