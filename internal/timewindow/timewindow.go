package timewindow

import (
	"time"

	"booking-api/internal/apperrors"
)

// DefaultPadding is added on each side of a day/month query window so that
// events starting just before or after local midnight are still fetched when
// the provider is queried in UTC. 120 minutes covers any realistic fixed
// offset between the query zone and UTC.
const DefaultPadding = 120 * time.Minute

// Date is a calendar date in the booking timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses "YYYY-MM-DD" and rejects impossible dates.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, apperrors.Validationf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Rule maps a calendar date to a UTC offset. It is either a fixed offset or
// a month-range DST approximation (e.g. April through September = summer
// offset). Exactly one offset results for any date; no transition-hour
// ambiguity is modeled.
type Rule struct {
	stdOffsetMin int
	dstOffsetMin int
	dstStart     time.Month
	dstEnd       time.Month
	hasDST       bool
}

// Fixed returns a rule with a constant UTC offset in minutes.
func Fixed(offsetMinutes int) Rule {
	return Rule{stdOffsetMin: offsetMinutes}
}

// MonthDST returns a rule that uses dstOffsetMinutes for dates whose month
// falls inside [dstStart, dstEnd] and stdOffsetMinutes otherwise. A start
// month after the end month wraps around the year (southern hemisphere).
func MonthDST(stdOffsetMinutes, dstOffsetMinutes int, dstStart, dstEnd time.Month) Rule {
	return Rule{
		stdOffsetMin: stdOffsetMinutes,
		dstOffsetMin: dstOffsetMinutes,
		dstStart:     dstStart,
		dstEnd:       dstEnd,
		hasDST:       true,
	}
}

// OffsetMinutes resolves the rule to a single UTC offset for the date.
func (r Rule) OffsetMinutes(d Date) int {
	if !r.hasDST {
		return r.stdOffsetMin
	}
	m := d.Month
	var inDST bool
	if r.dstStart <= r.dstEnd {
		inDST = m >= r.dstStart && m <= r.dstEnd
	} else {
		inDST = m >= r.dstStart || m <= r.dstEnd
	}
	if inDST {
		return r.dstOffsetMin
	}
	return r.stdOffsetMin
}

// SlotRange converts a local wall-clock slot to its UTC instant range.
// Local time equals UTC plus the offset, so the offset is subtracted.
func (r Rule) SlotRange(d Date, hour, minute, durationMinutes int) (time.Time, time.Time, error) {
	if d.Month < time.January || d.Month > time.December {
		return time.Time{}, time.Time{}, apperrors.DateRangef("month %d out of range", d.Month)
	}
	if d.Day < 1 || d.Day > DaysInMonth(d.Year, d.Month) {
		return time.Time{}, time.Time{}, apperrors.DateRangef("day %d out of range for %d-%02d", d.Day, d.Year, d.Month)
	}
	if hour < 0 || hour > 23 {
		return time.Time{}, time.Time{}, apperrors.DateRangef("hour %d out of range", hour)
	}
	if minute < 0 || minute > 59 {
		return time.Time{}, time.Time{}, apperrors.DateRangef("minute %d out of range", minute)
	}
	if durationMinutes <= 0 {
		return time.Time{}, time.Time{}, apperrors.DateRangef("duration %d must be positive", durationMinutes)
	}
	wall := time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, time.UTC)
	start := wall.Add(-time.Duration(r.OffsetMinutes(d)) * time.Minute)
	return start, start.Add(time.Duration(durationMinutes) * time.Minute), nil
}

// LocalMidnight returns the UTC instant of local midnight on d.
func (r Rule) LocalMidnight(d Date) time.Time {
	wall := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return wall.Add(-time.Duration(r.OffsetMinutes(d)) * time.Minute)
}

// DayWindow returns the UTC instants bounding local midnight-to-midnight of
// d, expanded by padding on each side.
func (r Rule) DayWindow(d Date, padding time.Duration) (time.Time, time.Time) {
	return r.LocalMidnight(d).Add(-padding), r.LocalMidnight(d.AddDays(1)).Add(padding)
}

// MonthWindow returns the padded UTC window covering the whole local month.
func (r Rule) MonthWindow(year int, month time.Month, padding time.Duration) (time.Time, time.Time) {
	first := Date{Year: year, Month: month, Day: 1}
	nextFirst := first.AddDays(DaysInMonth(year, month))
	return r.LocalMidnight(first).Add(-padding), r.LocalMidnight(nextFirst).Add(padding)
}

// Wall converts a UTC instant back to the local date and wall-clock time
// under the rule. The offset is picked from the local month after applying
// the standard offset first, which is exact everywhere except instants
// within the offset delta of a month boundary.
func (r Rule) Wall(t time.Time) (Date, int, int) {
	guess := t.UTC().Add(time.Duration(r.stdOffsetMin) * time.Minute)
	d := Date{Year: guess.Year(), Month: guess.Month(), Day: guess.Day()}
	local := t.UTC().Add(time.Duration(r.OffsetMinutes(d)) * time.Minute)
	return Date{Year: local.Year(), Month: local.Month(), Day: local.Day()}, local.Hour(), local.Minute()
}
