package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// DAY DATE - Calendar day, the engine's only notion of "when"
// =============================================================================

// DayDate is a plain calendar day. The engine never reasons below day
// granularity except through clock strings ("HH:MM") inside a single day,
// so a comparable value type keeps cell maps simple.
type DayDate struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDayDate(year int, month time.Month, day int) DayDate {
	return DayDate{Year: year, Month: month, Day: day}
}

// ParseDayDate parses "YYYY-MM-DD".
func ParseDayDate(s string) (DayDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return DayDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDayDate(t.Year(), t.Month(), t.Day()), nil
}

func (d DayDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d DayDate) String() string { return d.Time().Format("2006-01-02") }

func (d DayDate) IsZero() bool { return d == DayDate{} }

func (d DayDate) AddDays(n int) DayDate {
	t := d.Time().AddDate(0, 0, n)
	return NewDayDate(t.Year(), t.Month(), t.Day())
}

func (d DayDate) Weekday() time.Weekday { return d.Time().Weekday() }

// MarshalJSON encodes as "YYYY-MM-DD".
func (d DayDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *DayDate) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid date %s", data)
	}
	parsed, err := ParseDayDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Comparison
func (d DayDate) Before(other DayDate) bool { return d.Time().Before(other.Time()) }
func (d DayDate) After(other DayDate) bool  { return d.Time().After(other.Time()) }
func (d DayDate) Equal(other DayDate) bool  { return d == other }

func (d DayDate) BeforeOrEqual(other DayDate) bool { return !d.After(other) }
func (d DayDate) AfterOrEqual(other DayDate) bool  { return !d.Before(other) }

// DaysBetween returns the signed number of days from `from` to `to`.
func DaysBetween(from, to DayDate) int {
	return int(to.Time().Sub(from.Time()).Hours() / 24)
}

// =============================================================================
// WINDOW - Inclusive day range used by the stats reducers
// =============================================================================

type Window struct {
	Start DayDate
	End   DayDate
}

func (w Window) Contains(d DayDate) bool {
	return d.AfterOrEqual(w.Start) && d.BeforeOrEqual(w.End)
}

func (w Window) String() string {
	return "[" + w.Start.String() + ", " + w.End.String() + "]"
}

// Days returns every day in the window in order.
func (w Window) Days() []DayDate {
	var days []DayDate
	for d := w.Start; d.BeforeOrEqual(w.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// WeekWindow is the 7-day window of a stored schedule.
func WeekWindow(weekStart DayDate) Window {
	return Window{Start: weekStart, End: weekStart.AddDays(6)}
}

// MonthWindow returns the window of a custom month. Payroll months do not
// have to start on the 1st: with startDay=25, March runs Mar 25 .. Apr 24.
// A startDay outside [2..28] falls back to the plain calendar month.
func MonthWindow(year int, month time.Month, startDay int) Window {
	if startDay < 2 || startDay > 28 {
		startDay = 1
	}
	start := time.Date(year, month, startDay, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).AddDate(0, 0, -1)
	return Window{
		Start: NewDayDate(start.Year(), start.Month(), start.Day()),
		End:   NewDayDate(end.Year(), end.Month(), end.Day()),
	}
}

// =============================================================================
// CLOCK TIME - "HH:MM" strings and elapsed minutes
// =============================================================================

const minutesPerDay = 24 * 60

// ParseClock parses "HH:MM" (or "H:MM") into minutes since midnight.
// Returns ok=false for anything unparseable; callers treat that as zero
// elapsed time rather than an error, so one bad cell cannot poison a fold.
func ParseClock(s string) (int, bool) {
	if len(s) < 4 || len(s) > 5 {
		return 0, false
	}
	sep := -1
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			sep = i
			break
		}
	}
	if sep < 1 || len(s)-sep-1 != 2 {
		return 0, false
	}
	h, ok := parseDigits(s[:sep])
	if !ok || h > 23 {
		return 0, false
	}
	m, ok := parseDigits(s[sep+1:])
	if !ok || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func parseDigits(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// IntervalMinutes returns the elapsed minutes from start to end, treating
// end <= start as an overnight wrap (22:00 -> 06:00 is 480 minutes).
// Unparseable inputs contribute zero.
func IntervalMinutes(start, end string) int {
	s, ok := ParseClock(start)
	if !ok {
		return 0
	}
	e, ok := ParseClock(end)
	if !ok {
		return 0
	}
	return ((e - s) + minutesPerDay) % minutesPerDay
}
