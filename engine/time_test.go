package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnos/schedule-engine/engine"
)

// =============================================================================
// CLOCK PARSING
// =============================================================================

func TestParseClock_Valid(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"08:00", 480},
		{"8:30", 510},
		{"23:59", 1439},
	}
	for _, tc := range cases {
		got, ok := engine.ParseClock(tc.in)
		require.True(t, ok, "ParseClock(%q)", tc.in)
		assert.Equal(t, tc.want, got, "ParseClock(%q)", tc.in)
	}
}

func TestParseClock_Invalid(t *testing.T) {
	for _, in := range []string{"", "8", "24:00", "12:60", "ab:cd", "12-30", "12:3", "123:00"} {
		_, ok := engine.ParseClock(in)
		assert.False(t, ok, "ParseClock(%q) should fail", in)
	}
}

func TestIntervalMinutes_Overnight(t *testing.T) {
	// 22:00 -> 06:00 wraps across midnight
	assert.Equal(t, 480, engine.IntervalMinutes("22:00", "06:00"))
	// Equal times read as zero elapsed
	assert.Equal(t, 0, engine.IntervalMinutes("09:00", "09:00"))
	// Plain daytime interval
	assert.Equal(t, 360, engine.IntervalMinutes("08:00", "14:00"))
}

func TestIntervalMinutes_BadInputIsZero(t *testing.T) {
	// One poisoned time string must read as zero elapsed, not an error.
	assert.Equal(t, 0, engine.IntervalMinutes("garbage", "14:00"))
	assert.Equal(t, 0, engine.IntervalMinutes("08:00", ""))
}

// =============================================================================
// DAY DATES AND WINDOWS
// =============================================================================

func TestDayDate_Parse_Roundtrip(t *testing.T) {
	d, err := engine.ParseDayDate("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", d.String())
	assert.Equal(t, time.Monday, d.Weekday())

	_, err = engine.ParseDayDate("10/03/2025")
	assert.Error(t, err)
}

func TestDayDate_AddDays_AcrossMonth(t *testing.T) {
	d := engine.NewDayDate(2025, time.January, 30)
	assert.Equal(t, "2025-02-02", d.AddDays(3).String())
	assert.Equal(t, 3, engine.DaysBetween(d, d.AddDays(3)))
	assert.Equal(t, -3, engine.DaysBetween(d.AddDays(3), d))
}

func TestWeekWindow(t *testing.T) {
	w := engine.WeekWindow(engine.NewDayDate(2025, time.March, 10))
	assert.Equal(t, "2025-03-10", w.Start.String())
	assert.Equal(t, "2025-03-16", w.End.String())
	assert.Len(t, w.Days(), 7)
	assert.True(t, w.Contains(engine.NewDayDate(2025, time.March, 13)))
	assert.False(t, w.Contains(engine.NewDayDate(2025, time.March, 17)))
}

func TestMonthWindow_CalendarMonth(t *testing.T) {
	w := engine.MonthWindow(2025, time.February, 1)
	assert.Equal(t, "2025-02-01", w.Start.String())
	assert.Equal(t, "2025-02-28", w.End.String())
}

func TestMonthWindow_CustomStartDay(t *testing.T) {
	// GIVEN: payroll months start on the 25th
	// THEN: "March" runs Mar 25 .. Apr 24
	w := engine.MonthWindow(2025, time.March, 25)
	assert.Equal(t, "2025-03-25", w.Start.String())
	assert.Equal(t, "2025-04-24", w.End.String())
}

func TestMonthWindow_InvalidStartDayFallsBack(t *testing.T) {
	w := engine.MonthWindow(2025, time.March, 31)
	assert.Equal(t, "2025-03-01", w.Start.String())
	assert.Equal(t, "2025-03-31", w.End.String())
}
