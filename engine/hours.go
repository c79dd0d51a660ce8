/*
hours.go - Computable hours and the normal/overtime split

PURPOSE:
  Implements the two numeric rules everything downstream depends on:

  1. Computable minutes of a single shift assignment:
     - Split assignment (turno cortado): interval1 + interval2, and the
       break is NEVER deducted, no matter how long the total is.
     - Continuous assignment: interval1; if it reaches the configured
       threshold, the break is deducted, floored at zero.
     - End <= start wraps overnight (modulo 24h).

  2. Per-assignment normal/overtime split:
     Each assignment is split against HorasNormalesPorDia on its own, and
     day totals sum the already-split fields. Two 5h shifts on one day under
     an 8h threshold are 10h normal, 0h extra. Overtime is computed per
     cell; do not "fix" this by splitting a combined day total.

UNITS:
  Everything here is integer minutes. MinutesToHours converts to decimal
  hours at the output boundary.
*/
package engine

import "github.com/shopspring/decimal"

var sixty = decimal.NewFromInt(60)

// MinutesToHours converts whole minutes to decimal hours.
func MinutesToHours(m int) decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(sixty)
}

// ComputableMinutes returns the post-break-deduction minutes of one
// assignment. Only type "shift" with both times set contributes; every
// other type is counted elsewhere (stats.go) and returns 0 here.
func ComputableMinutes(a Assignment, cfg WorkingHoursConfig) int {
	if a.Type != TypeShift || a.StartTime == "" || a.EndTime == "" {
		return 0
	}

	if a.IsSplit() {
		return IntervalMinutes(a.StartTime, a.EndTime) + IntervalMinutes(a.StartTime2, a.EndTime2)
	}

	minutes := IntervalMinutes(a.StartTime, a.EndTime)
	if threshold := cfg.BreakThresholdMinutes(); threshold > 0 && minutes >= threshold {
		minutes -= cfg.MinutosDescanso
		if minutes < 0 {
			minutes = 0
		}
	}
	return minutes
}

// =============================================================================
// DAY HOURS - Per-assignment split, summed field-wise
// =============================================================================

// DayHours holds computable minutes and their normal/overtime split.
type DayHours struct {
	Computables int
	Normales    int
	Extra       int
}

func (h DayHours) Add(o DayHours) DayHours {
	return DayHours{
		Computables: h.Computables + o.Computables,
		Normales:    h.Normales + o.Normales,
		Extra:       h.Extra + o.Extra,
	}
}

// AssignmentHours splits one assignment's computable minutes against the
// daily normal-hours threshold.
func AssignmentHours(a Assignment, cfg WorkingHoursConfig) DayHours {
	minutes := ComputableMinutes(a, cfg)
	normalDay := cfg.NormalDayMinutes()

	normales := minutes
	if normales > normalDay {
		normales = normalDay
	}
	return DayHours{
		Computables: minutes,
		Normales:    normales,
		Extra:       minutes - normales,
	}
}

// TotalDailyHours folds AssignmentHours over every shift-type assignment in
// a cell and sums each field independently. The split happens per
// assignment, then the splits are summed; a combined duration is never
// re-split.
func TotalDailyHours(assignments []Assignment, cfg WorkingHoursConfig) DayHours {
	var total DayHours
	for _, a := range assignments {
		if a.Type != TypeShift {
			continue
		}
		total = total.Add(AssignmentHours(a, cfg))
	}
	return total
}

// PeriodHours sums TotalDailyHours independently per date. No cross-day
// state: each day is split on its own.
func PeriodHours(days map[DayDate][]Assignment, cfg WorkingHoursConfig) DayHours {
	var total DayHours
	for _, assignments := range days {
		total = total.Add(TotalDailyHours(assignments, cfg))
	}
	return total
}
