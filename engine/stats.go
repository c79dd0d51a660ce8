/*
stats.go - Franco/leave counters and the weekly/monthly reducers

PURPOSE:
  Folds normalized schedule cells into per-employee statistics. The weekly
  and monthly reducers are structurally identical folds over different day
  windows; both are stateless recomputations, safe to run on every refresh.

COUNTING RULES (mutually exclusive per assignment type):
  franco        +1.0 franco credit, no hours
  medio_franco  +0.5 franco credit, hours into HorasMedioFranco from the
                assignment's own times (never into overtime)
  shift         hours via hours.go; a day with any shift hours counts once
                as a worked day
  licencia      one normal day's hours into HorasLicencia; the day counts
                once as a leave day
  nota          nothing

ACCUMULATION:
  Internally integer minutes and half-franco units, so recomputing on
  identical input is bit-identical. Decimal conversion happens once, when
  the accumulator is sealed into EmployeeStats.
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EMPLOYEE STATS - The derived record consumers see
// =============================================================================

type EmployeeStats struct {
	Francos          decimal.Decimal `json:"francos"`
	HorasNormales    decimal.Decimal `json:"horasNormales"`
	HorasExtras      decimal.Decimal `json:"horasExtras"`
	HorasLicencia    decimal.Decimal `json:"horasLicencia"`
	HorasMedioFranco decimal.Decimal `json:"horasMedioFranco"`
	DiasTrabajados   int             `json:"diasTrabajados"`
	DiasLicencia     int             `json:"diasLicencia"`
}

// ZeroStats is the pre-seeded record: every roster employee reports zeros,
// never a missing entry. Built through the same accumulator path as every
// computed record, so recomputation comparisons stay bit-identical.
func ZeroStats() EmployeeStats {
	var acc statsAccumulator
	return acc.seal()
}

// =============================================================================
// ACCUMULATOR - Integer units until the output boundary
// =============================================================================

var two = decimal.NewFromInt(2)

type statsAccumulator struct {
	francoHalves   int
	normalesMin    int
	extrasMin      int
	licenciaMin    int
	medioFrancoMin int
	diasTrabajados int
	diasLicencia   int
}

// addDay folds one day's full assignment list for one employee.
func (s *statsAccumulator) addDay(assignments []Assignment, cfg WorkingHoursConfig) {
	day := TotalDailyHours(assignments, cfg)
	s.normalesMin += day.Normales
	s.extrasMin += day.Extra
	if day.Normales > 0 || day.Extra > 0 {
		s.diasTrabajados++
	}

	leaveDay := false
	for _, a := range assignments {
		switch a.Type {
		case TypeFranco:
			s.francoHalves += 2
		case TypeMedioFranco:
			s.francoHalves++
			s.medioFrancoMin += IntervalMinutes(a.StartTime, a.EndTime)
		case TypeLicencia:
			s.licenciaMin += cfg.NormalDayMinutes()
			leaveDay = true
		}
	}
	if leaveDay {
		s.diasLicencia++
	}
}

func (s *statsAccumulator) seal() EmployeeStats {
	return EmployeeStats{
		Francos:          decimal.NewFromInt(int64(s.francoHalves)).Div(two),
		HorasNormales:    MinutesToHours(s.normalesMin),
		HorasExtras:      MinutesToHours(s.extrasMin),
		HorasLicencia:    MinutesToHours(s.licenciaMin),
		HorasMedioFranco: MinutesToHours(s.medioFrancoMin),
		DiasTrabajados:   s.diasTrabajados,
		DiasLicencia:     s.diasLicencia,
	}
}

// =============================================================================
// REDUCERS
// =============================================================================

// WeeklyStats folds one stored week for every roster employee. A nil
// schedule is legal (a week with no data yet): everyone reports zeros.
func WeeklyStats(roster []Employee, sched *Schedule, cfg Config) (map[string]EmployeeStats, error) {
	if roster == nil {
		return nil, ErrNilRoster
	}
	var window Window
	var schedules []*Schedule
	if sched != nil {
		window = sched.Window()
		schedules = []*Schedule{sched}
	}
	return reduce(roster, schedules, window, cfg), nil
}

// MonthlyStats folds every schedule overlapping the custom month window.
// Cells outside the window contribute nothing even when the underlying week
// straddles the boundary.
func MonthlyStats(roster []Employee, schedules []*Schedule, year int, month time.Month, cfg Config) (map[string]EmployeeStats, error) {
	if roster == nil {
		return nil, ErrNilRoster
	}
	window := MonthWindow(year, month, cfg.Calendar.CustomMonthStartDay)
	return reduce(roster, schedules, window, cfg), nil
}

func reduce(roster []Employee, schedules []*Schedule, window Window, cfg Config) map[string]EmployeeStats {
	accums := make(map[string]*statsAccumulator, len(roster))
	for _, e := range roster {
		accums[e.ID] = &statsAccumulator{}
	}

	for _, sched := range schedules {
		if sched == nil {
			continue
		}
		for key, assignments := range sched.Cells {
			if !window.Contains(key.Date) {
				continue
			}
			acc, ok := accums[key.EmployeeID]
			if !ok {
				continue // not in the active roster
			}
			acc.addDay(assignments, cfg.WorkingHours)
		}
	}

	out := make(map[string]EmployeeStats, len(roster))
	for id, acc := range accums {
		out[id] = acc.seal()
	}
	return out
}
