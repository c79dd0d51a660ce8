package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// WORKING-HOURS CONFIG
// =============================================================================

// WorkingHoursConfig carries the break-deduction rule and the daily
// normal-hours threshold. Field names keep the payroll vocabulary the
// stored documents use.
type WorkingHoursConfig struct {
	// MinutosDescanso is the unpaid break deducted from long continuous shifts.
	MinutosDescanso int `json:"minutosDescanso" yaml:"minutos_descanso"`

	// HorasMinimasParaDescanso: a continuous shift at least this long gets
	// the break deducted. Split shifts never do, regardless of length.
	HorasMinimasParaDescanso float64 `json:"horasMinimasParaDescanso" yaml:"horas_minimas_para_descanso"`

	// HorasNormalesPorDia splits computable hours into normal vs overtime.
	HorasNormalesPorDia float64 `json:"horasNormalesPorDia" yaml:"horas_normales_por_dia"`
}

// BreakThresholdMinutes is HorasMinimasParaDescanso in whole minutes.
func (c WorkingHoursConfig) BreakThresholdMinutes() int {
	return hoursToMinutes(c.HorasMinimasParaDescanso)
}

// NormalDayMinutes is HorasNormalesPorDia in whole minutes.
func (c WorkingHoursConfig) NormalDayMinutes() int {
	return hoursToMinutes(c.HorasNormalesPorDia)
}

func hoursToMinutes(h float64) int {
	if h <= 0 {
		return 0
	}
	return int(h*60 + 0.5)
}

// =============================================================================
// CALENDAR CONFIG
// =============================================================================

type CalendarConfig struct {
	// WeekStartDay: 0=Sunday .. 6=Saturday. Display-only alignment; stored
	// schedules carry their own WeekStart date.
	WeekStartDay int `json:"weekStartDay" yaml:"week_start_day"`

	// CustomMonthStartDay shifts the payroll month boundary. 1 means plain
	// calendar months.
	CustomMonthStartDay int `json:"customMonthStartDay" yaml:"custom_month_start_day"`
}

func (c CalendarConfig) WeekStart() time.Weekday {
	if c.WeekStartDay < 0 || c.WeekStartDay > 6 {
		return time.Monday
	}
	return time.Weekday(c.WeekStartDay)
}

// =============================================================================
// COMBINED CONFIG
// =============================================================================

type Config struct {
	WorkingHours WorkingHoursConfig `json:"workingHours" yaml:"working_hours"`
	Calendar     CalendarConfig     `json:"calendar" yaml:"calendar"`
}

// DefaultConfig mirrors the defaults the surrounding application ships with.
func DefaultConfig() Config {
	return Config{
		WorkingHours: WorkingHoursConfig{
			MinutosDescanso:          30,
			HorasMinimasParaDescanso: 6,
			HorasNormalesPorDia:      8,
		},
		Calendar: CalendarConfig{
			WeekStartDay:        1, // Monday
			CustomMonthStartDay: 1,
		},
	}
}

// LoadConfig reads a YAML config file, layering it over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
