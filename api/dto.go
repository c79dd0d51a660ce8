/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the engine types from
  the wire contract. Stats amounts leave as plain numbers; the decimal
  arithmetic stays inside the engine.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
*/
package api

import (
	"github.com/turnos/schedule-engine/engine"
)

// =============================================================================
// SCHEDULES
// =============================================================================

// CellDTO is one schedule cell on the wire.
type CellDTO struct {
	Date        string              `json:"date"`
	EmployeeID  string              `json:"employeeId"`
	Assignments []engine.Assignment `json:"assignments"`
}

type ScheduleDTO struct {
	WeekStart  string    `json:"weekStart"`
	Completada bool      `json:"completada"`
	Cells      []CellDTO `json:"cells"`
}

// SaveCellRequest accepts the legacy cell shapes too: `assignments` may be
// an array of structured objects or of bare shift-id strings. The handler
// normalizes before anything else sees it.
type SaveCellRequest struct {
	Date        string `json:"date"`
	EmployeeID  string `json:"employeeId"`
	Assignments any    `json:"assignments"`
}

type SaveScheduleRequest struct {
	Completada bool              `json:"completada"`
	Cells      []SaveCellRequest `json:"cells"`
}

// =============================================================================
// STATS
// =============================================================================

// EmployeeStatsDTO flattens engine.EmployeeStats for one roster entry.
type EmployeeStatsDTO struct {
	EmployeeID       string  `json:"employeeId"`
	Name             string  `json:"name"`
	Francos          float64 `json:"francos"`
	HorasNormales    float64 `json:"horasNormales"`
	HorasExtras      float64 `json:"horasExtras"`
	HorasLicencia    float64 `json:"horasLicencia"`
	HorasMedioFranco float64 `json:"horasMedioFranco"`
	DiasTrabajados   int     `json:"diasTrabajados"`
	DiasLicencia     int     `json:"diasLicencia"`
}

type StatsResponse struct {
	WindowStart string             `json:"windowStart"`
	WindowEnd   string             `json:"windowEnd"`
	Stats       []EmployeeStatsDTO `json:"stats"`
}

func statsDTO(emp engine.Employee, s engine.EmployeeStats) EmployeeStatsDTO {
	return EmployeeStatsDTO{
		EmployeeID:       emp.ID,
		Name:             emp.Name,
		Francos:          s.Francos.InexactFloat64(),
		HorasNormales:    s.HorasNormales.InexactFloat64(),
		HorasExtras:      s.HorasExtras.InexactFloat64(),
		HorasLicencia:    s.HorasLicencia.InexactFloat64(),
		HorasMedioFranco: s.HorasMedioFranco.InexactFloat64(),
		DiasTrabajados:   s.DiasTrabajados,
		DiasLicencia:     s.DiasLicencia,
	}
}

// =============================================================================
// RESOLUTION
// =============================================================================

type ResolvedScheduleResponse struct {
	WeekStart string                `json:"weekStart"`
	Cells     []engine.ResolvedCell `json:"cells"`
}

type SuggestionsResponse struct {
	WeekStart string    `json:"weekStart"`
	Cells     []CellDTO `json:"cells"`
}

// =============================================================================
// RULES / CATALOG / ROSTER
// =============================================================================

type CreateRuleRequest struct {
	EmployeeID string `json:"employeeId"`
	OwnerID    string `json:"ownerId"`
	DayOfWeek  int    `json:"dayOfWeek"`
	Type       string `json:"type"` // SHIFT | OFF
	ShiftID    string `json:"shiftId"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Priority   int    `json:"priority"`
}

type CreateShiftRequest struct {
	Name       string `json:"name"`
	Color      string `json:"color"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	StartTime2 string `json:"startTime2"`
	EndTime2   string `json:"endTime2"`
}

type CreateEmployeeRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
