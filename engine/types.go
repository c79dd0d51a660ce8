/*
Package engine implements the shift-scheduling computation core.

PURPOSE:
  This package turns raw per-day, per-employee schedule cells into
  authoritative hour/overtime/leave statistics, and resolves standing weekly
  rules into auto-filled assignments while telling "following the rule" apart
  from "manual override".

KEY CONCEPTS IN THIS FILE (types.go):
  - Assignment: One unit of work or absence in a schedule cell
  - Shift / MedioTurno: Read-only catalog reference data
  - Schedule: An immutable week snapshot keyed by (date, employee)
  - Employee: Roster entry

DESIGN PRINCIPLES:
  1. Purity: Every computation is a function of its inputs; the engine owns
     no state and performs no I/O.
  2. Minutes inside, decimals outside: Durations are integer minutes
     internally and become decimal hours only at the output boundary.
  3. Degrade, never throw: Malformed data yields zeros or empty lists;
     an error in one cell never aborts another employee's statistics.

USAGE:
  cells := engine.Normalize(rawCellValue)
  hours := engine.TotalDailyHours(cells, cfg.WorkingHours)
  stats, _ := engine.WeeklyStats(roster, schedule, cfg)

SEE ALSO:
  - normalize.go: Raw cell value normalization
  - hours.go: Computable hours and the normal/overtime split
  - stats.go: Weekly and monthly reducers
  - rules.go: Fixed-rule resolution and auto-fill
*/
package engine

// =============================================================================
// ASSIGNMENT - One unit of work or absence on a date for an employee
// =============================================================================

type AssignmentType string

const (
	TypeShift       AssignmentType = "shift"
	TypeFranco      AssignmentType = "franco"
	TypeMedioFranco AssignmentType = "medio_franco"
	TypeLicencia    AssignmentType = "licencia"
	TypeNota        AssignmentType = "nota"
)

// Assignment is the canonical cell value after normalization. All time
// fields are "HH:MM" strings exactly as stored; empty string means unset.
// The json tags strip empty fields on marshal because the persistence
// collaborator rejects undefined values.
type Assignment struct {
	Type         AssignmentType `json:"type"`
	ShiftID      string         `json:"shiftId,omitempty"`
	StartTime    string         `json:"startTime,omitempty"`
	EndTime      string         `json:"endTime,omitempty"`
	StartTime2   string         `json:"startTime2,omitempty"`
	EndTime2     string         `json:"endTime2,omitempty"`
	LicenciaType string         `json:"licenciaType,omitempty"`
	Texto        string         `json:"texto,omitempty"`
}

// IsSplit reports whether the assignment carries a second interval
// (turno cortado). Split assignments are exempt from break deduction.
func (a Assignment) IsSplit() bool {
	return a.StartTime2 != "" && a.EndTime2 != ""
}

// Equal is field equality over everything the rules engine compares when
// deciding RULE vs OVERRIDE.
func (a Assignment) Equal(b Assignment) bool {
	return a.Type == b.Type &&
		a.ShiftID == b.ShiftID &&
		a.StartTime == b.StartTime &&
		a.EndTime == b.EndTime &&
		a.StartTime2 == b.StartTime2 &&
		a.EndTime2 == b.EndTime2 &&
		a.LicenciaType == b.LicenciaType &&
		a.Texto == b.Texto
}

// AssignmentsEqual compares two cell values element by element.
func AssignmentsEqual(a, b []Assignment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// =============================================================================
// CATALOG - Read-only reference data
// =============================================================================

// Shift is a catalog-defined time block, single or split.
type Shift struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	StartTime2 string `json:"startTime2,omitempty"`
	EndTime2   string `json:"endTime2,omitempty"`
}

// MedioTurno is a half-day preset. It is a UI convenience only: the hours
// of a medio_franco come from the assignment's own times, never from here.
type MedioTurno struct {
	ID        string `json:"id"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// ShiftCatalog is an indexed view over the shift list. A missing ID is not
// an error: dangling references simply contribute nothing.
type ShiftCatalog map[string]Shift

func NewShiftCatalog(shifts []Shift) ShiftCatalog {
	c := make(ShiftCatalog, len(shifts))
	for _, s := range shifts {
		c[s.ID] = s
	}
	return c
}

func (c ShiftCatalog) Lookup(id string) (Shift, bool) {
	s, ok := c[id]
	return s, ok
}

// =============================================================================
// ROSTER AND SCHEDULE SNAPSHOT
// =============================================================================

type Employee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CellKey addresses one schedule cell. Flat keying (instead of nested
// date -> employee maps) keeps iteration and tests simple.
type CellKey struct {
	Date       DayDate
	EmployeeID string
}

// Schedule is one stored week, treated as an immutable snapshot per
// computation. Completada marks the week as locked; only locked weeks
// participate in the historical fallback scan.
type Schedule struct {
	WeekStart  DayDate
	Cells      map[CellKey][]Assignment
	Completada bool
}

func NewSchedule(weekStart DayDate) *Schedule {
	return &Schedule{WeekStart: weekStart, Cells: make(map[CellKey][]Assignment)}
}

// CellAt returns the assignment list for a cell, nil when absent.
func (s *Schedule) CellAt(date DayDate, employeeID string) []Assignment {
	if s == nil || s.Cells == nil {
		return nil
	}
	return s.Cells[CellKey{Date: date, EmployeeID: employeeID}]
}

// SetCell stores a normalized assignment list; an empty list clears the cell.
func (s *Schedule) SetCell(date DayDate, employeeID string, assignments []Assignment) {
	if s.Cells == nil {
		s.Cells = make(map[CellKey][]Assignment)
	}
	k := CellKey{Date: date, EmployeeID: employeeID}
	if len(assignments) == 0 {
		delete(s.Cells, k)
		return
	}
	s.Cells[k] = assignments
}

// Window is the 7-day span covered by this schedule.
func (s *Schedule) Window() Window { return WeekWindow(s.WeekStart) }

// Clone deep-copies the snapshot. Stores hand out clones so callers can
// never mutate shared state.
func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return nil
	}
	out := &Schedule{WeekStart: s.WeekStart, Completada: s.Completada}
	out.Cells = make(map[CellKey][]Assignment, len(s.Cells))
	for k, v := range s.Cells {
		cp := make([]Assignment, len(v))
		copy(cp, v)
		out.Cells[k] = cp
	}
	return out
}
