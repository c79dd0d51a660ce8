/*
store.go - Persistence interfaces for the engine's collaborators

PURPOSE:
  The engine computes; collaborators persist. These interfaces are the
  contract: reads are snapshot-consistent (stores hand out clones), and any
  assignment materialized back into storage has its empty fields stripped
  (the json omitempty tags on Assignment do this on marshal).

IMPLEMENTATIONS:
  - engine/store/memory.go: In-memory, for tests and dev
  - store/sqlite/sqlite.go: Production SQLite
*/
package engine

import "context"

// =============================================================================
// SCHEDULE STORE
// =============================================================================

type ScheduleStore interface {
	// GetSchedule returns the week starting at weekStart, or
	// ErrScheduleNotFound.
	GetSchedule(ctx context.Context, weekStart DayDate) (*Schedule, error)

	// SaveSchedule upserts a whole week snapshot.
	SaveSchedule(ctx context.Context, sched *Schedule) error

	// LockSchedule marks a week completada. Locked weeks feed the
	// historical fallback scan.
	LockSchedule(ctx context.Context, weekStart DayDate) error

	// SchedulesInRange returns every stored schedule whose week overlaps
	// [from, to], for the monthly reducer.
	SchedulesInRange(ctx context.Context, from, to DayDate) ([]*Schedule, error)

	// LockedSchedule returns the locked week starting at weekStart, or nil
	// when the week is absent or not locked. Satisfies HistorySource.
	LockedSchedule(ctx context.Context, weekStart DayDate) (*Schedule, error)
}

// =============================================================================
// RULE STORE
// =============================================================================

type RuleStore interface {
	SaveRule(ctx context.Context, rule FixedRule) error

	// DeleteRule removes a rule, ErrRuleNotFound when absent.
	DeleteRule(ctx context.Context, id string) error

	// Rules returns rules in creation order, optionally filtered by owner
	// (empty ownerID means all).
	Rules(ctx context.Context, ownerID string) ([]FixedRule, error)
}

// =============================================================================
// CATALOG, ROSTER, SUGGESTIONS
// =============================================================================

type CatalogStore interface {
	Shifts(ctx context.Context) ([]Shift, error)
	SaveShift(ctx context.Context, shift Shift) error
	DeleteShift(ctx context.Context, id string) error
	MedioTurnos(ctx context.Context) ([]MedioTurno, error)
	SaveMedioTurno(ctx context.Context, mt MedioTurno) error
}

type RosterStore interface {
	Employees(ctx context.Context) ([]Employee, error)
	SaveEmployee(ctx context.Context, emp Employee) error
	DeleteEmployee(ctx context.Context, id string) error
}

type SuggestionStore interface {
	SuggestionSource

	// SaveSuggestion records the learned assignment list for an
	// (employee, weekday) pair; empty clears it.
	SaveSuggestion(ctx context.Context, employeeID string, dayOfWeek int, assignments []Assignment) error
}

// Store is the full collaborator surface the API layer wires against.
type Store interface {
	ScheduleStore
	RuleStore
	CatalogStore
	RosterStore
	SuggestionStore
}
