/*
rules.go - Fixed rules: standing weekly instructions and cell resolution

PURPOSE:
  A fixed rule (regla fija) is a persistent, week-independent instruction:
  "employee E works shift S every Tuesday" or "employee E is off every
  Sunday". This file resolves a (employee, date) cell against the rule set
  and classifies the result:

    NONE      no rule matches; whatever is stored stands
    RULE      a rule matches and the cell is empty (auto-fill synthesized)
              or field-equal to what the rule implies
    OVERRIDE  a rule matches but the stored cell differs; the stored value
              is returned untouched and must never be silently replaced

  The state is re-derived on every call; nothing is stored.

FALLBACK CHAIN:
  For weeks without explicit data, SuggestAssignments tries in order,
  stopping at the first non-empty result:
    (a) the rule-implied assignment list
    (b) a learned per-(employee, weekday) suggestion
    (c) a backward scan over prior LOCKED weeks at the same weekday offset,
        bounded by MaxLookbackWeeks
  More specific sources win; the scan short-circuits on first match.
*/
package engine

import (
	"context"
	"sort"
)

// =============================================================================
// FIXED RULE
// =============================================================================

type RuleType string

const (
	RuleShift RuleType = "SHIFT"
	RuleOff   RuleType = "OFF"
)

// FixedRule is the only engine-adjacent entity consumers create and delete
// outside a specific week.
type FixedRule struct {
	ID         string   `json:"id"`
	EmployeeID string   `json:"employeeId"`
	OwnerID    string   `json:"ownerId,omitempty"`
	DayOfWeek  int      `json:"dayOfWeek"` // 0=Sunday .. 6=Saturday
	Type       RuleType `json:"type"`
	ShiftID    string   `json:"shiftId,omitempty"`
	StartDate  *DayDate `json:"startDate,omitempty"`
	EndDate    *DayDate `json:"endDate,omitempty"`
	Priority   int      `json:"priority"`
}

// AppliesTo reports whether the rule governs this employee on this date:
// same weekday, and the date inside the optional [StartDate, EndDate]
// window when one is set.
func (r FixedRule) AppliesTo(employeeID string, date DayDate) bool {
	if r.EmployeeID != employeeID {
		return false
	}
	if int(date.Weekday()) != r.DayOfWeek {
		return false
	}
	if r.StartDate != nil && date.Before(*r.StartDate) {
		return false
	}
	if r.EndDate != nil && date.After(*r.EndDate) {
		return false
	}
	return true
}

// =============================================================================
// CELL CLASSIFICATION
// =============================================================================

type CellState string

const (
	StateNone     CellState = "NONE"
	StateRule     CellState = "RULE"
	StateOverride CellState = "OVERRIDE"
)

// Resolution is the outcome for one cell: the classification tag (for
// visual indication, never persisted) and the assignment list to display.
type Resolution struct {
	State       CellState    `json:"state"`
	Assignments []Assignment `json:"assignments"`
}

// =============================================================================
// RULES ENGINE
// =============================================================================

// RulesEngine resolves cells against a rule set and a shift catalog.
// It is stateless; both inputs are snapshots owned by the caller.
type RulesEngine struct {
	Catalog ShiftCatalog
}

// ImpliedAssignments computes what a rule would put in a cell.
// OFF implies a franco. SHIFT copies the referenced catalog shift,
// including its split interval when defined. A dangling shift reference
// implies nothing.
func (e *RulesEngine) ImpliedAssignments(rule FixedRule) []Assignment {
	switch rule.Type {
	case RuleOff:
		return []Assignment{{Type: TypeFranco}}
	case RuleShift:
		shift, ok := e.Catalog.Lookup(rule.ShiftID)
		if !ok {
			return nil
		}
		return []Assignment{{
			Type:       TypeShift,
			ShiftID:    shift.ID,
			StartTime:  shift.StartTime,
			EndTime:    shift.EndTime,
			StartTime2: shift.StartTime2,
			EndTime2:   shift.EndTime2,
		}}
	default:
		return nil
	}
}

// Resolve classifies one cell. `stored` is the normalized cell content
// (nil/empty for an absent cell).
func (e *RulesEngine) Resolve(rules []FixedRule, employeeID string, date DayDate, stored []Assignment) Resolution {
	rule, ok := matchRule(rules, employeeID, date)
	if !ok {
		return Resolution{State: StateNone, Assignments: stored}
	}

	implied := e.ImpliedAssignments(rule)
	if len(implied) == 0 {
		// Rule points at a shift that no longer exists; behave as if no
		// rule matched so the cell is never auto-filled with garbage.
		return Resolution{State: StateNone, Assignments: stored}
	}

	if len(stored) == 0 {
		return Resolution{State: StateRule, Assignments: implied}
	}
	if AssignmentsEqual(stored, implied) {
		return Resolution{State: StateRule, Assignments: stored}
	}
	return Resolution{State: StateOverride, Assignments: stored}
}

// matchRule selects the applicable rule with the highest priority.
// The sort is stable, so among equal priorities the later-created rule
// (stores preserve creation order) wins.
func matchRule(rules []FixedRule, employeeID string, date DayDate) (FixedRule, bool) {
	var matches []FixedRule
	for _, r := range rules {
		if r.AppliesTo(employeeID, date) {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		return FixedRule{}, false
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority > matches[j].Priority
	})
	return matches[0], true
}

// =============================================================================
// FALLBACK CHAIN - For weeks lacking explicit data
// =============================================================================

// DefaultMaxLookbackWeeks bounds the backward scan over locked weeks.
const DefaultMaxLookbackWeeks = 26

// SuggestionSource serves historically-learned per-(employee, weekday)
// suggestions. Implemented by the stores.
type SuggestionSource interface {
	Suggestion(ctx context.Context, employeeID string, dayOfWeek int) ([]Assignment, error)
}

// HistorySource serves prior locked weeks for the backward scan.
// A week that exists but is not locked must come back nil.
type HistorySource interface {
	LockedSchedule(ctx context.Context, weekStart DayDate) (*Schedule, error)
}

// FallbackOptions wires the optional sources. Either source may be nil,
// which skips its step in the chain.
type FallbackOptions struct {
	Suggestions SuggestionSource
	History     HistorySource

	// MaxLookbackWeeks caps step (c); <= 0 means DefaultMaxLookbackWeeks.
	MaxLookbackWeeks int
}

// SuggestAssignments runs the fallback chain for one cell of the week
// starting at weekStart. Returns nil when no source has anything to say.
func (e *RulesEngine) SuggestAssignments(ctx context.Context, rules []FixedRule, employeeID string, date DayDate, weekStart DayDate, opts FallbackOptions) ([]Assignment, error) {
	// (a) Explicit rule.
	if rule, ok := matchRule(rules, employeeID, date); ok {
		if implied := e.ImpliedAssignments(rule); len(implied) > 0 {
			return implied, nil
		}
	}

	// (b) Learned suggestion.
	if opts.Suggestions != nil {
		suggested, err := opts.Suggestions.Suggestion(ctx, employeeID, int(date.Weekday()))
		if err != nil {
			return nil, err
		}
		if len(suggested) > 0 {
			return suggested, nil
		}
	}

	// (c) Backward scan over locked weeks, same weekday offset.
	if opts.History != nil {
		lookback := opts.MaxLookbackWeeks
		if lookback <= 0 {
			lookback = DefaultMaxLookbackWeeks
		}
		offset := DaysBetween(weekStart, date)
		for k := 1; k <= lookback; k++ {
			priorStart := weekStart.AddDays(-7 * k)
			prior, err := opts.History.LockedSchedule(ctx, priorStart)
			if err != nil {
				return nil, err
			}
			if prior == nil || !prior.Completada {
				continue
			}
			if cell := prior.CellAt(priorStart.AddDays(offset), employeeID); len(cell) > 0 {
				return cell, nil
			}
		}
	}

	return nil, nil
}

// =============================================================================
// SCHEDULE-WIDE RESOLUTION
// =============================================================================

// ResolvedCell pairs a cell address with its resolution.
type ResolvedCell struct {
	Date        DayDate      `json:"date"`
	EmployeeID  string       `json:"employeeId"`
	State       CellState    `json:"state"`
	Assignments []Assignment `json:"assignments,omitempty"`
}

// ResolveWeek resolves every (roster employee, week day) cell of a week.
// sched may be nil for a week with no stored data. The result is ordered
// by date, then roster order, so consumers render deterministically.
func (e *RulesEngine) ResolveWeek(rules []FixedRule, roster []Employee, weekStart DayDate, sched *Schedule) []ResolvedCell {
	days := WeekWindow(weekStart).Days()
	out := make([]ResolvedCell, 0, len(days)*len(roster))
	for _, day := range days {
		for _, emp := range roster {
			var stored []Assignment
			if sched != nil {
				stored = sched.CellAt(day, emp.ID)
			}
			res := e.Resolve(rules, emp.ID, day, stored)
			out = append(out, ResolvedCell{
				Date:        day,
				EmployeeID:  emp.ID,
				State:       res.State,
				Assignments: res.Assignments,
			})
		}
	}
	return out
}
