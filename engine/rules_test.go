package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnos/schedule-engine/engine"
	"github.com/turnos/schedule-engine/engine/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var morningShift = engine.Shift{
	ID:        "morning",
	Name:      "Mañana",
	StartTime: "08:00",
	EndTime:   "14:00",
}

var splitCatalogShift = engine.Shift{
	ID:         "partido",
	Name:       "Cortado",
	StartTime:  "08:00",
	EndTime:    "12:00",
	StartTime2: "16:00",
	EndTime2:   "20:00",
}

func testRulesEngine() *engine.RulesEngine {
	return &engine.RulesEngine{
		Catalog: engine.NewShiftCatalog([]engine.Shift{morningShift, splitCatalogShift}),
	}
}

// aMonday is 2025-03-10.
var aMonday = engine.NewDayDate(2025, time.March, 10)

func offRule(employeeID string, weekday time.Weekday) engine.FixedRule {
	return engine.FixedRule{
		ID:         "r-off",
		EmployeeID: employeeID,
		DayOfWeek:  int(weekday),
		Type:       engine.RuleOff,
	}
}

func shiftRule(employeeID string, weekday time.Weekday, shiftID string) engine.FixedRule {
	return engine.FixedRule{
		ID:         "r-" + shiftID,
		EmployeeID: employeeID,
		DayOfWeek:  int(weekday),
		Type:       engine.RuleShift,
		ShiftID:    shiftID,
	}
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

func TestResolve_NoMatchingRuleIsNone(t *testing.T) {
	re := testRulesEngine()
	stored := []engine.Assignment{{Type: engine.TypeNota, Texto: "x"}}

	// Rule is for Tuesday; the cell is a Monday.
	res := re.Resolve([]engine.FixedRule{offRule("e1", time.Tuesday)}, "e1", aMonday, stored)
	assert.Equal(t, engine.StateNone, res.State)
	assert.Equal(t, stored, res.Assignments)
}

func TestResolve_EmptyCellSynthesizesAutoFill(t *testing.T) {
	// GIVEN: an OFF rule for Monday and an absent cell
	re := testRulesEngine()
	res := re.Resolve([]engine.FixedRule{offRule("e1", time.Monday)}, "e1", aMonday, nil)

	// THEN: RULE, with the implied franco synthesized
	assert.Equal(t, engine.StateRule, res.State)
	assert.Equal(t, []engine.Assignment{{Type: engine.TypeFranco}}, res.Assignments)
}

func TestResolve_MatchingStoredCellIsRule(t *testing.T) {
	// GIVEN: OFF rule for employee E on Monday; stored cell = [{franco}]
	re := testRulesEngine()
	stored := []engine.Assignment{{Type: engine.TypeFranco}}
	res := re.Resolve([]engine.FixedRule{offRule("e1", time.Monday)}, "e1", aMonday, stored)

	// THEN: classification RULE
	assert.Equal(t, engine.StateRule, res.State)
}

func TestResolve_DifferingStoredCellIsOverrideAndPreserved(t *testing.T) {
	// GIVEN: the same OFF rule, but a manually stored shift
	re := testRulesEngine()
	stored := []engine.Assignment{{
		Type: engine.TypeShift, ShiftID: "morning", StartTime: "08:00", EndTime: "14:00",
	}}
	res := re.Resolve([]engine.FixedRule{offRule("e1", time.Monday)}, "e1", aMonday, stored)

	// THEN: OVERRIDE, and the stored assignment comes back unmodified
	assert.Equal(t, engine.StateOverride, res.State)
	assert.Equal(t, stored, res.Assignments)
}

func TestResolve_ShiftRuleCopiesCatalogIncludingSplit(t *testing.T) {
	re := testRulesEngine()
	res := re.Resolve([]engine.FixedRule{shiftRule("e1", time.Monday, "partido")}, "e1", aMonday, nil)

	require.Equal(t, engine.StateRule, res.State)
	require.Len(t, res.Assignments, 1)
	a := res.Assignments[0]
	assert.Equal(t, "partido", a.ShiftID)
	assert.Equal(t, "16:00", a.StartTime2)
	assert.Equal(t, "20:00", a.EndTime2)
}

func TestResolve_DanglingShiftReferenceBehavesAsNone(t *testing.T) {
	// A rule pointing at a deleted catalog shift must not throw and must
	// not auto-fill anything.
	re := testRulesEngine()
	res := re.Resolve([]engine.FixedRule{shiftRule("e1", time.Monday, "gone")}, "e1", aMonday, nil)
	assert.Equal(t, engine.StateNone, res.State)
	assert.Empty(t, res.Assignments)
}

func TestResolve_DateWindowBoundsRule(t *testing.T) {
	re := testRulesEngine()
	start := engine.NewDayDate(2025, time.March, 17) // the following Monday
	rule := offRule("e1", time.Monday)
	rule.StartDate = &start

	// Before the window: no match.
	res := re.Resolve([]engine.FixedRule{rule}, "e1", aMonday, nil)
	assert.Equal(t, engine.StateNone, res.State)

	// Inside the window: match.
	res = re.Resolve([]engine.FixedRule{rule}, "e1", start, nil)
	assert.Equal(t, engine.StateRule, res.State)
}

func TestResolve_HighestPriorityRuleWins(t *testing.T) {
	re := testRulesEngine()
	low := shiftRule("e1", time.Monday, "morning")
	high := offRule("e1", time.Monday)
	high.Priority = 10

	res := re.Resolve([]engine.FixedRule{low, high}, "e1", aMonday, nil)
	require.Equal(t, engine.StateRule, res.State)
	assert.Equal(t, engine.TypeFranco, res.Assignments[0].Type)
}

// =============================================================================
// FALLBACK CHAIN
// =============================================================================

func TestSuggestAssignments_RuleWinsOverEverything(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.SaveSuggestion(ctx, "e1", int(time.Monday), []engine.Assignment{{Type: engine.TypeNota, Texto: "learned"}}))

	re := testRulesEngine()
	weekStart := aMonday
	got, err := re.SuggestAssignments(ctx, []engine.FixedRule{offRule("e1", time.Monday)}, "e1", aMonday, weekStart,
		engine.FallbackOptions{Suggestions: mem, History: mem})
	require.NoError(t, err)

	// The explicit rule beats the learned suggestion.
	assert.Equal(t, []engine.Assignment{{Type: engine.TypeFranco}}, got)
}

func TestSuggestAssignments_LearnedSuggestionBeatsHistory(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	// History has a locked prior week with a cell...
	prior := engine.NewSchedule(aMonday.AddDays(-7))
	prior.Completada = true
	prior.SetCell(prior.WeekStart, "e1", []engine.Assignment{{Type: engine.TypeFranco}})
	require.NoError(t, mem.SaveSchedule(ctx, prior))

	// ...but a learned suggestion exists too.
	learned := []engine.Assignment{{Type: engine.TypeShift, ShiftID: "morning"}}
	require.NoError(t, mem.SaveSuggestion(ctx, "e1", int(time.Monday), learned))

	re := testRulesEngine()
	got, err := re.SuggestAssignments(ctx, nil, "e1", aMonday, aMonday,
		engine.FallbackOptions{Suggestions: mem, History: mem})
	require.NoError(t, err)
	assert.Equal(t, learned, got)
}

func TestSuggestAssignments_BackwardScanFindsNearestLockedWeek(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	// Two weeks back: locked, has the cell. One week back: locked, empty.
	near := engine.NewSchedule(aMonday.AddDays(-7))
	near.Completada = true
	require.NoError(t, mem.SaveSchedule(ctx, near))

	far := engine.NewSchedule(aMonday.AddDays(-14))
	far.Completada = true
	far.SetCell(far.WeekStart.AddDays(2), "e1", []engine.Assignment{{Type: engine.TypeShift, ShiftID: "morning"}})
	require.NoError(t, mem.SaveSchedule(ctx, far))

	re := testRulesEngine()
	// Wednesday of the current week: same weekday offset (+2) applies.
	got, err := re.SuggestAssignments(ctx, nil, "e1", aMonday.AddDays(2), aMonday,
		engine.FallbackOptions{History: mem})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "morning", got[0].ShiftID)
}

func TestSuggestAssignments_UnlockedWeeksAreInvisible(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	draft := engine.NewSchedule(aMonday.AddDays(-7))
	draft.SetCell(draft.WeekStart, "e1", []engine.Assignment{{Type: engine.TypeFranco}})
	require.NoError(t, mem.SaveSchedule(ctx, draft)) // never locked

	re := testRulesEngine()
	got, err := re.SuggestAssignments(ctx, nil, "e1", aMonday, aMonday,
		engine.FallbackOptions{History: mem})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSuggestAssignments_LookbackBound(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	// The only match sits 5 weeks back.
	old := engine.NewSchedule(aMonday.AddDays(-35))
	old.Completada = true
	old.SetCell(old.WeekStart, "e1", []engine.Assignment{{Type: engine.TypeFranco}})
	require.NoError(t, mem.SaveSchedule(ctx, old))

	re := testRulesEngine()

	// Bound of 4 weeks: past the horizon, no suggestion.
	got, err := re.SuggestAssignments(ctx, nil, "e1", aMonday, aMonday,
		engine.FallbackOptions{History: mem, MaxLookbackWeeks: 4})
	require.NoError(t, err)
	assert.Empty(t, got)

	// Bound of 5: found.
	got, err = re.SuggestAssignments(ctx, nil, "e1", aMonday, aMonday,
		engine.FallbackOptions{History: mem, MaxLookbackWeeks: 5})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

// =============================================================================
// WEEK-WIDE RESOLUTION
// =============================================================================

func TestResolveWeek_CoversEveryRosterCell(t *testing.T) {
	re := testRulesEngine()
	rules := []engine.FixedRule{offRule("e1", time.Sunday)}

	sched := engine.NewSchedule(aMonday)
	sched.SetCell(aMonday, "e2", []engine.Assignment{{Type: engine.TypeNota, Texto: "turno por confirmar"}})

	cells := re.ResolveWeek(rules, roster("e1", "e2"), aMonday, sched)
	require.Len(t, cells, 14)

	byKey := make(map[string]engine.ResolvedCell)
	for _, c := range cells {
		byKey[c.Date.String()+"/"+c.EmployeeID] = c
	}

	// Sunday cell for e1 is rule-filled; Monday nota for e2 is NONE.
	sunday := aMonday.AddDays(6)
	assert.Equal(t, engine.StateRule, byKey[sunday.String()+"/e1"].State)
	assert.Equal(t, engine.StateNone, byKey[aMonday.String()+"/e2"].State)
}
