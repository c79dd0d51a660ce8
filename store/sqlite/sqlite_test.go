package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnos/schedule-engine/engine"
	"github.com/turnos/schedule-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// =============================================================================
// SCHEDULES
// =============================================================================

func TestSchedule_Roundtrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	monday := engine.NewDayDate(2025, time.March, 10)
	sched := engine.NewSchedule(monday)
	sched.SetCell(monday, "e1", []engine.Assignment{
		{Type: engine.TypeShift, ShiftID: "morning", StartTime: "08:00", EndTime: "14:00"},
		{Type: engine.TypeNota, Texto: "llega tarde"},
	})
	sched.SetCell(monday.AddDays(3), "e2", []engine.Assignment{{Type: engine.TypeFranco}})
	require.NoError(t, st.SaveSchedule(ctx, sched))

	got, err := st.GetSchedule(ctx, monday)
	require.NoError(t, err)
	assert.False(t, got.Completada)
	assert.Equal(t, sched.Cells, got.Cells)
}

func TestSchedule_SaveReplacesCells(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	monday := engine.NewDayDate(2025, time.March, 10)

	first := engine.NewSchedule(monday)
	first.SetCell(monday, "e1", []engine.Assignment{{Type: engine.TypeFranco}})
	require.NoError(t, st.SaveSchedule(ctx, first))

	// Second save with a different cell set: the old cell must be gone,
	// not merged.
	second := engine.NewSchedule(monday)
	second.SetCell(monday.AddDays(1), "e1", []engine.Assignment{{Type: engine.TypeLicencia}})
	require.NoError(t, st.SaveSchedule(ctx, second))

	got, err := st.GetSchedule(ctx, monday)
	require.NoError(t, err)
	assert.Empty(t, got.CellAt(monday, "e1"))
	require.Len(t, got.CellAt(monday.AddDays(1), "e1"), 1)
}

func TestSchedule_MissingWeekIsNotFound(t *testing.T) {
	st := newTestStore(t)
	_, err := st.GetSchedule(context.Background(), engine.NewDayDate(2025, time.March, 10))
	assert.ErrorIs(t, err, engine.ErrScheduleNotFound)
}

func TestLockSchedule(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	monday := engine.NewDayDate(2025, time.March, 10)

	// Locking an absent week fails.
	assert.ErrorIs(t, st.LockSchedule(ctx, monday), engine.ErrScheduleNotFound)

	require.NoError(t, st.SaveSchedule(ctx, engine.NewSchedule(monday)))
	require.NoError(t, st.LockSchedule(ctx, monday))

	got, err := st.GetSchedule(ctx, monday)
	require.NoError(t, err)
	assert.True(t, got.Completada)
}

func TestSchedulesInRange_OverlapIncludesStraddlingWeek(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Week Mar 31 .. Apr 6 straddles the April boundary.
	straddling := engine.NewSchedule(engine.NewDayDate(2025, time.March, 31))
	require.NoError(t, st.SaveSchedule(ctx, straddling))
	inside := engine.NewSchedule(engine.NewDayDate(2025, time.April, 7))
	require.NoError(t, st.SaveSchedule(ctx, inside))
	before := engine.NewSchedule(engine.NewDayDate(2025, time.March, 17))
	require.NoError(t, st.SaveSchedule(ctx, before))

	got, err := st.SchedulesInRange(ctx, engine.NewDayDate(2025, time.April, 1), engine.NewDayDate(2025, time.April, 30))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, straddling.WeekStart, got[0].WeekStart)
	assert.Equal(t, inside.WeekStart, got[1].WeekStart)
}

func TestLockedSchedule_UnlockedWeekComesBackNil(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	monday := engine.NewDayDate(2025, time.March, 10)

	got, err := st.LockedSchedule(ctx, monday)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, st.SaveSchedule(ctx, engine.NewSchedule(monday)))
	got, err = st.LockedSchedule(ctx, monday)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, st.LockSchedule(ctx, monday))
	got, err = st.LockedSchedule(ctx, monday)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Completada)
}

// =============================================================================
// RULES
// =============================================================================

func TestRules_RoundtripAndCreationOrder(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	start := engine.NewDayDate(2025, time.March, 17)
	r1 := engine.FixedRule{ID: "r1", EmployeeID: "e1", DayOfWeek: 1, Type: engine.RuleOff}
	r2 := engine.FixedRule{
		ID: "r2", EmployeeID: "e1", OwnerID: "owner-a", DayOfWeek: 2,
		Type: engine.RuleShift, ShiftID: "morning", StartDate: &start, Priority: 5,
	}
	require.NoError(t, st.SaveRule(ctx, r1))
	require.NoError(t, st.SaveRule(ctx, r2))

	got, err := st.Rules(ctx, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Creation order is preserved.
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, r2, got[1])

	// Owner filter.
	got, err = st.Rules(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r2", got[0].ID)
}

func TestRules_Delete(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveRule(ctx, engine.FixedRule{ID: "r1", EmployeeID: "e1", Type: engine.RuleOff}))
	require.NoError(t, st.DeleteRule(ctx, "r1"))
	assert.ErrorIs(t, st.DeleteRule(ctx, "r1"), engine.ErrRuleNotFound)
}

// =============================================================================
// CATALOG AND ROSTER
// =============================================================================

func TestShifts_RoundtripIncludingSplit(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	sh := engine.Shift{
		ID: "partido", Name: "Cortado", Color: "#aabbcc",
		StartTime: "08:00", EndTime: "12:00", StartTime2: "16:00", EndTime2: "20:00",
	}
	require.NoError(t, st.SaveShift(ctx, sh))

	got, err := st.Shifts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sh, got[0])

	require.NoError(t, st.DeleteShift(ctx, "partido"))
	assert.ErrorIs(t, st.DeleteShift(ctx, "partido"), engine.ErrShiftNotFound)
}

func TestEmployees_UpsertKeepsOrder(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveEmployee(ctx, engine.Employee{ID: "e1", Name: "Ana"}))
	require.NoError(t, st.SaveEmployee(ctx, engine.Employee{ID: "e2", Name: "Bruno"}))
	// Rename does not move e1 to the end.
	require.NoError(t, st.SaveEmployee(ctx, engine.Employee{ID: "e1", Name: "Ana María"}))

	got, err := st.Employees(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ana María", got[0].Name)
	assert.Equal(t, "e2", got[1].ID)
}

// =============================================================================
// SUGGESTIONS
// =============================================================================

func TestSuggestions_Roundtrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	got, err := st.Suggestion(ctx, "e1", 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	learned := []engine.Assignment{{Type: engine.TypeShift, ShiftID: "morning", StartTime: "08:00", EndTime: "14:00"}}
	require.NoError(t, st.SaveSuggestion(ctx, "e1", 1, learned))

	got, err = st.Suggestion(ctx, "e1", 1)
	require.NoError(t, err)
	assert.Equal(t, learned, got)

	// Saving an empty list clears the entry.
	require.NoError(t, st.SaveSuggestion(ctx, "e1", 1, nil))
	got, err = st.Suggestion(ctx, "e1", 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}
