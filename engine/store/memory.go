// Package store provides an in-memory Store implementation for tests/dev.
package store

import (
	"context"
	"sync"

	"github.com/turnos/schedule-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	schedules map[engine.DayDate]*engine.Schedule

	rules     map[string]engine.FixedRule
	ruleOrder []string

	shifts     map[string]engine.Shift
	shiftOrder []string

	medioTurnos map[string]engine.MedioTurno
	medioOrder  []string

	employees map[string]engine.Employee
	empOrder  []string

	suggestions map[suggestionKey][]engine.Assignment
}

type suggestionKey struct {
	EmployeeID string
	DayOfWeek  int
}

var _ engine.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		schedules:   make(map[engine.DayDate]*engine.Schedule),
		rules:       make(map[string]engine.FixedRule),
		shifts:      make(map[string]engine.Shift),
		medioTurnos: make(map[string]engine.MedioTurno),
		employees:   make(map[string]engine.Employee),
		suggestions: make(map[suggestionKey][]engine.Assignment),
	}
}

// =============================================================================
// SCHEDULES
// =============================================================================

func (m *Memory) GetSchedule(_ context.Context, weekStart engine.DayDate) (*engine.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sched, ok := m.schedules[weekStart]
	if !ok {
		return nil, engine.ErrScheduleNotFound
	}
	return sched.Clone(), nil
}

func (m *Memory) SaveSchedule(_ context.Context, sched *engine.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[sched.WeekStart] = sched.Clone()
	return nil
}

func (m *Memory) LockSchedule(_ context.Context, weekStart engine.DayDate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sched, ok := m.schedules[weekStart]
	if !ok {
		return engine.ErrScheduleNotFound
	}
	sched.Completada = true
	return nil
}

func (m *Memory) SchedulesInRange(_ context.Context, from, to engine.DayDate) ([]*engine.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*engine.Schedule
	for weekStart, sched := range m.schedules {
		// Overlaps when the week's last day reaches `from` and its first
		// day does not pass `to`.
		if weekStart.AddDays(6).AfterOrEqual(from) && weekStart.BeforeOrEqual(to) {
			out = append(out, sched.Clone())
		}
	}
	return out, nil
}

func (m *Memory) LockedSchedule(_ context.Context, weekStart engine.DayDate) (*engine.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sched, ok := m.schedules[weekStart]
	if !ok || !sched.Completada {
		return nil, nil
	}
	return sched.Clone(), nil
}

// =============================================================================
// RULES
// =============================================================================

func (m *Memory) SaveRule(_ context.Context, rule engine.FixedRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rules[rule.ID]; !exists {
		m.ruleOrder = append(m.ruleOrder, rule.ID)
	}
	m.rules[rule.ID] = rule
	return nil
}

func (m *Memory) DeleteRule(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rules[id]; !exists {
		return engine.ErrRuleNotFound
	}
	delete(m.rules, id)
	m.ruleOrder = removeID(m.ruleOrder, id)
	return nil
}

func (m *Memory) Rules(_ context.Context, ownerID string) ([]engine.FixedRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.FixedRule, 0, len(m.ruleOrder))
	for _, id := range m.ruleOrder {
		rule := m.rules[id]
		if ownerID != "" && rule.OwnerID != ownerID {
			continue
		}
		out = append(out, rule)
	}
	return out, nil
}

// =============================================================================
// CATALOG
// =============================================================================

func (m *Memory) Shifts(_ context.Context) ([]engine.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.Shift, 0, len(m.shiftOrder))
	for _, id := range m.shiftOrder {
		out = append(out, m.shifts[id])
	}
	return out, nil
}

func (m *Memory) SaveShift(_ context.Context, shift engine.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.shifts[shift.ID]; !exists {
		m.shiftOrder = append(m.shiftOrder, shift.ID)
	}
	m.shifts[shift.ID] = shift
	return nil
}

func (m *Memory) DeleteShift(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.shifts[id]; !exists {
		return engine.ErrShiftNotFound
	}
	delete(m.shifts, id)
	m.shiftOrder = removeID(m.shiftOrder, id)
	return nil
}

func (m *Memory) MedioTurnos(_ context.Context) ([]engine.MedioTurno, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.MedioTurno, 0, len(m.medioOrder))
	for _, id := range m.medioOrder {
		out = append(out, m.medioTurnos[id])
	}
	return out, nil
}

func (m *Memory) SaveMedioTurno(_ context.Context, mt engine.MedioTurno) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.medioTurnos[mt.ID]; !exists {
		m.medioOrder = append(m.medioOrder, mt.ID)
	}
	m.medioTurnos[mt.ID] = mt
	return nil
}

// =============================================================================
// ROSTER
// =============================================================================

func (m *Memory) Employees(_ context.Context) ([]engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.Employee, 0, len(m.empOrder))
	for _, id := range m.empOrder {
		out = append(out, m.employees[id])
	}
	return out, nil
}

func (m *Memory) SaveEmployee(_ context.Context, emp engine.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.employees[emp.ID]; !exists {
		m.empOrder = append(m.empOrder, emp.ID)
	}
	m.employees[emp.ID] = emp
	return nil
}

func (m *Memory) DeleteEmployee(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.employees[id]; !exists {
		return engine.ErrEmployeeNotFound
	}
	delete(m.employees, id)
	m.empOrder = removeID(m.empOrder, id)
	return nil
}

// =============================================================================
// SUGGESTIONS
// =============================================================================

func (m *Memory) Suggestion(_ context.Context, employeeID string, dayOfWeek int) ([]engine.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored := m.suggestions[suggestionKey{EmployeeID: employeeID, DayOfWeek: dayOfWeek}]
	out := make([]engine.Assignment, len(stored))
	copy(out, stored)
	return out, nil
}

func (m *Memory) SaveSuggestion(_ context.Context, employeeID string, dayOfWeek int, assignments []engine.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := suggestionKey{EmployeeID: employeeID, DayOfWeek: dayOfWeek}
	if len(assignments) == 0 {
		delete(m.suggestions, k)
		return nil
	}
	cp := make([]engine.Assignment, len(assignments))
	copy(cp, assignments)
	m.suggestions[k] = cp
	return nil
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
