/*
handlers.go - HTTP API handlers for the scheduling engine

PURPOSE:
  Exposes the computation core over REST. Handlers parse HTTP, call the
  engine with snapshots read from the store, and serialize the result. The
  engine never writes; every write below happens because a UI-facing
  endpoint (save/lock/autofill/CRUD) was called.

ENDPOINTS:
  Schedules:
    GET    /api/schedules/{weekStart}              Stored week
    PUT    /api/schedules/{weekStart}              Upsert a week
    POST   /api/schedules/{weekStart}/lock         Mark completada + learn suggestions
    GET    /api/schedules/{weekStart}/stats        Weekly stats
    GET    /api/schedules/{weekStart}/resolved     Rule resolution per cell
    GET    /api/schedules/{weekStart}/suggestions  Fallback-chain fill for empty cells
    POST   /api/schedules/{weekStart}/autofill     Materialize RULE cells

  Stats:
    GET    /api/stats/monthly?year=&month=         Custom-month stats

  Rules / Shifts / Employees: plain CRUD
  Config: GET/PUT /api/config

ERROR HANDLING:
  400 invalid input, 404 not found, 500 everything else. Data-quality
  problems never surface here; the engine degrades them to zeros.
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/turnos/schedule-engine/engine"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store engine.Store
	Log   *logrus.Logger

	mu  sync.RWMutex
	cfg engine.Config
}

func NewHandler(store engine.Store, cfg engine.Config, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{Store: store, Log: log, cfg: cfg}
}

func (h *Handler) config() engine.Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Log.WithError(err).Error("failed to encode response")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, ErrorResponse{Error: msg})
}

func (h *Handler) internalError(w http.ResponseWriter, err error, msg string) {
	h.Log.WithError(err).Error(msg)
	h.respondError(w, http.StatusInternalServerError, msg)
}

func weekStartParam(r *http.Request) (engine.DayDate, error) {
	return engine.ParseDayDate(chi.URLParam(r, "weekStart"))
}

// =============================================================================
// SCHEDULES
// =============================================================================

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	weekStart, err := weekStartParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid weekStart date")
		return
	}
	sched, err := h.Store.GetSchedule(r.Context(), weekStart)
	if err == engine.ErrScheduleNotFound {
		h.respondError(w, http.StatusNotFound, "schedule not found")
		return
	}
	if err != nil {
		h.internalError(w, err, "failed to load schedule")
		return
	}
	h.respondJSON(w, http.StatusOK, scheduleDTO(sched))
}

func scheduleDTO(sched *engine.Schedule) ScheduleDTO {
	dto := ScheduleDTO{
		WeekStart:  sched.WeekStart.String(),
		Completada: sched.Completada,
		Cells:      []CellDTO{},
	}
	for _, day := range sched.Window().Days() {
		for key, assignments := range sched.Cells {
			if key.Date != day {
				continue
			}
			dto.Cells = append(dto.Cells, CellDTO{
				Date:        key.Date.String(),
				EmployeeID:  key.EmployeeID,
				Assignments: assignments,
			})
		}
	}
	return dto
}

func (h *Handler) SaveSchedule(w http.ResponseWriter, r *http.Request) {
	weekStart, err := weekStartParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid weekStart date")
		return
	}
	var req SaveScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sched := engine.NewSchedule(weekStart)
	sched.Completada = req.Completada
	window := sched.Window()
	for _, cell := range req.Cells {
		date, err := engine.ParseDayDate(cell.Date)
		if err != nil || !window.Contains(date) || cell.EmployeeID == "" {
			continue
		}
		sched.SetCell(date, cell.EmployeeID, engine.Normalize(cell.Assignments))
	}

	if err := h.Store.SaveSchedule(r.Context(), sched); err != nil {
		h.internalError(w, err, "failed to save schedule")
		return
	}
	h.respondJSON(w, http.StatusOK, scheduleDTO(sched))
}

// LockSchedule marks the week completada and records each non-empty cell as
// the learned suggestion for that (employee, weekday).
func (h *Handler) LockSchedule(w http.ResponseWriter, r *http.Request) {
	weekStart, err := weekStartParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid weekStart date")
		return
	}
	if err := h.Store.LockSchedule(r.Context(), weekStart); err != nil {
		if err == engine.ErrScheduleNotFound {
			h.respondError(w, http.StatusNotFound, "schedule not found")
			return
		}
		h.internalError(w, err, "failed to lock schedule")
		return
	}

	sched, err := h.Store.GetSchedule(r.Context(), weekStart)
	if err == nil {
		h.learnSuggestions(r.Context(), sched)
	}
	h.respondJSON(w, http.StatusOK, map[string]bool{"completada": true})
}

func (h *Handler) learnSuggestions(ctx context.Context, sched *engine.Schedule) {
	for key, assignments := range sched.Cells {
		if len(assignments) == 0 {
			continue
		}
		err := h.Store.SaveSuggestion(ctx, key.EmployeeID, int(key.Date.Weekday()), assignments)
		if err != nil {
			h.Log.WithError(err).WithField("employee", key.EmployeeID).Warn("failed to record suggestion")
		}
	}
}

// =============================================================================
// STATS
// =============================================================================

func (h *Handler) WeeklyStats(w http.ResponseWriter, r *http.Request) {
	weekStart, err := weekStartParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid weekStart date")
		return
	}
	roster, err := h.Store.Employees(r.Context())
	if err != nil {
		h.internalError(w, err, "failed to load roster")
		return
	}
	sched, err := h.Store.GetSchedule(r.Context(), weekStart)
	if err != nil && err != engine.ErrScheduleNotFound {
		h.internalError(w, err, "failed to load schedule")
		return
	}

	stats, err := engine.WeeklyStats(roster, sched, h.config())
	if err != nil {
		h.internalError(w, err, "failed to compute stats")
		return
	}
	window := engine.WeekWindow(weekStart)
	h.respondJSON(w, http.StatusOK, statsResponse(window, roster, stats))
}

func (h *Handler) MonthlyStats(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid year")
		return
	}
	monthNum, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		h.respondError(w, http.StatusBadRequest, "invalid month")
		return
	}
	month := time.Month(monthNum)

	cfg := h.config()
	window := engine.MonthWindow(year, month, cfg.Calendar.CustomMonthStartDay)

	roster, err := h.Store.Employees(r.Context())
	if err != nil {
		h.internalError(w, err, "failed to load roster")
		return
	}
	schedules, err := h.Store.SchedulesInRange(r.Context(), window.Start, window.End)
	if err != nil {
		h.internalError(w, err, "failed to load schedules")
		return
	}

	stats, err := engine.MonthlyStats(roster, schedules, year, month, cfg)
	if err != nil {
		h.internalError(w, err, "failed to compute stats")
		return
	}
	h.respondJSON(w, http.StatusOK, statsResponse(window, roster, stats))
}

func statsResponse(window engine.Window, roster []engine.Employee, stats map[string]engine.EmployeeStats) StatsResponse {
	resp := StatsResponse{
		WindowStart: window.Start.String(),
		WindowEnd:   window.End.String(),
		Stats:       make([]EmployeeStatsDTO, 0, len(roster)),
	}
	for _, emp := range roster {
		resp.Stats = append(resp.Stats, statsDTO(emp, stats[emp.ID]))
	}
	return resp
}

// =============================================================================
// RULE RESOLUTION
// =============================================================================

func (h *Handler) rulesEngine(ctx context.Context) (*engine.RulesEngine, []engine.FixedRule, []engine.Employee, error) {
	shifts, err := h.Store.Shifts(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	rules, err := h.Store.Rules(ctx, "")
	if err != nil {
		return nil, nil, nil, err
	}
	roster, err := h.Store.Employees(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return &engine.RulesEngine{Catalog: engine.NewShiftCatalog(shifts)}, rules, roster, nil
}

func (h *Handler) ResolveSchedule(w http.ResponseWriter, r *http.Request) {
	weekStart, err := weekStartParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid weekStart date")
		return
	}
	re, rules, roster, err := h.rulesEngine(r.Context())
	if err != nil {
		h.internalError(w, err, "failed to load rule context")
		return
	}
	sched, err := h.Store.GetSchedule(r.Context(), weekStart)
	if err != nil && err != engine.ErrScheduleNotFound {
		h.internalError(w, err, "failed to load schedule")
		return
	}

	cells := re.ResolveWeek(rules, roster, weekStart, sched)
	h.respondJSON(w, http.StatusOK, ResolvedScheduleResponse{
		WeekStart: weekStart.String(),
		Cells:     cells,
	})
}

// Suggestions runs the legacy fallback chain for every empty cell of the
// week: explicit rules, then learned suggestions, then the bounded backward
// scan over locked weeks.
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	weekStart, err := weekStartParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid weekStart date")
		return
	}
	lookback := 0
	if v := r.URL.Query().Get("lookback"); v != "" {
		if lookback, err = strconv.Atoi(v); err != nil || lookback < 0 {
			h.respondError(w, http.StatusBadRequest, "invalid lookback")
			return
		}
	}

	re, rules, roster, err := h.rulesEngine(r.Context())
	if err != nil {
		h.internalError(w, err, "failed to load rule context")
		return
	}
	sched, err := h.Store.GetSchedule(r.Context(), weekStart)
	if err != nil && err != engine.ErrScheduleNotFound {
		h.internalError(w, err, "failed to load schedule")
		return
	}

	opts := engine.FallbackOptions{
		Suggestions:      h.Store,
		History:          h.Store,
		MaxLookbackWeeks: lookback,
	}

	resp := SuggestionsResponse{WeekStart: weekStart.String(), Cells: []CellDTO{}}
	for _, day := range engine.WeekWindow(weekStart).Days() {
		for _, emp := range roster {
			if sched != nil && len(sched.CellAt(day, emp.ID)) > 0 {
				continue
			}
			suggested, err := re.SuggestAssignments(r.Context(), rules, emp.ID, day, weekStart, opts)
			if err != nil {
				h.internalError(w, err, "failed to compute suggestions")
				return
			}
			if len(suggested) == 0 {
				continue
			}
			resp.Cells = append(resp.Cells, CellDTO{
				Date:        day.String(),
				EmployeeID:  emp.ID,
				Assignments: suggested,
			})
		}
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// Autofill materializes the rule-implied assignment into every empty RULE
// cell and persists the week. Overrides and manual cells are untouched.
func (h *Handler) Autofill(w http.ResponseWriter, r *http.Request) {
	weekStart, err := weekStartParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid weekStart date")
		return
	}
	re, rules, roster, err := h.rulesEngine(r.Context())
	if err != nil {
		h.internalError(w, err, "failed to load rule context")
		return
	}
	sched, err := h.Store.GetSchedule(r.Context(), weekStart)
	if err == engine.ErrScheduleNotFound {
		sched = engine.NewSchedule(weekStart)
	} else if err != nil {
		h.internalError(w, err, "failed to load schedule")
		return
	}

	filled := 0
	for _, day := range sched.Window().Days() {
		for _, emp := range roster {
			stored := sched.CellAt(day, emp.ID)
			if len(stored) > 0 {
				continue
			}
			res := re.Resolve(rules, emp.ID, day, stored)
			if res.State != engine.StateRule {
				continue
			}
			sched.SetCell(day, emp.ID, res.Assignments)
			filled++
		}
	}

	if err := h.Store.SaveSchedule(r.Context(), sched); err != nil {
		h.internalError(w, err, "failed to save schedule")
		return
	}
	h.Log.WithFields(logrus.Fields{"weekStart": weekStart.String(), "filled": filled}).Info("autofill applied")
	h.respondJSON(w, http.StatusOK, scheduleDTO(sched))
}

// =============================================================================
// RULES CRUD
// =============================================================================

func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Store.Rules(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		h.internalError(w, err, "failed to load rules")
		return
	}
	if rules == nil {
		rules = []engine.FixedRule{}
	}
	h.respondJSON(w, http.StatusOK, rules)
}

func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EmployeeID == "" || req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		h.respondError(w, http.StatusBadRequest, "employeeId and dayOfWeek in [0..6] are required")
		return
	}
	ruleType := engine.RuleType(req.Type)
	if ruleType != engine.RuleShift && ruleType != engine.RuleOff {
		h.respondError(w, http.StatusBadRequest, "type must be SHIFT or OFF")
		return
	}
	if ruleType == engine.RuleShift && req.ShiftID == "" {
		h.respondError(w, http.StatusBadRequest, "shiftId is required for SHIFT rules")
		return
	}

	rule := engine.FixedRule{
		ID:         uuid.NewString(),
		EmployeeID: req.EmployeeID,
		OwnerID:    req.OwnerID,
		DayOfWeek:  req.DayOfWeek,
		Type:       ruleType,
		ShiftID:    req.ShiftID,
		Priority:   req.Priority,
	}
	if req.StartDate != "" {
		d, err := engine.ParseDayDate(req.StartDate)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid startDate")
			return
		}
		rule.StartDate = &d
	}
	if req.EndDate != "" {
		d, err := engine.ParseDayDate(req.EndDate)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid endDate")
			return
		}
		rule.EndDate = &d
	}

	if err := h.Store.SaveRule(r.Context(), rule); err != nil {
		h.internalError(w, err, "failed to save rule")
		return
	}
	h.respondJSON(w, http.StatusCreated, rule)
}

func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteRule(r.Context(), chi.URLParam(r, "id"))
	if err == engine.ErrRuleNotFound {
		h.respondError(w, http.StatusNotFound, "rule not found")
		return
	}
	if err != nil {
		h.internalError(w, err, "failed to delete rule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SHIFTS CRUD
// =============================================================================

func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.Store.Shifts(r.Context())
	if err != nil {
		h.internalError(w, err, "failed to load shifts")
		return
	}
	if shifts == nil {
		shifts = []engine.Shift{}
	}
	h.respondJSON(w, http.StatusOK, shifts)
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.StartTime == "" || req.EndTime == "" {
		h.respondError(w, http.StatusBadRequest, "name, startTime and endTime are required")
		return
	}
	shift := engine.Shift{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Color:      req.Color,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		StartTime2: req.StartTime2,
		EndTime2:   req.EndTime2,
	}
	if err := h.Store.SaveShift(r.Context(), shift); err != nil {
		h.internalError(w, err, "failed to save shift")
		return
	}
	h.respondJSON(w, http.StatusCreated, shift)
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteShift(r.Context(), chi.URLParam(r, "id"))
	if err == engine.ErrShiftNotFound {
		h.respondError(w, http.StatusNotFound, "shift not found")
		return
	}
	if err != nil {
		h.internalError(w, err, "failed to delete shift")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListMedioTurnos(w http.ResponseWriter, r *http.Request) {
	mts, err := h.Store.MedioTurnos(r.Context())
	if err != nil {
		h.internalError(w, err, "failed to load medio turnos")
		return
	}
	if mts == nil {
		mts = []engine.MedioTurno{}
	}
	h.respondJSON(w, http.StatusOK, mts)
}

// =============================================================================
// EMPLOYEES CRUD
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	roster, err := h.Store.Employees(r.Context())
	if err != nil {
		h.internalError(w, err, "failed to load roster")
		return
	}
	if roster == nil {
		roster = []engine.Employee{}
	}
	h.respondJSON(w, http.StatusOK, roster)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		h.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	emp := engine.Employee{ID: req.ID, Name: req.Name}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.internalError(w, err, "failed to save employee")
		return
	}
	h.respondJSON(w, http.StatusCreated, emp)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteEmployee(r.Context(), chi.URLParam(r, "id"))
	if err == engine.ErrEmployeeNotFound {
		h.respondError(w, http.StatusNotFound, "employee not found")
		return
	}
	if err != nil {
		h.internalError(w, err, "failed to delete employee")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CONFIG
// =============================================================================

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.config())
}

func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg engine.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.mu.Lock()
	h.cfg = cfg
	h.mu.Unlock()
	h.respondJSON(w, http.StatusOK, cfg)
}
