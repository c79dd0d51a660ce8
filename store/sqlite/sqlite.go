/*
Package sqlite provides the SQLite-backed implementation of the engine's
storage interfaces.

PURPOSE:
  Persists schedules, fixed rules, the shift catalog, the roster, and
  learned suggestions. The engine itself never touches this package; only
  the API layer does.

KEY TABLES:
  schedules:       One row per stored week (week_start, completada)
  schedule_cells:  One row per (week, date, employee) cell; the assignment
                   list is stored as JSON with empty fields stripped
  fixed_rules:     Standing per-weekday instructions
  shifts:          Shift catalog
  medio_turnos:    Half-day presets
  employees:       Roster
  suggestions:     Learned per-(employee, weekday) assignment lists

UNDEFINED STRIPPING:
  Cell JSON is produced from engine.Assignment, whose omitempty tags drop
  every unset field before the write. The persistence contract rejects
  undefined values; nothing here re-checks it.

WAL MODE:
  The database is opened with WAL and foreign keys on, same trade-offs as
  any small single-writer deployment.

USAGE:
  st, err := sqlite.New("./data/schedules.db")
  defer st.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/turnos/schedule-engine/engine"
)

// Store implements engine.Store using SQLite.
type Store struct {
	db *sql.DB
}

var _ engine.Store = (*Store)(nil)

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schedules (
		week_start TEXT PRIMARY KEY,
		completada INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS schedule_cells (
		week_start  TEXT NOT NULL,
		date        TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		assignments TEXT NOT NULL,
		PRIMARY KEY (week_start, date, employee_id),
		FOREIGN KEY (week_start) REFERENCES schedules(week_start) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_cells_week ON schedule_cells(week_start);

	CREATE TABLE IF NOT EXISTS fixed_rules (
		id          TEXT PRIMARY KEY,
		owner_id    TEXT NOT NULL DEFAULT '',
		employee_id TEXT NOT NULL,
		day_of_week INTEGER NOT NULL,
		type        TEXT NOT NULL,
		shift_id    TEXT,
		start_date  TEXT,
		end_date    TEXT,
		priority    INTEGER NOT NULL DEFAULT 0,
		seq         INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_rules_employee ON fixed_rules(employee_id, day_of_week);

	CREATE TABLE IF NOT EXISTS shifts (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		color       TEXT NOT NULL DEFAULT '',
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL,
		start_time2 TEXT NOT NULL DEFAULT '',
		end_time2   TEXT NOT NULL DEFAULT '',
		seq         INTEGER
	);

	CREATE TABLE IF NOT EXISTS medio_turnos (
		id         TEXT PRIMARY KEY,
		start_time TEXT NOT NULL,
		end_time   TEXT NOT NULL,
		seq        INTEGER
	);

	CREATE TABLE IF NOT EXISTS employees (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		seq  INTEGER
	);

	CREATE TABLE IF NOT EXISTS suggestions (
		employee_id TEXT NOT NULL,
		day_of_week INTEGER NOT NULL,
		assignments TEXT NOT NULL,
		PRIMARY KEY (employee_id, day_of_week)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SCHEDULES
// =============================================================================

func (s *Store) GetSchedule(ctx context.Context, weekStart engine.DayDate) (*engine.Schedule, error) {
	var completada bool
	err := s.db.QueryRowContext(ctx,
		`SELECT completada FROM schedules WHERE week_start = ?`, weekStart.String(),
	).Scan(&completada)
	if err == sql.ErrNoRows {
		return nil, engine.ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}

	sched := engine.NewSchedule(weekStart)
	sched.Completada = completada
	if err := s.loadCells(ctx, sched); err != nil {
		return nil, err
	}
	return sched, nil
}

func (s *Store) loadCells(ctx context.Context, sched *engine.Schedule) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, employee_id, assignments FROM schedule_cells WHERE week_start = ?`,
		sched.WeekStart.String())
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var dateStr, employeeID, payload string
		if err := rows.Scan(&dateStr, &employeeID, &payload); err != nil {
			return err
		}
		date, err := engine.ParseDayDate(dateStr)
		if err != nil {
			continue // unreadable row degrades to an absent cell
		}
		var assignments []engine.Assignment
		if err := json.Unmarshal([]byte(payload), &assignments); err != nil {
			continue
		}
		sched.SetCell(date, employeeID, engine.Normalize(assignments))
	}
	return rows.Err()
}

func (s *Store) SaveSchedule(ctx context.Context, sched *engine.Schedule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	weekStart := sched.WeekStart.String()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schedules (week_start, completada) VALUES (?, ?)
		 ON CONFLICT(week_start) DO UPDATE SET completada = excluded.completada`,
		weekStart, sched.Completada); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM schedule_cells WHERE week_start = ?`, weekStart); err != nil {
		return err
	}

	for key, assignments := range sched.Cells {
		if len(assignments) == 0 {
			continue
		}
		payload, err := json.Marshal(assignments)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schedule_cells (week_start, date, employee_id, assignments) VALUES (?, ?, ?, ?)`,
			weekStart, key.Date.String(), key.EmployeeID, string(payload)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) LockSchedule(ctx context.Context, weekStart engine.DayDate) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE schedules SET completada = 1 WHERE week_start = ?`, weekStart.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrScheduleNotFound
	}
	return nil
}

func (s *Store) SchedulesInRange(ctx context.Context, from, to engine.DayDate) ([]*engine.Schedule, error) {
	// A week overlaps [from, to] when week_start is within [from-6, to].
	rows, err := s.db.QueryContext(ctx,
		`SELECT week_start, completada FROM schedules
		 WHERE week_start >= ? AND week_start <= ? ORDER BY week_start`,
		from.AddDays(-6).String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*engine.Schedule
	for rows.Next() {
		var weekStartStr string
		var completada bool
		if err := rows.Scan(&weekStartStr, &completada); err != nil {
			return nil, err
		}
		weekStart, err := engine.ParseDayDate(weekStartStr)
		if err != nil {
			continue
		}
		sched := engine.NewSchedule(weekStart)
		sched.Completada = completada
		out = append(out, sched)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, sched := range out {
		if err := s.loadCells(ctx, sched); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) LockedSchedule(ctx context.Context, weekStart engine.DayDate) (*engine.Schedule, error) {
	sched, err := s.GetSchedule(ctx, weekStart)
	if err == engine.ErrScheduleNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !sched.Completada {
		return nil, nil
	}
	return sched, nil
}

// =============================================================================
// RULES
// =============================================================================

func (s *Store) SaveRule(ctx context.Context, rule engine.FixedRule) error {
	var startDate, endDate any
	if rule.StartDate != nil {
		startDate = rule.StartDate.String()
	}
	if rule.EndDate != nil {
		endDate = rule.EndDate.String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fixed_rules (id, owner_id, employee_id, day_of_week, type, shift_id, start_date, end_date, priority, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM fixed_rules))
		 ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			employee_id = excluded.employee_id,
			day_of_week = excluded.day_of_week,
			type = excluded.type,
			shift_id = excluded.shift_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			priority = excluded.priority`,
		rule.ID, rule.OwnerID, rule.EmployeeID, rule.DayOfWeek, string(rule.Type),
		rule.ShiftID, startDate, endDate, rule.Priority)
	return err
}

func (s *Store) DeleteRule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fixed_rules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return engine.ErrRuleNotFound
	}
	return nil
}

func (s *Store) Rules(ctx context.Context, ownerID string) ([]engine.FixedRule, error) {
	query := `SELECT id, owner_id, employee_id, day_of_week, type, shift_id, start_date, end_date, priority
		  FROM fixed_rules`
	args := []any{}
	if ownerID != "" {
		query += ` WHERE owner_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.FixedRule
	for rows.Next() {
		var rule engine.FixedRule
		var ruleType string
		var shiftID, startDate, endDate sql.NullString
		if err := rows.Scan(&rule.ID, &rule.OwnerID, &rule.EmployeeID, &rule.DayOfWeek,
			&ruleType, &shiftID, &startDate, &endDate, &rule.Priority); err != nil {
			return nil, err
		}
		rule.Type = engine.RuleType(ruleType)
		rule.ShiftID = shiftID.String
		if startDate.Valid {
			if d, err := engine.ParseDayDate(startDate.String); err == nil {
				rule.StartDate = &d
			}
		}
		if endDate.Valid {
			if d, err := engine.ParseDayDate(endDate.String); err == nil {
				rule.EndDate = &d
			}
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

// =============================================================================
// CATALOG
// =============================================================================

func (s *Store) Shifts(ctx context.Context) ([]engine.Shift, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color, start_time, end_time, start_time2, end_time2 FROM shifts ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Shift
	for rows.Next() {
		var sh engine.Shift
		if err := rows.Scan(&sh.ID, &sh.Name, &sh.Color, &sh.StartTime, &sh.EndTime, &sh.StartTime2, &sh.EndTime2); err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func (s *Store) SaveShift(ctx context.Context, shift engine.Shift) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shifts (id, name, color, start_time, end_time, start_time2, end_time2, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM shifts))
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			start_time2 = excluded.start_time2,
			end_time2 = excluded.end_time2`,
		shift.ID, shift.Name, shift.Color, shift.StartTime, shift.EndTime, shift.StartTime2, shift.EndTime2)
	return err
}

func (s *Store) DeleteShift(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shifts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return engine.ErrShiftNotFound
	}
	return nil
}

func (s *Store) MedioTurnos(ctx context.Context) ([]engine.MedioTurno, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, start_time, end_time FROM medio_turnos ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.MedioTurno
	for rows.Next() {
		var mt engine.MedioTurno
		if err := rows.Scan(&mt.ID, &mt.StartTime, &mt.EndTime); err != nil {
			return nil, err
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}

func (s *Store) SaveMedioTurno(ctx context.Context, mt engine.MedioTurno) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO medio_turnos (id, start_time, end_time, seq)
		 VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM medio_turnos))
		 ON CONFLICT(id) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time`,
		mt.ID, mt.StartTime, mt.EndTime)
	return err
}

// =============================================================================
// ROSTER
// =============================================================================

func (s *Store) Employees(ctx context.Context) ([]engine.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM employees ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Employee
	for rows.Next() {
		var emp engine.Employee
		if err := rows.Scan(&emp.ID, &emp.Name); err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) SaveEmployee(ctx context.Context, emp engine.Employee) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO employees (id, name, seq)
		 VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM employees))
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		emp.ID, emp.Name)
	return err
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return engine.ErrEmployeeNotFound
	}
	return nil
}

// =============================================================================
// SUGGESTIONS
// =============================================================================

func (s *Store) Suggestion(ctx context.Context, employeeID string, dayOfWeek int) ([]engine.Assignment, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT assignments FROM suggestions WHERE employee_id = ? AND day_of_week = ?`,
		employeeID, dayOfWeek).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var assignments []engine.Assignment
	if err := json.Unmarshal([]byte(payload), &assignments); err != nil {
		return nil, nil // unreadable suggestion degrades to none
	}
	return engine.Normalize(assignments), nil
}

func (s *Store) SaveSuggestion(ctx context.Context, employeeID string, dayOfWeek int, assignments []engine.Assignment) error {
	if len(assignments) == 0 {
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM suggestions WHERE employee_id = ? AND day_of_week = ?`,
			employeeID, dayOfWeek)
		return err
	}
	payload, err := json.Marshal(assignments)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO suggestions (employee_id, day_of_week, assignments) VALUES (?, ?, ?)
		 ON CONFLICT(employee_id, day_of_week) DO UPDATE SET assignments = excluded.assignments`,
		employeeID, dayOfWeek, string(payload))
	return err
}
