/*
errors.go - Sentinel errors for the engine and its store contracts

PURPOSE:
  Data-quality problems are never errors here: malformed cells normalize to
  empty lists, dangling catalog references contribute zero hours, and bad
  time strings read as zero minutes. The sentinels below cover the two
  things that ARE errors: genuine caller misuse and store-level failures.

USAGE:
  if errors.Is(err, engine.ErrScheduleNotFound) { ... }
*/
package engine

import "errors"

var (
	// ErrNilRoster is returned when a reducer is handed a nil roster.
	// An empty roster is fine; nil is caller misuse.
	ErrNilRoster = errors.New("nil roster")

	// ErrScheduleNotFound is returned by stores when no schedule exists
	// for the requested week start.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrRuleNotFound is returned by stores for an unknown rule ID.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrShiftNotFound is returned by stores for an unknown shift ID.
	ErrShiftNotFound = errors.New("shift not found")

	// ErrEmployeeNotFound is returned by stores for an unknown employee ID.
	ErrEmployeeNotFound = errors.New("employee not found")
)

// IsNotFound reports whether the error is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrScheduleNotFound) ||
		errors.Is(err, ErrRuleNotFound) ||
		errors.Is(err, ErrShiftNotFound) ||
		errors.Is(err, ErrEmployeeNotFound)
}
