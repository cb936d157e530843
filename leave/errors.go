/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All error types in one place. Fatal errors abort a call; anomalies are
  recovered, recorded, and never abort batch processing.

ERROR CATEGORIES:
  1. Configuration errors - no periods defined (fatal for the compute call)
  2. Not-found errors - missing period/employee (fatal for that call)
  3. Anomalies - bad allocation rows, per-pair activation failures
     (recovered, collected into reports, processing continues)

USAGE:
  if errors.Is(err, leave.ErrNoPeriods) { ... }
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoPeriods is returned when a compute call has no periods at all.
	// This is a configuration error and aborts the whole call.
	ErrNoPeriods = errors.New("no leave periods defined")

	// ErrPeriodNotFound is returned when a requested period id does not exist.
	ErrPeriodNotFound = errors.New("leave period not found")

	// ErrEmployeeNotFound is returned when a requested employee does not exist.
	ErrEmployeeNotFound = errors.New("employee not found")
)

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPeriodNotFound) || errors.Is(err, ErrEmployeeNotFound)
}

// =============================================================================
// ANOMALY - recovered per-item failure
// =============================================================================

// Anomaly records a recovered failure for one item of a batch: a bad
// allocation row, a failed per-employee computation, a snapshot write that
// did not take. Anomalies carry identifying context and are collected into
// reports instead of being swallowed.
type Anomaly struct {
	EmployeeID EmployeeID
	PeriodID   string
	Code       string
	Stage      string // e.g. "allocation", "split", "carry", "snapshot"
	Message    string
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s: employee=%s period=%s code=%s: %s",
		a.Stage, a.EmployeeID, a.PeriodID, a.Code, a.Message)
}
