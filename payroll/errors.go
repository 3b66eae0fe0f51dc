/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All engine error kinds in one place. Two of the "failure" cases from the
  domain are deliberately NOT errors here:
  - a day with no punches: ComputeDailySummary returns (nil, nil)
  - a missing work configuration: the engine provisions defaults and logs it

ERROR CATEGORIES:
  1. Validation - caller handed us a bad range
  2. Finalization - refusing to overwrite a latched period
  3. Data integrity - punches that contradict the request

USAGE:
  if errors.Is(err, payroll.ErrPeriodFinalized) {
      // surface a conflict instead of recomputing
  }
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when a payroll range has end before start.
	ErrInvalidRange = errors.New("invalid range: end date before start date")

	// ErrPeriodFinalized is returned when recomputation would overwrite a
	// finalized payroll period. Use ComputePayrollPeriodForced to override.
	ErrPeriodFinalized = errors.New("payroll period is finalized")

	// ErrPeriodNotFound is returned when finalizing a period that was never
	// aggregated.
	ErrPeriodNotFound = errors.New("payroll period not found")

	// ErrEmployeeMismatch is returned when the punch store hands back events
	// for a different employee than requested.
	ErrEmployeeMismatch = errors.New("punch belongs to a different employee")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FinalizedPeriodError identifies which latched period blocked a recompute.
type FinalizedPeriodError struct {
	EmployeeID string
	Start      Date
	End        Date
}

func (e *FinalizedPeriodError) Error() string {
	return fmt.Sprintf("payroll period %s %s..%s is finalized", e.EmployeeID, e.Start, e.End)
}

func (e *FinalizedPeriodError) Unwrap() error { return ErrPeriodFinalized }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// rather than an engine or store failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrPeriodNotFound) ||
		errors.Is(err, ErrPeriodFinalized)
}
