/*
Package payroll computes attendance and payroll figures from raw
clock-in/clock-out events.

PURPOSE:
  This package contains the core engine: it turns a stream of timestamped
  punches into a daily work summary (hours worked, lateness, deductions, pay)
  and aggregates daily summaries into a payroll period (totals, bonus, net
  pay). Storage, HTTP, and scheduling live elsewhere; the engine only talks
  to store interfaces.

KEY CONCEPTS IN THIS FILE (types.go):
  - PunchEvent: a single clock-in or clock-out, second precision
  - WorkConfiguration: per-employee settings (expected hours, rate, cutoff, bonus)
  - DailySummary: one employee-day of derived figures, keyed (employee, date)
  - PayrollPeriod: one employee pay period, keyed (employee, start, end)
  - CutoffSchedule: the recurring boundary convention for pay periods

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for hours and money, never float64
  2. Idempotency: summaries and periods are fully recomputed on every run,
     never incrementally patched
  3. Upsert semantics: at most one summary per employee-day, one period per
     employee-range; last writer wins

SEE ALSO:
  - summary.go: daily summary derivation
  - aggregate.go: period aggregation and the finalization latch
  - period.go: cutoff schedules to date ranges
  - store.go: persistence interfaces
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PUNCH EVENT - Raw clock-in/clock-out record
// =============================================================================

// PunchEvent is a single clock event. Immutable once created; ordered by
// At ascending within an employee. No two punches for the same employee
// share a timestamp.
type PunchEvent struct {
	ID         string
	EmployeeID string
	At         time.Time // UTC, second precision
	IsEntry    bool
}

// =============================================================================
// CUTOFF SCHEDULE
// =============================================================================

type CutoffSchedule string

const (
	CutoffSemiMonthly CutoffSchedule = "semi_monthly" // [1st, 15th] / [16th, month end]
	CutoffWeekly      CutoffSchedule = "weekly"       // Monday through Sunday
	CutoffDaily       CutoffSchedule = "daily"        // single day
)

// ParseCutoffSchedule maps a stored string to a schedule, falling back to
// semi-monthly for anything unrecognized.
func ParseCutoffSchedule(s string) CutoffSchedule {
	switch CutoffSchedule(s) {
	case CutoffSemiMonthly, CutoffWeekly, CutoffDaily:
		return CutoffSchedule(s)
	default:
		return CutoffSemiMonthly
	}
}

// =============================================================================
// WORK CONFIGURATION - Per-employee settings
// =============================================================================

// WorkConfiguration holds the per-employee settings the engine reads.
// Exactly one per employee; administrators mutate it, the engine never does
// except to provision defaults for an employee that has none.
type WorkConfiguration struct {
	EmployeeID  string
	HoursPerDay decimal.Decimal
	HourlyRate  decimal.Decimal
	Cutoff      CutoffSchedule
	Bonus       decimal.Decimal
}

// =============================================================================
// DAILY SUMMARY - One employee-day of derived figures
// =============================================================================

// DailySummary is the derived record for one employee on one date.
// Key = (EmployeeID, Date); recomputed in full on every run.
type DailySummary struct {
	EmployeeID           string
	Date                 Date
	TimeIn               *TimeOfDay // first entry, nil when the day has no entry
	TimeOut              *TimeOfDay // last exit, nil when the day has no exit
	TotalHours           decimal.Decimal
	LateMinutes          int
	LateDeductionMinutes int
	UndertimeMinutes     int
	GrossPay             decimal.Decimal
	Deductions           decimal.Decimal
	NetPay               decimal.Decimal
}

// =============================================================================
// PAYROLL PERIOD - Aggregated totals over a date range
// =============================================================================

// PayrollPeriod is the aggregate for one employee over an inclusive range.
// Key = (EmployeeID, Start, End). Finalized is a one-way latch set by an
// external actor; the aggregator honors it but never sets it.
type PayrollPeriod struct {
	EmployeeID      string
	Start           Date
	End             Date
	PeriodType      CutoffSchedule
	TotalHours      decimal.Decimal
	TotalGrossPay   decimal.Decimal
	TotalDeductions decimal.Decimal
	Bonus           decimal.Decimal
	NetPay          decimal.Decimal
	Finalized       bool
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

var sixty = decimal.NewFromInt(60)

// ParseDecimalOrZero parses a stored decimal string, returning zero on garbage.
func ParseDecimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
