/*
aggregate.go - Payroll period aggregation

PURPOSE:
  Recomputes every daily summary in an inclusive date range, then sums the
  summaries that exist into a PayrollPeriod and upserts it keyed by
  (employee, start, end). Aggregation is live: rerunning after new punches
  arrive changes the totals. Callers who need an immutable snapshot finalize
  the period, and the aggregator refuses to overwrite it from then on unless
  explicitly forced.

PER-DAY FAILURES:
  A failing day is logged and skipped; the aggregation always walks the full
  range and sums whatever summaries were produced. One corrupt day must not
  sink the period.

PERIOD TYPE DRIFT:
  period_type is stamped from the configuration read at aggregation time. If an
  administrator changes the cutoff schedule between runs the stamp drifts
  with it. Intentional: the period key is the date range, not the schedule.
*/
package payroll

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// ComputePayrollPeriod aggregates [start, end] for an employee, honoring the
// finalization latch: when the stored period is finalized the stored value is
// returned together with a FinalizedPeriodError.
func (e *Engine) ComputePayrollPeriod(ctx context.Context, employeeID string, start, end Date) (*PayrollPeriod, error) {
	return e.computePeriod(ctx, employeeID, start, end, false)
}

// ComputePayrollPeriodForced recomputes even a finalized period. The latch
// itself is preserved; only the totals are refreshed. For corrections.
func (e *Engine) ComputePayrollPeriodForced(ctx context.Context, employeeID string, start, end Date) (*PayrollPeriod, error) {
	return e.computePeriod(ctx, employeeID, start, end, true)
}

func (e *Engine) computePeriod(ctx context.Context, employeeID string, start, end Date, force bool) (*PayrollPeriod, error) {
	span := Period{Start: start, End: end}
	if !span.Valid() {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}

	existing, err := e.periods.GetPeriod(ctx, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("get period for %s: %w", employeeID, err)
	}
	if existing != nil && existing.Finalized && !force {
		return existing, &FinalizedPeriodError{EmployeeID: employeeID, Start: start, End: end}
	}

	cfg, err := e.Configuration(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	// Refresh every day in range. Days with no punches stay absent; days
	// that fail are logged and skipped, never aborting the aggregation.
	for day := start; day.BeforeOrEqual(end); day = day.AddDays(1) {
		if _, err := e.ComputeDailySummary(ctx, employeeID, day); err != nil {
			e.logger.Warn("daily summary failed during aggregation",
				"employee_id", employeeID, "date", day.String(), "error", err)
		}
	}

	summaries, err := e.summaries.QuerySummaries(ctx, employeeID, span)
	if err != nil {
		return nil, fmt.Errorf("query summaries for %s: %w", employeeID, err)
	}

	totalHours := decimal.Zero
	totalGross := decimal.Zero
	totalDeductions := decimal.Zero
	for _, s := range summaries {
		totalHours = totalHours.Add(s.TotalHours)
		totalGross = totalGross.Add(s.GrossPay)
		totalDeductions = totalDeductions.Add(s.Deductions)
	}

	bonus := cfg.Bonus.Round(2)
	period := PayrollPeriod{
		EmployeeID:      employeeID,
		Start:           start,
		End:             end,
		PeriodType:      cfg.Cutoff,
		TotalHours:      totalHours,
		TotalGrossPay:   totalGross,
		TotalDeductions: totalDeductions,
		Bonus:           bonus,
		NetPay:          totalGross.Sub(totalDeductions).Add(bonus),
		// Preserve the latch: the engine never sets or clears it.
		Finalized: existing != nil && existing.Finalized,
	}
	if err := e.periods.UpsertPeriod(ctx, period); err != nil {
		return nil, fmt.Errorf("upsert period for %s: %w", employeeID, err)
	}
	return &period, nil
}
