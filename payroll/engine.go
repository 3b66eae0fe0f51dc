/*
engine.go - Engine wiring and punch recording

PURPOSE:
  The Engine owns the store handles and exposes the operations callers use:

    ComputeDailySummary     (summary.go)
    ComputePayrollPeriod    (aggregate.go)
    RecordPunch             entry/exit toggle, below
    CurrentPayroll          resolver + aggregator convenience
    RefreshRecentSummaries  trailing-window recompute

  Every computation runs to completion inside one call; there is no internal
  scheduling or locking. Concurrent calls for the same employee-day are
  last-writer-wins at the store.
*/
package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultRefreshWindowDays is how far back RefreshRecentSummaries reaches
// when callers pass a non-positive window.
const DefaultRefreshWindowDays = 30

type Engine struct {
	punches   PunchStore
	configs   ConfigStore
	summaries SummaryStore
	periods   PeriodStore
	logger    *slog.Logger
}

// NewEngine creates an engine over a store. A nil logger falls back to
// slog.Default().
func NewEngine(store Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		punches:   store,
		configs:   store,
		summaries: store,
		periods:   store,
		logger:    logger,
	}
}

// =============================================================================
// CONFIGURATION RESOLUTION
// =============================================================================

// DefaultConfiguration is the documented fallback for employees without
// settings: 8.00 hours/day, 0.00 rate, semi-monthly cutoff, 0.00 bonus.
func DefaultConfiguration(employeeID string) WorkConfiguration {
	return WorkConfiguration{
		EmployeeID:  employeeID,
		HoursPerDay: ParseDecimalOrZero("8.00"),
		HourlyRate:  ParseDecimalOrZero("0.00"),
		Cutoff:      CutoffSemiMonthly,
		Bonus:       ParseDecimalOrZero("0.00"),
	}
}

// Configuration returns the employee's work configuration, provisioning the
// documented defaults when none exists. This is the single resolution path;
// nothing else in the engine reads ConfigStore directly.
func (e *Engine) Configuration(ctx context.Context, employeeID string) (WorkConfiguration, error) {
	cfg, err := e.configs.GetConfiguration(ctx, employeeID)
	if err != nil {
		return WorkConfiguration{}, fmt.Errorf("get configuration for %s: %w", employeeID, err)
	}
	if cfg != nil {
		return *cfg, nil
	}

	def := DefaultConfiguration(employeeID)
	if err := e.configs.SaveConfiguration(ctx, def); err != nil {
		return WorkConfiguration{}, fmt.Errorf("provision default configuration for %s: %w", employeeID, err)
	}
	e.logger.Info("provisioned default work configuration",
		"employee_id", employeeID,
		"hours_per_day", def.HoursPerDay.String(),
		"cutoff", string(def.Cutoff))
	return def, nil
}

// =============================================================================
// PUNCH RECORDING - Entry/exit toggle
// =============================================================================

// RecordPunch creates the next punch for an employee at the given instant.
// Direction is a toggle on the most recent punch: after an entry comes an
// exit, otherwise an entry. Recording also recomputes that day's summary so
// dashboards stay fresh; a summary failure is logged, not surfaced, because
// the punch itself is already durable.
func (e *Engine) RecordPunch(ctx context.Context, employeeID string, at time.Time) (PunchEvent, error) {
	last, err := e.punches.LastPunch(ctx, employeeID)
	if err != nil {
		return PunchEvent{}, fmt.Errorf("load last punch for %s: %w", employeeID, err)
	}

	isEntry := true
	if last != nil && last.IsEntry {
		isEntry = false
	}

	created, err := e.punches.CreatePunch(ctx, PunchEvent{
		EmployeeID: employeeID,
		At:         at.UTC().Truncate(time.Second),
		IsEntry:    isEntry,
	})
	if err != nil {
		return PunchEvent{}, fmt.Errorf("create punch for %s: %w", employeeID, err)
	}

	if _, err := e.ComputeDailySummary(ctx, employeeID, DateOf(created.At)); err != nil {
		e.logger.Warn("summary recompute after punch failed",
			"employee_id", employeeID, "date", DateOf(created.At).String(), "error", err)
	}
	return created, nil
}

// =============================================================================
// CONVENIENCE OPERATIONS
// =============================================================================

// CurrentPayroll resolves the employee's current period from their cutoff
// schedule and aggregates it.
func (e *Engine) CurrentPayroll(ctx context.Context, employeeID string, today Date) (*PayrollPeriod, error) {
	cfg, err := e.Configuration(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	p := ResolveCurrentPeriod(cfg.Cutoff, today)
	return e.ComputePayrollPeriod(ctx, employeeID, p.Start, p.End)
}

// RefreshRecentSummaries recomputes the trailing window of daily summaries,
// today included. Individual day failures are logged and skipped so one bad
// day cannot stall the rest of the window.
func (e *Engine) RefreshRecentSummaries(ctx context.Context, employeeID string, days int) error {
	if days <= 0 {
		days = DefaultRefreshWindowDays
	}
	today := Today()
	for i := 0; i < days; i++ {
		day := today.AddDays(-i)
		if _, err := e.ComputeDailySummary(ctx, employeeID, day); err != nil {
			e.logger.Warn("daily summary refresh failed",
				"employee_id", employeeID, "date", day.String(), "error", err)
		}
	}
	return ctx.Err()
}
