/*
store.go - Persistence interfaces consumed by the engine

PURPOSE:
  Defines the contract between the engine and whatever holds the data.
  The engine assumes atomic upsert-by-key from each store but no
  transactional isolation across the multi-step fetch-config / compute /
  fetch-punches / upsert sequence. Concurrent recomputes for the same
  employee-day are last-writer-wins; callers needing exactness serialize
  externally.

IMPLEMENTATIONS:
  - payroll/store: in-memory, for tests and dev
  - store/sqlite:  production SQLite
*/
package payroll

import "context"

// =============================================================================
// PUNCH STORE - Durable ordered record of punch events
// =============================================================================

type PunchStore interface {
	// CreatePunch persists a punch. The store assigns an ID when p.ID is
	// empty. Punches are immutable once created.
	CreatePunch(ctx context.Context, p PunchEvent) (PunchEvent, error)

	// ListPunches returns all punches for the employee on the given calendar
	// date, ordered ascending by timestamp.
	ListPunches(ctx context.Context, employeeID string, day Date) ([]PunchEvent, error)

	// ListRecentPunches returns up to limit punches, newest first.
	ListRecentPunches(ctx context.Context, employeeID string, limit int) ([]PunchEvent, error)

	// LastPunch returns the most recent punch, or nil when none exist.
	// The entry/exit toggle in Engine.RecordPunch is built on this.
	LastPunch(ctx context.Context, employeeID string) (*PunchEvent, error)
}

// =============================================================================
// CONFIGURATION STORE
// =============================================================================

type ConfigStore interface {
	// GetConfiguration returns nil (not an error) when the employee has no
	// configuration yet.
	GetConfiguration(ctx context.Context, employeeID string) (*WorkConfiguration, error)

	// SaveConfiguration upserts by employee ID.
	SaveConfiguration(ctx context.Context, cfg WorkConfiguration) error

	// ListConfiguredEmployees returns the IDs of every employee with a
	// configuration, for bulk refresh jobs.
	ListConfiguredEmployees(ctx context.Context) ([]string, error)
}

// =============================================================================
// SUMMARY / PERIOD STORES
// =============================================================================

type SummaryStore interface {
	// UpsertSummary overwrites by (EmployeeID, Date).
	UpsertSummary(ctx context.Context, s DailySummary) error

	// GetSummary returns nil when no summary exists for the day.
	GetSummary(ctx context.Context, employeeID string, day Date) (*DailySummary, error)

	// QuerySummaries returns summaries with dates inside p, ascending by
	// date. Days without punches are simply absent.
	QuerySummaries(ctx context.Context, employeeID string, p Period) ([]DailySummary, error)
}

type PeriodStore interface {
	// UpsertPeriod overwrites by (EmployeeID, Start, End).
	UpsertPeriod(ctx context.Context, p PayrollPeriod) error

	// GetPeriod returns nil when the period was never aggregated.
	GetPeriod(ctx context.Context, employeeID string, start, end Date) (*PayrollPeriod, error)

	// ListPeriods returns all periods for an employee, most recent start first.
	ListPeriods(ctx context.Context, employeeID string) ([]PayrollPeriod, error)

	// FinalizePeriod flips the one-way latch. Returns ErrPeriodNotFound when
	// the period does not exist. There is no corresponding un-finalize.
	FinalizePeriod(ctx context.Context, employeeID string, start, end Date) error
}

// Store is the full surface the engine needs.
type Store interface {
	PunchStore
	ConfigStore
	SummaryStore
	PeriodStore
}
