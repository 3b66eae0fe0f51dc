/*
Package sqlite provides a SQLite-backed implementation of the payroll
storage interfaces.

PURPOSE:
  Implements payroll.Store (punches, work configurations, daily summaries,
  payroll periods) on SQLite. The same patterns apply to PostgreSQL; only
  minor SQL dialect differences.

KEY TABLES:
  punches:             Immutable clock events, unique per (employee, instant)
  work_configurations: One row per employee, upserted by admins
  daily_summaries:     Upsert-by-(employee, date), rewritten on recompute
  payroll_periods:     Upsert-by-(employee, start, end); is_finalized is a
                       one-way latch flipped only by FinalizePeriod

ENCODING:
  Decimals are stored as TEXT (their canonical string form) so no precision
  is lost round-tripping. Timestamps are RFC3339 UTC, dates are 2006-01-02,
  times of day are 15:04:05; all collate correctly as text.

CONCURRENCY:
  sync.RWMutex for in-process thread safety, WAL mode for better reader
  concurrency and crash recovery. Upserts are atomic per statement; the
  engine does not require isolation across statements.

USAGE:
  store, err := sqlite.New("./payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
  engine := payroll.NewEngine(store, logger)

SEE ALSO:
  - payroll/store.go: Interface definitions
  - payroll/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/payroll-engine/payroll"
)

// Store implements payroll.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ payroll.Store = (*Store)(nil)

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
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
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Punch events (immutable once created)
	CREATE TABLE IF NOT EXISTS punches (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		punched_at TEXT NOT NULL,
		is_entry INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	-- No two punches for the same employee share an instant; doubles as the
	-- lookup index for per-day and last-punch queries.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_punches_employee_instant
		ON punches(employee_id, punched_at);

	-- Per-employee settings, one row each
	CREATE TABLE IF NOT EXISTS work_configurations (
		employee_id TEXT PRIMARY KEY,
		hours_per_day TEXT NOT NULL,
		hourly_rate TEXT NOT NULL,
		cutoff_schedule TEXT NOT NULL,
		bonus TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Derived day records, rewritten in full on every recompute
	CREATE TABLE IF NOT EXISTS daily_summaries (
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		time_in TEXT,
		time_out TEXT,
		total_hours TEXT NOT NULL,
		late_minutes INTEGER NOT NULL,
		late_deduction_minutes INTEGER NOT NULL,
		undertime_minutes INTEGER NOT NULL,
		gross_pay TEXT NOT NULL,
		deductions TEXT NOT NULL,
		net_pay TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_summaries_employee_date
		ON daily_summaries(employee_id, date);

	-- Aggregated pay periods; is_finalized only ever goes 0 -> 1
	CREATE TABLE IF NOT EXISTS payroll_periods (
		employee_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		period_type TEXT NOT NULL,
		total_hours TEXT NOT NULL,
		total_gross_pay TEXT NOT NULL,
		total_deductions TEXT NOT NULL,
		bonus TEXT NOT NULL,
		net_pay TEXT NOT NULL,
		is_finalized INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, start_date, end_date)
	);

	CREATE INDEX IF NOT EXISTS idx_periods_employee_start
		ON payroll_periods(employee_id, start_date DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PUNCH STORE (payroll.PunchStore interface)
// =============================================================================

func (s *Store) CreatePunch(ctx context.Context, p payroll.PunchEvent) (payroll.PunchEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = fmt.Sprintf("punch-%d", time.Now().UnixNano())
	}
	p.At = p.At.UTC().Truncate(time.Second)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO punches (id, employee_id, punched_at, is_entry, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.EmployeeID, p.At.Format(time.RFC3339), boolToInt(p.IsEntry),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return payroll.PunchEvent{}, err
	}
	return p, nil
}

func (s *Store) ListPunches(ctx context.Context, employeeID string, day payroll.Date) ([]payroll.PunchEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from := day.Time().Format(time.RFC3339)
	to := day.AddDays(1).Time().Format(time.RFC3339)
	return s.queryPunches(ctx, `
		SELECT id, employee_id, punched_at, is_entry FROM punches
		WHERE employee_id = ? AND punched_at >= ? AND punched_at < ?
		ORDER BY punched_at ASC`,
		employeeID, from, to)
}

func (s *Store) ListRecentPunches(ctx context.Context, employeeID string, limit int) ([]payroll.PunchEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	return s.queryPunches(ctx, `
		SELECT id, employee_id, punched_at, is_entry FROM punches
		WHERE employee_id = ?
		ORDER BY punched_at DESC
		LIMIT ?`,
		employeeID, limit)
}

func (s *Store) LastPunch(ctx context.Context, employeeID string) (*payroll.PunchEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	punches, err := s.queryPunches(ctx, `
		SELECT id, employee_id, punched_at, is_entry FROM punches
		WHERE employee_id = ?
		ORDER BY punched_at DESC
		LIMIT 1`,
		employeeID)
	if err != nil || len(punches) == 0 {
		return nil, err
	}
	return &punches[0], nil
}

func (s *Store) queryPunches(ctx context.Context, query string, args ...any) ([]payroll.PunchEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var punches []payroll.PunchEvent
	for rows.Next() {
		var p payroll.PunchEvent
		var at string
		var isEntry int
		if err := rows.Scan(&p.ID, &p.EmployeeID, &at, &isEntry); err != nil {
			return nil, err
		}
		p.At, _ = time.Parse(time.RFC3339, at)
		p.At = p.At.UTC()
		p.IsEntry = isEntry != 0
		punches = append(punches, p)
	}
	return punches, rows.Err()
}

// =============================================================================
// CONFIG STORE (payroll.ConfigStore interface)
// =============================================================================

func (s *Store) GetConfiguration(ctx context.Context, employeeID string) (*payroll.WorkConfiguration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cfg payroll.WorkConfiguration
	var hoursPerDay, hourlyRate, cutoff, bonus string

	err := s.db.QueryRowContext(ctx, `
		SELECT employee_id, hours_per_day, hourly_rate, cutoff_schedule, bonus
		FROM work_configurations WHERE employee_id = ?`,
		employeeID,
	).Scan(&cfg.EmployeeID, &hoursPerDay, &hourlyRate, &cutoff, &bonus)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cfg.HoursPerDay = payroll.ParseDecimalOrZero(hoursPerDay)
	cfg.HourlyRate = payroll.ParseDecimalOrZero(hourlyRate)
	cfg.Cutoff = payroll.ParseCutoffSchedule(cutoff)
	cfg.Bonus = payroll.ParseDecimalOrZero(bonus)
	return &cfg, nil
}

func (s *Store) SaveConfiguration(ctx context.Context, cfg payroll.WorkConfiguration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO work_configurations (employee_id, hours_per_day, hourly_rate, cutoff_schedule, bonus, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			hours_per_day = excluded.hours_per_day,
			hourly_rate = excluded.hourly_rate,
			cutoff_schedule = excluded.cutoff_schedule,
			bonus = excluded.bonus,
			updated_at = excluded.updated_at`,
		cfg.EmployeeID, cfg.HoursPerDay.String(), cfg.HourlyRate.String(),
		string(cfg.Cutoff), cfg.Bonus.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) ListConfiguredEmployees(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT employee_id FROM work_configurations ORDER BY employee_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// =============================================================================
// SUMMARY STORE (payroll.SummaryStore interface)
// =============================================================================

func (s *Store) UpsertSummary(ctx context.Context, sum payroll.DailySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_summaries (
			employee_id, date, time_in, time_out, total_hours,
			late_minutes, late_deduction_minutes, undertime_minutes,
			gross_pay, deductions, net_pay, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET
			time_in = excluded.time_in,
			time_out = excluded.time_out,
			total_hours = excluded.total_hours,
			late_minutes = excluded.late_minutes,
			late_deduction_minutes = excluded.late_deduction_minutes,
			undertime_minutes = excluded.undertime_minutes,
			gross_pay = excluded.gross_pay,
			deductions = excluded.deductions,
			net_pay = excluded.net_pay,
			updated_at = excluded.updated_at`,
		sum.EmployeeID, sum.Date.String(),
		timeOfDayPtr(sum.TimeIn), timeOfDayPtr(sum.TimeOut),
		sum.TotalHours.String(),
		sum.LateMinutes, sum.LateDeductionMinutes, sum.UndertimeMinutes,
		sum.GrossPay.String(), sum.Deductions.String(), sum.NetPay.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetSummary(ctx context.Context, employeeID string, day payroll.Date) (*payroll.DailySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries, err := s.querySummaries(ctx, `
		SELECT employee_id, date, time_in, time_out, total_hours,
		       late_minutes, late_deduction_minutes, undertime_minutes,
		       gross_pay, deductions, net_pay
		FROM daily_summaries WHERE employee_id = ? AND date = ?`,
		employeeID, day.String())
	if err != nil || len(summaries) == 0 {
		return nil, err
	}
	return &summaries[0], nil
}

func (s *Store) QuerySummaries(ctx context.Context, employeeID string, p payroll.Period) ([]payroll.DailySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.querySummaries(ctx, `
		SELECT employee_id, date, time_in, time_out, total_hours,
		       late_minutes, late_deduction_minutes, undertime_minutes,
		       gross_pay, deductions, net_pay
		FROM daily_summaries
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`,
		employeeID, p.Start.String(), p.End.String())
}

func (s *Store) querySummaries(ctx context.Context, query string, args ...any) ([]payroll.DailySummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []payroll.DailySummary
	for rows.Next() {
		var sum payroll.DailySummary
		var date, totalHours, grossPay, deductions, netPay string
		var timeIn, timeOut sql.NullString
		if err := rows.Scan(&sum.EmployeeID, &date, &timeIn, &timeOut, &totalHours,
			&sum.LateMinutes, &sum.LateDeductionMinutes, &sum.UndertimeMinutes,
			&grossPay, &deductions, &netPay); err != nil {
			return nil, err
		}
		sum.Date, _ = payroll.ParseDate(date)
		if timeIn.Valid {
			if tod, err := payroll.ParseTimeOfDay(timeIn.String); err == nil {
				sum.TimeIn = &tod
			}
		}
		if timeOut.Valid {
			if tod, err := payroll.ParseTimeOfDay(timeOut.String); err == nil {
				sum.TimeOut = &tod
			}
		}
		sum.TotalHours = payroll.ParseDecimalOrZero(totalHours)
		sum.GrossPay = payroll.ParseDecimalOrZero(grossPay)
		sum.Deductions = payroll.ParseDecimalOrZero(deductions)
		sum.NetPay = payroll.ParseDecimalOrZero(netPay)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// =============================================================================
// PERIOD STORE (payroll.PeriodStore interface)
// =============================================================================

func (s *Store) UpsertPeriod(ctx context.Context, p payroll.PayrollPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payroll_periods (
			employee_id, start_date, end_date, period_type,
			total_hours, total_gross_pay, total_deductions, bonus, net_pay,
			is_finalized, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, start_date, end_date) DO UPDATE SET
			period_type = excluded.period_type,
			total_hours = excluded.total_hours,
			total_gross_pay = excluded.total_gross_pay,
			total_deductions = excluded.total_deductions,
			bonus = excluded.bonus,
			net_pay = excluded.net_pay,
			is_finalized = excluded.is_finalized,
			updated_at = excluded.updated_at`,
		p.EmployeeID, p.Start.String(), p.End.String(), string(p.PeriodType),
		p.TotalHours.String(), p.TotalGrossPay.String(), p.TotalDeductions.String(),
		p.Bonus.String(), p.NetPay.String(),
		boolToInt(p.Finalized),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetPeriod(ctx context.Context, employeeID string, start, end payroll.Date) (*payroll.PayrollPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	periods, err := s.queryPeriods(ctx, `
		SELECT employee_id, start_date, end_date, period_type,
		       total_hours, total_gross_pay, total_deductions, bonus, net_pay, is_finalized
		FROM payroll_periods
		WHERE employee_id = ? AND start_date = ? AND end_date = ?`,
		employeeID, start.String(), end.String())
	if err != nil || len(periods) == 0 {
		return nil, err
	}
	return &periods[0], nil
}

func (s *Store) ListPeriods(ctx context.Context, employeeID string) ([]payroll.PayrollPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryPeriods(ctx, `
		SELECT employee_id, start_date, end_date, period_type,
		       total_hours, total_gross_pay, total_deductions, bonus, net_pay, is_finalized
		FROM payroll_periods
		WHERE employee_id = ?
		ORDER BY start_date DESC`,
		employeeID)
}

func (s *Store) FinalizePeriod(ctx context.Context, employeeID string, start, end payroll.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE payroll_periods SET is_finalized = 1, updated_at = ?
		WHERE employee_id = ? AND start_date = ? AND end_date = ?`,
		time.Now().UTC().Format(time.RFC3339),
		employeeID, start.String(), end.String(),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return payroll.ErrPeriodNotFound
	}
	return nil
}

func (s *Store) queryPeriods(ctx context.Context, query string, args ...any) ([]payroll.PayrollPeriod, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []payroll.PayrollPeriod
	for rows.Next() {
		var p payroll.PayrollPeriod
		var start, end, periodType string
		var totalHours, totalGross, totalDeductions, bonus, netPay string
		var finalized int
		if err := rows.Scan(&p.EmployeeID, &start, &end, &periodType,
			&totalHours, &totalGross, &totalDeductions, &bonus, &netPay, &finalized); err != nil {
			return nil, err
		}
		p.Start, _ = payroll.ParseDate(start)
		p.End, _ = payroll.ParseDate(end)
		p.PeriodType = payroll.ParseCutoffSchedule(periodType)
		p.TotalHours = payroll.ParseDecimalOrZero(totalHours)
		p.TotalGrossPay = payroll.ParseDecimalOrZero(totalGross)
		p.TotalDeductions = payroll.ParseDecimalOrZero(totalDeductions)
		p.Bonus = payroll.ParseDecimalOrZero(bonus)
		p.NetPay = payroll.ParseDecimalOrZero(netPay)
		p.Finalized = finalized != 0
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timeOfDayPtr(t *payroll.TimeOfDay) any {
	if t == nil {
		return nil
	}
	return t.String()
}
