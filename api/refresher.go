/*
refresher.go - Background daily summary refresher

PURPOSE:
  Periodically recomputes recent daily summaries for every configured
  employee, so stored numbers converge even when a day's punches arrived
  after its summary was last computed (late backfill, missed recompute).

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Recomputes a trailing window of days per employee
  - Recompute is idempotent, so overlap with request-driven recomputes
    is harmless

CONFIGURATION:
  - CheckInterval: How often to run (default: 1 hour)
  - WindowDays:    Trailing days to recompute per run
  - Enabled:       Whether the refresher is active (default: true)

USAGE:
  refresher := NewSummaryRefresher(engine, store, logger)
  refresher.Start()
  // ... later
  refresher.Stop()

SEE ALSO:
  - handlers.go: RefreshSummaries endpoint (manual runs)
  - payroll/engine.go: RefreshRecentSummaries
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/payroll-engine/payroll"
)

// SummaryRefresher handles periodic recomputation of recent summaries.
type SummaryRefresher struct {
	Engine        *payroll.Engine
	Store         payroll.Store
	CheckInterval time.Duration
	WindowDays    int
	Enabled       bool

	logger *slog.Logger
	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSummaryRefresher creates a new refresher.
func NewSummaryRefresher(engine *payroll.Engine, store payroll.Store, logger *slog.Logger) *SummaryRefresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryRefresher{
		Engine:        engine,
		Store:         store,
		CheckInterval: 1 * time.Hour,
		WindowDays:    payroll.DefaultRefreshWindowDays,
		Enabled:       true,
		logger:        logger,
		stop:          make(chan bool),
	}
}

// Start begins the refresher.
func (sr *SummaryRefresher) Start() {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if !sr.Enabled {
		sr.logger.Info("summary refresher disabled, not starting")
		return
	}

	sr.ticker = time.NewTicker(sr.CheckInterval)
	sr.wg.Add(1)

	go sr.run()

	sr.logger.Info("summary refresher started",
		"check_interval", sr.CheckInterval, "window_days", sr.WindowDays)
}

// Stop stops the refresher.
func (sr *SummaryRefresher) Stop() {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if sr.ticker != nil {
		sr.ticker.Stop()
		close(sr.stop)
		sr.wg.Wait()
		sr.logger.Info("summary refresher stopped")
	}
}

func (sr *SummaryRefresher) run() {
	defer sr.wg.Done()

	// Run immediately on start
	sr.refreshAll()

	for {
		select {
		case <-sr.ticker.C:
			sr.refreshAll()
		case <-sr.stop:
			return
		}
	}
}

func (sr *SummaryRefresher) refreshAll() {
	ctx := context.Background()

	employees, err := sr.Store.ListConfiguredEmployees(ctx)
	if err != nil {
		sr.logger.Error("refresher failed to list employees", "error", err)
		return
	}

	refreshed := 0
	for _, employeeID := range employees {
		if err := sr.Engine.RefreshRecentSummaries(ctx, employeeID, sr.WindowDays); err != nil {
			sr.logger.Error("refresher interrupted", "employee_id", employeeID, "error", err)
			return
		}
		refreshed++
	}

	if refreshed > 0 {
		sr.logger.Info("summary refresh completed", "employees", refreshed)
	}
}

// RunNow triggers an immediate refresh (for testing/admin).
func (sr *SummaryRefresher) RunNow() {
	sr.refreshAll()
}
