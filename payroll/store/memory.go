// Package store provides an in-memory payroll.Store implementation for
// testing and development.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	punches   map[string][]payroll.PunchEvent // per employee, ascending by At
	configs   map[string]payroll.WorkConfiguration
	summaries map[summaryKey]payroll.DailySummary
	periods   map[periodKey]payroll.PayrollPeriod
	nextID    int
}

type summaryKey struct {
	EmployeeID string
	Date       string
}

type periodKey struct {
	EmployeeID string
	Start      string
	End        string
}

func NewMemory() *Memory {
	return &Memory{
		punches:   make(map[string][]payroll.PunchEvent),
		configs:   make(map[string]payroll.WorkConfiguration),
		summaries: make(map[summaryKey]payroll.DailySummary),
		periods:   make(map[periodKey]payroll.PayrollPeriod),
	}
}

var _ payroll.Store = (*Memory)(nil)

// =============================================================================
// PUNCH STORE
// =============================================================================

func (m *Memory) CreatePunch(_ context.Context, p payroll.PunchEvent) (payroll.PunchEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == "" {
		m.nextID++
		p.ID = fmt.Sprintf("punch-%d", m.nextID)
	}

	events := m.punches[p.EmployeeID]

	// Binary search for insertion point keeps the slice ordered by At.
	i := sort.Search(len(events), func(i int) bool {
		return events[i].At.After(p.At)
	})
	events = append(events, payroll.PunchEvent{})
	copy(events[i+1:], events[i:])
	events[i] = p
	m.punches[p.EmployeeID] = events
	return p, nil
}

func (m *Memory) ListPunches(_ context.Context, employeeID string, day payroll.Date) ([]payroll.PunchEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []payroll.PunchEvent
	for _, p := range m.punches[employeeID] {
		if payroll.DateOf(p.At).Equal(day) {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *Memory) ListRecentPunches(_ context.Context, employeeID string, limit int) ([]payroll.PunchEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := m.punches[employeeID]
	var result []payroll.PunchEvent
	for i := len(events) - 1; i >= 0; i-- {
		if limit > 0 && len(result) >= limit {
			break
		}
		result = append(result, events[i])
	}
	return result, nil
}

func (m *Memory) LastPunch(_ context.Context, employeeID string) (*payroll.PunchEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := m.punches[employeeID]
	if len(events) == 0 {
		return nil, nil
	}
	last := events[len(events)-1]
	return &last, nil
}

// =============================================================================
// CONFIG STORE
// =============================================================================

func (m *Memory) GetConfiguration(_ context.Context, employeeID string) (*payroll.WorkConfiguration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, ok := m.configs[employeeID]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (m *Memory) SaveConfiguration(_ context.Context, cfg payroll.WorkConfiguration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[cfg.EmployeeID] = cfg
	return nil
}

func (m *Memory) ListConfiguredEmployees(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.configs))
	for id := range m.configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// =============================================================================
// SUMMARY STORE
// =============================================================================

func (m *Memory) UpsertSummary(_ context.Context, s payroll.DailySummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[summaryKey{EmployeeID: s.EmployeeID, Date: s.Date.String()}] = s
	return nil
}

func (m *Memory) GetSummary(_ context.Context, employeeID string, day payroll.Date) (*payroll.DailySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.summaries[summaryKey{EmployeeID: employeeID, Date: day.String()}]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Memory) QuerySummaries(_ context.Context, employeeID string, p payroll.Period) ([]payroll.DailySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []payroll.DailySummary
	for _, s := range m.summaries {
		if s.EmployeeID == employeeID && p.Contains(s.Date) {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// =============================================================================
// PERIOD STORE
// =============================================================================

func (m *Memory) UpsertPeriod(_ context.Context, p payroll.PayrollPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods[periodKey{EmployeeID: p.EmployeeID, Start: p.Start.String(), End: p.End.String()}] = p
	return nil
}

func (m *Memory) GetPeriod(_ context.Context, employeeID string, start, end payroll.Date) (*payroll.PayrollPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.periods[periodKey{EmployeeID: employeeID, Start: start.String(), End: end.String()}]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) ListPeriods(_ context.Context, employeeID string) ([]payroll.PayrollPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []payroll.PayrollPeriod
	for _, p := range m.periods {
		if p.EmployeeID == employeeID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Start.After(result[j].Start)
	})
	return result, nil
}

func (m *Memory) FinalizePeriod(_ context.Context, employeeID string, start, end payroll.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := periodKey{EmployeeID: employeeID, Start: start.String(), End: end.String()}
	p, ok := m.periods[k]
	if !ok {
		return payroll.ErrPeriodNotFound
	}
	p.Finalized = true
	m.periods[k] = p
	return nil
}
