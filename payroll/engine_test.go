package payroll_test

import (
	"context"
	"testing"
	"time"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// PUNCH TOGGLE
// =============================================================================

func TestRecordPunch_TogglesEntryExit(t *testing.T) {
	// GIVEN: an employee with no punch history
	engine, _ := newTestEngine()
	ctx := context.Background()
	base := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)

	// WHEN: three punches are recorded in sequence
	first, err := engine.RecordPunch(ctx, "emp-1", base)
	if err != nil {
		t.Fatalf("first punch: %v", err)
	}
	second, err := engine.RecordPunch(ctx, "emp-1", base.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("second punch: %v", err)
	}
	third, err := engine.RecordPunch(ctx, "emp-1", base.Add(5*time.Hour))
	if err != nil {
		t.Fatalf("third punch: %v", err)
	}

	// THEN: entry, exit, entry
	if !first.IsEntry || second.IsEntry || !third.IsEntry {
		t.Errorf("expected entry/exit/entry, got %v/%v/%v",
			first.IsEntry, second.IsEntry, third.IsEntry)
	}
}

func TestRecordPunch_ToggleIsPerEmployee(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()
	at := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)

	a, _ := engine.RecordPunch(ctx, "emp-a", at)
	b, err := engine.RecordPunch(ctx, "emp-b", at.Add(time.Minute))
	if err != nil {
		t.Fatalf("punch: %v", err)
	}
	if !a.IsEntry || !b.IsEntry {
		t.Error("each employee's first punch should be an entry")
	}
}

func TestRecordPunch_RefreshesSameDaySummary(t *testing.T) {
	// GIVEN: an entry and an exit recorded through the toggle
	engine, mem := newTestEngine()
	ctx := context.Background()
	base := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)
	if _, err := engine.RecordPunch(ctx, "emp-1", base); err != nil {
		t.Fatalf("entry: %v", err)
	}
	if _, err := engine.RecordPunch(ctx, "emp-1", base.Add(8*time.Hour)); err != nil {
		t.Fatalf("exit: %v", err)
	}

	// THEN: that day's summary exists without an explicit compute call
	s, err := mem.GetSummary(ctx, "emp-1", payroll.DateOf(base))
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if s == nil {
		t.Fatal("recording a punch should upsert the day's summary")
	}
	if !s.TotalHours.Equal(dec("8.00")) {
		t.Errorf("expected 8.00 hours, got %s", s.TotalHours)
	}
}

func TestRecordPunch_TruncatesToSecondPrecision(t *testing.T) {
	engine, _ := newTestEngine()
	at := time.Date(2025, time.March, 3, 8, 0, 0, 999_000_000, time.UTC)

	p, err := engine.RecordPunch(context.Background(), "emp-1", at)
	if err != nil {
		t.Fatalf("punch: %v", err)
	}
	if p.At.Nanosecond() != 0 {
		t.Errorf("punch timestamps are second precision, got %v", p.At)
	}
}

// =============================================================================
// RECENT SUMMARY REFRESH
// =============================================================================

func TestRefreshRecentSummaries_CoversTrailingWindow(t *testing.T) {
	// GIVEN: punches today and yesterday
	engine, mem := newTestEngine()
	ctx := context.Background()
	today := payroll.Today()
	yesterday := today.AddDays(-1)
	seedConfig(t, mem, standardConfig("emp-1", "10.00"))
	seedPunches(t, mem,
		punchAt("emp-1", yesterday, 8, 0, 0, true),
		punchAt("emp-1", yesterday, 16, 0, 0, false),
		punchAt("emp-1", today, 8, 0, 0, true),
	)

	// WHEN
	if err := engine.RefreshRecentSummaries(ctx, "emp-1", 7); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	// THEN: both days have summaries, punch-free days none
	for _, day := range []payroll.Date{today, yesterday} {
		s, _ := mem.GetSummary(ctx, "emp-1", day)
		if s == nil {
			t.Errorf("expected summary for %s", day)
		}
	}
	s, _ := mem.GetSummary(ctx, "emp-1", today.AddDays(-3))
	if s != nil {
		t.Errorf("day without punches should have no summary, got %+v", s)
	}
}

// =============================================================================
// CURRENT PAYROLL CONVENIENCE
// =============================================================================

func TestCurrentPayroll_UsesEmployeeCutoff(t *testing.T) {
	// GIVEN: a daily-cutoff employee with one worked day
	engine, mem := newTestEngine()
	ctx := context.Background()
	today := payroll.NewDate(2025, time.March, 3)
	cfg := standardConfig("emp-1", "10.00")
	cfg.Cutoff = payroll.CutoffDaily
	seedConfig(t, mem, cfg)
	seedPunches(t, mem,
		punchAt("emp-1", today, 8, 0, 0, true),
		punchAt("emp-1", today, 16, 0, 0, false),
	)

	// WHEN
	p, err := engine.CurrentPayroll(ctx, "emp-1", today)
	if err != nil {
		t.Fatalf("current payroll: %v", err)
	}

	// THEN: the period collapses to [today, today]
	if !p.Start.Equal(today) || !p.End.Equal(today) {
		t.Errorf("expected [today, today], got [%s, %s]", p.Start, p.End)
	}
	if p.PeriodType != payroll.CutoffDaily {
		t.Errorf("expected daily period type, got %s", p.PeriodType)
	}
}
