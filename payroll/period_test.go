package payroll_test

import (
	"testing"
	"time"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// SEMI-MONTHLY RESOLUTION
// =============================================================================

func TestResolveCurrentPeriod_SemiMonthly_FirstHalf(t *testing.T) {
	// GIVEN: a day in the first half of the month
	today := payroll.NewDate(2024, time.February, 10)

	// WHEN: resolving the semi-monthly period
	p := payroll.ResolveCurrentPeriod(payroll.CutoffSemiMonthly, today)

	// THEN: boundaries are the 1st and the 15th
	if p.Start.String() != "2024-02-01" || p.End.String() != "2024-02-15" {
		t.Errorf("expected [2024-02-01, 2024-02-15], got %s", p)
	}
}

func TestResolveCurrentPeriod_SemiMonthly_DayFifteenIsFirstHalf(t *testing.T) {
	p := payroll.ResolveCurrentPeriod(payroll.CutoffSemiMonthly, payroll.NewDate(2025, time.June, 15))
	if p.Start.String() != "2025-06-01" || p.End.String() != "2025-06-15" {
		t.Errorf("day 15 should fall in the first half, got %s", p)
	}

	p = payroll.ResolveCurrentPeriod(payroll.CutoffSemiMonthly, payroll.NewDate(2025, time.June, 16))
	if p.Start.String() != "2025-06-16" || p.End.String() != "2025-06-30" {
		t.Errorf("day 16 should start the second half, got %s", p)
	}
}

func TestResolveCurrentPeriod_SemiMonthly_LeapFebruary(t *testing.T) {
	// GIVEN: Feb 29 of a leap year, second half
	today := payroll.NewDate(2024, time.February, 29)

	// WHEN/THEN: the period ends on the 29th
	p := payroll.ResolveCurrentPeriod(payroll.CutoffSemiMonthly, today)
	if p.Start.String() != "2024-02-16" || p.End.String() != "2024-02-29" {
		t.Errorf("expected [2024-02-16, 2024-02-29], got %s", p)
	}
}

func TestResolveCurrentPeriod_SemiMonthly_NonLeapFebruary(t *testing.T) {
	p := payroll.ResolveCurrentPeriod(payroll.CutoffSemiMonthly, payroll.NewDate(2023, time.February, 20))
	if p.End.String() != "2023-02-28" {
		t.Errorf("expected end 2023-02-28, got %s", p.End)
	}
}

func TestResolveCurrentPeriod_SemiMonthly_DecemberYearRollover(t *testing.T) {
	// GIVEN: Dec 31, where "last day of month" requires a January rollover
	today := payroll.NewDate(2023, time.December, 31)

	p := payroll.ResolveCurrentPeriod(payroll.CutoffSemiMonthly, today)
	if p.Start.String() != "2023-12-16" || p.End.String() != "2023-12-31" {
		t.Errorf("expected [2023-12-16, 2023-12-31], got %s", p)
	}
}

// =============================================================================
// WEEKLY RESOLUTION
// =============================================================================

func TestResolveCurrentPeriod_Weekly_MidWeekAcrossYearBoundary(t *testing.T) {
	// GIVEN: Wednesday 2025-01-01
	today := payroll.NewDate(2025, time.January, 1)

	// WHEN: resolving the weekly period
	p := payroll.ResolveCurrentPeriod(payroll.CutoffWeekly, today)

	// THEN: the week runs Monday 2024-12-30 through Sunday 2025-01-05
	if p.Start.String() != "2024-12-30" || p.End.String() != "2025-01-05" {
		t.Errorf("expected [2024-12-30, 2025-01-05], got %s", p)
	}
}

func TestResolveCurrentPeriod_Weekly_MondayAndSundayEdges(t *testing.T) {
	monday := payroll.NewDate(2025, time.January, 6)
	p := payroll.ResolveCurrentPeriod(payroll.CutoffWeekly, monday)
	if !p.Start.Equal(monday) || p.End.String() != "2025-01-12" {
		t.Errorf("week of a Monday should start on it, got %s", p)
	}

	sunday := payroll.NewDate(2025, time.January, 12)
	p = payroll.ResolveCurrentPeriod(payroll.CutoffWeekly, sunday)
	if p.Start.String() != "2025-01-06" || !p.End.Equal(sunday) {
		t.Errorf("week of a Sunday should end on it, got %s", p)
	}
}

// =============================================================================
// DAILY RESOLUTION AND PERIOD HELPERS
// =============================================================================

func TestResolveCurrentPeriod_Daily(t *testing.T) {
	today := payroll.NewDate(2025, time.March, 3)
	p := payroll.ResolveCurrentPeriod(payroll.CutoffDaily, today)
	if !p.Start.Equal(today) || !p.End.Equal(today) {
		t.Errorf("daily period should be [today, today], got %s", p)
	}
}

func TestPeriod_DaysAndContains(t *testing.T) {
	p := payroll.Period{
		Start: payroll.NewDate(2024, time.February, 27),
		End:   payroll.NewDate(2024, time.March, 2),
	}

	days := p.Days()
	if len(days) != 5 {
		t.Fatalf("expected 5 days across the leap-month boundary, got %d", len(days))
	}
	if days[2].String() != "2024-02-29" {
		t.Errorf("expected Feb 29 in the walk, got %s", days[2])
	}
	if !p.Contains(payroll.NewDate(2024, time.March, 1)) {
		t.Error("period should contain 2024-03-01")
	}
	if p.Contains(payroll.NewDate(2024, time.March, 3)) {
		t.Error("period should not contain 2024-03-03")
	}
}

func TestParseCutoffSchedule_FallsBackToSemiMonthly(t *testing.T) {
	if got := payroll.ParseCutoffSchedule("fortnightly"); got != payroll.CutoffSemiMonthly {
		t.Errorf("unknown schedule should fall back to semi-monthly, got %s", got)
	}
	if got := payroll.ParseCutoffSchedule("weekly"); got != payroll.CutoffWeekly {
		t.Errorf("expected weekly, got %s", got)
	}
}
