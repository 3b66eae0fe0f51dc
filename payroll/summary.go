/*
summary.go - Daily summary calculator

PURPOSE:
  Derives one employee-day of attendance and pay figures from that day's
  punches plus the work configuration, then upserts the result keyed by
  (employee, date). The derivation is a pure function of its inputs: running
  it twice over unchanged punches yields identical fields.

PAIRING:
  Punches partition into entries and exits preserving order; the i-th entry
  pairs with the i-th exit. Trailing entries without an exit are open shifts
  and contribute zero. A pair whose exit precedes its entry is clock skew;
  its contribution clamps to zero so one bad pair cannot poison the day.
  Sequences that break strict entry/exit alternation are logged as anomalies
  but still computed positionally.

LATENESS:
  Expected start is fixed at 08:00. Lateness is whole minutes past it
  (floored). The deduction rule escalates deliberately: any lateness costs a
  15-minute penalty, plus a minute per minute beyond the first.

MONEY:
  decimal arithmetic end to end; hours and monetary fields round half-up to
  two places at the boundary where they are stored.
*/
package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// expectedStart is the fixed expected shift start.
var expectedStart = TimeOfDay{Hour: 8}

// ComputeDailySummary derives and upserts the summary for one employee-day.
// A day with no punches produces (nil, nil) and writes nothing.
func (e *Engine) ComputeDailySummary(ctx context.Context, employeeID string, day Date) (*DailySummary, error) {
	punches, err := e.punches.ListPunches(ctx, employeeID, day)
	if err != nil {
		return nil, fmt.Errorf("list punches for %s on %s: %w", employeeID, day, err)
	}
	if len(punches) == 0 {
		return nil, nil
	}
	for _, p := range punches {
		if p.EmployeeID != employeeID {
			return nil, fmt.Errorf("%w: got %s, want %s", ErrEmployeeMismatch, p.EmployeeID, employeeID)
		}
	}

	cfg, err := e.Configuration(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	var entries, exits []PunchEvent
	for _, p := range punches {
		if p.IsEntry {
			entries = append(entries, p)
		} else {
			exits = append(exits, p)
		}
	}

	// Positional pairing: i-th entry with i-th exit.
	pairs := len(entries)
	if len(exits) < pairs {
		pairs = len(exits)
	}
	var totalSeconds int64
	skewed := 0
	for i := 0; i < pairs; i++ {
		d := exits[i].At.Sub(entries[i].At)
		if d < 0 {
			skewed++
			continue
		}
		totalSeconds += int64(d / time.Second)
	}
	// Alternation check: a well-formed day is entry, exit, entry, exit.
	// Walking the ordered stream catches doubled punches even when entry and
	// exit counts balance out. A trailing open entry is an in-progress shift,
	// not a break.
	alternationBreaks := 0
	awaitingEntry := true
	for _, p := range punches {
		if p.IsEntry != awaitingEntry {
			alternationBreaks++
			continue
		}
		awaitingEntry = !awaitingEntry
	}
	if alternationBreaks > 0 || skewed > 0 {
		e.logger.Warn("punch sequence anomaly",
			"employee_id", employeeID, "date", day.String(),
			"entries", len(entries), "exits", len(exits),
			"alternation_breaks", alternationBreaks, "negative_pairs", skewed)
	}

	totalMinutes := decimal.NewFromInt(totalSeconds).Div(sixty)
	totalHours := totalMinutes.Div(sixty).Round(2)

	var timeIn, timeOut *TimeOfDay
	if len(entries) > 0 {
		t := TimeOfDayOf(entries[0].At)
		timeIn = &t
	}
	if len(exits) > 0 {
		t := TimeOfDayOf(exits[len(exits)-1].At)
		timeOut = &t
	}

	late := 0
	if timeIn != nil && timeIn.After(expectedStart) {
		late = (timeIn.Seconds() - expectedStart.Seconds()) / 60
	}
	lateDeduction := lateDeductionMinutes(late)

	expectedMinutes := cfg.HoursPerDay.Mul(sixty)
	undertime := int(expectedMinutes.Sub(totalMinutes).Floor().IntPart())
	if undertime < 0 {
		undertime = 0
	}

	grossPay := totalHours.Mul(cfg.HourlyRate).Round(2)
	deductionHours := decimal.NewFromInt(int64(lateDeduction + undertime)).Div(sixty)
	deductions := deductionHours.Mul(cfg.HourlyRate).Round(2)

	summary := DailySummary{
		EmployeeID:           employeeID,
		Date:                 day,
		TimeIn:               timeIn,
		TimeOut:              timeOut,
		TotalHours:           totalHours,
		LateMinutes:          late,
		LateDeductionMinutes: lateDeduction,
		UndertimeMinutes:     undertime,
		GrossPay:             grossPay,
		Deductions:           deductions,
		NetPay:               grossPay.Sub(deductions),
	}
	if err := e.summaries.UpsertSummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("upsert summary for %s on %s: %w", employeeID, day, err)
	}
	return &summary, nil
}

// lateDeductionMinutes applies the escalation rule: zero lateness costs
// nothing, any lateness costs 15 penalty minutes plus one per minute beyond
// the first. One minute late and two minutes late therefore yield 15 and 16.
func lateDeductionMinutes(lateMinutes int) int {
	if lateMinutes <= 0 {
		return 0
	}
	return 15 + (lateMinutes - 1)
}
