package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPunchRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := payroll.NewDate(2025, time.March, 3)

	first, err := store.CreatePunch(ctx, payroll.PunchEvent{
		EmployeeID: "emp-1",
		At:         time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC),
		IsEntry:    true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	_, err = store.CreatePunch(ctx, payroll.PunchEvent{
		EmployeeID: "emp-1",
		At:         time.Date(2025, time.March, 3, 17, 0, 0, 0, time.UTC),
		IsEntry:    false,
	})
	require.NoError(t, err)

	// Punch on another day should not leak into the listing
	_, err = store.CreatePunch(ctx, payroll.PunchEvent{
		EmployeeID: "emp-1",
		At:         time.Date(2025, time.March, 4, 8, 0, 0, 0, time.UTC),
		IsEntry:    true,
	})
	require.NoError(t, err)

	punches, err := store.ListPunches(ctx, "emp-1", day)
	require.NoError(t, err)
	require.Len(t, punches, 2)
	assert.True(t, punches[0].IsEntry)
	assert.False(t, punches[1].IsEntry)
	assert.True(t, punches[0].At.Before(punches[1].At), "ascending order")

	last, err := store.LastPunch(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, payroll.NewDate(2025, time.March, 4).String(), payroll.DateOf(last.At).String())

	recent, err := store.ListRecentPunches(ctx, "emp-1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.True(t, recent[0].At.After(recent[1].At), "newest first")
}

func TestDuplicatePunchInstantRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)

	_, err := store.CreatePunch(ctx, payroll.PunchEvent{EmployeeID: "emp-1", At: at, IsEntry: true})
	require.NoError(t, err)
	_, err = store.CreatePunch(ctx, payroll.PunchEvent{EmployeeID: "emp-1", At: at, IsEntry: false})
	assert.Error(t, err, "same employee and instant violates the uniqueness index")

	// Different employee, same instant is fine
	_, err = store.CreatePunch(ctx, payroll.PunchEvent{EmployeeID: "emp-2", At: at, IsEntry: true})
	assert.NoError(t, err)
}

func TestConfigurationUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.GetConfiguration(ctx, "emp-1")
	require.NoError(t, err)
	assert.Nil(t, got, "absent configuration is nil, not an error")

	cfg := payroll.WorkConfiguration{
		EmployeeID:  "emp-1",
		HoursPerDay: dec("8.00"),
		HourlyRate:  dec("123.45"),
		Cutoff:      payroll.CutoffWeekly,
		Bonus:       dec("50.00"),
	}
	require.NoError(t, store.SaveConfiguration(ctx, cfg))

	got, err = store.GetConfiguration(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.HourlyRate.Equal(dec("123.45")), "decimal survives the TEXT round trip")
	assert.Equal(t, payroll.CutoffWeekly, got.Cutoff)

	cfg.HourlyRate = dec("150.00")
	require.NoError(t, store.SaveConfiguration(ctx, cfg))
	got, err = store.GetConfiguration(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, got.HourlyRate.Equal(dec("150.00")), "second save overwrites")

	ids, err := store.ListConfiguredEmployees(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"emp-1"}, ids)
}

func TestSummaryUpsertAndQuery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := payroll.NewDate(2025, time.March, 3)
	timeIn, _ := payroll.ParseTimeOfDay("08:01:00")

	sum := payroll.DailySummary{
		EmployeeID:           "emp-1",
		Date:                 day,
		TimeIn:               &timeIn,
		TotalHours:           dec("8.98"),
		LateMinutes:          1,
		LateDeductionMinutes: 15,
		UndertimeMinutes:     0,
		GrossPay:             dec("89.80"),
		Deductions:           dec("2.50"),
		NetPay:               dec("87.30"),
	}
	require.NoError(t, store.UpsertSummary(ctx, sum))

	got, err := store.GetSummary(ctx, "emp-1", day)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "08:01:00", got.TimeIn.String())
	assert.Nil(t, got.TimeOut, "no exit recorded")
	assert.True(t, got.TotalHours.Equal(dec("8.98")))
	assert.Equal(t, 15, got.LateDeductionMinutes)

	// Overwrite on the same key
	sum.TotalHours = dec("9.00")
	require.NoError(t, store.UpsertSummary(ctx, sum))
	got, err = store.GetSummary(ctx, "emp-1", day)
	require.NoError(t, err)
	assert.True(t, got.TotalHours.Equal(dec("9.00")))

	// Range query is inclusive and ordered
	sum2 := sum
	sum2.Date = day.AddDays(2)
	require.NoError(t, store.UpsertSummary(ctx, sum2))
	rangeSums, err := store.QuerySummaries(ctx, "emp-1", payroll.Period{Start: day, End: day.AddDays(2)})
	require.NoError(t, err)
	require.Len(t, rangeSums, 2)
	assert.True(t, rangeSums[0].Date.Before(rangeSums[1].Date))
}

func TestPeriodUpsertAndFinalizeLatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	start := payroll.NewDate(2025, time.March, 1)
	end := payroll.NewDate(2025, time.March, 15)

	err := store.FinalizePeriod(ctx, "emp-1", start, end)
	assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)

	p := payroll.PayrollPeriod{
		EmployeeID:      "emp-1",
		Start:           start,
		End:             end,
		PeriodType:      payroll.CutoffSemiMonthly,
		TotalHours:      dec("88.00"),
		TotalGrossPay:   dec("880.00"),
		TotalDeductions: dec("12.34"),
		Bonus:           dec("0.00"),
		NetPay:          dec("867.66"),
	}
	require.NoError(t, store.UpsertPeriod(ctx, p))
	require.NoError(t, store.FinalizePeriod(ctx, "emp-1", start, end))

	got, err := store.GetPeriod(ctx, "emp-1", start, end)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Finalized)
	assert.True(t, got.NetPay.Equal(dec("867.66")))

	list, err := store.ListPeriods(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestEngineOnSQLiteEndToEnd(t *testing.T) {
	// The whole pipeline against the real store: punch, summarize, aggregate.
	store := newTestStore(t)
	ctx := context.Background()
	engine := payroll.NewEngine(store, nil)
	day := payroll.NewDate(2025, time.March, 3)

	require.NoError(t, store.SaveConfiguration(ctx, payroll.WorkConfiguration{
		EmployeeID:  "emp-1",
		HoursPerDay: dec("8.00"),
		HourlyRate:  dec("100.00"),
		Cutoff:      payroll.CutoffSemiMonthly,
		Bonus:       dec("0.00"),
	}))
	_, err := engine.RecordPunch(ctx, "emp-1", time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = engine.RecordPunch(ctx, "emp-1", time.Date(2025, time.March, 3, 17, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	p, err := engine.ComputePayrollPeriod(ctx, "emp-1", day, day)
	require.NoError(t, err)
	assert.True(t, p.TotalHours.Equal(dec("9.00")), "got %s", p.TotalHours)
	assert.True(t, p.TotalGrossPay.Equal(dec("900.00")), "got %s", p.TotalGrossPay)
}
