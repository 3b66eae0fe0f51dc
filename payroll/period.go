package payroll

// =============================================================================
// PERIOD - Inclusive date range for payroll aggregation
// =============================================================================

// Period is an inclusive [Start, End] date range.
type Period struct {
	Start Date
	End   Date
}

// Valid reports whether Start <= End.
func (p Period) Valid() bool { return p.Start.BeforeOrEqual(p.End) }

// Contains returns true if the date is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every calendar date in the period, ascending.
func (p Period) Days() []Date {
	var days []Date
	for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// PERIOD DATE RESOLVER - Cutoff schedule + today -> period boundaries
// =============================================================================

// ResolveCurrentPeriod maps "today" and a cutoff schedule to the period
// containing it. Pure function, no side effects.
//
//   semi_monthly: day <= 15 -> [1st, 15th]; else [16th, last day of month]
//   weekly:       Monday-to-Sunday week containing today
//   daily:        [today, today]
func ResolveCurrentPeriod(schedule CutoffSchedule, today Date) Period {
	switch schedule {
	case CutoffWeekly:
		// time.Weekday counts Sunday as 0; shift so Monday is the origin.
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDays(-offset)
		return Period{Start: start, End: start.AddDays(6)}

	case CutoffDaily:
		return Period{Start: today, End: today}

	default: // semi-monthly
		if today.Day() <= 15 {
			return Period{
				Start: NewDate(today.Year(), today.Month(), 1),
				End:   NewDate(today.Year(), today.Month(), 15),
			}
		}
		return Period{
			Start: NewDate(today.Year(), today.Month(), 16),
			End:   today.EndOfMonth(),
		}
	}
}
