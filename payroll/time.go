package payroll

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar day, no time-of-day, no timezone games
// =============================================================================

// Date is a calendar day. Internally a UTC midnight time.Time so arithmetic
// stays on the standard library.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its UTC calendar day.
func DateOf(at time.Time) Date {
	u := at.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }

// Time returns the UTC midnight instant that starts the day.
func (d Date) Time() time.Time { return d.t }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// EndOfMonth returns the last day of the month containing d, computed via
// next-month rollover so December flows into January correctly.
func (d Date) EndOfMonth() Date {
	year, month := d.Year(), d.Month()
	if month == time.December {
		return NewDate(year+1, time.January, 1).AddDays(-1)
	}
	return NewDate(year, month+1, 1).AddDays(-1)
}

// =============================================================================
// TIME OF DAY - Wall-clock time within a day, second precision
// =============================================================================

// TimeOfDay is a wall-clock time within a day.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// TimeOfDayOf extracts the UTC wall-clock time of a timestamp.
func TimeOfDayOf(at time.Time) TimeOfDay {
	u := at.UTC()
	return TimeOfDay{Hour: u.Hour(), Minute: u.Minute(), Second: u.Second()}
}

// ParseTimeOfDay parses "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

// Seconds returns seconds since midnight.
func (t TimeOfDay) Seconds() int { return t.Hour*3600 + t.Minute*60 + t.Second }

func (t TimeOfDay) After(other TimeOfDay) bool { return t.Seconds() > other.Seconds() }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}
