// Package schedule is the contribution-schedule and balance-reconciliation
// engine: given a date range, a set of date-versioned rate rules, and a
// time-versioned contribution calendar, it computes elapsed contribution
// days, expected cumulative amounts, and consecutive-day payment streaks.
//
// Everything here is pure and synchronous. Callers load members, payments,
// and rules however they like and pass them in along with an explicit
// "today"; there is no I/O, no shared state, and recomputation is idempotent.
package schedule

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar date, always midnight UTC
// =============================================================================

// Date is a calendar date with day granularity. The wrapped time.Time is
// pinned to midnight UTC so iteration and comparison never drift across
// timezone or DST boundaries.
type Date struct {
	t time.Time
}

// NewDate constructs a Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary time.Time to its UTC calendar day.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// Today returns the current UTC calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// MustParseDate parses a YYYY-MM-DD string, panicking on failure.
// For literals in tests and built-in defaults only.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.t.After(other.t) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.t.Before(other.t) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Next() Date         { return d.AddDays(1) }
func (d Date) Prev() Date         { return d.AddDays(-1) }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Time() time.Time       { return d.t }

// String returns the date in YYYY-MM-DD form. This is also the canonical
// key for DateSet membership.
func (d Date) String() string { return d.t.Format("2006-01-02") }

// DaysBetween returns the number of whole days from a to b.
// Negative when b precedes a.
func DaysBetween(a, b Date) int { return int(b.t.Sub(a.t).Hours() / 24) }

// =============================================================================
// DATE SET - Presence lookup keyed by canonical date string
// =============================================================================

// DateSet answers "was this date paid?" in O(1). Keys are canonical
// YYYY-MM-DD strings so two Dates for the same day always collide.
type DateSet map[string]struct{}

func NewDateSet(dates ...Date) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

func (s DateSet) Add(d Date)           { s[d.String()] = struct{}{} }
func (s DateSet) Contains(d Date) bool { _, ok := s[d.String()]; return ok }
func (s DateSet) Len() int             { return len(s) }
