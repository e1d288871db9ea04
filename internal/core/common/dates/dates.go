// Package dates holds the calendar-day helpers shared by work entries and reports.
// Work dates are stored as UTC midnight so that range predicates compare the same way on
// every database driver.
package dates

import (
	"fmt"
	"time"
)

const (
	Layout      = "2006-01-02"
	MonthLayout = "2006-01"
)

// Day truncates t to its calendar day in t's own location and re-anchors it at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseMonth returns the first and last calendar day of a YYYY-MM month.
func ParseMonth(s string) (time.Time, time.Time, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	start, end := MonthBounds(t)
	return start, end, nil
}

// MonthBounds returns the first and last calendar day of t's month.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// WeekStart returns the first day of the week containing day, where weeks begin on first.
func WeekStart(day time.Time, first time.Weekday) time.Time {
	day = Day(day)
	offset := (int(day.Weekday()) - int(first) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

// Date is a calendar day that encodes as "YYYY-MM-DD" in JSON.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: Day(t)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(Layout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	t, err := Parse(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) String() string {
	return d.Format(Layout)
}
