// Package biztime centralises time handling. Storage and transport use UTC;
// billing periods use calendar arithmetic that never overflows into the
// following month.
package biztime

import (
	"fmt"
	"time"
)

// Clock returns the current time. Services take a Clock so tests can pin time.
type Clock func() time.Time

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// AddMonths adds n calendar months to t. When the source day does not exist
// in the target month the result is clamped to that month's last day, so
// Jan 31 + 1 month is Feb 28 (or 29) rather than early March.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	total := int(m) - 1 + n
	ty := y + total/12
	tm := total % 12
	if tm < 0 {
		tm += 12
		ty--
	}
	target := time.Month(tm + 1)

	if last := DaysIn(ty, target); d > last {
		d = last
	}
	return time.Date(ty, target, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// MonthsBetween returns the number of calendar month boundaries between from
// and to, ignoring the day of month.
func MonthsBetween(from, to time.Time) int {
	fy, fm, _ := from.Date()
	ty, tm, _ := to.Date()
	return (ty-fy)*12 + int(tm-fm)
}

// AddYears adds n calendar years with the same clamping as AddMonths
// (Feb 29 + 1 year is Feb 28).
func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, 12*n)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfDayUTC truncates t to midnight UTC.
func StartOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDayUTC returns the last nanosecond of t's UTC day.
func EndOfDayUTC(t time.Time) time.Time {
	return StartOfDayUTC(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// ParseDate parses YYYY-MM-DD as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format %q: %w", s, err)
	}
	return t, nil
}
