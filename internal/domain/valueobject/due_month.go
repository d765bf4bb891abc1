// Package valueobject defines immutable domain value objects.
package valueobject

import "time"

// DueMonth identifies one calendar month for which a recurring template owes
// a transaction. It is produced by due-month enumeration and consumed
// immediately by materialization, never persisted.
type DueMonth struct {
	Month time.Month
	Year  int
}

// DueMonthOf returns the DueMonth containing the given time.
func DueMonthOf(t time.Time) DueMonth {
	return DueMonth{Month: t.Month(), Year: t.Year()}
}

// Next returns the following calendar month, rolling December into January.
func (d DueMonth) Next() DueMonth {
	if d.Month == time.December {
		return DueMonth{Month: time.January, Year: d.Year + 1}
	}
	return DueMonth{Month: d.Month + 1, Year: d.Year}
}

// After reports whether d is strictly later than other.
func (d DueMonth) After(other DueMonth) bool {
	if d.Year != other.Year {
		return d.Year > other.Year
	}
	return d.Month > other.Month
}

// LastDay returns the number of days in the month, accounting for leap years.
func (d DueMonth) LastDay() int {
	// Day zero of the next month normalizes to the last day of this month.
	return time.Date(d.Year, d.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateForDay returns the UTC date for the given target day within the month,
// clamped to the month's actual length (day 31 in February yields the 28th
// or 29th).
func (d DueMonth) DateForDay(day int) time.Time {
	if last := d.LastDay(); day > last {
		day = last
	}
	return time.Date(d.Year, d.Month, day, 0, 0, 0, 0, time.UTC)
}
