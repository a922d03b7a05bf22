// Package datetime provides date and time utility functions.
package datetime

import (
	"time"

	"github.com/fbonnet/fiscal-forecast/pkg/constants"
)

const (
	// DateLayout is the format expected for entry dates and is also the
	// output date format.
	DateLayout = constants.DateLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// OffsetMonthClamped returns the date offset by the given number of months,
// keeping the original day-of-month where possible and clamping to the last
// day of the target month otherwise (2026-01-31 + 1 month = 2026-02-28, not
// 2026-03-03 as time.AddDate would yield).
func OffsetMonthClamped(date time.Time, months int) time.Time {
	year, month, day := date.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, date.Location()).AddDate(0, months, 0)
	last := DaysInMonth(first.Year(), first.Month())
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, date.Location())
}

// DaysInMonth returns the number of days in the given month of the given year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthIndex returns the 1-based calendar month of the given date.
func MonthIndex(date time.Time) int {
	return int(date.Month())
}

// EndOfMonth returns the last instant-free day of the month containing date.
func EndOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), DaysInMonth(date.Year(), date.Month()), 0, 0, 0, 0, date.Location())
}

// DateBeforeDate returns true if firstDate is strictly before secondDate.
func DateBeforeDate(firstDate, secondDate time.Time) bool {
	return firstDate.Before(secondDate)
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FrenchMonthNames lists the lowercase French month names indexed by
// time.Month-1, used as display keys in the monthly ledger.
var FrenchMonthNames = [12]string{
	"janvier", "fevrier", "mars", "avril", "mai", "juin",
	"juillet", "aout", "septembre", "octobre", "novembre", "decembre",
}

// FrenchMonthName returns the display name for a 1-based month index.
func FrenchMonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return FrenchMonthNames[month-1]
}
