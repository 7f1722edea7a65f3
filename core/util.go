package core

import (
	"strings"
	"time"
)

// NowFunc returns the current UTC time.
var NowFunc = func() time.Time { return time.Now().UTC() } // mockable

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// MonthRange returns the [start, end) UTC bounds of the given calendar month.
func MonthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// ValidYearMonth reports whether year and month denote a real calendar month.
func ValidYearMonth(year, month int) bool {
	return year >= 1900 && year <= 9999 && month >= 1 && month <= 12
}
