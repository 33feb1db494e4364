package domain

import (
	"regexp"
	"time"
)

// ISODateLayout is the YYYY-MM-DD layout used in document texts and API payloads.
const ISODateLayout = "2006-01-02"

var isoDateRegex = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// ParseISODate parses a YYYY-MM-DD string into a UTC calendar date.
func ParseISODate(s string) (time.Time, error) {
	return time.ParseInLocation(ISODateLayout, s, time.UTC)
}

// ExtractISODate returns the first YYYY-MM-DD substring of text as a calendar date.
// Only the first match is considered; an invalid first match (2025-13-40) yields false.
func ExtractISODate(text string) (time.Time, bool) {
	m := isoDateRegex.FindString(text)
	if m == "" {
		return time.Time{}, false
	}
	t, err := ParseISODate(m)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DateOf truncates t to its calendar date (in t's own location), expressed as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween returns the absolute number of calendar days between a and b.
// It works on Unix seconds, so distances beyond the ~292 year range of
// time.Duration stay exact.
func DaysBetween(a, b time.Time) int {
	diff := (DateOf(a).Unix() - DateOf(b).Unix()) / secondsPerDay
	if diff < 0 {
		diff = -diff
	}
	return int(diff)
}

// FormatISODate formats the calendar date of t as YYYY-MM-DD.
func FormatISODate(t time.Time) string {
	return DateOf(t).Format(ISODateLayout)
}
