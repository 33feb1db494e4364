package extract

import (
	"regexp"
	"strconv"
	"time"

	"github.com/kailas-cloud/quoterag/internal/domain"
)

var months = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "septiembre": time.September,
	"setiembre": time.September, "octubre": time.October,
	"noviembre": time.November, "diciembre": time.December,
}

var (
	todayRe     = regexp.MustCompile(`\bhoy\b`)
	yesterdayRe = regexp.MustCompile(`\bayer\b`)
	dmyRe       = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)
	ymdRe       = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
	dmRe        = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})`)
	dayMonthRe  = regexp.MustCompile(`(\d{1,2})\s*(?:de\s+)?([a-z]+)(?:\s+(?:de(?:l)?\s+)?(\d{4}))?`)
	monthDayRe  = regexp.MustCompile(`([a-z]+)\s*(\d{1,2})\b`)
)

// Date returns the calendar date requested by question, as UTC midnight.
// Dates without a year take the current year from clock. A recognized
// pattern that does not form a valid calendar date yields false.
func Date(question string, clock domain.Clock) (time.Time, bool) {
	q := fold(question)
	today := domain.Today(clock)

	switch {
	case todayRe.MatchString(q):
		return today, true
	case yesterdayRe.MatchString(q):
		return today.AddDate(0, 0, -1), true
	}

	if m := dmyRe.FindStringSubmatch(q); m != nil {
		return calendarDate(atoi(m[3]), atoi(m[2]), atoi(m[1]))
	}
	if m := ymdRe.FindStringSubmatch(q); m != nil {
		return calendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := dmRe.FindStringSubmatch(q); m != nil {
		return calendarDate(today.Year(), atoi(m[2]), atoi(m[1]))
	}
	for _, m := range dayMonthRe.FindAllStringSubmatch(q, -1) {
		if month, ok := months[m[2]]; ok {
			year := today.Year()
			if m[3] != "" {
				year = atoi(m[3])
			}
			return calendarDate(year, int(month), atoi(m[1]))
		}
	}
	for _, m := range monthDayRe.FindAllStringSubmatch(q, -1) {
		if month, ok := months[m[1]]; ok {
			return calendarDate(today.Year(), int(month), atoi(m[2]))
		}
	}
	return time.Time{}, false
}

// calendarDate rejects dates time.Date would normalize, like 31/02.
func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
