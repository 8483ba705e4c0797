package chart

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	tickLayout    = "Jan 2"
	tooltipLayout = "Jan 2, 2006"
)

// ParseDate parses a "day/month/year" label into local midnight in loc.
// It reports false for empty input, anything that is not three numeric
// parts, a day above 31 or a month above 12.
//
// Days are not checked against the month length: "31/04/2024" is accepted
// and normalizes to 1 May, the same way time.Date does.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]
	if day > 31 || month > 12 {
		return time.Time{}, false
	}

	if loc == nil {
		loc = time.Local
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
}

// FormatDate renders t as the en-GB "dd/mm/yyyy" label the provider data uses.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TickLabel is the short axis label, e.g. "Jan 2".
func TickLabel(t time.Time) string {
	return t.Format(tickLayout)
}

// TooltipLabel is the long label, e.g. "Jan 2, 2024".
func TooltipLabel(t time.Time) string {
	return t.Format(tooltipLayout)
}
