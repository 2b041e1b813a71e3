// Package dates normalizes the many date spellings found in spreadsheet
// exports into canonical YYYY-MM-DD calendar dates.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the canonical calendar date layout.
const Layout = "2006-01-02"

var (
	canonical   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearFirst   = regexp.MustCompile(`^(\d{4})[./](\d{1,2})[./](\d{1,2})`)
	yearLast    = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})[./](\d{4})`)
	compactDate = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
)

// Generic layouts tried after the explicit patterns.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006년 1월 2일",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC822,
}

// Normalize converts s to YYYY-MM-DD, or returns "" when s is not a
// recognizable date.
//
// Day-first slash dates (DD/MM/YYYY) are read day first; month-first
// spellings are not supported.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if canonical.MatchString(s) {
		return s
	}
	if m := yearFirst.FindStringSubmatch(s); m != nil {
		return format(m[1], m[2], m[3])
	}
	if m := yearLast.FindStringSubmatch(s); m != nil {
		return format(m[3], m[2], m[1])
	}
	if m := compactDate.FindStringSubmatch(s); m != nil {
		return format(m[1], m[2], m[3])
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(Layout)
		}
	}
	return ""
}

func format(year, month, day string) string {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// Parse normalizes s and returns it as a UTC midnight time.
func Parse(s string) (time.Time, bool) {
	n := Normalize(s)
	if n == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(Layout, n)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DaysInclusive counts calendar days from start to end, both included.
func DaysInclusive(start, end time.Time) int {
	if end.Before(start) {
		start, end = end, start
	}
	return int(end.Sub(start).Hours()/24) + 1
}
