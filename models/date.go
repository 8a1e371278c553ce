package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-day layout used for storage and comparison.
const DateLayout = "2006-01-02"

// Date is a calendar day in canonical "YYYY-MM-DD" form. The canonical form
// orders lexicographically, so string comparison is date comparison.
type Date string

// ParseDate accepts "YYYY-MM-DD" or an RFC 3339 timestamp. A timestamp is
// reduced to the calendar day as written in its own offset; the time of day
// is dropped so clients in different zones cannot shift the day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty date")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays returns the day n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool { return d < o }
func (d Date) After(o Date) bool  { return d > o }

func (d Date) String() string { return string(d) }

// ParseDates parses every entry and reports all malformed ones at once.
func ParseDates(raw []string) ([]Date, []string) {
	dates := make([]Date, 0, len(raw))
	var invalid []string
	for _, s := range raw {
		d, err := ParseDate(s)
		if err != nil {
			invalid = append(invalid, s)
			continue
		}
		dates = append(dates, d)
	}
	return dates, invalid
}

// UniqueSortedDates de-duplicates by calendar day and sorts ascending.
func UniqueSortedDates(dates []Date) []Date {
	seen := make(map[Date]struct{}, len(dates))
	out := make([]Date, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DateStrings converts dates to plain strings for error details.
func DateStrings(dates []Date) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = string(d)
	}
	return out
}
