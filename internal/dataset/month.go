package dataset

import (
	"fmt"
	"strings"
	"time"
)

// monthLayouts are tried in order by ParseMonth. Month names match case-insensitively.
var monthLayouts = []string{
	"2006-01-02",
	"2006-01",
	"January 2006",
	"Jan 2006",
	"January, 2006",
	"Jan-2006",
	"Jan-06",
	"2006/01/02",
	"2006/01",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"01/2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseMonth resolves a free-form month string such as "June 2025", "Jun 2025",
// "2025-06" or "2025-06-15" to the first day of that month in UTC.
func ParseMonth(s string) (time.Time, error) {
	v := strings.Join(strings.Fields(s), " ")
	if v == "" {
		return time.Time{}, fmt.Errorf("dataset: empty month")
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return MonthStart(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("dataset: unrecognized month %q", s)
}

// MonthStart truncates t to midnight UTC on the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths shifts a month timestamp by n calendar months.
func AddMonths(m time.Time, n int) time.Time {
	m = MonthStart(m)
	return time.Date(m.Year(), m.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}

// MonthRange returns n consecutive months ending at and including end, oldest first.
func MonthRange(end time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = AddMonths(end, i-(n-1))
	}
	return out
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// MonthLabel formats a month as "2006-01".
func MonthLabel(m time.Time) string {
	return m.Format("2006-01")
}
