package service

import (
	"regexp"
	"strconv"
	"time"
)

var asOfDatePattern = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)

// ParseAsOfDate parses a DD-MM-YYYY date into midnight UTC of that day.
// Dates that do not round-trip, such as 31-02-2025, are rejected.
func ParseAsOfDate(s string) (time.Time, error) {
	m := asOfDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, InvalidInput("invalid date format, use DD-MM-YYYY")
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, InvalidInput("invalid date values")
	}
	return t, nil
}

// formatExpiry renders a coupon expiry as DD/MM/YYYY.
func formatExpiry(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format("02/01/2006")
	return &s
}
