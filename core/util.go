package core

import (
	"math"
	"strings"
	"time"
)

// DateLayout is the layout of calendar dates exchanged with clients and stored as text.
const DateLayout = "2006-01-02"

// NowFunc returns the current time. mockable
var NowFunc = time.Now

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// CleanName trims `s` and collapses every inner run of whitespace into one space.
func CleanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// Today returns the current date (UTC) as YYYY-MM-DD.
func Today() string {
	return NowFunc().UTC().Format(DateLayout)
}

// Round2 rounds f to 2 decimal places.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Ratio returns n/total rounded to 2 decimals, 0 when total is 0.
func Ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round2(float64(n) / float64(total))
}

// ContainsFold reports whether substr is within any of the values, ignoring case.
func ContainsFold(substr string, values ...string) bool {
	if substr == "" {
		return true
	}
	substr = strings.ToLower(substr)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), substr) {
			return true
		}
	}
	return false
}

// InDateRange reports whether the YYYY-MM-DD date is within [from, to]. Empty bounds are open.
func InDateRange(date, from, to string) bool {
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

// EqualFold reports whether a and b are equal, ignoring case and surrounding whitespace.
func EqualFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ValidateDateRange checks optional YYYY-MM-DD `from` and `to` query bounds.
func ValidateDateRange(from, to string) error {
	if from != "" {
		if _, err := ParseDate(from); err != nil {
			return NewFieldError("from", isoDateText)
		}
	}
	if to != "" {
		if _, err := ParseDate(to); err != nil {
			return NewFieldError("to", isoDateText)
		}
	}
	if from != "" && to != "" && from > to {
		return NewFieldError("to", "must not be before from")
	}
	return nil
}
