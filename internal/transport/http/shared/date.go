package shared

import (
	"fmt"
	"strings"
	"time"
)

const dateOnlyLayout = "2006-01-02"

// ParseDate accepts RFC 3339 timestamps or bare YYYY-MM-DD dates.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if ts, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return ts, nil
	}
	ts, err := time.Parse(dateOnlyLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want RFC3339 or YYYY-MM-DD", trimmed)
	}
	return ts, nil
}

// ParseOptionalDate returns nil when the value is empty.
func ParseOptionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	ts, err := ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}
