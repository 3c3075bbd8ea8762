package watchlog

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ValidDate reports whether s is an ISO calendar date (YYYY-MM-DD).
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

func requireDate(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalidArgument("%s is required", field)
	}
	if !ValidDate(value) {
		return "", invalidArgument("%s %q is not a YYYY-MM-DD date", field, value)
	}
	return value, nil
}

func optionalDate(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	return requireDate(field, value)
}

// before reports whether ISO date a is strictly earlier than b.
func before(a, b string) bool {
	ta, errA := time.Parse(dateLayout, a)
	tb, errB := time.Parse(dateLayout, b)
	if errA != nil || errB != nil {
		return a < b
	}
	return ta.Before(tb)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
