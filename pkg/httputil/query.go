package httputil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// QueryString returns a pointer to the trimmed query value, or nil when absent.
func QueryString(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil
	}
	return &v
}

// QueryInt parses an optional integer query parameter.
func QueryInt(r *http.Request, key string) (*int, error) {
	raw := QueryString(r, key)
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.Atoi(*raw)
	if err != nil {
		return nil, fmt.Errorf("query parameter %q must be an integer", key)
	}
	return &v, nil
}

// QueryBool parses an optional boolean query parameter.
func QueryBool(r *http.Request, key string) (*bool, error) {
	raw := QueryString(r, key)
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.ParseBool(*raw)
	if err != nil {
		return nil, fmt.Errorf("query parameter %q must be a boolean", key)
	}
	return &v, nil
}

// QueryTime parses an optional RFC 3339 timestamp or a plain YYYY-MM-DD date (UTC midnight).
func QueryTime(r *http.Request, key string) (*time.Time, error) {
	t, _, err := parseQueryTime(r, key)
	return t, err
}

// QueryTimeUntil parses an inclusive upper bound. A plain YYYY-MM-DD date
// covers the whole day: it becomes the last nanosecond before the next UTC
// midnight.
func QueryTimeUntil(r *http.Request, key string) (*time.Time, error) {
	t, dateOnly, err := parseQueryTime(r, key)
	if err != nil || t == nil || !dateOnly {
		return t, err
	}
	end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return &end, nil
}

func parseQueryTime(r *http.Request, key string) (*time.Time, bool, error) {
	raw := QueryString(r, key)
	if raw == nil {
		return nil, false, nil
	}
	if t, err := time.Parse(time.RFC3339, *raw); err == nil {
		return &t, false, nil
	}
	if t, err := time.Parse(time.DateOnly, *raw); err == nil {
		return &t, true, nil
	}
	return nil, false, fmt.Errorf("query parameter %q must be an RFC 3339 timestamp or YYYY-MM-DD date", key)
}

// QueryList splits a comma-separated or repeated query parameter.
func QueryList(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
