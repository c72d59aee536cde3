package query

import (
	"net/url"
	"strconv"
	"time"
)

// Bool parses a boolean query parameter ("true", "1", "false", "0").
// Missing or malformed values are treated as false.
func Bool(values url.Values, key string) bool {
	v, err := strconv.ParseBool(values.Get(key))
	if err != nil {
		return false
	}
	return v
}

// TimeRFC3339 parses an optional RFC 3339 timestamp parameter.
// It returns nil when the parameter is absent and an error when it is
// present but malformed.
func TimeRFC3339(values url.Values, key string) (*time.Time, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
