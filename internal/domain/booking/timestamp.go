package booking

import (
	"strings"
	"time"

	"github.com/parkspot/service-booking/internal/apperr"
)

// Accepted layouts, most specific first. Layouts without an offset are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// NormalizeTimestamp parses an ISO-8601 timestamp and returns it as a UTC
// instant truncated to whole seconds.
func NormalizeTimestamp(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, apperr.NewValidationError("timestamp is required")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Truncate(time.Second), nil
		}
	}
	return time.Time{}, apperr.NewValidationError("invalid timestamp: " + value)
}

// FormatTimestamp renders t in the canonical form used on the wire.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
