package handler

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// timeFormat is the wire format for timestamps in API responses
const timeFormat = time.RFC3339

var errMissingListScope = errors.New("one of warehouse_id, product_id or below_minimum is required")

// parseDateTime parses a datetime string in the formats accepted by the read API
func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// formatTimePtr formats an optional timestamp, returning "" when nil
func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeFormat)
}

// uuidPtrString formats an optional UUID, returning "" when nil
func uuidPtrString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
