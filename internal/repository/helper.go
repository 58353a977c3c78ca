package repository

import (
	"fmt"
	"time"
)

// ParseTime parses a stored timestamp in RFC3339 (with optional fraction) or "2006-01-02" format.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		returnTime, err = time.Parse("2006-01-02", str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return returnTime.UTC(), nil
}

// timestampLayout stores UTC timestamps with a fixed-width fraction so they sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
