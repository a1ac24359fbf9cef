package models

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the wire format of calendar days.
const DayLayout = "2006-01-02"

// CalendarDay returns the key used to store a calendar day: midnight UTC of the
// date t falls on when observed in loc.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string or an RFC 3339 timestamp into a day key.
// Timestamps are reduced to their calendar date in loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if day, err := time.Parse(DayLayout, value); err == nil {
		return day, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return CalendarDay(ts, loc), nil
}

// FormatDay renders a day key as YYYY-MM-DD.
func FormatDay(day time.Time) string {
	return day.UTC().Format(DayLayout)
}
