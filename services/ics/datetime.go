package ics

import (
	"fmt"
	"strconv"
	"strings"

	"fixturecal/models"
)

// Date is a parsed DD/MM/YYYY calendar date.
type Date struct {
	Day, Month, Year int
}

// Clock is a parsed HH:MM wall-clock time.
type Clock struct {
	Hour, Minute int
}

// ParseDate parses a DD/MM/YYYY string. Single-digit day or month components
// are accepted and zero-padded downstream; the year must be four digits.
func ParseDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("date %q is not in DD/MM/YYYY form", s)
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return Date{}, fmt.Errorf("date %q has an invalid day", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return Date{}, fmt.Errorf("date %q has an invalid month", s)
	}
	if len(parts[2]) != 4 {
		return Date{}, fmt.Errorf("date %q does not have a four-digit year", s)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return Date{}, fmt.Errorf("date %q has an invalid year", s)
	}

	return Date{Day: day, Month: month, Year: year}, nil
}

// ParseClock parses an HH:MM string.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return Clock{}, fmt.Errorf("time %q is not in HH:MM form", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("time %q has an invalid hour", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("time %q has an invalid minute", s)
	}

	return Clock{Hour: hour, Minute: minute}, nil
}

// Minutes returns the clock as minutes since midnight, for ordering checks.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// ValidateEvent checks that an event carries a non-empty title, a well-formed
// date with a concrete year, and well-formed times with the end at or after the
// start. Both the parser and the serializer route events through this check so
// malformed data is rejected instead of silently serialized.
func ValidateEvent(e models.Event) error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("event has an empty title")
	}
	if _, err := ParseDate(e.Date); err != nil {
		return err
	}
	start, err := ParseClock(e.StartTime)
	if err != nil {
		return fmt.Errorf("start %w", err)
	}
	end, err := ParseClock(e.EndTime)
	if err != nil {
		return fmt.Errorf("end %w", err)
	}
	if end.Minutes() < start.Minutes() {
		return fmt.Errorf("event %q ends at %s, before its %s start", e.Title, e.EndTime, e.StartTime)
	}
	return nil
}
