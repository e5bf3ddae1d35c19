package parser

import (
	"errors"
	"fmt"
)

// ErrNoEventsFound is returned when the upstream reply parses cleanly but
// contains zero events. An empty result is a failure, never an empty calendar.
var ErrNoEventsFound = errors.New("No events found in the selected text. Try selecting text that contains dates.")

// ErrEmptyText is returned before any upstream call when the selection is
// empty or whitespace.
var ErrEmptyText = errors.New("Nothing selected. Select the text that contains the fixtures first.")

// MalformedResponseError is returned when the upstream reply cannot be turned
// into the expected event list: no array-shaped substring, JSON that does not
// decode, or events missing required fields.
type MalformedResponseError struct {
	Reason string
	Raw    string // raw reply text, for diagnostics
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("The parsing service returned an unexpected response: %s", e.Reason)
}
