// Package ics serializes extracted events into an iCalendar (RFC 5545)
// document. The output is hand-assembled rather than produced through a
// serializer library because the format here is a fixed byte contract:
// CRLF line endings, floating local timestamps, a specific escaping order,
// and a LOCATION line only when a venue is present.
package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fixturecal/models"
)

const (
	prodID    = "-//FixtureToCalendar//EN"
	uidDomain = "fixture-to-calendar"

	// Filename and MIME type of the offered artifact.
	Filename = "fixtures.ics"
	MIMEType = "text/calendar"
)

// Serializer produces iCalendar documents. The zero value is not usable; use
// New. The clock is injectable so tests can pin DTSTAMP.
type Serializer struct {
	now func() time.Time
}

// New creates a Serializer using the wall clock.
func New() *Serializer {
	return &Serializer{now: time.Now}
}

// Serialize converts events, in input order, into a single VCALENDAR document.
// Output is deterministic given its input except for the per-event UID and the
// DTSTAMP, which is read once per document. A malformed date or time in any
// event fails the whole call; nothing is silently skipped.
func (s *Serializer) Serialize(events []models.Event) (string, error) {
	var b strings.Builder

	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:" + prodID + "\r\n")
	b.WriteString("CALSCALE:GREGORIAN\r\n")

	stamp := formatUTC(s.now().UTC())

	for i, event := range events {
		if err := ValidateEvent(event); err != nil {
			return "", fmt.Errorf("event %d: %w", i, err)
		}

		date, _ := ParseDate(event.Date)
		start, _ := ParseClock(event.StartTime)
		end, _ := ParseClock(event.EndTime)

		b.WriteString("BEGIN:VEVENT\r\n")
		b.WriteString("UID:" + newUID() + "\r\n")
		b.WriteString("DTSTART:" + formatFloating(date, start) + "\r\n")
		b.WriteString("DTEND:" + formatFloating(date, end) + "\r\n")
		b.WriteString("SUMMARY:" + Escape(event.Title) + "\r\n")
		if event.Location != "" {
			b.WriteString("LOCATION:" + Escape(event.Location) + "\r\n")
		}
		b.WriteString("DTSTAMP:" + stamp + "\r\n")
		b.WriteString("END:VEVENT\r\n")
	}

	b.WriteString("END:VCALENDAR\r\n")
	return b.String(), nil
}

// formatFloating renders a local date-time with no timezone designator. The
// source text rarely names a timezone, so events import at whatever local time
// the consuming calendar uses.
func formatFloating(d Date, c Clock) string {
	return fmt.Sprintf("%04d%02d%02dT%02d%02d00", d.Year, d.Month, d.Day, c.Hour, c.Minute)
}

// formatUTC renders an absolute instant as YYYYMMDDTHHMMSSZ.
func formatUTC(t time.Time) string {
	return t.Format("20060102T150405Z")
}

// newUID returns an identifier unique across the batch and across repeated
// serializations: a current-time component plus a random component under a
// fixed domain. The value is opaque; nothing parses it back.
func newUID() string {
	return fmt.Sprintf("ftc-%d-%s@%s", time.Now().UnixMilli(), uuid.NewString(), uidDomain)
}

// Escape applies iCalendar TEXT escaping. Order matters: backslashes first so
// the escapes introduced for the other characters are not doubled.
func Escape(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, ";", `\;`)
	text = strings.ReplaceAll(text, ",", `\,`)
	text = strings.ReplaceAll(text, "\n", `\n`)
	return text
}
