package parser

import (
	"fmt"
	"strings"
	"time"
)

// maxPageContextChars bounds how much surrounding page text is sent upstream.
// Anything longer is truncated to the first maxPageContextChars characters.
const maxPageContextChars = 8000

// buildPrompt encodes the extraction rules as instructions to the model. The
// rules are part of this system's contract: day-month-year dates, forward
// resolution of missing years, 15:00 default start, defaultDuration-derived
// end times, and empty-string locations.
//
// The missing-year rule is made concrete here rather than left to the model's
// judgement: a day/month that falls strictly before today's date gets next
// year, everything else gets the reference year.
func buildPrompt(text string, now time.Time, defaultDuration int, pageContext string) string {
	referenceYear := now.Year()

	var b strings.Builder
	fmt.Fprintf(&b, `You are a date/event parser. Extract calendar events from the following text.

Rules:
- Use UK date format (DD/MM/YYYY)
- If no year is specified, assume %d; but if that day and month fall strictly before today's date (%s), assume %d instead
- If no end time is given, set the end time to %d minutes after the start time
- If no specific time is given, use 15:00 as a default start time
- Extract: event title, date, start time, end time, and location (if mentioned)
- If no location is mentioned, use an empty string, never a placeholder
- Return ONLY a valid JSON array, no other text

Return format:
[
  {
    "title": "Event name",
    "date": "DD/MM/YYYY",
    "startTime": "HH:MM",
    "endTime": "HH:MM",
    "location": "Venue name or empty string"
  }
]
`, referenceYear, now.Format("02/01/2006"), referenceYear+1, defaultDuration)

	if ctx := strings.TrimSpace(pageContext); ctx != "" {
		if len(ctx) > maxPageContextChars {
			ctx = ctx[:maxPageContextChars]
		}
		fmt.Fprintf(&b, `
Surrounding page content is provided below for reference only. Use it solely to fill in fields missing from the selected text (such as times or venues). It must never override or contradict anything present in the selected text.

Page content:
%s
`, ctx)
	}

	fmt.Fprintf(&b, "\nText to parse:\n%s", text)
	return b.String()
}
