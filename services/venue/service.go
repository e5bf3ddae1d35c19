// Package venue fetches supplementary venue information for one extracted
// event. Best-effort by design: a failure here never touches the events
// themselves, and callers are free to invoke it for any subset of events, in
// any order, concurrently or not.
package venue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"fixturecal/internal/jsonscan"
	"fixturecal/models"
)

// ErrUnavailable is the single failure class for enrichment. No finer-grained
// status mapping: this path is best-effort.
var ErrUnavailable = errors.New("Venue details could not be fetched right now.")

// NotAvailable is the sentinel the model is instructed to return instead of
// fabricating detail it is not confident about.
var NotAvailable = models.VenueDetail{Description: "Venue details not available"}

// CompletionClient is the upstream text-understanding call.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service is the enrichment leaf. Stateless; one upstream call per Enrich.
type Service struct {
	client CompletionClient
}

// New creates the enrichment service.
func New(client CompletionClient) *Service {
	return &Service{client: client}
}

// Enrich asks for descriptive detail about the event's venue. Only the title,
// location, and date are sent upstream.
func (s *Service) Enrich(ctx context.Context, event models.Event) (models.VenueDetail, error) {
	reply, err := s.client.Complete(ctx, buildPrompt(event))
	if err != nil {
		log.Printf("[venue] enrichment call failed: %v", err)
		return models.VenueDetail{}, fmt.Errorf("%w (%v)", ErrUnavailable, err)
	}

	raw, ok := jsonscan.FirstObject(reply)
	if !ok {
		return models.VenueDetail{}, ErrUnavailable
	}

	var detail models.VenueDetail
	if err := json.Unmarshal([]byte(raw), &detail); err != nil {
		return models.VenueDetail{}, ErrUnavailable
	}

	return detail, nil
}

func buildPrompt(event models.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a venue information assistant. Provide details about the venue of the following event.

Event: %s
Venue: %s
Date: %s

Return ONLY a JSON object with exactly these fields, no other text:
{
  "fullAddress": "full postal address of the venue",
  "description": "one or two sentences describing the venue",
  "transport": "how to get there by public transport",
  "notes": "anything else useful for a visitor"
}

If you are not confident about the venue, do not invent details. Return exactly:
{"fullAddress": "", "description": "Venue details not available", "transport": "", "notes": ""}
`, event.Title, event.Location, event.Date)
	return b.String()
}
