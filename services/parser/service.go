// Package parser turns a free-text selection into structured calendar events
// by prompting a text-understanding service and validating its reply.
package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"fixturecal/internal/jsonscan"
	"fixturecal/models"
	"fixturecal/services/ics"
)

// CompletionClient is the upstream text-understanding call. Implemented by
// anthropic.Client.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Request is one extraction submission.
type Request struct {
	// Text is the raw selected text. Required.
	Text string
	// PageContext is optional surrounding page text, subordinate to Text.
	PageContext string
	// DefaultDuration is the event length in minutes applied when the text
	// gives no end time.
	DefaultDuration int
}

// Service is the extraction pipeline. Stateless between calls; one upstream
// request per Parse invocation, no retries.
type Service struct {
	client CompletionClient
	now    func() time.Time
}

// New creates the pipeline around an upstream client.
func New(client CompletionClient) *Service {
	return &Service{client: client, now: time.Now}
}

// Parse extracts an ordered, non-empty event list from raw text. Every error
// is terminal for this request; the caller decides whether to resubmit.
func (s *Service) Parse(ctx context.Context, req Request) ([]models.Event, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	duration := req.DefaultDuration
	if duration <= 0 {
		duration = models.DefaultDurationMinutes
	}

	prompt := buildPrompt(req.Text, s.now(), duration, req.PageContext)

	reply, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	events, err := parseReply(reply)
	if err != nil {
		log.Printf("[parser] rejected upstream reply: %v", err)
		return nil, err
	}

	log.Printf("[parser] extracted %d event(s)", len(events))
	return events, nil
}

// parseReply locates the event array inside the reply text, decodes it, and
// validates every event's shape. The reply may wrap the array in prose or a
// code fence; only the first array-shaped substring is considered.
func parseReply(reply string) ([]models.Event, error) {
	raw, ok := jsonscan.FirstArray(reply)
	if !ok {
		return nil, &MalformedResponseError{Reason: "no event list found in the reply", Raw: reply}
	}

	var events []models.Event
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("event list does not decode: %v", err), Raw: reply}
	}

	if len(events) == 0 {
		return nil, ErrNoEventsFound
	}

	for i, ev := range events {
		if err := ics.ValidateEvent(ev); err != nil {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("event %d: %v", i, err), Raw: reply}
		}
	}

	return events, nil
}
