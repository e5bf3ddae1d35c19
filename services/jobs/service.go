// Package jobs tracks parse submissions through their three states: loading,
// done, error. A job owns the extracted event list between extraction and
// export; edits (update a field, remove at an index) go through explicit
// operations here rather than through shared mutable state. Nothing survives
// the process: jobs live in memory and are reaped after a TTL.
package jobs

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"fixturecal/models"
	"fixturecal/services/ics"
	"fixturecal/services/parser"
)

var (
	ErrNotFound     = errors.New("parse job not found")
	ErrStillLoading = errors.New("still parsing; try again in a moment")
	ErrBadIndex     = errors.New("no event at that position")
	ErrNoEvents     = errors.New("this job has no events left to export")
)

// Extractor is the extraction pipeline. Implemented by parser.Service.
type Extractor interface {
	Parse(ctx context.Context, req parser.Request) ([]models.Event, error)
}

type job struct {
	id           string
	state        string
	selectedText string
	events       []models.Event
	venues       []*models.VenueDetail // index-aligned with events
	errMsg       string
	createdAt    time.Time
}

// Service is the in-memory job registry.
type Service struct {
	mu        sync.RWMutex
	jobs      map[string]*job
	extractor Extractor

	parseTimeout time.Duration
	ttl          time.Duration
	stopCh       chan struct{}
}

// New creates the registry. Extractions are bounded by a 30 second timeout and
// finished jobs are kept for an hour.
func New(extractor Extractor) *Service {
	return &Service{
		jobs:         make(map[string]*job),
		extractor:    extractor,
		parseTimeout: 30 * time.Second,
		ttl:          time.Hour,
	}
}

// Submit registers a new job in the loading state and runs the extraction in
// the background. The returned id is immediately pollable via Get.
func (s *Service) Submit(req parser.Request) string {
	j := &job{
		id:           uuid.NewString(),
		state:        models.JobStateLoading,
		selectedText: req.Text,
		createdAt:    time.Now(),
	}

	s.mu.Lock()
	s.jobs[j.id] = j
	s.mu.Unlock()

	go s.run(j.id, req)
	return j.id
}

func (s *Service) run(id string, req parser.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), s.parseTimeout)
	defer cancel()

	events, err := s.extractor.Parse(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		// Reaped while in flight; drop the result.
		return
	}

	if err != nil {
		j.state = models.JobStateError
		j.errMsg = err.Error()
		log.Printf("[jobs] job %s failed: %v", id, err)
		return
	}

	j.state = models.JobStateDone
	j.events = events
	j.venues = make([]*models.VenueDetail, len(events))
	log.Printf("[jobs] job %s done with %d event(s)", id, len(events))
}

// Get returns a snapshot of the job.
func (s *Service) Get(id string) (models.ParseJobView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return models.ParseJobView{}, ErrNotFound
	}
	return j.view(), nil
}

func (j *job) view() models.ParseJobView {
	view := models.ParseJobView{
		ID:           j.id,
		State:        j.state,
		SelectedText: j.selectedText,
		Error:        j.errMsg,
		CreatedAt:    j.createdAt.UTC().Format(time.RFC3339),
	}
	if j.state == models.JobStateDone {
		view.Events = append([]models.Event(nil), j.events...)
		view.Venues = append([]*models.VenueDetail(nil), j.venues...)
	}
	return view
}

// UpdateEvent replaces the event at index with the edited version. The edit is
// validated so a bad hand-edit is rejected here instead of corrupting the
// calendar file later.
func (s *Service) UpdateEvent(id string, index int, ev models.Event) error {
	if err := ics.ValidateEvent(ev); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j, err := s.doneJobLocked(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(j.events) {
		return ErrBadIndex
	}

	j.events[index] = ev
	return nil
}

// RemoveEvent deletes the event at index, along with its venue annotation.
func (s *Service) RemoveEvent(id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, err := s.doneJobLocked(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(j.events) {
		return ErrBadIndex
	}

	j.events = append(j.events[:index], j.events[index+1:]...)
	j.venues = append(j.venues[:index], j.venues[index+1:]...)
	return nil
}

// Events returns the job's current (possibly edited) event list for export.
func (s *Service) Events(id string) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, err := s.doneJobLocked(id)
	if err != nil {
		return nil, err
	}
	if len(j.events) == 0 {
		return nil, ErrNoEvents
	}
	return append([]models.Event(nil), j.events...), nil
}

// Event returns a single event by index, for enrichment.
func (s *Service) Event(id string, index int) (models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, err := s.doneJobLocked(id)
	if err != nil {
		return models.Event{}, err
	}
	if index < 0 || index >= len(j.events) {
		return models.Event{}, ErrBadIndex
	}
	return j.events[index], nil
}

// SetVenue attaches a venue annotation beside the event at index. The Event
// itself is never touched.
func (s *Service) SetVenue(id string, index int, detail models.VenueDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, err := s.doneJobLocked(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(j.venues) {
		return ErrBadIndex
	}

	d := detail
	j.venues[index] = &d
	return nil
}

func (s *Service) doneJobLocked(id string) (*job, error) {
	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	switch j.state {
	case models.JobStateLoading:
		return nil, ErrStillLoading
	case models.JobStateError:
		return nil, errors.New(j.errMsg)
	}
	return j, nil
}

// StartJanitor reaps expired jobs periodically until Stop is called.
func (s *Service) StartJanitor(interval time.Duration) {
	s.stopCh = make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.reap()
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop halts the janitor.
func (s *Service) Stop() {
	if s.stopCh != nil {
		close(s.stopCh)
	}
}

func (s *Service) reap() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, j := range s.jobs {
		if j.createdAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[jobs] reaped %d expired job(s)", removed)
	}
}
