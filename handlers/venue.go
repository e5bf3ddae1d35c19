package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/sourcegraph/conc/pool"

	"fixturecal/models"
	"fixturecal/services/jobs"
)

// maxEnrichWorkers bounds concurrent upstream calls during a batch enrichment.
const maxEnrichWorkers = 4

// VenueService fetches supplementary venue detail for one event.
type VenueService interface {
	Enrich(ctx context.Context, event models.Event) (models.VenueDetail, error)
}

// VenueHandler serves per-event and batch venue enrichment on parse jobs.
// Enrichment is best-effort throughout: a failure never touches the events.
type VenueHandler struct {
	Jobs  *jobs.Service
	Venue VenueService
}

// NewVenueHandler creates a VenueHandler.
func NewVenueHandler(jobsSvc *jobs.Service, venueSvc VenueService) *VenueHandler {
	return &VenueHandler{Jobs: jobsSvc, Venue: venueSvc}
}

// EnrichOne fetches venue detail for a single event of a job and stores it as
// an annotation beside the event.
func (h *VenueHandler) EnrichOne(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	index, err := strconv.Atoi(vars["index"])
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "event index must be a non-negative integer")
		return
	}

	event, err := h.Jobs.Event(id, index)
	if err != nil {
		writeJobLookupError(w, err)
		return
	}

	detail, err := h.Venue.Enrich(r.Context(), event)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if err := h.Jobs.SetVenue(id, index, detail); err != nil {
		writeJobLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type batchVenueResponse struct {
	Venues []*models.VenueDetail `json:"venues"` // index-aligned, null where enrichment failed
	Errors map[string]string     `json:"errors,omitempty"`
}

// EnrichAll fans enrichment out over every event of a job. Calls are
// independent, so they run concurrently; per-event failures are reported
// without failing the batch.
func (h *VenueHandler) EnrichAll(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	events, err := h.Jobs.Events(id)
	if err != nil {
		writeJobLookupError(w, err)
		return
	}

	resp := batchVenueResponse{
		Venues: make([]*models.VenueDetail, len(events)),
		Errors: make(map[string]string),
	}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxEnrichWorkers)
	for i, event := range events {
		p.Go(func() {
			detail, err := h.Venue.Enrich(r.Context(), event)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				resp.Errors[strconv.Itoa(i)] = err.Error()
				return
			}
			resp.Venues[i] = &detail
		})
	}
	p.Wait()

	for i, detail := range resp.Venues {
		if detail != nil {
			// The job may have been edited mid-flight; ignore index drift.
			_ = h.Jobs.SetVenue(id, i, *detail)
		}
	}

	if len(resp.Errors) == 0 {
		resp.Errors = nil
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJobLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, jobs.ErrNotFound), errors.Is(err, jobs.ErrBadIndex), errors.Is(err, jobs.ErrNoEvents):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusConflict, err.Error())
	}
}
