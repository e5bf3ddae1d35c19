package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"fixturecal/models"
	"fixturecal/services/ics"
	"fixturecal/services/jobs"
)

// CalendarHandler serves the generated .ics artifact, either from a finished
// parse job or from an explicit event list.
type CalendarHandler struct {
	Jobs       *jobs.Service
	Serializer *ics.Serializer
}

// NewCalendarHandler creates a CalendarHandler.
func NewCalendarHandler(jobsSvc *jobs.Service, serializer *ics.Serializer) *CalendarHandler {
	return &CalendarHandler{Jobs: jobsSvc, Serializer: serializer}
}

// DownloadForJob serializes a job's current (possibly edited) events.
func (h *CalendarHandler) DownloadForJob(w http.ResponseWriter, r *http.Request) {
	events, err := h.Jobs.Events(mux.Vars(r)["id"])
	if err != nil {
		writeJobLookupError(w, err)
		return
	}
	h.serve(w, events)
}

type calendarRequest struct {
	Events []models.Event `json:"events"`
}

// Download serializes an event list supplied in the request body. Stateless:
// callers that keep their own edited copy use this directly.
func (h *CalendarHandler) Download(w http.ResponseWriter, r *http.Request) {
	var req calendarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}
	if len(req.Events) == 0 {
		writeError(w, http.StatusBadRequest, "at least one event is required")
		return
	}
	h.serve(w, req.Events)
}

func (h *CalendarHandler) serve(w http.ResponseWriter, events []models.Event) {
	doc, err := h.Serializer.Serialize(events)
	if err != nil {
		// Malformed events reaching this point are a validation failure, not
		// an excuse to emit a corrupt document.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", ics.MIMEType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", ics.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}
