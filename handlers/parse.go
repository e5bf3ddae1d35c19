package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"fixturecal/models"
	"fixturecal/services/jobs"
	"fixturecal/services/parser"
	"fixturecal/services/settings"
)

// PageTextService extracts visible text from a web page for optional context.
type PageTextService interface {
	Extract(ctx context.Context, pageURL string) (string, error)
}

// ParseHandler serves parse submissions, job polling, and event edits.
type ParseHandler struct {
	Jobs     *jobs.Service
	Settings *settings.Service
	PageText PageTextService
}

// NewParseHandler creates a ParseHandler.
func NewParseHandler(jobsSvc *jobs.Service, settingsSvc *settings.Service, pageText PageTextService) *ParseHandler {
	return &ParseHandler{Jobs: jobsSvc, Settings: settingsSvc, PageText: pageText}
}

type parseRequest struct {
	Text        string `json:"text"`
	PageURL     string `json:"pageUrl,omitempty"`
	PageContext string `json:"pageContext,omitempty"`
}

// Submit accepts a selection and starts a parse job. Responds 202 with the job
// id; the caller polls the job until it leaves the loading state.
func (h *ParseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, parser.ErrEmptyText.Error())
		return
	}

	// Without a credential the caller is redirected to settings entry instead
	// of the pipeline being invoked at all.
	if _, err := h.Settings.RequireAPIKey(); err != nil {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":            err.Error(),
			"settingsRequired": true,
		})
		return
	}

	pageContext := req.PageContext
	if pageContext == "" && req.PageURL != "" && h.PageText != nil {
		text, err := h.PageText.Extract(r.Context(), req.PageURL)
		if err != nil {
			// Page context is optional; degrade to none.
			log.Printf("[parse] page context unavailable for %s: %v", req.PageURL, err)
		} else {
			pageContext = text
		}
	}

	id := h.Jobs.Submit(parser.Request{
		Text:            req.Text,
		PageContext:     pageContext,
		DefaultDuration: h.Settings.Get().DefaultDuration,
	})

	writeJSON(w, http.StatusAccepted, map[string]string{"jobId": id})
}

// Get returns the three-state job snapshot.
func (h *ParseHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.Jobs.Get(mux.Vars(r)["id"])
	if errors.Is(err, jobs.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateEvent replaces one event of a finished job with an edited version.
func (h *ParseHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, index, ok := h.eventRef(w, r)
	if !ok {
		return
	}

	var ev models.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}

	if err := h.Jobs.UpdateEvent(id, index, ev); err != nil {
		h.writeJobError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// RemoveEvent deletes one event (and its venue annotation) from a job.
func (h *ParseHandler) RemoveEvent(w http.ResponseWriter, r *http.Request) {
	id, index, ok := h.eventRef(w, r)
	if !ok {
		return
	}

	if err := h.Jobs.RemoveEvent(id, index); err != nil {
		h.writeJobError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *ParseHandler) eventRef(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "event index must be a non-negative integer")
		return "", 0, false
	}
	return vars["id"], index, true
}

// writeJobError maps registry errors onto HTTP statuses. Anything outside the
// known sentinels is a validation problem with the submitted edit.
func (h *ParseHandler) writeJobError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, jobs.ErrNotFound), errors.Is(err, jobs.ErrBadIndex):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, jobs.ErrStillLoading):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
