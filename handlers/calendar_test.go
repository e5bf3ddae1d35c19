package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixturecal/models"
)

func TestDownloadForJob(t *testing.T) {
	f := setup(t)
	f.saveKey(t)
	id, _ := f.submitAndWait(t, map[string]string{"text": "fixtures"})

	rec := f.do(t, http.MethodGet, "/api/parse/jobs/"+id+"/calendar.ics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=fixtures.ics", rec.Header().Get("Content-Disposition"))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, body, "SUMMARY:City vs Rovers")
	assert.Contains(t, body, "DTSTART:20251225T150000")
	assert.Equal(t, len(fixtureEvents), strings.Count(body, "BEGIN:VEVENT"))
}

func TestDownloadForJobReflectsEdits(t *testing.T) {
	f := setup(t)
	f.saveKey(t)
	id, _ := f.submitAndWait(t, map[string]string{"text": "fixtures"})

	rec := f.do(t, http.MethodDelete, "/api/parse/jobs/"+id+"/events/0", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/parse/jobs/"+id+"/calendar.ics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "City vs Rovers")
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "BEGIN:VEVENT"))
}

func TestDownloadForJobUnknown(t *testing.T) {
	f := setup(t)

	rec := f.do(t, http.MethodGet, "/api/parse/jobs/no-such-job/calendar.ics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadFromBody(t *testing.T) {
	f := setup(t)

	rec := f.do(t, http.MethodPost, "/api/calendar.ics", map[string]any{"events": fixtureEvents})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SUMMARY:Away Day")
}

func TestDownloadFromBodyRejectsEmpty(t *testing.T) {
	f := setup(t)

	rec := f.do(t, http.MethodPost, "/api/calendar.ics", map[string]any{"events": []models.Event{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadFromBodyRejectsMalformedEvent(t *testing.T) {
	f := setup(t)

	bad := []models.Event{{Title: "Broken", Date: "2025-12-25", StartTime: "15:00", EndTime: "17:00"}}
	rec := f.do(t, http.MethodPost, "/api/calendar.ics", map[string]any{"events": bad})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
