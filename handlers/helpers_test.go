package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"

	"fixturecal/handlers"
	"fixturecal/models"
	"fixturecal/services/ics"
	"fixturecal/services/jobs"
	"fixturecal/services/parser"
	"fixturecal/services/settings"
	"fixturecal/utils"
)

var fixtureEvents = []models.Event{
	{Title: "City vs Rovers", Date: "25/12/2025", StartTime: "15:00", EndTime: "17:00", Location: "Memorial Ground"},
	{Title: "Away Day", Date: "03/01/2026", StartTime: "19:30", EndTime: "21:30"},
}

// --- Mocks ---

type mockExtractor struct {
	events  []models.Event
	err     error
	lastReq parser.Request
}

func (m *mockExtractor) Parse(_ context.Context, req parser.Request) ([]models.Event, error) {
	m.lastReq = req
	return m.events, m.err
}

type mockVenue struct {
	detail models.VenueDetail
	err    error
	calls  int
}

func (m *mockVenue) Enrich(_ context.Context, _ models.Event) (models.VenueDetail, error) {
	m.calls++
	return m.detail, m.err
}

type mockPageText struct {
	text string
	err  error
	urls []string
}

func (m *mockPageText) Extract(_ context.Context, pageURL string) (string, error) {
	m.urls = append(m.urls, pageURL)
	return m.text, m.err
}

// --- Fixture ---

type fixture struct {
	router    *mux.Router
	jobs      *jobs.Service
	settings  *settings.Service
	extractor *mockExtractor
	venue     *mockVenue
	pageText  *mockPageText
}

func setup(t *testing.T) *fixture {
	t.Helper()

	settingsSvc, err := settings.NewService(afero.NewMemMapFs(), "/data")
	if err != nil {
		t.Fatalf("settings.NewService: %v", err)
	}

	f := &fixture{
		settings:  settingsSvc,
		extractor: &mockExtractor{events: fixtureEvents},
		venue:     &mockVenue{detail: models.VenueDetail{FullAddress: "1 Stadium Way"}},
		pageText:  &mockPageText{},
	}
	f.jobs = jobs.New(f.extractor)

	f.router = utils.NewRouter()
	handlers.RegisterRoutes(f.router,
		handlers.NewParseHandler(f.jobs, f.settings, f.pageText),
		handlers.NewVenueHandler(f.jobs, f.venue),
		handlers.NewCalendarHandler(f.jobs, ics.New()),
		handlers.NewSettingsHandler(f.settings),
	)
	return f
}

func (f *fixture) saveKey(t *testing.T) {
	t.Helper()
	if err := f.settings.Update(models.Settings{APIKey: "sk-ant-test", DefaultDuration: 120}); err != nil {
		t.Fatalf("save key: %v", err)
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// submitAndWait submits a parse request and polls the job until it settles.
func (f *fixture) submitAndWait(t *testing.T, body any) (string, models.ParseJobView) {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/parse", body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body.String())
	}

	var accepted struct {
		JobID string `json:"jobId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec := f.do(t, http.MethodGet, "/api/parse/jobs/"+accepted.JobID, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("poll status = %d", rec.Code)
		}
		var view models.ParseJobView
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			t.Fatalf("decode job view: %v", err)
		}
		if view.State != models.JobStateLoading {
			return accepted.JobID, view
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job never settled")
	return "", models.ParseJobView{}
}
