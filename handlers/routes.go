package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes wires every API endpoint onto the router.
func RegisterRoutes(r *mux.Router, parse *ParseHandler, venue *VenueHandler, calendar *CalendarHandler, settings *SettingsHandler) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/parse", parse.Submit).Methods(http.MethodPost)
	api.HandleFunc("/parse/jobs/{id}", parse.Get).Methods(http.MethodGet)
	api.HandleFunc("/parse/jobs/{id}/events/{index}", parse.UpdateEvent).Methods(http.MethodPatch)
	api.HandleFunc("/parse/jobs/{id}/events/{index}", parse.RemoveEvent).Methods(http.MethodDelete)

	api.HandleFunc("/parse/jobs/{id}/venues", venue.EnrichAll).Methods(http.MethodPost)
	api.HandleFunc("/parse/jobs/{id}/venues/{index}", venue.EnrichOne).Methods(http.MethodPost)

	api.HandleFunc("/parse/jobs/{id}/calendar.ics", calendar.DownloadForJob).Methods(http.MethodGet)
	api.HandleFunc("/calendar.ics", calendar.Download).Methods(http.MethodPost)

	api.HandleFunc("/settings", settings.Get).Methods(http.MethodGet)
	api.HandleFunc("/settings", settings.Update).Methods(http.MethodPut)
}
