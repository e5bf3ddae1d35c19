package handlers

import (
	"encoding/json"
	"net/http"

	"fixturecal/models"
	"fixturecal/services/settings"
)

// SettingsHandler serves the persisted user settings.
type SettingsHandler struct {
	Settings *settings.Service
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(settingsSvc *settings.Service) *SettingsHandler {
	return &SettingsHandler{Settings: settingsSvc}
}

// Get returns the current settings with the credential masked.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Settings.View())
}

// Update validates and saves new settings. Validation messages are already
// user-facing and returned verbatim.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in models.Settings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}

	if err := h.Settings.Update(in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.Settings.View())
}
