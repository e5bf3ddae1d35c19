package models

// Duration bounds for the default event length, in minutes.
const (
	MinDefaultDuration = 15
	MaxDefaultDuration = 480

	// DefaultDurationMinutes is used when the store has no saved value.
	DefaultDurationMinutes = 120

	// APIKeyPrefix is the expected prefix of an Anthropic API key.
	APIKeyPrefix = "sk-ant-"
)

// Settings is the persisted configuration supplied by the user: the upstream
// credential and the default event duration applied when the source text gives
// no end time.
type Settings struct {
	APIKey          string `json:"apiKey"`
	DefaultDuration int    `json:"defaultDuration"` // minutes, MinDefaultDuration..MaxDefaultDuration
}

// SettingsView is the API representation of Settings. The key is masked so the
// full credential never travels back out of the service.
type SettingsView struct {
	APIKeySet       bool   `json:"apiKeySet"`
	APIKeyHint      string `json:"apiKeyHint,omitempty"` // first and last few characters
	DefaultDuration int    `json:"defaultDuration"`
}
