package models

// Event is a single extracted calendar event. Field formats mirror the wire
// representation the parser asks the model for: date is DD/MM/YYYY with the
// year always resolved, times are HH:MM wall-clock with no timezone attached.
type Event struct {
	Title     string `json:"title"`
	Date      string `json:"date"`      // DD/MM/YYYY
	StartTime string `json:"startTime"` // HH:MM
	EndTime   string `json:"endTime"`   // HH:MM, always >= startTime on the same date
	Location  string `json:"location"`  // free-text venue, "" when unspecified
}

// VenueDetail is supplementary venue information fetched per event. It is an
// annotation kept beside an event, never merged into the Event itself. Each
// field is "" when the upstream has nothing to say about it.
type VenueDetail struct {
	FullAddress string `json:"fullAddress"`
	Description string `json:"description"`
	Transport   string `json:"transport"`
	Notes       string `json:"notes"`
}

// Parse job states. A job moves loading -> done or loading -> error exactly once.
const (
	JobStateLoading = "loading"
	JobStateDone    = "done"
	JobStateError   = "error"
)

// ParseJobView is the API snapshot of a parse job.
type ParseJobView struct {
	ID           string         `json:"id"`
	State        string         `json:"state"` // "loading" | "done" | "error"
	SelectedText string         `json:"selectedText"`
	Events       []Event        `json:"events,omitempty"`
	Venues       []*VenueDetail `json:"venues,omitempty"` // index-aligned with Events, nil when not fetched
	Error        string         `json:"error,omitempty"`
	CreatedAt    string         `json:"createdAt"`
}
