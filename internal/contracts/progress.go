package contracts

import "time"

// IngestionProgress is a point-in-time view of a running (or finished)
// ingestion, safe to serve to the API while the run continues.
type IngestionProgress struct {
	Running       bool       `json:"running"`
	Phase         string     `json:"phase"`
	Current       int        `json:"current"`
	Total         int        `json:"total"`
	CurrentTicker string     `json:"current_ticker"`
	Errors        int        `json:"errors"`
	StartedAt     *time.Time `json:"started_at"`
	LastError     string     `json:"last_error"`
}
