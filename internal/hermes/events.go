package hermes

import "time"

// CalculatedEvent reports a finished calculation request. Results holds
// the per-entity breakdown exactly as the HTTP batch endpoint returns it.
type CalculatedEvent struct {
	RequestID    string      `json:"request_id"`
	Season       string      `json:"season"`
	Results      interface{} `json:"results"`
	Failed       int         `json:"failed"`
	CalculatedAt time.Time   `json:"calculated_at"`
}

type CalculationFailedEvent struct {
	RequestID string `json:"request_id"`
	Season    string `json:"season,omitempty"`
	Error     string `json:"error"`
	Kind      string `json:"kind"`
}

type SeasonUpdatedEvent struct {
	Slug      string    `json:"slug"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
