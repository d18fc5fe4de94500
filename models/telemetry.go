package models

import "time"

// StateRecord is one entry in a booking's state history.
type StateRecord struct {
	State     BookingState `json:"state"`
	EnteredAt time.Time    `json:"enteredAt"`
}

// ConfidenceSample is one observed customer-confidence score in [0,100].
type ConfidenceSample struct {
	Score     float64   `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// TelemetryEvent is an append-only record consumed by the analytics sink.
type TelemetryEvent struct {
	Type      TelemetryEventType `json:"type"`
	Timestamp time.Time          `json:"timestamp"`
	Payload   map[string]string  `json:"payload,omitempty"`
}
