package flow

import "jamestronic/models"

// BookingContext is the aggregate root for one booking's conversion
// tracking. It is created by InitializeBookingFlow, owned exclusively by
// the flow engine, and is the single read model exposed to callers. The
// engine never destroys a context; eviction belongs to the embedding
// application (the redis backend expires by TTL, the in-memory backend
// keeps everything).
type BookingContext struct {
	BookingID      string `json:"bookingId"`
	CustomerID     string `json:"customerId"`
	SessionID      string `json:"sessionId"`
	DeviceCategory string `json:"deviceCategory"`
	DeviceBrand    string `json:"deviceBrand"`

	StateMachine *StateMachine `json:"stateMachine"`

	ConfidenceHistory []models.ConfidenceSample `json:"confidenceHistory"`

	// Cumulative, add-only signal sets. Decisions always see the full
	// history, never just the latest call's delta.
	DetectedHesitationPoints *models.TagSet `json:"detectedHesitationPoints"`
	RiskFactors              *models.TagSet `json:"riskFactors"`

	// TrustHistory logs every intervention decision, including ones that
	// recommended no action, for audit.
	TrustHistory []models.TrustInterventionResult `json:"trustHistory"`

	TelemetryEvents []models.TelemetryEvent `json:"telemetryEvents"`
}

// LatestConfidence returns the most recent confidence score, or 100 when
// none has been recorded yet: an unobserved customer is presumed willing
// until a signal says otherwise.
func (bc *BookingContext) LatestConfidence() float64 {
	if len(bc.ConfidenceHistory) == 0 {
		return 100
	}
	return bc.ConfidenceHistory[len(bc.ConfidenceHistory)-1].Score
}

// CurrentState returns the booking's lifecycle state.
func (bc *BookingContext) CurrentState() models.BookingState {
	return bc.StateMachine.Current
}

func (bc *BookingContext) hasCompletedEvent() bool {
	for _, ev := range bc.TelemetryEvents {
		if ev.Type == models.EventBookingCompleted {
			return true
		}
	}
	return false
}
