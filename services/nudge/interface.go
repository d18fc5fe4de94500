package nudge

import (
	"context"

	"jamestronic/models"
)

// Payload is the structured nudge handed to the delivery side. The core
// emits intents; whichever channel renders them (WhatsApp, SMS, push) is
// an external collaborator behind this boundary.
type Payload struct {
	BookingID   string                        `json:"bookingId"`
	CustomerID  string                        `json:"customerId"`
	Priority    models.Priority               `json:"priority"`
	Reason      string                        `json:"reason"`
	TriggeredBy []string                      `json:"triggeredBy"`
	Hooks       []models.ConversionHookResult `json:"hooks,omitempty"`
}

// Dispatcher hands trust interventions to the delivery pipeline.
type Dispatcher interface {
	Dispatch(ctx context.Context, p Payload) error
}
