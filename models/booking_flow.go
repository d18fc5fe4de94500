package models

// BookingState tracks where a booking sits in its lifecycle.
type BookingState string

const (
	StateInitiated       BookingState = "INITIATED"
	StateValidating      BookingState = "VALIDATING"
	StateTechnicianMatch BookingState = "TECHNICIAN_MATCH"
	StateAssigned        BookingState = "ASSIGNED"
	StateAccepted        BookingState = "ACCEPTED"
	StateConfirmed       BookingState = "CONFIRMED"
	StateEscrowPending   BookingState = "ESCROW_PENDING"
	StateCompleted       BookingState = "COMPLETED"
	StateCancelled       BookingState = "CANCELLED"
)

// HappyPath is the forward order of the booking lifecycle. CANCELLED is
// reachable from any non-terminal state and is not part of this order.
var HappyPath = []BookingState{
	StateInitiated,
	StateValidating,
	StateTechnicianMatch,
	StateAssigned,
	StateAccepted,
	StateConfirmed,
	StateEscrowPending,
	StateCompleted,
}

// IsTerminal reports whether a state has no outgoing transitions.
func (s BookingState) IsTerminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// RiskLevel is a coarse conversion-risk classification.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// riskByState is static: risk is a property of the state itself, never of
// how the booking got there.
var riskByState = map[BookingState]RiskLevel{
	StateInitiated:       RiskLow,
	StateValidating:      RiskLow,
	StateTechnicianMatch: RiskHigh,
	StateAssigned:        RiskMedium,
	StateAccepted:        RiskMedium,
	StateConfirmed:       RiskLow,
	StateEscrowPending:   RiskLow,
	StateCompleted:       RiskLow,
}

// RiskForState returns the static risk classification for a state.
// CANCELLED carries no conversion risk and maps to low.
func RiskForState(s BookingState) RiskLevel {
	if risk, ok := riskByState[s]; ok {
		return risk
	}
	return RiskLow
}

// TelemetryEventType identifies what a telemetry event records.
type TelemetryEventType string

const (
	EventStateChanged      TelemetryEventType = "STATE_CHANGED"
	EventConfidenceUpdated TelemetryEventType = "CONFIDENCE_UPDATED"
	EventPageView          TelemetryEventType = "PAGE_VIEW"
	EventBookingCompleted  TelemetryEventType = "BOOKING_COMPLETED"
	EventDropOffDetected   TelemetryEventType = "DROP_OFF_DETECTED"
)

// Canonical hesitation-point tags. The tag set is open: callers may record
// new tags without any schema change.
const (
	HesitationPrice = "price"
	HesitationSLA   = "sla"
)
