package models

// Priority ranks how urgently a trust intervention should be surfaced.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// TrustInterventionResult is the outcome of one trust-trigger evaluation.
// Every evaluation is logged on the booking context, including ones that
// recommend no action, so the audit trail stays complete.
type TrustInterventionResult struct {
	ShouldInject bool     `json:"shouldInject"`
	Priority     Priority `json:"priority"`
	Reason       string   `json:"reason"`
	TriggeredBy  []string `json:"triggeredBy"`
}

// ConversionActionType names the kind of conversion action suggested.
type ConversionActionType string

const (
	ActionReassurance ConversionActionType = "reassurance"
	ActionIncentive   ConversionActionType = "incentive"
	ActionEscalation  ConversionActionType = "escalation"
)

// ConversionHookResult is one suggested conversion action targeting a
// specific hesitation point. Message is a structured hint for the
// presentation layer, not final UI copy.
type ConversionHookResult struct {
	ActionType       ConversionActionType `json:"actionType"`
	Message          string               `json:"message"`
	TargetHesitation string               `json:"targetHesitation"`
}

// DropOffType classifies a detected drop-off pattern.
type DropOffType string

const (
	DropOffBounceAttempt   DropOffType = "bounce_attempt"
	DropOffConfidenceSlide DropOffType = "confidence_slide"
)

// DropOffResult is the outcome of checking a session for drop-off patterns.
type DropOffResult struct {
	Detected  bool        `json:"isDropOffDetected"`
	Type      DropOffType `json:"type,omitempty"`
	RiskLevel RiskLevel   `json:"riskLevel,omitempty"`
}
