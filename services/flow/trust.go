package flow

import (
	"fmt"

	"jamestronic/models"
)

// TrustConfig tunes the trust-trigger decision. Thresholds compare against
// the latest confidence score in [0,100].
type TrustConfig struct {
	// InjectBelow: confidence under this value alone qualifies for a nudge.
	InjectBelow float64
	// HighBelow / MediumBelow set the priority bands.
	HighBelow   float64
	MediumBelow float64
	// SensitiveViews lists view tags that independently qualify, such as
	// the technician-assignment screen.
	SensitiveViews []string
}

// DefaultTrustConfig returns the production thresholds.
func DefaultTrustConfig() TrustConfig {
	return TrustConfig{
		InjectBelow:    50,
		HighBelow:      40,
		MediumBelow:    60,
		SensitiveViews: []string{"technician-assignment", "escrow-release"},
	}
}

// EvaluateTrustTrigger decides whether to inject a trust-building message.
// It is a pure function of its inputs: identical arguments always produce
// the identical result, so it is unit-testable without the engine. Reason
// and TriggeredBy name whichever signal fired for auditability.
func EvaluateTrustTrigger(cfg TrustConfig, state models.BookingState, confidence float64, hesitationPoints []string, viewTag string) models.TrustInterventionResult {
	result := models.TrustInterventionResult{
		Priority:    priorityForConfidence(cfg, confidence),
		TriggeredBy: []string{},
	}

	switch {
	case confidence < cfg.InjectBelow:
		result.ShouldInject = true
		result.Reason = fmt.Sprintf("confidence %.0f below threshold %.0f", confidence, cfg.InjectBelow)
		result.TriggeredBy = append(result.TriggeredBy, hesitationPoints...)
	case models.RiskForState(state) == models.RiskHigh:
		result.ShouldInject = true
		result.Reason = fmt.Sprintf("state %s carries high conversion risk", state)
	case viewTag != "" && isSensitiveView(cfg, viewTag):
		result.ShouldInject = true
		result.Reason = fmt.Sprintf("sensitive view %s", viewTag)
		result.TriggeredBy = append(result.TriggeredBy, viewTag)
	default:
		result.Reason = "no trust signal fired"
	}

	return result
}

func priorityForConfidence(cfg TrustConfig, confidence float64) models.Priority {
	switch {
	case confidence < cfg.HighBelow:
		return models.PriorityHigh
	case confidence < cfg.MediumBelow:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func isSensitiveView(cfg TrustConfig, viewTag string) bool {
	for _, v := range cfg.SensitiveViews {
		if v == viewTag {
			return true
		}
	}
	return false
}
