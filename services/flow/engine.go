package flow

import (
	"context"
	"strconv"
	"time"

	"jamestronic/models"

	"go.uber.org/zap"
)

// InitializeBookingFlow creates a fresh context for the booking and
// registers it in the store. Re-initializing an existing booking is
// rejected: a silent overwrite would discard the cumulative hesitation
// history and the trust audit log. Callers that want a truly fresh flow
// must delete the context through the store first.
func (e *DefaultFlowEngine) InitializeBookingFlow(bookingID, customerID, sessionID, deviceCategory, deviceBrand string) (models.BookingState, error) {
	if bookingID == "" {
		return "", newInvalidInputError("bookingId is required")
	}
	if customerID == "" || sessionID == "" {
		return "", newInvalidInputError("customerId and sessionId are required")
	}

	ctx := context.Background()
	if _, err := e.Store.Get(ctx, bookingID); err == nil {
		return "", newInvalidInputError("booking flow already initialized for " + bookingID)
	} else if err != ErrContextNotFound {
		return "", err
	}

	bc := &BookingContext{
		BookingID:                bookingID,
		CustomerID:               customerID,
		SessionID:                sessionID,
		DeviceCategory:           deviceCategory,
		DeviceBrand:              deviceBrand,
		StateMachine:             NewStateMachine(),
		DetectedHesitationPoints: models.NewTagSet(),
		RiskFactors:              models.NewTagSet(),
	}
	if err := e.Store.Put(ctx, bc); err != nil {
		return "", err
	}
	e.Detector.StartSession(sessionID, bc.StateMachine.Current)

	e.Logger.Info("booking flow initialized",
		zap.String("bookingId", bookingID),
		zap.String("sessionId", sessionID),
	)
	return bc.StateMachine.Current, nil
}

// TransitionBookingState advances the booking's state machine and records
// the change as telemetry.
func (e *DefaultFlowEngine) TransitionBookingState(bookingID string, target models.BookingState) (models.BookingState, error) {
	ctx := context.Background()
	bc, err := e.getContext(ctx, bookingID)
	if err != nil {
		return "", err
	}

	from := bc.StateMachine.Current
	if err := bc.StateMachine.Transition(target); err != nil {
		return "", err
	}

	appendEvent(bc, models.EventStateChanged, map[string]string{
		"from": string(from),
		"to":   string(target),
	})
	if target == models.StateCompleted && !bc.hasCompletedEvent() {
		appendEvent(bc, models.EventBookingCompleted, nil)
	}

	if err := e.Store.Put(ctx, bc); err != nil {
		return "", err
	}
	e.Logger.Debug("booking state changed",
		zap.String("bookingId", bookingID),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
	)
	return target, nil
}

// UpdateCustomerConfidence records a confidence score with its hesitation
// and risk signals, then re-runs the trust and conversion decisions. The
// signal sets are unioned before the decision functions run: decisions
// must see the full hesitation history, not just this call's delta.
func (e *DefaultFlowEngine) UpdateCustomerConfidence(bookingID string, score float64, hesitationPoints, riskFactors []string) (*ConfidenceUpdate, error) {
	if score < 0 || score > 100 {
		return nil, newInvalidInputError("confidence score must be within [0,100]")
	}

	ctx := context.Background()
	bc, err := e.getContext(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	bc.ConfidenceHistory = append(bc.ConfidenceHistory, models.ConfidenceSample{
		Score:     score,
		Timestamp: time.Now(),
	})
	bc.DetectedHesitationPoints.Add(hesitationPoints...)
	bc.RiskFactors.Add(riskFactors...)

	cumulative := bc.DetectedHesitationPoints.Values()
	state := bc.StateMachine.Current

	trust := EvaluateTrustTrigger(e.TrustCfg, state, score, cumulative, "")
	hooks := BuildConversionHooks(cumulative, score, state)

	// Every decision lands in the audit log, action or not.
	bc.TrustHistory = append(bc.TrustHistory, trust)
	appendEvent(bc, models.EventConfidenceUpdated, map[string]string{
		"score": formatScore(score),
	})

	if err := e.Store.Put(ctx, bc); err != nil {
		return nil, err
	}
	return &ConfidenceUpdate{TrustIntervention: trust, ConversionHooks: hooks}, nil
}

// RecordPageView logs a navigation signal, re-evaluates the trust decision
// with the latest known confidence plus the view tag, and feeds the
// drop-off detector, correlating any detection back to this booking.
func (e *DefaultFlowEngine) RecordPageView(bookingID, path, viewTag string) (*PageViewResult, error) {
	if path == "" {
		return nil, newInvalidInputError("path is required")
	}

	ctx := context.Background()
	bc, err := e.getContext(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	confidence := bc.LatestConfidence()
	state := bc.StateMachine.Current

	appendEvent(bc, models.EventPageView, map[string]string{
		"path":    path,
		"viewTag": viewTag,
	})

	trust := EvaluateTrustTrigger(e.TrustCfg, state, confidence, bc.DetectedHesitationPoints.Values(), viewTag)
	bc.TrustHistory = append(bc.TrustHistory, trust)

	result := &PageViewResult{TrustIntervention: trust}
	if dropOff := e.observeVisit(bc, path, state, confidence); dropOff != nil {
		result.DropOff = dropOff
		if dropOff.Detected {
			bc.RiskFactors.Add("drop_off:" + string(dropOff.Type))
			appendEvent(bc, models.EventDropOffDetected, map[string]string{
				"type":      string(dropOff.Type),
				"riskLevel": string(dropOff.RiskLevel),
			})
			e.Logger.Warn("drop-off detected",
				zap.String("bookingId", bookingID),
				zap.String("sessionId", bc.SessionID),
				zap.String("type", string(dropOff.Type)),
			)
		}
	}

	if err := e.Store.Put(ctx, bc); err != nil {
		return nil, err
	}
	return result, nil
}

// observeVisit forwards the visit to the session detector. The session is
// created lazily when missing so that contexts restored from a durable
// store after a restart keep working.
func (e *DefaultFlowEngine) observeVisit(bc *BookingContext, path string, state models.BookingState, confidence float64) *models.DropOffResult {
	if err := e.Detector.RecordPageVisit(bc.SessionID, path, state, confidence); err != nil {
		e.Detector.StartSession(bc.SessionID, state)
		if err := e.Detector.RecordPageVisit(bc.SessionID, path, state, confidence); err != nil {
			return nil
		}
	}
	dropOff, err := e.Detector.CheckDropOff(bc.SessionID)
	if err != nil {
		return nil
	}
	return &dropOff
}

// CompleteBookingFlow drives the booking to COMPLETED. It is idempotent
// once completed and guarantees exactly one BOOKING_COMPLETED telemetry
// event per booking.
func (e *DefaultFlowEngine) CompleteBookingFlow(bookingID string) error {
	ctx := context.Background()
	bc, err := e.getContext(ctx, bookingID)
	if err != nil {
		return err
	}

	if bc.StateMachine.Current == models.StateCompleted {
		if !bc.hasCompletedEvent() {
			appendEvent(bc, models.EventBookingCompleted, nil)
			return e.Store.Put(ctx, bc)
		}
		return nil
	}

	from := bc.StateMachine.Current
	if err := bc.StateMachine.Transition(models.StateCompleted); err != nil {
		return err
	}
	appendEvent(bc, models.EventStateChanged, map[string]string{
		"from": string(from),
		"to":   string(models.StateCompleted),
	})
	appendEvent(bc, models.EventBookingCompleted, nil)

	if err := e.Store.Put(ctx, bc); err != nil {
		return err
	}
	e.Logger.Info("booking flow completed", zap.String("bookingId", bookingID))
	return nil
}

// GetBookingContext returns the context, or nil when unknown. Callers must
// treat the result as read-only.
func (e *DefaultFlowEngine) GetBookingContext(bookingID string) *BookingContext {
	bc, err := e.Store.Get(context.Background(), bookingID)
	if err != nil {
		return nil
	}
	return bc
}

// GetBookingRiskLevel returns the static risk of the booking's current
// state; ok is false when the booking is unknown.
func (e *DefaultFlowEngine) GetBookingRiskLevel(bookingID string) (models.RiskLevel, bool) {
	bc := e.GetBookingContext(bookingID)
	if bc == nil {
		return "", false
	}
	return bc.StateMachine.RiskLevel(), true
}

// GetBookingTelemetryEvents returns a copy of the booking's telemetry log,
// or nil when the booking is unknown.
func (e *DefaultFlowEngine) GetBookingTelemetryEvents(bookingID string) []models.TelemetryEvent {
	bc := e.GetBookingContext(bookingID)
	if bc == nil {
		return nil
	}
	events := make([]models.TelemetryEvent, len(bc.TelemetryEvents))
	copy(events, bc.TelemetryEvents)
	return events
}

func (e *DefaultFlowEngine) getContext(ctx context.Context, bookingID string) (*BookingContext, error) {
	bc, err := e.Store.Get(ctx, bookingID)
	if err == ErrContextNotFound {
		return nil, newNotFoundError("booking", bookingID)
	}
	if err != nil {
		return nil, err
	}
	return bc, nil
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func appendEvent(bc *BookingContext, eventType models.TelemetryEventType, payload map[string]string) {
	bc.TelemetryEvents = append(bc.TelemetryEvents, models.TelemetryEvent{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
