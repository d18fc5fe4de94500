package flow

import (
	"jamestronic/models"

	"go.uber.org/zap"
)

// FlowEngine is the sole public entry point of the booking control &
// conversion subsystem. All operations are synchronous; mutating
// operations report failures as errors (see errors.go) and never panic,
// and a failed operation leaves every context unchanged.
type FlowEngine interface {
	InitializeBookingFlow(bookingID, customerID, sessionID, deviceCategory, deviceBrand string) (models.BookingState, error)
	TransitionBookingState(bookingID string, target models.BookingState) (models.BookingState, error)
	UpdateCustomerConfidence(bookingID string, score float64, hesitationPoints, riskFactors []string) (*ConfidenceUpdate, error)
	RecordPageView(bookingID, path, viewTag string) (*PageViewResult, error)
	CompleteBookingFlow(bookingID string) error

	GetBookingContext(bookingID string) *BookingContext
	GetBookingRiskLevel(bookingID string) (models.RiskLevel, bool)
	GetBookingTelemetryEvents(bookingID string) []models.TelemetryEvent
}

// ConfidenceUpdate carries the decisions made from a confidence report.
type ConfidenceUpdate struct {
	TrustIntervention models.TrustInterventionResult `json:"trustIntervention"`
	ConversionHooks   []models.ConversionHookResult  `json:"conversionHooks"`
}

// PageViewResult carries the decisions made from a page-view signal.
type PageViewResult struct {
	TrustIntervention models.TrustInterventionResult `json:"trustIntervention"`
	DropOff           *models.DropOffResult          `json:"dropOff,omitempty"`
}

// DefaultFlowEngine implements FlowEngine over an injected ContextStore.
type DefaultFlowEngine struct {
	Store    ContextStore
	Detector *DropOffDetector
	TrustCfg TrustConfig
	Logger   *zap.Logger
}

// NewDefaultFlowEngine wires the engine. A nil detector gets the default
// tuning; a nil logger gets a no-op logger.
func NewDefaultFlowEngine(store ContextStore, detector *DropOffDetector, trustCfg TrustConfig, logger *zap.Logger) *DefaultFlowEngine {
	if detector == nil {
		detector = NewDropOffDetector(DefaultDropOffConfig())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultFlowEngine{
		Store:    store,
		Detector: detector,
		TrustCfg: trustCfg,
		Logger:   logger,
	}
}
