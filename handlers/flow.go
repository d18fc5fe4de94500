package handlers

import (
	"net/http"

	"jamestronic/models"
	"jamestronic/services/flow"
	"jamestronic/services/nudge"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FlowHandler exposes the booking flow engine over HTTP and forwards
// actionable trust interventions to the nudge dispatcher.
type FlowHandler struct {
	Engine     flow.FlowEngine
	Dispatcher nudge.Dispatcher
	Logger     *zap.Logger
}

func NewFlowHandler(engine flow.FlowEngine, dispatcher nudge.Dispatcher, logger *zap.Logger) *FlowHandler {
	return &FlowHandler{Engine: engine, Dispatcher: dispatcher, Logger: logger}
}

// InitializeFlow creates the conversion-tracking context for a booking.
// A fresh session id is minted when the client does not supply one.
func (h *FlowHandler) InitializeFlow(c *gin.Context) {
	var input struct {
		BookingID  string `json:"bookingId" binding:"required"`
		CustomerID string `json:"customerId" binding:"required"`
		SessionID  string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.SessionID == "" {
		input.SessionID = uuid.New().String()
	}

	newState, err := h.Engine.InitializeBookingFlow(
		input.BookingID,
		input.CustomerID,
		input.SessionID,
		c.GetString("deviceCategory"),
		c.GetString("deviceBrand"),
	)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookingId": input.BookingID,
		"sessionId": input.SessionID,
		"newState":  newState,
	})
}

// TransitionState advances a booking through its lifecycle.
func (h *FlowHandler) TransitionState(c *gin.Context) {
	bookingID := c.Param("bookingID")
	var input struct {
		Target models.BookingState `json:"target" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	newState, err := h.Engine.TransitionBookingState(bookingID, input.Target)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookingId": bookingID, "newState": newState})
}

// UpdateConfidence records a confidence report and returns the trust and
// conversion decisions. Actionable interventions are queued for delivery.
func (h *FlowHandler) UpdateConfidence(c *gin.Context) {
	bookingID := c.Param("bookingID")
	var input struct {
		Score            *float64 `json:"score" binding:"required"`
		HesitationPoints []string `json:"hesitationPoints"`
		RiskFactors      []string `json:"riskFactors"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	update, err := h.Engine.UpdateCustomerConfidence(bookingID, *input.Score, input.HesitationPoints, input.RiskFactors)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	if update.TrustIntervention.ShouldInject {
		h.dispatchNudge(c, bookingID, update.TrustIntervention, update.ConversionHooks)
	}

	c.JSON(http.StatusOK, update)
}

// RecordPageView logs navigation telemetry and returns any re-evaluated
// trust decision or drop-off detection.
func (h *FlowHandler) RecordPageView(c *gin.Context) {
	bookingID := c.Param("bookingID")
	var input struct {
		Path    string `json:"path" binding:"required"`
		ViewTag string `json:"viewTag"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	result, err := h.Engine.RecordPageView(bookingID, input.Path, input.ViewTag)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	if result.TrustIntervention.ShouldInject {
		h.dispatchNudge(c, bookingID, result.TrustIntervention, nil)
	}

	c.JSON(http.StatusOK, result)
}

// CompleteFlow drives the booking to COMPLETED.
func (h *FlowHandler) CompleteFlow(c *gin.Context) {
	bookingID := c.Param("bookingID")
	if err := h.Engine.CompleteBookingFlow(bookingID); err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": bookingID, "newState": models.StateCompleted})
}

// GetContext returns the full booking context read model.
func (h *FlowHandler) GetContext(c *gin.Context) {
	bookingID := c.Param("bookingID")
	bc := h.Engine.GetBookingContext(bookingID)
	if bc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, bc)
}

// GetRiskLevel returns the booking's current risk classification.
func (h *FlowHandler) GetRiskLevel(c *gin.Context) {
	bookingID := c.Param("bookingID")
	risk, ok := h.Engine.GetBookingRiskLevel(bookingID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": bookingID, "riskLevel": risk})
}

// GetTelemetry returns the booking's telemetry event log.
func (h *FlowHandler) GetTelemetry(c *gin.Context) {
	bookingID := c.Param("bookingID")
	events := h.Engine.GetBookingTelemetryEvents(bookingID)
	if events == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": bookingID, "events": events})
}

func (h *FlowHandler) dispatchNudge(c *gin.Context, bookingID string, trust models.TrustInterventionResult, hooks []models.ConversionHookResult) {
	if h.Dispatcher == nil {
		return
	}
	bc := h.Engine.GetBookingContext(bookingID)
	if bc == nil {
		return
	}
	payload := nudge.Payload{
		BookingID:   bookingID,
		CustomerID:  bc.CustomerID,
		Priority:    trust.Priority,
		Reason:      trust.Reason,
		TriggeredBy: trust.TriggeredBy,
		Hooks:       hooks,
	}
	if err := h.Dispatcher.Dispatch(c.Request.Context(), payload); err != nil {
		// Delivery is best effort from the request path; the decision
		// itself is already recorded on the context.
		h.Logger.Error("failed to dispatch nudge",
			zap.String("bookingId", bookingID),
			zap.Error(err),
		)
	}
}

func respondFlowError(c *gin.Context, err error) {
	switch flow.ErrorCode(err) {
	case flow.CodeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case flow.CodeInvalidTransition:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case flow.CodeInvalidInput:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
