package flow_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"jamestronic/models"
	"jamestronic/services/flow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *flow.DefaultFlowEngine {
	return flow.NewDefaultFlowEngine(
		flow.NewInMemoryContextStore(),
		flow.NewDropOffDetector(flow.DefaultDropOffConfig()),
		flow.DefaultTrustConfig(),
		nil,
	)
}

func initBooking(t *testing.T, e *flow.DefaultFlowEngine, bookingID string) {
	t.Helper()
	state, err := e.InitializeBookingFlow(bookingID, "cust-1", "sess-"+bookingID, "smartphone", "samsung")
	require.NoError(t, err)
	require.Equal(t, models.StateInitiated, state)
}

func countEvents(events []models.TelemetryEvent, eventType models.TelemetryEventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == eventType {
			n++
		}
	}
	return n
}

func TestInitializeBookingFlow(t *testing.T) {
	e := newTestEngine()
	initBooking(t, e, "bk-1")

	bc := e.GetBookingContext("bk-1")
	require.NotNil(t, bc)
	assert.Equal(t, "bk-1", bc.BookingID)
	assert.Equal(t, "cust-1", bc.CustomerID)
	assert.Equal(t, "smartphone", bc.DeviceCategory)
	assert.Equal(t, "samsung", bc.DeviceBrand)
	assert.Equal(t, models.StateInitiated, bc.StateMachine.Current)
	assert.Empty(t, bc.ConfidenceHistory)
	assert.Zero(t, bc.DetectedHesitationPoints.Len())
	assert.Empty(t, bc.TrustHistory)
}

func TestInitializeMissingIdentifiers(t *testing.T) {
	e := newTestEngine()

	_, err := e.InitializeBookingFlow("", "cust-1", "sess-1", "", "")
	assert.Equal(t, flow.CodeInvalidInput, flow.ErrorCode(err))

	_, err = e.InitializeBookingFlow("bk-1", "", "sess-1", "", "")
	assert.Equal(t, flow.CodeInvalidInput, flow.ErrorCode(err))
}

func TestReinitializeIsRejected(t *testing.T) {
	e := newTestEngine()
	initBooking(t, e, "bk-1")

	_, err := e.UpdateCustomerConfidence("bk-1", 35, []string{"price"}, nil)
	require.NoError(t, err)

	_, err = e.InitializeBookingFlow("bk-1", "cust-2", "sess-other", "tablet", "apple")
	assert.Equal(t, flow.CodeInvalidInput, flow.ErrorCode(err))

	// The original context survives untouched.
	bc := e.GetBookingContext("bk-1")
	require.NotNil(t, bc)
	assert.Equal(t, "cust-1", bc.CustomerID)
	assert.True(t, bc.DetectedHesitationPoints.Has("price"))
}

func TestOperationsOnUnknownBooking(t *testing.T) {
	e := newTestEngine()

	_, err := e.TransitionBookingState("ghost", models.StateValidating)
	assert.Equal(t, flow.CodeNotFound, flow.ErrorCode(err))

	_, err = e.UpdateCustomerConfidence("ghost", 50, nil, nil)
	assert.Equal(t, flow.CodeNotFound, flow.ErrorCode(err))

	_, err = e.RecordPageView("ghost", "/booking/summary", "")
	assert.Equal(t, flow.CodeNotFound, flow.ErrorCode(err))

	err = e.CompleteBookingFlow("ghost")
	assert.Equal(t, flow.CodeNotFound, flow.ErrorCode(err))

	assert.Nil(t, e.GetBookingContext("ghost"))
	_, ok := e.GetBookingRiskLevel("ghost")
	assert.False(t, ok)
	assert.Nil(t, e.GetBookingTelemetryEvents("ghost"))
}

func TestTransitionRecordsTelemetry(t *testing.T) {
	e := newTestEngine()
	initBooking(t, e, "bk-1")

	newState, err := e.TransitionBookingState("bk-1", models.StateValidating)
	require.NoError(t, err)
	assert.Equal(t, models.StateValidating, newState)

	bc := e.GetBookingContext("bk-1")
	require.Len(t, bc.StateMachine.History, 2)

	events := e.GetBookingTelemetryEvents("bk-1")
	require.Equal(t, 1, countEvents(events, models.EventStateChanged))
	assert.Equal(t, "INITIATED", events[0].Payload["from"])
	assert.Equal(t, "VALIDATING", events[0].Payload["to"])
}

func TestInvalidTransitionLeavesContextUnchanged(t *testing.T) {
	e := newTestEngine()
	initBooking(t, e, "bk-1")

	_, err := e.TransitionBookingState("bk-1", models.StateConfirmed)
	assert.Equal(t, flow.CodeInvalidTransition, flow.ErrorCode(err))

	bc := e.GetBookingContext("bk-1")
	assert.Equal(t, models.StateInitiated, bc.StateMachine.Current)
	assert.Len(t, bc.StateMachine.History, 1)
	assert.Empty(t, e.GetBookingTelemetryEvents("bk-1"))
}

func TestBookingRiskLevelFollowsState(t *testing.T) {
	e := newTestEngine()
	initBooking(t, e, "bk-1")

	risk, ok := e.GetBookingRiskLevel("bk-1")
	require.True(t, ok)
	assert.Equal(t, models.RiskLow, risk)

	_, err := e.TransitionBookingState("bk-1", models.StateValidating)
	require.NoError(t, err)
	_, err = e.TransitionBookingState("bk-1", models.StateTechnicianMatch)
	require.NoError(t, err)

	risk, ok = e.GetBookingRiskLevel("bk-1")
	require.True(t, ok)
	assert.Equal(t, models.RiskHigh, risk)
}

func TestUpdateConfidenceValidatesScore(t *testing.T) {
	e := newTestEngine()
	initBooking(t, e, "bk-1")

	for _, score := range []float64{-1, 101, 250} {
		_, err := e.UpdateCustomerConfidence("bk-1", score, []string{"price"}, nil)
		assert.Equal(t, flow.CodeInvalidInput, flow.ErrorCode(err))
	}

	// No partial mutation on failure.
	bc := e.GetBookingContext("bk-1")
	assert.Empty(t, bc.ConfidenceHistory)
	assert.Zero(t, bc.DetectedHesitationPoints.Len())
	assert.Empty(t, bc.TrustHistory)
}

func TestLowConfidenceTriggersHighPriorityIntervention(t *testing.T) {
	e := newTestEngine()
	initBooking(t, e, "bk-1")

	update, err := e.UpdateCustomerConfidence("bk-1", 35, []string{"price", "sla"}, []string{"first-time-customer"})
	require.NoError(t, err)

	assert.True(t, update.TrustIntervention.ShouldInject)
	assert.Equal(t, models.PriorityHigh, update.TrustIntervention.Priority)
	assert.Equal(t, []string{"price", "sla"}, update.TrustIntervention.TriggeredBy)
}

func TestConversionHookCorrelation(t *testing.T) {
	e := newTestEngine()
	initBooking(t, e, "bk-1")

	update, err := e.UpdateCustomerConfidence("bk-1", 45, []string{"price"}, nil)
	require.NoError(t, err)

	require.NotEmpty(t, update.ConversionHooks)
	assert.Equal(t, models.ActionReassurance, update.ConversionHooks[0].ActionType)
	assert.Equal(t, "price", update.ConversionHooks[0].TargetHesitation)
	assert.True(t, strings.Contains(strings.ToLower(update.ConversionHooks[0].Message), "price"))
}

func TestHesitationSetsAccumulateAcrossCalls(t *testing.T) {
	e := newTestEngine()
	initBooking(t, e, "bk-1")

	_, err := e.UpdateCustomerConfidence("bk-1", 55, []string{"price"}, []string{"rf-1"})
	require.NoError(t, err)

	// The second call carries only "sla", but the decision must see the
	// full cumulative set.
	update, err := e.UpdateCustomerConfidence("bk-1", 45, []string{"sla"}, []string{"rf-2"})
	require.NoError(t, err)

	require.Len(t, update.ConversionHooks, 2)
	assert.Equal(t, "price", update.ConversionHooks[0].TargetHesitation)
	assert.Equal(t, "sla", update.ConversionHooks[1].TargetHesitation)

	bc := e.GetBookingContext("bk-1")
	assert.Equal(t, []string{"price", "sla"}, bc.DetectedHesitationPoints.Values())
	assert.Equal(t, []string{"rf-1", "rf-2"}, bc.RiskFactors.Values())
	assert.Len(t, bc.ConfidenceHistory, 2)
	assert.Equal(t, 45.0, bc.ConfidenceHistory[1].Score)
}

func TestTrustHistoryLogsEveryDecision(t *testing.T) {
	e := newTestEngine()
	initBooking(t, e, "bk-1")

	// One firing decision and one that recommends no action.
	_, err := e.UpdateCustomerConfidence("bk-1", 35, []string{"price"}, nil)
	require.NoError(t, err)
	_, err = e.UpdateCustomerConfidence("bk-1", 90, nil, nil)
	require.NoError(t, err)

	bc := e.GetBookingContext("bk-1")
	require.Len(t, bc.TrustHistory, 2)
	assert.True(t, bc.TrustHistory[0].ShouldInject)
	assert.False(t, bc.TrustHistory[1].ShouldInject)
}

func TestPageViewReevaluatesTrust(t *testing.T) {
	e := newTestEngine()
	initBooking(t, e, "bk-1")

	// Healthy confidence, ordinary page: nothing fires.
	result, err := e.RecordPageView("bk-1", "/booking/summary", "order-summary")
	require.NoError(t, err)
	assert.False(t, result.TrustIntervention.ShouldInject)

	// A sensitive view qualifies on its own, without a fresh score.
	result, err = e.RecordPageView("bk-1", "/booking/technician", "technician-assignment")
	require.NoError(t, err)
	assert.True(t, result.TrustIntervention.ShouldInject)
	assert.Contains(t, result.TrustIntervention.Reason, "technician-assignment")

	events := e.GetBookingTelemetryEvents("bk-1")
	assert.Equal(t, 2, countEvents(events, models.EventPageView))
}

func TestPageViewUsesLatestKnownConfidence(t *testing.T) {
	e := newTestEngine()
	initBooking(t, e, "bk-1")

	_, err := e.UpdateCustomerConfidence("bk-1", 35, nil, nil)
	require.NoError(t, err)

	result, err := e.RecordPageView("bk-1", "/booking/summary", "")
	require.NoError(t, err)
	assert.True(t, result.TrustIntervention.ShouldInject)
	assert.Equal(t, models.PriorityHigh, result.TrustIntervention.Priority)
}

func TestPageViewsFeedDropOffDetection(t *testing.T) {
	e := newTestEngine()
	initBooking(t, e, "bk-1")

	var result *flow.PageViewResult
	var err error
	for i := 0; i < 3; i++ {
		result, err = e.RecordPageView("bk-1", "/booking/cancel", "cancel-screen")
		require.NoError(t, err)
	}

	require.NotNil(t, result.DropOff)
	assert.True(t, result.DropOff.Detected)
	assert.Equal(t, models.DropOffBounceAttempt, result.DropOff.Type)
	assert.Equal(t, models.RiskMedium, result.DropOff.RiskLevel)

	bc := e.GetBookingContext("bk-1")
	assert.True(t, bc.RiskFactors.Has("drop_off:bounce_attempt"))
	assert.Equal(t, 1, countEvents(bc.TelemetryEvents, models.EventDropOffDetected))
}

func TestFullLifecycle(t *testing.T) {
	e := newTestEngine()
	initBooking(t, e, "bk-1")

	steps := []models.BookingState{
		models.StateValidating,
		models.StateTechnicianMatch,
		models.StateAssigned,
		models.StateAccepted,
		models.StateConfirmed,
		models.StateEscrowPending,
	}
	for _, target := range steps {
		_, err := e.TransitionBookingState("bk-1", target)
		require.NoError(t, err)
	}

	require.NoError(t, e.CompleteBookingFlow("bk-1"))

	bc := e.GetBookingContext("bk-1")
	assert.Equal(t, models.StateCompleted, bc.StateMachine.Current)
	assert.Equal(t, 1, countEvents(bc.TelemetryEvents, models.EventBookingCompleted))

	// Completion is idempotent and never duplicates the completed event.
	require.NoError(t, e.CompleteBookingFlow("bk-1"))
	bc = e.GetBookingContext("bk-1")
	assert.Equal(t, 1, countEvents(bc.TelemetryEvents, models.EventBookingCompleted))
}

func TestCompleteRejectedWhenAdjacencyForbids(t *testing.T) {
	e := newTestEngine()
	initBooking(t, e, "bk-1")

	err := e.CompleteBookingFlow("bk-1")
	assert.Equal(t, flow.CodeInvalidTransition, flow.ErrorCode(err))

	bc := e.GetBookingContext("bk-1")
	assert.Equal(t, models.StateInitiated, bc.StateMachine.Current)
	assert.Zero(t, countEvents(bc.TelemetryEvents, models.EventBookingCompleted))
}

func TestCompleteAfterTransitionToCompletedStaysSingleEvent(t *testing.T) {
	e := newTestEngine()
	initBooking(t, e, "bk-1")

	for _, target := range models.HappyPath[1:] {
		_, err := e.TransitionBookingState("bk-1", target)
		require.NoError(t, err)
	}
	// The transition path already emitted BOOKING_COMPLETED.
	require.NoError(t, e.CompleteBookingFlow("bk-1"))

	events := e.GetBookingTelemetryEvents("bk-1")
	assert.Equal(t, 1, countEvents(events, models.EventBookingCompleted))
}

func TestContextIsolationAcrossBookings(t *testing.T) {
	e := newTestEngine()
	const n = 20

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bookingID := fmt.Sprintf("bk-%d", i)
			_, err := e.InitializeBookingFlow(bookingID, fmt.Sprintf("cust-%d", i), fmt.Sprintf("sess-%d", i), "smartphone", "apple")
			assert.NoError(t, err)
			_, err = e.UpdateCustomerConfidence(bookingID, float64(i), []string{fmt.Sprintf("tag-%d", i)}, nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		bc := e.GetBookingContext(fmt.Sprintf("bk-%d", i))
		require.NotNil(t, bc)
		require.Len(t, bc.ConfidenceHistory, 1)
		assert.Equal(t, float64(i), bc.ConfidenceHistory[0].Score)
		assert.Equal(t, []string{fmt.Sprintf("tag-%d", i)}, bc.DetectedHesitationPoints.Values())
	}
}
