package flow_test

import (
	"testing"

	"jamestronic/models"
	"jamestronic/services/flow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateMachineStartsInitiated(t *testing.T) {
	m := flow.NewStateMachine()

	assert.Equal(t, models.StateInitiated, m.Current)
	require.Len(t, m.History, 1)
	assert.Equal(t, models.StateInitiated, m.History[0].State)
	assert.False(t, m.History[0].EnteredAt.IsZero())
}

func TestStateMachineHappyPath(t *testing.T) {
	m := flow.NewStateMachine()

	for _, target := range models.HappyPath[1:] {
		require.NoError(t, m.Transition(target), "transition to %s", target)
		assert.Equal(t, target, m.Current)
	}

	assert.Equal(t, models.StateCompleted, m.Current)
	require.Len(t, m.History, len(models.HappyPath))
	// The last history entry always mirrors the current state.
	assert.Equal(t, m.Current, m.History[len(m.History)-1].State)
}

func TestStateMachineRejectsSkippingStates(t *testing.T) {
	cases := []struct {
		name   string
		target models.BookingState
	}{
		{"skip to technician match", models.StateTechnicianMatch},
		{"skip to confirmed", models.StateConfirmed},
		{"skip straight to completed", models.StateCompleted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := flow.NewStateMachine()
			err := m.Transition(tc.target)

			require.Error(t, err)
			assert.Equal(t, flow.CodeInvalidTransition, flow.ErrorCode(err))
			assert.Equal(t, models.StateInitiated, m.Current)
			assert.Len(t, m.History, 1)
		})
	}
}

func TestStateMachineCancelFromAnyNonTerminal(t *testing.T) {
	for i, from := range models.HappyPath[:len(models.HappyPath)-1] {
		m := flow.NewStateMachine()
		for _, target := range models.HappyPath[1 : i+1] {
			require.NoError(t, m.Transition(target))
		}
		require.Equal(t, from, m.Current)

		require.NoError(t, m.Transition(models.StateCancelled), "cancel from %s", from)
		assert.Equal(t, models.StateCancelled, m.Current)
	}
}

func TestStateMachineTerminalStatesHaveNoExit(t *testing.T) {
	cancelled := flow.NewStateMachine()
	require.NoError(t, cancelled.Transition(models.StateCancelled))
	err := cancelled.Transition(models.StateValidating)
	assert.Equal(t, flow.CodeInvalidTransition, flow.ErrorCode(err))
	assert.Equal(t, models.StateCancelled, cancelled.Current)

	completed := flow.NewStateMachine()
	for _, target := range models.HappyPath[1:] {
		require.NoError(t, completed.Transition(target))
	}
	err = completed.Transition(models.StateCancelled)
	assert.Equal(t, flow.CodeInvalidTransition, flow.ErrorCode(err))
	assert.Equal(t, models.StateCompleted, completed.Current)
}

func TestRiskLevelMapping(t *testing.T) {
	cases := map[models.BookingState]models.RiskLevel{
		models.StateInitiated:       models.RiskLow,
		models.StateValidating:      models.RiskLow,
		models.StateTechnicianMatch: models.RiskHigh,
		models.StateAssigned:        models.RiskMedium,
		models.StateAccepted:        models.RiskMedium,
		models.StateConfirmed:       models.RiskLow,
		models.StateEscrowPending:   models.RiskLow,
		models.StateCompleted:       models.RiskLow,
	}

	for state, want := range cases {
		assert.Equal(t, want, models.RiskForState(state), "risk for %s", state)
	}
}
