package nudge_test

import (
	"context"
	"encoding/json"
	"testing"

	"jamestronic/models"
	"jamestronic/services/nudge"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) (*nudge.QueueDispatcher, *asynq.Inspector) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	redisOpt := asynq.RedisClientOpt{Addr: mr.Addr()}
	dispatcher := nudge.NewQueueDispatcher(redisOpt, nil)
	t.Cleanup(func() { dispatcher.Close() })

	inspector := asynq.NewInspector(redisOpt)
	t.Cleanup(func() { inspector.Close() })
	return dispatcher, inspector
}

func pendingTasks(t *testing.T, inspector *asynq.Inspector, queue string) []*asynq.TaskInfo {
	t.Helper()
	tasks, err := inspector.ListPendingTasks(queue)
	require.NoError(t, err)
	return tasks
}

func TestDispatchRoutesHighPriorityToCriticalQueue(t *testing.T) {
	dispatcher, inspector := newTestDispatcher(t)

	err := dispatcher.Dispatch(context.Background(), nudge.Payload{
		BookingID:   "bk-1",
		CustomerID:  "cust-1",
		Priority:    models.PriorityHigh,
		Reason:      "confidence below threshold",
		TriggeredBy: []string{"price"},
	})
	require.NoError(t, err)

	critical := pendingTasks(t, inspector, "critical")
	require.Len(t, critical, 1)
	assert.Equal(t, nudge.TypeNudgeDispatch, critical[0].Type)

	defaults, err := inspector.ListPendingTasks("default")
	if err == nil {
		assert.Empty(t, defaults)
	}
}

func TestDispatchRoutesOtherPrioritiesToDefaultQueue(t *testing.T) {
	dispatcher, inspector := newTestDispatcher(t)

	for _, priority := range []models.Priority{models.PriorityLow, models.PriorityMedium} {
		err := dispatcher.Dispatch(context.Background(), nudge.Payload{
			BookingID:  "bk-2",
			CustomerID: "cust-2",
			Priority:   priority,
			Reason:     "routine reassurance",
		})
		require.NoError(t, err)
	}

	defaults := pendingTasks(t, inspector, "default")
	assert.Len(t, defaults, 2)
}

func TestDispatchPayloadRoundTrip(t *testing.T) {
	dispatcher, inspector := newTestDispatcher(t)

	sent := nudge.Payload{
		BookingID:   "bk-3",
		CustomerID:  "cust-3",
		Priority:    models.PriorityHigh,
		Reason:      "confidence below threshold",
		TriggeredBy: []string{"price", "sla"},
		Hooks: []models.ConversionHookResult{
			{
				ActionType:       models.ActionReassurance,
				Message:          "You will receive an upfront quote",
				TargetHesitation: "price",
			},
		},
	}
	require.NoError(t, dispatcher.Dispatch(context.Background(), sent))

	tasks := pendingTasks(t, inspector, "critical")
	require.Len(t, tasks, 1)

	var got nudge.Payload
	require.NoError(t, json.Unmarshal(tasks[0].Payload, &got))
	assert.Equal(t, sent, got)
}
