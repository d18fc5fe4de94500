package nudge

import (
	"context"
	"encoding/json"
	"fmt"

	"jamestronic/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeNudgeDispatch is the asynq task type consumed by the nudge worker.
const TypeNudgeDispatch = "nudge:dispatch"

// QueueDispatcher enqueues nudges onto the redis-backed task queue so
// delivery happens off the request path.
type QueueDispatcher struct {
	client *asynq.Client
	logger *zap.Logger
}

// NewQueueDispatcher builds a dispatcher over the given redis queue.
func NewQueueDispatcher(redisOpt asynq.RedisClientOpt, logger *zap.Logger) *QueueDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueDispatcher{
		client: asynq.NewClient(redisOpt),
		logger: logger,
	}
}

// Dispatch enqueues the nudge. High-priority nudges go to the critical
// queue so they are delivered ahead of routine reassurance.
func (d *QueueDispatcher) Dispatch(ctx context.Context, p Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal nudge payload: %w", err)
	}

	queue := "default"
	if p.Priority == models.PriorityHigh {
		queue = "critical"
	}

	task := asynq.NewTask(TypeNudgeDispatch, data)
	info, err := d.client.EnqueueContext(ctx, task, asynq.Queue(queue))
	if err != nil {
		return fmt.Errorf("failed to enqueue nudge for booking %s: %w", p.BookingID, err)
	}

	d.logger.Debug("nudge enqueued",
		zap.String("bookingId", p.BookingID),
		zap.String("queue", info.Queue),
		zap.String("taskId", info.ID),
	)
	return nil
}

// Close releases the underlying queue client.
func (d *QueueDispatcher) Close() error {
	return d.client.Close()
}
