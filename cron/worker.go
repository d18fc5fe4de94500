package cron

import (
	"context"
	"encoding/json"
	"time"

	"jamestronic/config"
	"jamestronic/services/nudge"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitNudgeWorker runs the async nudge worker in the background. Consumed
// tasks are logged as structured delivery intents; the actual outbound
// channel (WhatsApp/SMS/push) is wired by the deployment.
func InitNudgeWorker(logger *zap.Logger) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(nudge.TypeNudgeDispatch, handleNudgeTask(logger))

	go func() {
		logger.Info("starting nudge worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Error("nudge worker failed to start",
					zap.Int("attempt", attempts),
					zap.Int("maxAttempts", maxAttempts),
					zap.Error(err),
				)
				if attempts == maxAttempts {
					logger.Fatal("nudge worker: max retry attempts reached")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleNudgeTask(logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p nudge.Payload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("nudge worker: invalid payload", zap.Error(err))
			return err
		}

		logger.Info("delivering nudge",
			zap.String("bookingId", p.BookingID),
			zap.String("customerId", p.CustomerID),
			zap.String("priority", string(p.Priority)),
			zap.String("reason", p.Reason),
			zap.Strings("triggeredBy", p.TriggeredBy),
			zap.Int("hooks", len(p.Hooks)),
		)
		return nil
	}
}
