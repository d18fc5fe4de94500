// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"jamestronic/config"

	"github.com/go-redis/redis/v8"
)

// FlowCacheClient is the dedicated client for booking-flow context storage.
var FlowCacheClient *redis.Client

// InitFlowCache initializes the Redis client backing the flow context store.
func InitFlowCache() {
	FlowCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisFlowDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := FlowCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Flow Cache): %v", err)
	}
}

// GetFlowCacheClient returns the flow cache client.
func GetFlowCacheClient() *redis.Client {
	if FlowCacheClient == nil {
		InitFlowCache()
	}
	return FlowCacheClient
}
