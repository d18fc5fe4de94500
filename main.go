// File: jamestronic/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jamestronic/config"
	"jamestronic/cron"
	"jamestronic/handlers"
	"jamestronic/middleware"
	"jamestronic/routes"
	"jamestronic/services/flow"
	"jamestronic/services/nudge"
	"jamestronic/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	utils.InitFlowCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	// Booking flow engine over the redis-backed context store.
	storeOpts := []flow.RedisStoreOption{}
	if ttl := config.AppConfig.FlowContextTTLMin; ttl > 0 {
		storeOpts = append(storeOpts, flow.WithTTL(time.Duration(ttl)*time.Minute))
	}
	contextStore := flow.NewRedisContextStore(utils.GetFlowCacheClient(), storeOpts...)

	detector := flow.NewDropOffDetector(flow.DropOffConfig{
		Lookback:      config.AppConfig.FlowVisitLookback,
		ExitRiskPaths: config.ExitRiskPaths(),
	})

	trustCfg := flow.DefaultTrustConfig()
	trustCfg.SensitiveViews = config.SensitiveViews()

	flowEngine := flow.NewDefaultFlowEngine(contextStore, detector, trustCfg, logger)

	// Nudge dispatch queue and its background worker.
	queueOpt := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
	dispatcher := nudge.NewQueueDispatcher(queueOpt, logger)
	defer dispatcher.Close()
	cron.InitNudgeWorker(logger)

	flowHandler := handlers.NewFlowHandler(flowEngine, dispatcher, logger)

	routes.RegisterRoutes(router, flowHandler)
	utils.StartHealthMonitor([]*redis.Client{utils.GetFlowCacheClient()})

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
