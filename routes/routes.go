package routes

import (
	"net/http"
	"time"

	"jamestronic/handlers"
	"jamestronic/middleware"
	"jamestronic/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterFlowRoutes registers all endpoints for the booking flow engine.
func RegisterFlowRoutes(r *gin.Engine, fh *handlers.FlowHandler) {
	api := r.Group("/api/flow")
	{
		// Device metadata is only captured when the flow is created.
		api.POST("", middleware.DeviceDetailsMiddleware(), fh.InitializeFlow)
		api.POST("/:bookingID/transition", fh.TransitionState)
		api.POST("/:bookingID/confidence", fh.UpdateConfidence)
		api.POST("/:bookingID/pageview", fh.RecordPageView)
		api.POST("/:bookingID/complete", fh.CompleteFlow)

		api.GET("/:bookingID", fh.GetContext)
		api.GET("/:bookingID/risk", fh.GetRiskLevel)
		api.GET("/:bookingID/telemetry", fh.GetTelemetry)
	}
}

// RegisterRoutes applies global middleware and mounts every route group.
func RegisterRoutes(r *gin.Engine, fh *handlers.FlowHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Device-Category", "X-Device-Brand"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})

	RegisterFlowRoutes(r, fh)
}
