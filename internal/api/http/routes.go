package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/exception-service/pkg/metrics"
)

// SetupRoutes configures the operational HTTP routes for the exception service
func SetupRoutes(router *gin.Engine, handlers *Handlers, m *metrics.Metrics, readyCheck func() error) {
	router.Use(TracingMiddleware("exception-service"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "exception-service"})
	})

	router.GET("/ready", func(c *gin.Context) {
		if err := readyCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	router.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sweeps", handlers.TriggerSweep)
		v1.POST("/pick-completions/process", handlers.TriggerCompletionProcessing)
		v1.GET("/scheduler", handlers.SchedulerStatus)
		v1.GET("/orders", handlers.ListOrders)
		v1.GET("/orders/:orderNumber/items/:itemId", handlers.GetOrderItem)
	}
}
