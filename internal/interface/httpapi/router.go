package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"opsplan-service/pkg/logger"
)

// NewRouter builds the gin engine with all plan routes, the health check,
// and the prometheus metrics endpoint.
func NewRouter(handler *PlanHandler, log logger.Logger, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "Healthy")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/plans", handler.CreatePlan)
		v1.GET("/plans", handler.ListPlans)
		v1.GET("/plans/:id", handler.GetPlan)
		v1.PUT("/plans/:id", handler.UpdatePlan)
		v1.DELETE("/plans/:id", handler.DeletePlan)
		v1.POST("/plans/:id/transition", handler.Transition)
		v1.PUT("/plans/:id/nodes/:nodeId/status", handler.SetNodeStatus)
		v1.GET("/board", handler.Board)
		v1.GET("/calendar.ics", handler.Calendar)
	}

	return router
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"durationMs", time.Since(start).Milliseconds())
	}
}
