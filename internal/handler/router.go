package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/angeloszaimis/keepalive/internal/discovery"
	"github.com/angeloszaimis/keepalive/internal/metrics"
)

// NewRouter builds the engine. The learner runs before every route so any
// request can teach the service its public URL. domains feeds breaker state
// into /stats and may be nil.
func NewRouter(
	logger *slog.Logger,
	h *Handler,
	learner *discovery.Learner,
	collector *metrics.Collector,
	domains func() map[string]metrics.DomainStatus,
) *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(statusTemplate)

	router.Use(gin.Recovery(), requestLogger(logger))
	if learner != nil {
		router.Use(learner.Middleware())
	}

	router.GET("/", h.Status)
	router.GET("/health", h.Health)
	router.HEAD("/health", h.Health)
	router.GET("/whoami", h.WhoAmI)
	router.POST("/bot-status", h.BotStatus)

	if collector != nil {
		router.GET("/stats", gin.WrapF(collector.Handler(domains)))
		router.GET("/metrics", gin.WrapH(collector.PrometheusHandler()))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
	})

	return router
}
