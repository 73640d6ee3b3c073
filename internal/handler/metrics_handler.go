package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records-api/internal/service"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
	"github.com/noah-isme/campus-records-api/pkg/response"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	db      Pinger
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, db Pinger) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, db: db}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Snapshot godoc
// @Summary Process metrics snapshot
// @Tags Metrics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/metrics [get]
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot())
}

// Health responds with a generic OK payload for liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the database answers a ping.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			response.Error(c, appErrors.Wrap(err, "NOT_READY", http.StatusServiceUnavailable, "database unavailable"))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
