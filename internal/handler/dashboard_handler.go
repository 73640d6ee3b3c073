package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/middleware"
	"github.com/noah-isme/campus-records-api/pkg/response"
)

type dashboardService interface {
	Stats(ctx context.Context) (*dto.DashboardStatsResponse, bool, error)
}

// DashboardHandler exposes the admin dashboard.
type DashboardHandler struct {
	dashboard dashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard dashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats godoc
// @Summary Admin dashboard counts
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, hit, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, stats, middleware.CacheMeta(c))
}
