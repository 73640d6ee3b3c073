package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records-api/internal/service"
)

// unmatchedRoute labels requests that hit no registered route so arbitrary
// URLs cannot create new series.
const unmatchedRoute = "unmatched"

// Metrics records the duration and status of every request, labelled by route
// template (e.g. /api/v1/students/:id) rather than the concrete path.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
