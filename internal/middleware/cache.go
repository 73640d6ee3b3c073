package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

const cacheHitKey = "cache_hit"

// CacheInvalidator drops cached read models.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// SetCacheHit records cache hit information for the current response.
func SetCacheHit(c *gin.Context, hit bool) {
	c.Set(cacheHitKey, hit)
}

// CacheMeta returns response metadata describing cache usage, or nil when the
// handler did not consult a cache.
func CacheMeta(c *gin.Context) map[string]interface{} {
	hit, exists := c.Get(cacheHitKey)
	if !exists {
		return nil
	}
	return map[string]interface{}{"cacheHit": hit}
}

// InvalidateOnWrite drops cached read models after any successful mutating request.
func InvalidateOnWrite(invalidator CacheInvalidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if invalidator == nil {
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		if c.Writer.Status() < 400 {
			invalidator.Invalidate(c.Request.Context())
		}
	}
}
