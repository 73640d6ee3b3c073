package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	allowHeaders  = "Authorization, Content-Type, X-Request-ID"
	allowMethods  = "GET, POST, PUT, DELETE, OPTIONS"
	exposeHeaders = "Content-Disposition, X-Request-ID"
)

// New returns a CORS middleware for the given origins. An empty list allows any
// origin without credentials.
func New(allowedOrigins []string) gin.HandlerFunc {
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		originSet[strings.TrimRight(origin, "/")] = struct{}{}
	}
	allowAll := len(originSet) == 0

	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Add("Vary", "Origin")

		origin := strings.TrimRight(c.GetHeader("Origin"), "/")
		switch {
		case allowAll:
			header.Set("Access-Control-Allow-Origin", "*")
		case origin != "":
			if _, ok := originSet[origin]; ok {
				header.Set("Access-Control-Allow-Origin", c.GetHeader("Origin"))
				header.Set("Access-Control-Allow-Credentials", "true")
			}
		}

		header.Set("Access-Control-Allow-Headers", allowHeaders)
		header.Set("Access-Control-Allow-Methods", allowMethods)
		header.Set("Access-Control-Expose-Headers", exposeHeaders)
		header.Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
