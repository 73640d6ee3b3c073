package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records-api/internal/models"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
	"github.com/noah-isme/campus-records-api/pkg/response"
)

// Context keys set by Authenticate.
const (
	ContextPrincipalKey = "principal"
	ContextTokenKey     = "bearerToken"
)

// Authenticator resolves a bearer token into the caller it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Principal, error)
}

// Authenticate protects routes by requiring a valid bearer token.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		principal, err := auth.Authenticate(c.Request.Context(), raw)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextPrincipalKey, principal)
		c.Set(ContextTokenKey, raw)
		c.Next()
	}
}

// PrincipalFromContext returns the caller attached by Authenticate.
func PrincipalFromContext(c *gin.Context) (*models.Principal, bool) {
	value, exists := c.Get(ContextPrincipalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*models.Principal)
	return principal, ok && principal != nil
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
