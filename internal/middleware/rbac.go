package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records-api/internal/models"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
	"github.com/noah-isme/campus-records-api/pkg/response"
)

// Self grants access when the caller's own profile id equals the :id path parameter.
const Self = "SELF"

// RBAC enforces role-based access control for routes. Self may be passed
// alongside role names.
func RBAC(allowed ...string) gin.HandlerFunc {
	allowSelf := false
	allowedRoles := make(map[models.UserRole]struct{}, len(allowed))
	for _, a := range allowed {
		if a == Self {
			allowSelf = true
			continue
		}
		allowedRoles[models.UserRole(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowedRoles[principal.Role]; ok {
			c.Next()
			return
		}
		if allowSelf && principal.Owns(c.Param("id")) {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
