package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records-api/internal/middleware"
	"github.com/noah-isme/campus-records-api/internal/models"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
	"github.com/noah-isme/campus-records-api/pkg/response"
)

// principalFromContext returns the authenticated caller or writes a 401.
func principalFromContext(c *gin.Context) (*models.Principal, bool) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return principal, true
}

// bindJSON decodes the request body into dest or writes a 400.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}
