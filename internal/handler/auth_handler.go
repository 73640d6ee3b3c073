package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/middleware"
	"github.com/noah-isme/campus-records-api/internal/models"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
	"github.com/noah-isme/campus-records-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req dto.StudentRequest) (*dto.StudentResponse, error)
	Me(ctx context.Context, principal models.Principal) (*models.UserDetails, error)
	Logout(ctx context.Context, principal models.Principal, raw string, ip, userAgent string) error
}

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth authService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth authService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// @Summary Login
// @Description Authenticate with username and password and receive a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.Request.UserAgent()

	res, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Register godoc
// @Summary Register a student
// @Description Public self-registration creating a student and its STUDENT account
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body dto.StudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.StudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Me godoc
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	details, err := h.auth.Me(c.Request.Context(), *principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details)
}

// Logout godoc
// @Summary Logout
// @Description Revokes the presented token until it expires
// @Tags Auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	if err := h.auth.Logout(c.Request.Context(), *principal, c.GetString(middleware.ContextTokenKey), c.ClientIP(), c.Request.UserAgent()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
