package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/pkg/response"
)

type lecturerService interface {
	ListActive(ctx context.Context) ([]dto.LecturerResponse, error)
	ListByDepartment(ctx context.Context, department string) ([]dto.LecturerResponse, error)
	Get(ctx context.Context, id string) (*dto.LecturerResponse, error)
	Create(ctx context.Context, req dto.LecturerRequest) (*dto.LecturerResponse, error)
	Update(ctx context.Context, id string, req dto.LecturerRequest) (*dto.LecturerResponse, error)
	Delete(ctx context.Context, id string) error
	ChangePassword(ctx context.Context, id string, req dto.ChangePasswordRequest) error
}

type lecturerCourseLister interface {
	ListByLecturer(ctx context.Context, lecturerID string) ([]dto.CourseResponse, error)
}

// LecturerHandler exposes lecturer endpoints.
type LecturerHandler struct {
	lecturers lecturerService
	courses   lecturerCourseLister
}

// NewLecturerHandler constructs LecturerHandler.
func NewLecturerHandler(lecturers lecturerService, courses lecturerCourseLister) *LecturerHandler {
	return &LecturerHandler{lecturers: lecturers, courses: courses}
}

// List godoc
// @Summary List active lecturers
// @Tags Lecturers
// @Produce json
// @Security BearerAuth
// @Param department query string false "Restrict to a department"
// @Success 200 {object} response.Envelope
// @Router /lecturers [get]
func (h *LecturerHandler) List(c *gin.Context) {
	var (
		lecturers []dto.LecturerResponse
		err       error
	)
	if department, ok := c.GetQuery("department"); ok {
		lecturers, err = h.lecturers.ListByDepartment(c.Request.Context(), strings.TrimSpace(department))
	} else {
		lecturers, err = h.lecturers.ListActive(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, lecturers, len(lecturers))
}

// Get godoc
// @Summary Get lecturer detail
// @Tags Lecturers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecturer ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lecturers/{id} [get]
func (h *LecturerHandler) Get(c *gin.Context) {
	lecturer, err := h.lecturers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lecturer)
}

// Create godoc
// @Summary Create lecturer
// @Description Creates the lecturer and a LECTURER account (username email, password employee number).
// @Tags Lecturers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.LecturerRequest true "Lecturer payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lecturers [post]
func (h *LecturerHandler) Create(c *gin.Context) {
	var req dto.LecturerRequest
	if !bindJSON(c, &req) {
		return
	}
	lecturer, err := h.lecturers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lecturer)
}

// Update godoc
// @Summary Update lecturer
// @Tags Lecturers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecturer ID"
// @Param payload body dto.LecturerRequest true "Lecturer payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lecturers/{id} [put]
func (h *LecturerHandler) Update(c *gin.Context) {
	var req dto.LecturerRequest
	if !bindJSON(c, &req) {
		return
	}
	lecturer, err := h.lecturers.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lecturer)
}

// Delete godoc
// @Summary Disable lecturer
// @Tags Lecturers
// @Security BearerAuth
// @Param id path string true "Lecturer ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /lecturers/{id} [delete]
func (h *LecturerHandler) Delete(c *gin.Context) {
	if err := h.lecturers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ChangePassword godoc
// @Summary Change lecturer password
// @Tags Lecturers
// @Accept json
// @Security BearerAuth
// @Param id path string true "Lecturer ID"
// @Param payload body dto.ChangePasswordRequest true "New password"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lecturers/{id}/password [put]
func (h *LecturerHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.lecturers.ChangePassword(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Courses godoc
// @Summary List courses taught by a lecturer
// @Tags Lecturers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecturer ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lecturers/{id}/courses [get]
func (h *LecturerHandler) Courses(c *gin.Context) {
	courses, err := h.courses.ListByLecturer(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, courses, len(courses))
}
