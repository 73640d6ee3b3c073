package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/pkg/response"
)

type courseService interface {
	List(ctx context.Context) ([]dto.CourseResponse, error)
	ListByLecturer(ctx context.Context, lecturerID string) ([]dto.CourseResponse, error)
	Get(ctx context.Context, id string) (*dto.CourseResponse, error)
	Create(ctx context.Context, req dto.CourseRequest) (*dto.CourseResponse, error)
	Update(ctx context.Context, id string, req dto.CourseRequest) (*dto.CourseResponse, error)
	Delete(ctx context.Context, id string) error
	AssignLecturer(ctx context.Context, courseID, lecturerID string) (*dto.CourseResponse, error)
}

// CourseHandler exposes the course catalogue.
type CourseHandler struct {
	courses courseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, courses, len(courses))
}

// ListByLecturer godoc
// @Summary List courses of a lecturer
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param lecturerId path string true "Lecturer ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/lecturer/{lecturerId} [get]
func (h *CourseHandler) ListByLecturer(c *gin.Context) {
	courses, err := h.courses.ListByLecturer(c.Request.Context(), c.Param("lecturerId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, courses, len(courses))
}

// Get godoc
// @Summary Get course detail
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param payload body dto.CourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req dto.CourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courses.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Delete godoc
// @Summary Delete course
// @Description Removes the course and all of its enrollments.
// @Tags Courses
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignLecturer godoc
// @Summary Assign a lecturer to a course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param lecturerId path string true "Lecturer ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/assign-lecturer/{lecturerId} [put]
func (h *CourseHandler) AssignLecturer(c *gin.Context) {
	course, err := h.courses.AssignLecturer(c.Request.Context(), c.Param("id"), c.Param("lecturerId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}
