package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context) ([]dto.StudentResponse, error)
	Get(ctx context.Context, id string) (*dto.StudentResponse, error)
	Create(ctx context.Context, req dto.StudentRequest) (*dto.StudentResponse, error)
	Update(ctx context.Context, id string, req dto.StudentRequest) (*dto.StudentResponse, error)
	Delete(ctx context.Context, id string) error
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students studentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.students.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, students, len(students))
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Create godoc
// @Summary Create student
// @Description Creates the student and a STUDENT account whose username and password are the admission number.
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.StudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req dto.StudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body dto.StudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req dto.StudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Delete godoc
// @Summary Delete student
// @Description Removes the student with its enrollments and disables the account.
// @Tags Students
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
