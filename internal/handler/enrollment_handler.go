package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records-api/internal/dto"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
	"github.com/noah-isme/campus-records-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, studentID, courseID string) (*dto.EnrollmentResponse, error)
	ListForStudent(ctx context.Context, studentID string) ([]dto.EnrollmentResponse, error)
	ListGradedForStudent(ctx context.Context, studentID string) ([]dto.EnrollmentResponse, error)
	ListForCourse(ctx context.Context, courseID string) ([]dto.EnrollmentResponse, error)
	ListForLecturerCourse(ctx context.Context, lecturerID, courseID string) ([]dto.EnrollmentResponse, error)
	DropCourse(ctx context.Context, studentID, enrollmentID string) error
	AssignGrade(ctx context.Context, enrollmentID, grade string) (*dto.EnrollmentResponse, error)
	AssignGradeAsLecturer(ctx context.Context, lecturerID, enrollmentID, grade string) (*dto.EnrollmentResponse, error)
	RemoveEnrollment(ctx context.Context, enrollmentID string) error
}

// EnrollmentHandler exposes enrollment and grading endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// ListForStudent godoc
// @Summary List a student's enrollments
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/enrollments [get]
func (h *EnrollmentHandler) ListForStudent(c *gin.Context) {
	items, err := h.enrollments.ListForStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, len(items))
}

// Grades godoc
// @Summary List a student's graded enrollments
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/grades [get]
func (h *EnrollmentHandler) Grades(c *gin.Context) {
	items, err := h.enrollments.ListGradedForStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, len(items))
}

// Enroll godoc
// @Summary Enroll a student in a course
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param courseId query string true "Course ID"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id}/enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	courseID := strings.TrimSpace(c.Query("courseId"))
	if courseID == "" {
		response.Error(c, appErrors.WithDetails(appErrors.ErrValidation, map[string]string{"courseId": "is required"}))
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), c.Param("id"), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Drop godoc
// @Summary Drop one of the student's enrollments
// @Tags Enrollments
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param enrollmentId path string true "Enrollment ID"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/enrollments/{enrollmentId} [delete]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	if err := h.enrollments.DropCourse(c.Request.Context(), c.Param("id"), c.Param("enrollmentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListForCourse godoc
// @Summary List enrollments of a course
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/enrollments [get]
func (h *EnrollmentHandler) ListForCourse(c *gin.Context) {
	items, err := h.enrollments.ListForCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, len(items))
}

// LecturerCourseEnrollments godoc
// @Summary List enrollments of a course taught by the lecturer
// @Tags Lecturers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecturer ID"
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lecturers/{id}/courses/{courseId}/enrollments [get]
func (h *EnrollmentHandler) LecturerCourseEnrollments(c *gin.Context) {
	items, err := h.enrollments.ListForLecturerCourse(c.Request.Context(), c.Param("id"), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, len(items))
}

// AssignGrade godoc
// @Summary Assign a grade to an enrollment
// @Description The grade may be sent as the grade query parameter or as a JSON body.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Param grade query string false "Grade"
// @Param payload body dto.AssignGradeRequest false "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id}/grade [put]
func (h *EnrollmentHandler) AssignGrade(c *gin.Context) {
	grade, ok := gradeFromRequest(c)
	if !ok {
		return
	}
	enrollment, err := h.enrollments.AssignGrade(c.Request.Context(), c.Param("id"), grade)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}

// LecturerAssignGrade godoc
// @Summary Grade an enrollment in a course the lecturer teaches
// @Tags Lecturers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecturer ID"
// @Param enrollmentId path string true "Enrollment ID"
// @Param grade query string false "Grade"
// @Param payload body dto.AssignGradeRequest false "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lecturers/{id}/enrollments/{enrollmentId}/grade [put]
func (h *EnrollmentHandler) LecturerAssignGrade(c *gin.Context) {
	grade, ok := gradeFromRequest(c)
	if !ok {
		return
	}
	enrollment, err := h.enrollments.AssignGradeAsLecturer(c.Request.Context(), c.Param("id"), c.Param("enrollmentId"), grade)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}

// Remove godoc
// @Summary Delete an enrollment
// @Tags Enrollments
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Remove(c *gin.Context) {
	if err := h.enrollments.RemoveEnrollment(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// gradeFromRequest prefers the grade query parameter and falls back to a JSON body.
func gradeFromRequest(c *gin.Context) (string, bool) {
	if grade, ok := c.GetQuery("grade"); ok {
		return grade, true
	}
	if c.Request.ContentLength == 0 {
		response.Error(c, appErrors.WithDetails(appErrors.ErrValidation, map[string]string{"grade": "is required"}))
		return "", false
	}
	var req dto.AssignGradeRequest
	if !bindJSON(c, &req) {
		return "", false
	}
	return req.Grade, true
}
