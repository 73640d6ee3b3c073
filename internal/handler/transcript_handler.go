package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records-api/internal/service"
	"github.com/noah-isme/campus-records-api/pkg/response"
)

type transcriptService interface {
	StudentTranscript(ctx context.Context, studentID, format string) (*service.Document, error)
	CourseRoster(ctx context.Context, lecturerID, courseID, format string) (*service.Document, error)
}

// TranscriptHandler streams transcript and roster exports.
type TranscriptHandler struct {
	transcripts transcriptService
}

// NewTranscriptHandler constructs TranscriptHandler.
func NewTranscriptHandler(transcripts transcriptService) *TranscriptHandler {
	return &TranscriptHandler{transcripts: transcripts}
}

// Student godoc
// @Summary Download a student transcript
// @Tags Exports
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/transcript [get]
func (h *TranscriptHandler) Student(c *gin.Context) {
	doc, err := h.transcripts.StudentTranscript(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	attachment(c, doc)
}

// Roster godoc
// @Summary Download the roster of a course taught by the lecturer
// @Tags Exports
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Lecturer ID"
// @Param courseId path string true "Course ID"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lecturers/{id}/courses/{courseId}/roster [get]
func (h *TranscriptHandler) Roster(c *gin.Context) {
	doc, err := h.transcripts.CourseRoster(c.Request.Context(), c.Param("id"), c.Param("courseId"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	attachment(c, doc)
}

func attachment(c *gin.Context, doc *service.Document) {
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}
