package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus-records-api/internal/service"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

type fakeTranscriptSrv struct {
	format string
	err    error
}

func (f *fakeTranscriptSrv) StudentTranscript(_ context.Context, _ string, format string) (*service.Document, error) {
	f.format = format
	if f.err != nil {
		return nil, f.err
	}
	return &service.Document{Filename: "transcript-STU001.csv", ContentType: "text/csv", Body: []byte("Course Code\n")}, nil
}

func (f *fakeTranscriptSrv) CourseRoster(_ context.Context, _, _ string, format string) (*service.Document, error) {
	f.format = format
	if f.err != nil {
		return nil, f.err
	}
	return &service.Document{Filename: "roster-CS101.pdf", ContentType: "application/pdf", Body: []byte("%PDF")}, nil
}

func TestTranscriptHandlerStreamsAttachment(t *testing.T) {
	srv := &fakeTranscriptSrv{}
	h := NewTranscriptHandler(srv)

	rec := perform(t, http.MethodGet, "/students/:id/transcript", "/students/s-1/transcript?format=csv", "", nil, h.Student)

	assertStatus(t, rec, http.StatusOK)
	assert.Equal(t, "csv", srv.format)
	assert.Equal(t, `attachment; filename="transcript-STU001.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Course Code\n", rec.Body.String())
}

func TestTranscriptHandlerRosterError(t *testing.T) {
	h := NewTranscriptHandler(&fakeTranscriptSrv{err: appErrors.Clone(appErrors.ErrForbidden, "lecturer does not teach this course")})

	rec := perform(t, http.MethodGet, "/lecturers/:id/courses/:courseId/roster", "/lecturers/l-1/courses/c-1/roster?format=pdf", "", nil, h.Roster)

	assertStatus(t, rec, http.StatusForbidden)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}
