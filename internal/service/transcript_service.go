package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-records-api/internal/dto"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
	"github.com/noah-isme/campus-records-api/pkg/export"
)

var (
	transcriptHeaders = []string{"Course Code", "Course Title", "Credits", "Semester", "Grade", "Enrolled On"}
	rosterHeaders     = []string{"Admission Number", "Student", "Grade", "Enrolled On"}
)

type transcriptStudentLookup interface {
	Get(ctx context.Context, id string) (*dto.StudentResponse, error)
}

type transcriptCourseLookup interface {
	Get(ctx context.Context, id string) (*dto.CourseResponse, error)
}

type transcriptEnrollmentLister interface {
	ListForStudent(ctx context.Context, studentID string) ([]dto.EnrollmentResponse, error)
	ListForLecturerCourse(ctx context.Context, lecturerID, courseID string) ([]dto.EnrollmentResponse, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// Document is a rendered export ready to be streamed to a client.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// TranscriptService renders student transcripts and course rosters.
type TranscriptService struct {
	students    transcriptStudentLookup
	courses     transcriptCourseLookup
	enrollments transcriptEnrollmentLister
	renderers   map[export.Format]datasetRenderer
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewTranscriptService constructs a TranscriptService using the default renderers.
func NewTranscriptService(students transcriptStudentLookup, courses transcriptCourseLookup, enrollments transcriptEnrollmentLister, metrics *MetricsService, logger *zap.Logger) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptService{
		students:    students,
		courses:     courses,
		enrollments: enrollments,
		renderers: map[export.Format]datasetRenderer{
			export.FormatCSV:  export.NewCSVExporter(),
			export.FormatPDF:  export.NewPDFExporter(),
			export.FormatXLSX: export.NewXLSXExporter("Transcript"),
		},
		metrics: metrics,
		logger:  logger,
	}
}

// StudentTranscript renders every enrollment of the student in the requested format.
func (s *TranscriptService) StudentTranscript(ctx context.Context, studentID, rawFormat string) (*Document, error) {
	format, err := parseExportFormat(rawFormat)
	if err != nil {
		return nil, err
	}
	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	var credits, graded int
	rows := make([]map[string]string, 0, len(enrollments))
	for _, e := range enrollments {
		rows = append(rows, map[string]string{
			"Course Code":  e.CourseCode,
			"Course Title": e.CourseTitle,
			"Credits":      strconv.Itoa(e.Credits),
			"Semester":     e.Semester,
			"Grade":        gradeText(e.Grade),
			"Enrolled On":  e.EnrollmentDate.Format(dto.DateLayout),
		})
		if e.Grade != nil {
			credits += e.Credits
			graded++
		}
	}

	data := export.Dataset{
		Title: "Academic Transcript",
		Summary: []string{
			fmt.Sprintf("Student: %s (%s)", student.FullName, student.AdmissionNumber),
			fmt.Sprintf("Department: %s", student.Department),
			fmt.Sprintf("Courses: %d, graded: %d, graded credits: %d", len(enrollments), graded, credits),
		},
		Headers: transcriptHeaders,
		Rows:    rows,
	}
	return s.render(data, format, "transcript", "transcript-"+student.AdmissionNumber)
}

// CourseRoster renders the students of a course taught by lecturerID.
func (s *TranscriptService) CourseRoster(ctx context.Context, lecturerID, courseID, rawFormat string) (*Document, error) {
	format, err := parseExportFormat(rawFormat)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListForLecturerCourse(ctx, lecturerID, courseID)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]string, 0, len(enrollments))
	for _, e := range enrollments {
		rows = append(rows, map[string]string{
			"Admission Number": e.AdmissionNo,
			"Student":          e.StudentName,
			"Grade":            gradeText(e.Grade),
			"Enrolled On":      e.EnrollmentDate.Format(dto.DateLayout),
		})
	}

	data := export.Dataset{
		Title: "Course Roster",
		Summary: []string{
			fmt.Sprintf("Course: %s %s", course.CourseCode, course.CourseTitle),
			fmt.Sprintf("Semester: %s", course.Semester),
			fmt.Sprintf("Enrolled students: %d", len(enrollments)),
		},
		Headers: rosterHeaders,
		Rows:    rows,
	}
	return s.render(data, format, "roster", "roster-"+course.CourseCode)
}

func (s *TranscriptService) render(data export.Dataset, format export.Format, kind, basename string) (*Document, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	body, err := renderer.Render(data)
	if err != nil {
		s.logger.Error("export render failed", zap.String("kind", kind), zap.String("format", string(format)), zap.Error(err))
		return nil, internalError(err, "failed to render "+kind)
	}
	s.metrics.RecordExport(kind, string(format))
	return &Document{
		Filename:    fmt.Sprintf("%s.%s", sanitizeFilename(basename), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func parseExportFormat(raw string) (export.Format, error) {
	format, err := export.ParseFormat(raw)
	if err != nil {
		return "", appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "unsupported export format"),
			map[string]string{"format": "must be one of csv, pdf, xlsx"},
		)
	}
	return format, nil
}

func gradeText(grade *string) string {
	if grade == nil {
		return ""
	}
	return *grade
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
