// Package mapper converts between persisted records and the transfer shapes served over HTTP.
package mapper

import (
	"strings"
	"time"

	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/models"
)

// StudentToDTO maps a student record to its transfer shape.
func StudentToDTO(s models.Student) dto.StudentResponse {
	return dto.StudentResponse{
		ID:              s.ID,
		UserID:          s.UserID,
		FirstName:       s.FirstName,
		LastName:        s.LastName,
		FullName:        s.FullName(),
		Email:           s.Email,
		AdmissionNumber: s.AdmissionNumber,
		DateOfBirth:     formatDate(s.DateOfBirth),
		Department:      s.Department,
	}
}

// StudentsToDTO maps a slice of students.
func StudentsToDTO(items []models.Student) []dto.StudentResponse {
	out := make([]dto.StudentResponse, 0, len(items))
	for _, s := range items {
		out = append(out, StudentToDTO(s))
	}
	return out
}

// StudentFromRequest copies the mutable fields of req onto a student record.
// The request must already be validated.
func StudentFromRequest(req dto.StudentRequest) models.Student {
	return models.Student{
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Email:           strings.TrimSpace(req.Email),
		AdmissionNumber: strings.TrimSpace(req.AdmissionNumber),
		DateOfBirth:     parseDate(req.DateOfBirth),
		Department:      strings.TrimSpace(req.Department),
	}
}

// LecturerToDTO maps a lecturer and its owning account to the transfer shape.
func LecturerToDTO(l models.LecturerDetail) dto.LecturerResponse {
	return dto.LecturerResponse{
		ID:             l.ID,
		UserID:         l.UserID,
		Username:       l.Username,
		Enabled:        l.Enabled,
		FirstName:      l.FirstName,
		LastName:       l.LastName,
		FullName:       l.FullName(),
		Email:          l.Email,
		EmployeeNumber: l.EmployeeNumber,
		Department:     l.Department,
		Specialization: l.Specialization,
		HireDate:       formatDate(l.HireDate),
		PhoneNumber:    l.PhoneNumber,
	}
}

// LecturersToDTO maps a slice of lecturers.
func LecturersToDTO(items []models.LecturerDetail) []dto.LecturerResponse {
	out := make([]dto.LecturerResponse, 0, len(items))
	for _, l := range items {
		out = append(out, LecturerToDTO(l))
	}
	return out
}

// LecturerFromRequest copies the mutable fields of req onto a lecturer record.
// A zero HireDate means the caller did not supply one.
func LecturerFromRequest(req dto.LecturerRequest) models.Lecturer {
	return models.Lecturer{
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          strings.TrimSpace(req.Email),
		EmployeeNumber: strings.TrimSpace(req.EmployeeNumber),
		Department:     strings.TrimSpace(req.Department),
		Specialization: strings.TrimSpace(req.Specialization),
		HireDate:       parseDate(req.HireDate),
		PhoneNumber:    trimOptional(req.PhoneNumber),
	}
}

// CourseToDTO maps a course to its transfer shape, naming the assigned lecturer when present.
func CourseToDTO(c models.CourseDetail) dto.CourseResponse {
	out := dto.CourseResponse{
		ID:          c.ID,
		CourseCode:  c.CourseCode,
		CourseTitle: c.CourseTitle,
		Credits:     c.Credits,
		Description: c.Description,
		Semester:    c.Semester,
	}
	if c.LecturerID != nil {
		out.LecturerID = c.LecturerID
		out.LecturerName = c.LecturerName()
	}
	return out
}

// CoursesToDTO maps a slice of courses.
func CoursesToDTO(items []models.CourseDetail) []dto.CourseResponse {
	out := make([]dto.CourseResponse, 0, len(items))
	for _, c := range items {
		out = append(out, CourseToDTO(c))
	}
	return out
}

// CourseFromRequest copies the mutable fields of req onto a course record.
func CourseFromRequest(req dto.CourseRequest) models.Course {
	return models.Course{
		CourseCode:  strings.TrimSpace(req.CourseCode),
		CourseTitle: strings.TrimSpace(req.CourseTitle),
		Credits:     req.Credits,
		Description: trimOptional(req.Description),
		Semester:    strings.TrimSpace(req.Semester),
		LecturerID:  trimOptional(req.LecturerID),
	}
}

// EnrollmentToDTO maps an enrollment with its denormalised names.
func EnrollmentToDTO(e models.EnrollmentDetail) dto.EnrollmentResponse {
	return dto.EnrollmentResponse{
		ID:             e.ID,
		StudentID:      e.StudentID,
		CourseID:       e.CourseID,
		StudentName:    e.StudentName(),
		AdmissionNo:    e.AdmissionNumber,
		CourseCode:     e.CourseCode,
		CourseTitle:    e.CourseTitle,
		Credits:        e.Credits,
		Semester:       e.Semester,
		EnrollmentDate: e.EnrollmentDate,
		Grade:          e.Grade,
	}
}

// EnrollmentsToDTO maps a slice of enrollments.
func EnrollmentsToDTO(items []models.EnrollmentDetail) []dto.EnrollmentResponse {
	out := make([]dto.EnrollmentResponse, 0, len(items))
	for _, e := range items {
		out = append(out, EnrollmentToDTO(e))
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dto.DateLayout)
}

func parseDate(raw string) time.Time {
	t, err := time.Parse(dto.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}
	}
	return t
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
