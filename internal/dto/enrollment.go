package dto

import "time"

// EnrollmentResponse is the transfer shape of an enrollment.
type EnrollmentResponse struct {
	ID             string    `json:"id"`
	StudentID      string    `json:"studentId"`
	CourseID       string    `json:"courseId"`
	StudentName    string    `json:"studentName"`
	AdmissionNo    string    `json:"admissionNumber,omitempty"`
	CourseCode     string    `json:"courseCode,omitempty"`
	CourseTitle    string    `json:"courseTitle"`
	Credits        int       `json:"credits,omitempty"`
	Semester       string    `json:"semester,omitempty"`
	EnrollmentDate time.Time `json:"enrollmentDate"`
	Grade          *string   `json:"grade,omitempty"`
}

// AssignGradeRequest carries a grade in a JSON body. Any non-blank text is a grade.
type AssignGradeRequest struct {
	Grade string `json:"grade"`
}
