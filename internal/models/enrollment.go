package models

import "time"

// Enrollment captures a student's registration to a course.
type Enrollment struct {
	ID             string    `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"studentId"`
	CourseID       string    `db:"course_id" json:"courseId"`
	EnrollmentDate time.Time `db:"enrollment_date" json:"enrollmentDate"`
	Grade          *string   `db:"grade" json:"grade,omitempty"`
}

// EnrollmentDetail enriches Enrollment with student and course info.
type EnrollmentDetail struct {
	Enrollment
	StudentFirstName string `db:"student_first_name" json:"-"`
	StudentLastName  string `db:"student_last_name" json:"-"`
	AdmissionNumber  string `db:"admission_number" json:"admissionNumber"`
	CourseCode       string `db:"course_code" json:"courseCode"`
	CourseTitle      string `db:"course_title" json:"courseTitle"`
	Credits          int    `db:"credits" json:"credits"`
	Semester         string `db:"semester" json:"semester"`
}

// StudentName returns the enrolled student's display name.
func (e EnrollmentDetail) StudentName() string {
	return joinName(e.StudentFirstName, e.StudentLastName)
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID  string
	CourseID   string
	GradedOnly bool
}
