package models

import "time"

// Course represents a unit of study offered in a semester.
type Course struct {
	ID          string    `db:"id" json:"id"`
	CourseCode  string    `db:"course_code" json:"courseCode"`
	CourseTitle string    `db:"course_title" json:"courseTitle"`
	Credits     int       `db:"credits" json:"credits"`
	Description *string   `db:"description" json:"description,omitempty"`
	Semester    string    `db:"semester" json:"semester"`
	LecturerID  *string   `db:"lecturer_id" json:"lecturerId,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// CourseDetail carries the assigned lecturer's name resolved at read time.
type CourseDetail struct {
	Course
	LecturerFirstName *string `db:"lecturer_first_name" json:"-"`
	LecturerLastName  *string `db:"lecturer_last_name" json:"-"`
}

// LecturerName returns "first last" for the assigned lecturer, or empty when unassigned.
func (c CourseDetail) LecturerName() string {
	if c.LecturerID == nil || c.LecturerFirstName == nil {
		return ""
	}
	last := ""
	if c.LecturerLastName != nil {
		last = *c.LecturerLastName
	}
	return joinName(*c.LecturerFirstName, last)
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	LecturerID string
}
