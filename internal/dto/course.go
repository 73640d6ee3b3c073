package dto

// CourseRequest defines the payload for creating or replacing a course.
type CourseRequest struct {
	CourseCode  string  `json:"courseCode" validate:"required,notblank,max=32"`
	CourseTitle string  `json:"courseTitle" validate:"required,notblank,max=255"`
	Credits     int     `json:"credits" validate:"required,gt=0"`
	Description *string `json:"description"`
	Semester    string  `json:"semester" validate:"required,notblank,max=64"`
	LecturerID  *string `json:"lecturerId" validate:"omitempty,uuid"`
}

// CourseResponse is the transfer shape of a course.
type CourseResponse struct {
	ID           string  `json:"id"`
	CourseCode   string  `json:"courseCode"`
	CourseTitle  string  `json:"courseTitle"`
	Credits      int     `json:"credits"`
	Description  *string `json:"description,omitempty"`
	Semester     string  `json:"semester"`
	LecturerID   *string `json:"lecturerId,omitempty"`
	LecturerName string  `json:"lecturerName,omitempty"`
}
