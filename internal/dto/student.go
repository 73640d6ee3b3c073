package dto

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// StudentRequest defines the payload for creating or replacing a student.
type StudentRequest struct {
	FirstName       string `json:"firstName" validate:"required,notblank,max=100"`
	LastName        string `json:"lastName" validate:"required,notblank,max=100"`
	Email           string `json:"email" validate:"required,email,max=255"`
	AdmissionNumber string `json:"admissionNumber" validate:"required,notblank,max=64"`
	DateOfBirth     string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Department      string `json:"department" validate:"required,notblank,max=150"`
}

// StudentResponse is the transfer shape of a student.
type StudentResponse struct {
	ID              string `json:"id"`
	UserID          string `json:"userId"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	AdmissionNumber string `json:"admissionNumber"`
	DateOfBirth     string `json:"dateOfBirth"`
	Department      string `json:"department"`
}
