package dto

// LecturerRequest defines the payload for creating or replacing a lecturer.
type LecturerRequest struct {
	FirstName      string  `json:"firstName" validate:"required,notblank,max=100"`
	LastName       string  `json:"lastName" validate:"required,notblank,max=100"`
	Email          string  `json:"email" validate:"required,email,max=255"`
	EmployeeNumber string  `json:"employeeNumber" validate:"required,notblank,max=64"`
	Department     string  `json:"department" validate:"required,notblank,max=150"`
	Specialization string  `json:"specialization" validate:"required,notblank,max=150"`
	HireDate       string  `json:"hireDate" validate:"omitempty,datetime=2006-01-02"`
	PhoneNumber    *string `json:"phoneNumber" validate:"omitempty,max=32"`
}

// LecturerResponse is the transfer shape of a lecturer.
type LecturerResponse struct {
	ID             string  `json:"id"`
	UserID         string  `json:"userId"`
	Username       string  `json:"username"`
	Enabled        bool    `json:"enabled"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	FullName       string  `json:"fullName"`
	Email          string  `json:"email"`
	EmployeeNumber string  `json:"employeeNumber"`
	Department     string  `json:"department"`
	Specialization string  `json:"specialization"`
	HireDate       string  `json:"hireDate"`
	PhoneNumber    *string `json:"phoneNumber,omitempty"`
}

// ChangePasswordRequest carries the replacement password for an account.
type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,notblank,min=6,max=72"`
}
