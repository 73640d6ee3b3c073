package models

import "time"

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username  string `json:"username" validate:"required,notblank"`
	Password  string `json:"password" validate:"required,notblank"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued token and a summary of the account.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Username  string       `json:"username"`
	Role      UserRole     `json:"role"`
	Message   string       `json:"message"`
	Details   *UserDetails `json:"userDetails,omitempty"`
}

// UserDetails describes the authenticated user and the profile attached to it.
type UserDetails struct {
	ID              string   `json:"id"`
	Username        string   `json:"username"`
	Role            UserRole `json:"role"`
	StudentID       string   `json:"studentId,omitempty"`
	LecturerID      string   `json:"lecturerId,omitempty"`
	FirstName       string   `json:"firstName,omitempty"`
	LastName        string   `json:"lastName,omitempty"`
	Email           string   `json:"email,omitempty"`
	AdmissionNumber string   `json:"admissionNumber,omitempty"`
	EmployeeNumber  string   `json:"employeeNumber,omitempty"`
	Message         string   `json:"message,omitempty"`
}
