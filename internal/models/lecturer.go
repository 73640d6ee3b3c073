package models

import (
	"strings"
	"time"
)

// Lecturer represents a member of teaching staff.
type Lecturer struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"userId"`
	FirstName      string    `db:"first_name" json:"firstName"`
	LastName       string    `db:"last_name" json:"lastName"`
	Email          string    `db:"email" json:"email"`
	EmployeeNumber string    `db:"employee_number" json:"employeeNumber"`
	Department     string    `db:"department" json:"department"`
	Specialization string    `db:"specialization" json:"specialization"`
	HireDate       time.Time `db:"hire_date" json:"hireDate"`
	PhoneNumber    *string   `db:"phone_number" json:"phoneNumber,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name for display.
func (l Lecturer) FullName() string {
	return joinName(l.FirstName, l.LastName)
}

// LecturerDetail enriches Lecturer with the state of its owning account.
type LecturerDetail struct {
	Lecturer
	Username string `db:"username" json:"username"`
	Enabled  bool   `db:"enabled" json:"enabled"`
}

// LecturerFilter narrows lecturer listings.
type LecturerFilter struct {
	Department string
	ActiveOnly bool
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
