package models

import "time"

// Student represents a learner registered in the institution.
type Student struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"userId"`
	FirstName       string    `db:"first_name" json:"firstName"`
	LastName        string    `db:"last_name" json:"lastName"`
	Email           string    `db:"email" json:"email"`
	AdmissionNumber string    `db:"admission_number" json:"admissionNumber"`
	DateOfBirth     time.Time `db:"date_of_birth" json:"dateOfBirth"`
	Department      string    `db:"department" json:"department"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name for display.
func (s Student) FullName() string {
	return joinName(s.FirstName, s.LastName)
}
