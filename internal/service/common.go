package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-records-api/internal/repository"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// conflictMessages names the field behind each unique constraint in the schema.
var conflictMessages = map[string]string{
	"users_username_key":             "username already exists",
	"students_email_key":             "email already exists",
	"students_admission_number_key":  "admission number already exists",
	"lecturers_email_key":            "email already exists",
	"lecturers_employee_number_key":  "employee number already exists",
	"courses_course_code_key":        "course code already exists",
	"enrollments_student_course_key": "student already enrolled in course",
}

func internalError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func notFound(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrNotFound, message)
}

func conflict(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrConflict, message)
}

// storageError maps a unique violation to CONFLICT and anything else to INTERNAL_ERROR.
func storageError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if constraint, ok := repository.IsUniqueViolation(err); ok {
		msg, known := conflictMessages[constraint]
		if !known {
			msg = "resource already exists"
		}
		c := conflict(msg)
		c.Err = err
		return c
	}
	return internalError(err, message)
}

// runInTx begins a transaction, runs fn and commits, rolling back on any error.
func runInTx(ctx context.Context, provider txProvider, fn func(tx *sqlx.Tx) error) (err error) {
	if provider == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := provider.BeginTxx(ctx, nil)
	if err != nil {
		return internalError(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return internalError(err, "failed to commit transaction")
	}
	return nil
}

func hashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// isNoRows treats a malformed id like a missing row.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || repository.IsInvalidID(err)
}
