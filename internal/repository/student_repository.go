package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-records-api/internal/models"
)

const studentColumns = "id, user_id, first_name, last_name, email, admission_number, date_of_birth, department, created_at, updated_at"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every student ordered by name.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	query := "SELECT " + studentColumns + " FROM students ORDER BY last_name, first_name, id"
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, "SELECT "+studentColumns+" FROM students WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByUserID fetches the student profile owned by a user.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, "SELECT "+studentColumns+" FROM students WHERE user_id = $1", userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByID reports whether a student exists.
func (r *StudentRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	found, err := exists(ctx, r.db, "SELECT 1 FROM students WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("check student: %w", err)
	}
	return found, nil
}

// ExistsByEmail checks if a student with the email exists optionally excluding an ID.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	found, err := existsExcluding(ctx, r.db, "students", "email", email, excludeID)
	if err != nil {
		return false, fmt.Errorf("check student email: %w", err)
	}
	return found, nil
}

// ExistsByAdmissionNumber checks if an admission number is taken optionally excluding an ID.
func (r *StudentRepository) ExistsByAdmissionNumber(ctx context.Context, admissionNumber, excludeID string) (bool, error) {
	found, err := existsExcluding(ctx, r.db, "students", "admission_number", admissionNumber, excludeID)
	if err != nil {
		return false, fmt.Errorf("check admission number: %w", err)
	}
	return found, nil
}

// Save inserts the student when it has no ID and updates it otherwise.
func (r *StudentRepository) Save(ctx context.Context, student *models.Student) error {
	return r.save(ctx, r.db, student)
}

// SaveTx is Save bound to tx.
func (r *StudentRepository) SaveTx(ctx context.Context, tx *sqlx.Tx, student *models.Student) error {
	return r.save(ctx, tx, student)
}

func (r *StudentRepository) save(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error {
	now := time.Now().UTC()
	student.UpdatedAt = now
	if student.ID == "" {
		student.ID = uuid.NewString()
		if student.CreatedAt.IsZero() {
			student.CreatedAt = now
		}
		const insert = `INSERT INTO students (id, user_id, first_name, last_name, email, admission_number, date_of_birth, department, created_at, updated_at)
        VALUES (:id, :user_id, :first_name, :last_name, :email, :admission_number, :date_of_birth, :department, :created_at, :updated_at)`
		if _, err := sqlx.NamedExecContext(ctx, exec, insert, student); err != nil {
			return fmt.Errorf("create student: %w", err)
		}
		return nil
	}

	const update = `UPDATE students SET first_name = :first_name, last_name = :last_name, email = :email, admission_number = :admission_number,
        date_of_birth = :date_of_birth, department = :department, updated_at = :updated_at WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, exec, update, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return affectedOne(res)
}

// DeleteByIDTx removes a student inside tx, returning sql.ErrNoRows when absent.
func (r *StudentRepository) DeleteByIDTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return affectedOne(res)
}

// Count returns the number of students.
func (r *StudentRepository) Count(ctx context.Context) (int64, error) {
	total, err := count(ctx, r.db, "students")
	if err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}
