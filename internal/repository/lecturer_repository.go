package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-records-api/internal/models"
)

var lecturerDetailColumns = []string{
	"l.id", "l.user_id", "l.first_name", "l.last_name", "l.email", "l.employee_number",
	"l.department", "l.specialization", "l.hire_date", "l.phone_number", "l.created_at", "l.updated_at",
	"u.username", "u.enabled",
}

// LecturerRepository manages persistence for lecturers.
type LecturerRepository struct {
	db *sqlx.DB
}

// NewLecturerRepository constructs a LecturerRepository.
func NewLecturerRepository(db *sqlx.DB) *LecturerRepository {
	return &LecturerRepository{db: db}
}

func (r *LecturerRepository) baseSelect() squirrel.SelectBuilder {
	return psql.Select(lecturerDetailColumns...).
		From("lecturers l").
		Join("users u ON u.id = l.user_id")
}

// List returns lecturers matching filter ordered by name.
func (r *LecturerRepository) List(ctx context.Context, filter models.LecturerFilter) ([]models.LecturerDetail, error) {
	builder := r.baseSelect()
	if filter.ActiveOnly {
		builder = builder.Where(squirrel.Eq{"u.enabled": true})
	}
	if filter.Department != "" {
		builder = builder.Where(squirrel.Eq{"l.department": filter.Department})
	}
	query, args, err := builder.OrderBy("l.last_name", "l.first_name", "l.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lecturer query: %w", err)
	}

	var lecturers []models.LecturerDetail
	if err := r.db.SelectContext(ctx, &lecturers, query, args...); err != nil {
		return nil, fmt.Errorf("list lecturers: %w", err)
	}
	return lecturers, nil
}

// FindByID fetches a lecturer regardless of whether its account is enabled.
func (r *LecturerRepository) FindByID(ctx context.Context, id string) (*models.LecturerDetail, error) {
	return r.findOne(ctx, squirrel.Eq{"l.id": id})
}

// FindByUserID fetches the lecturer profile owned by a user.
func (r *LecturerRepository) FindByUserID(ctx context.Context, userID string) (*models.LecturerDetail, error) {
	return r.findOne(ctx, squirrel.Eq{"l.user_id": userID})
}

func (r *LecturerRepository) findOne(ctx context.Context, pred squirrel.Eq) (*models.LecturerDetail, error) {
	query, args, err := r.baseSelect().Where(pred).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lecturer query: %w", err)
	}
	var lecturer models.LecturerDetail
	if err := r.db.GetContext(ctx, &lecturer, query, args...); err != nil {
		return nil, err
	}
	return &lecturer, nil
}

// ExistsByID reports whether a lecturer exists.
func (r *LecturerRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	found, err := exists(ctx, r.db, "SELECT 1 FROM lecturers WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("check lecturer: %w", err)
	}
	return found, nil
}

// ExistsByEmail checks lecturer email uniqueness optionally excluding an ID.
func (r *LecturerRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	found, err := existsExcluding(ctx, r.db, "lecturers", "email", email, excludeID)
	if err != nil {
		return false, fmt.Errorf("check lecturer email: %w", err)
	}
	return found, nil
}

// ExistsByEmployeeNumber checks employee number uniqueness optionally excluding an ID.
func (r *LecturerRepository) ExistsByEmployeeNumber(ctx context.Context, employeeNumber, excludeID string) (bool, error) {
	found, err := existsExcluding(ctx, r.db, "lecturers", "employee_number", employeeNumber, excludeID)
	if err != nil {
		return false, fmt.Errorf("check employee number: %w", err)
	}
	return found, nil
}

// Save inserts the lecturer when it has no ID and updates it otherwise.
func (r *LecturerRepository) Save(ctx context.Context, lecturer *models.Lecturer) error {
	return r.save(ctx, r.db, lecturer)
}

// SaveTx is Save bound to tx.
func (r *LecturerRepository) SaveTx(ctx context.Context, tx *sqlx.Tx, lecturer *models.Lecturer) error {
	return r.save(ctx, tx, lecturer)
}

func (r *LecturerRepository) save(ctx context.Context, exec sqlx.ExtContext, lecturer *models.Lecturer) error {
	now := time.Now().UTC()
	lecturer.UpdatedAt = now
	if lecturer.ID == "" {
		lecturer.ID = uuid.NewString()
		if lecturer.CreatedAt.IsZero() {
			lecturer.CreatedAt = now
		}
		const insert = `INSERT INTO lecturers (id, user_id, first_name, last_name, email, employee_number, department, specialization, hire_date, phone_number, created_at, updated_at)
        VALUES (:id, :user_id, :first_name, :last_name, :email, :employee_number, :department, :specialization, :hire_date, :phone_number, :created_at, :updated_at)`
		if _, err := sqlx.NamedExecContext(ctx, exec, insert, lecturer); err != nil {
			return fmt.Errorf("create lecturer: %w", err)
		}
		return nil
	}

	const update = `UPDATE lecturers SET first_name = :first_name, last_name = :last_name, email = :email, employee_number = :employee_number,
        department = :department, specialization = :specialization, hire_date = :hire_date, phone_number = :phone_number, updated_at = :updated_at WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, exec, update, lecturer)
	if err != nil {
		return fmt.Errorf("update lecturer: %w", err)
	}
	return affectedOne(res)
}

// Count returns the number of lecturer profiles, enabled or not.
func (r *LecturerRepository) Count(ctx context.Context) (int64, error) {
	total, err := count(ctx, r.db, "lecturers")
	if err != nil {
		return 0, fmt.Errorf("count lecturers: %w", err)
	}
	return total, nil
}
