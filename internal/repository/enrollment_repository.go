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

const enrollmentColumns = "id, student_id, course_id, enrollment_date, grade"

var enrollmentDetailColumns = []string{
	"e.id", "e.student_id", "e.course_id", "e.enrollment_date", "e.grade",
	"s.first_name AS student_first_name", "s.last_name AS student_last_name", "s.admission_number",
	"c.course_code", "c.course_title", "c.credits", "c.semester",
}

// EnrollmentRepository handles persistence for enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) baseSelect() squirrel.SelectBuilder {
	return psql.Select(enrollmentDetailColumns...).
		From("enrollments e").
		Join("students s ON s.id = e.student_id").
		Join("courses c ON c.id = e.course_id")
}

// List returns enrollments matching the filter with student and course names joined in.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	builder := r.baseSelect()
	if filter.StudentID != "" {
		builder = builder.Where(squirrel.Eq{"e.student_id": filter.StudentID})
	}
	if filter.CourseID != "" {
		builder = builder.Where(squirrel.Eq{"e.course_id": filter.CourseID})
	}
	if filter.GradedOnly {
		builder = builder.Where(squirrel.NotEq{"e.grade": nil})
	}
	query, args, err := builder.OrderBy("e.enrollment_date", "e.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build enrollment query: %w", err)
	}
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID fetches an enrollment with names resolved.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	query, args, err := r.baseSelect().Where(squirrel.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build enrollment query: %w", err)
	}
	var enrollment models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &enrollment, query, args...); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindByIDForUpdateTx loads and row-locks an enrollment inside tx.
func (r *EnrollmentRepository) FindByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := tx.GetContext(ctx, &enrollment, "SELECT "+enrollmentColumns+" FROM enrollments WHERE id = $1 FOR UPDATE", id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ExistsByStudentAndCourse reports whether the pair is already enrolled.
func (r *EnrollmentRepository) ExistsByStudentAndCourse(ctx context.Context, studentID, courseID string) (bool, error) {
	found, err := exists(ctx, r.db, "SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2", studentID, courseID)
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return found, nil
}

// Create inserts an enrollment. The enrollment date is set by the caller.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrollmentDate.IsZero() {
		enrollment.EnrollmentDate = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (id, student_id, course_id, enrollment_date, grade)
        VALUES (:id, :student_id, :course_id, :enrollment_date, :grade)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateGradeTx overwrites the grade inside tx.
func (r *EnrollmentRepository) UpdateGradeTx(ctx context.Context, tx *sqlx.Tx, id, grade string) error {
	res, err := tx.ExecContext(ctx, "UPDATE enrollments SET grade = $1 WHERE id = $2", grade, id)
	if err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	return affectedOne(res)
}

// DeleteByID removes an enrollment, returning sql.ErrNoRows when absent.
func (r *EnrollmentRepository) DeleteByID(ctx context.Context, id string) error {
	return r.deleteByID(ctx, r.db, id)
}

// DeleteByIDTx removes an enrollment inside tx.
func (r *EnrollmentRepository) DeleteByIDTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	return r.deleteByID(ctx, tx, id)
}

func (r *EnrollmentRepository) deleteByID(ctx context.Context, exec sqlx.ExtContext, id string) error {
	res, err := exec.ExecContext(ctx, "DELETE FROM enrollments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return affectedOne(res)
}

// DeleteByStudentTx removes every enrollment of a student inside tx.
func (r *EnrollmentRepository) DeleteByStudentTx(ctx context.Context, tx *sqlx.Tx, studentID string) (int64, error) {
	res, err := tx.ExecContext(ctx, "DELETE FROM enrollments WHERE student_id = $1", studentID)
	if err != nil {
		return 0, fmt.Errorf("delete student enrollments: %w", err)
	}
	return res.RowsAffected()
}

// DeleteByCourseTx removes every enrollment of a course inside tx.
func (r *EnrollmentRepository) DeleteByCourseTx(ctx context.Context, tx *sqlx.Tx, courseID string) (int64, error) {
	res, err := tx.ExecContext(ctx, "DELETE FROM enrollments WHERE course_id = $1", courseID)
	if err != nil {
		return 0, fmt.Errorf("delete course enrollments: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of enrollments.
func (r *EnrollmentRepository) Count(ctx context.Context) (int64, error) {
	total, err := count(ctx, r.db, "enrollments")
	if err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return total, nil
}
