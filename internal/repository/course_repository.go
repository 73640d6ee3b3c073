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

var courseDetailColumns = []string{
	"c.id", "c.course_code", "c.course_title", "c.credits", "c.description", "c.semester", "c.lecturer_id",
	"c.created_at", "c.updated_at",
	"l.first_name AS lecturer_first_name", "l.last_name AS lecturer_last_name",
}

// CourseRepository manages persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) baseSelect() squirrel.SelectBuilder {
	return psql.Select(courseDetailColumns...).
		From("courses c").
		LeftJoin("lecturers l ON l.id = c.lecturer_id")
}

// List returns courses with their lecturer names resolved.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, error) {
	builder := r.baseSelect()
	if filter.LecturerID != "" {
		builder = builder.Where(squirrel.Eq{"c.lecturer_id": filter.LecturerID})
	}
	query, args, err := builder.OrderBy("c.course_code").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build course query: %w", err)
	}
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID fetches a course by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	query, args, err := r.baseSelect().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build course query: %w", err)
	}
	var course models.CourseDetail
	if err := r.db.GetContext(ctx, &course, query, args...); err != nil {
		return nil, err
	}
	return &course, nil
}

// ExistsByID reports whether a course exists.
func (r *CourseRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	found, err := exists(ctx, r.db, "SELECT 1 FROM courses WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("check course: %w", err)
	}
	return found, nil
}

// ExistsByCode checks course code uniqueness optionally excluding an ID.
func (r *CourseRepository) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	found, err := existsExcluding(ctx, r.db, "courses", "course_code", code, excludeID)
	if err != nil {
		return false, fmt.Errorf("check course code: %w", err)
	}
	return found, nil
}

// IsTaughtBy reports whether lecturerID is assigned to courseID.
func (r *CourseRepository) IsTaughtBy(ctx context.Context, courseID, lecturerID string) (bool, error) {
	found, err := exists(ctx, r.db, "SELECT 1 FROM courses WHERE id = $1 AND lecturer_id = $2", courseID, lecturerID)
	if err != nil {
		return false, fmt.Errorf("check course lecturer: %w", err)
	}
	return found, nil
}

// Save inserts the course when it has no ID and updates it otherwise.
func (r *CourseRepository) Save(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()
	course.UpdatedAt = now
	if course.ID == "" {
		course.ID = uuid.NewString()
		if course.CreatedAt.IsZero() {
			course.CreatedAt = now
		}
		const insert = `INSERT INTO courses (id, course_code, course_title, credits, description, semester, lecturer_id, created_at, updated_at)
        VALUES (:id, :course_code, :course_title, :credits, :description, :semester, :lecturer_id, :created_at, :updated_at)`
		if _, err := r.db.NamedExecContext(ctx, insert, course); err != nil {
			return fmt.Errorf("create course: %w", err)
		}
		return nil
	}

	const update = `UPDATE courses SET course_code = :course_code, course_title = :course_title, credits = :credits, description = :description,
        semester = :semester, lecturer_id = :lecturer_id, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, update, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return affectedOne(res)
}

// AssignLecturer sets the lecturer responsible for a course.
func (r *CourseRepository) AssignLecturer(ctx context.Context, courseID, lecturerID string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE courses SET lecturer_id = $1, updated_at = $2 WHERE id = $3", lecturerID, time.Now().UTC(), courseID)
	if err != nil {
		return fmt.Errorf("assign lecturer: %w", err)
	}
	return affectedOne(res)
}

// DeleteByIDTx removes a course inside tx, returning sql.ErrNoRows when absent.
func (r *CourseRepository) DeleteByIDTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return affectedOne(res)
}

// Count returns the number of courses.
func (r *CourseRepository) Count(ctx context.Context) (int64, error) {
	total, err := count(ctx, r.db, "courses")
	if err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return total, nil
}
