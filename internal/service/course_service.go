package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/mapper"
	"github.com/noah-isme/campus-records-api/internal/models"
	"github.com/noah-isme/campus-records-api/pkg/validation"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, error)
	FindByID(ctx context.Context, id string) (*models.CourseDetail, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	IsTaughtBy(ctx context.Context, courseID, lecturerID string) (bool, error)
	Save(ctx context.Context, course *models.Course) error
	AssignLecturer(ctx context.Context, courseID, lecturerID string) error
	DeleteByIDTx(ctx context.Context, tx *sqlx.Tx, id string) error
	Count(ctx context.Context) (int64, error)
}

type lecturerLookup interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}

type courseEnrollmentCleaner interface {
	DeleteByCourseTx(ctx context.Context, tx *sqlx.Tx, courseID string) (int64, error)
}

// CourseService handles course catalogue use-cases.
type CourseService struct {
	repo        courseRepository
	lecturers   lecturerLookup
	enrollments courseEnrollmentCleaner
	tx          txProvider
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, lecturers lecturerLookup, enrollments courseEnrollmentCleaner, tx txProvider, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, lecturers: lecturers, enrollments: enrollments, tx: tx, validator: validate, logger: logger}
}

// List returns all courses.
func (s *CourseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.List(ctx, models.CourseFilter{})
	if err != nil {
		return nil, internalError(err, "failed to list courses")
	}
	return mapper.CoursesToDTO(courses), nil
}

// ListByLecturer returns the courses assigned to a lecturer.
func (s *CourseService) ListByLecturer(ctx context.Context, lecturerID string) ([]dto.CourseResponse, error) {
	if err := s.requireLecturer(ctx, lecturerID); err != nil {
		return nil, err
	}
	courses, err := s.repo.List(ctx, models.CourseFilter{LecturerID: lecturerID})
	if err != nil {
		return nil, internalError(err, "failed to list lecturer courses")
	}
	return mapper.CoursesToDTO(courses), nil
}

// Get returns a course by ID.
func (s *CourseService) Get(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	out := mapper.CourseToDTO(*course)
	return &out, nil
}

func (s *CourseService) find(ctx context.Context, id string) (*models.CourseDetail, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("course not found")
		}
		return nil, internalError(err, "failed to load course")
	}
	return course, nil
}

// Create adds a course to the catalogue.
func (s *CourseService) Create(ctx context.Context, req dto.CourseRequest) (*dto.CourseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err)
	}
	course := mapper.CourseFromRequest(req)
	if err := s.ensureCodeFree(ctx, course.CourseCode, ""); err != nil {
		return nil, err
	}
	if course.LecturerID != nil {
		if err := s.requireLecturer(ctx, *course.LecturerID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, &course); err != nil {
		return nil, storageError(err, "failed to create course")
	}
	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("course_code", course.CourseCode))
	return s.Get(ctx, course.ID)
}

// Update replaces the mutable fields of a course. An omitted lecturerId keeps
// the current assignment.
func (s *CourseService) Update(ctx context.Context, id string, req dto.CourseRequest) (*dto.CourseResponse, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err)
	}
	course := mapper.CourseFromRequest(req)
	if err := s.ensureCodeFree(ctx, course.CourseCode, id); err != nil {
		return nil, err
	}
	if course.LecturerID != nil {
		if err := s.requireLecturer(ctx, *course.LecturerID); err != nil {
			return nil, err
		}
	}
	if course.LecturerID == nil {
		course.LecturerID = existing.LecturerID
	}
	course.ID = existing.ID
	course.CreatedAt = existing.CreatedAt
	if err := s.repo.Save(ctx, &course); err != nil {
		if isNoRows(err) {
			return nil, notFound("course not found")
		}
		return nil, storageError(err, "failed to update course")
	}
	return s.Get(ctx, id)
}

// Delete removes a course and every enrollment referencing it.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	var removed int64
	err := runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		n, err := s.enrollments.DeleteByCourseTx(ctx, tx, id)
		if err != nil {
			if isNoRows(err) {
				return notFound("course not found")
			}
			return internalError(err, "failed to delete course enrollments")
		}
		removed = n
		if err := s.repo.DeleteByIDTx(ctx, tx, id); err != nil {
			if isNoRows(err) {
				return notFound("course not found")
			}
			return internalError(err, "failed to delete course")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("course deleted", zap.String("course_id", id), zap.Int64("enrollments_removed", removed))
	return nil
}

// AssignLecturer makes lecturerID responsible for courseID.
func (s *CourseService) AssignLecturer(ctx context.Context, courseID, lecturerID string) (*dto.CourseResponse, error) {
	if _, err := s.find(ctx, courseID); err != nil {
		return nil, err
	}
	if err := s.requireLecturer(ctx, lecturerID); err != nil {
		return nil, err
	}
	if err := s.repo.AssignLecturer(ctx, courseID, lecturerID); err != nil {
		if isNoRows(err) {
			return nil, notFound("course not found")
		}
		return nil, internalError(err, "failed to assign lecturer")
	}
	return s.Get(ctx, courseID)
}

// IsTaughtBy reports whether lecturerID is assigned to courseID.
func (s *CourseService) IsTaughtBy(ctx context.Context, courseID, lecturerID string) (bool, error) {
	taught, err := s.repo.IsTaughtBy(ctx, courseID, lecturerID)
	if err != nil {
		return false, internalError(err, "failed to check course lecturer")
	}
	return taught, nil
}

// Count returns the number of courses.
func (s *CourseService) Count(ctx context.Context) (int64, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, internalError(err, "failed to count courses")
	}
	return total, nil
}

func (s *CourseService) ensureCodeFree(ctx context.Context, code, excludeID string) error {
	taken, err := s.repo.ExistsByCode(ctx, code, excludeID)
	if err != nil {
		return internalError(err, "failed to validate course code")
	}
	if taken {
		return conflict("course code already exists")
	}
	return nil
}

func (s *CourseService) requireLecturer(ctx context.Context, lecturerID string) error {
	found, err := s.lecturers.ExistsByID(ctx, lecturerID)
	if err != nil {
		return internalError(err, "failed to check lecturer")
	}
	if !found {
		return notFound("lecturer not found")
	}
	return nil
}
