package service

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/mapper"
	"github.com/noah-isme/campus-records-api/internal/models"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
	FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	FindByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Enrollment, error)
	ExistsByStudentAndCourse(ctx context.Context, studentID, courseID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateGradeTx(ctx context.Context, tx *sqlx.Tx, id, grade string) error
	DeleteByID(ctx context.Context, id string) error
	DeleteByIDTx(ctx context.Context, tx *sqlx.Tx, id string) error
	Count(ctx context.Context) (int64, error)
}

type existenceChecker interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}

type courseTeachingLookup interface {
	existenceChecker
	IsTaughtBy(ctx context.Context, courseID, lecturerID string) (bool, error)
}

// EnrollmentService handles enrollment use-cases. A student holds at most one
// enrollment per course.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  existenceChecker
	courses   courseTeachingLookup
	lecturers existenceChecker
	tx        txProvider
	logger    *zap.Logger
	now       func() time.Time
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repo enrollmentRepository, students existenceChecker, courses courseTeachingLookup, lecturers existenceChecker, tx txProvider, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, courses: courses, lecturers: lecturers, tx: tx, logger: logger, now: time.Now}
}

// Enroll registers a student to a course.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, courseID string) (*dto.EnrollmentResponse, error) {
	if err := s.require(ctx, s.students, studentID, "student not found"); err != nil {
		return nil, err
	}
	if err := s.require(ctx, s.courses, courseID, "course not found"); err != nil {
		return nil, err
	}
	enrolled, err := s.repo.ExistsByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, internalError(err, "failed to check enrollment")
	}
	if enrolled {
		return nil, conflict("student already enrolled in course")
	}

	enrollment := &models.Enrollment{
		StudentID:      studentID,
		CourseID:       courseID,
		EnrollmentDate: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, storageError(err, "failed to create enrollment")
	}
	s.logger.Info("student enrolled", zap.String("student_id", studentID), zap.String("course_id", courseID), zap.String("enrollment_id", enrollment.ID))
	return s.load(ctx, enrollment.ID)
}

// ListForStudent returns every enrollment of a student.
func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID string) ([]dto.EnrollmentResponse, error) {
	if err := s.require(ctx, s.students, studentID, "student not found"); err != nil {
		return nil, err
	}
	return s.list(ctx, models.EnrollmentFilter{StudentID: studentID})
}

// ListGradedForStudent returns the enrollments of a student that carry a grade.
func (s *EnrollmentService) ListGradedForStudent(ctx context.Context, studentID string) ([]dto.EnrollmentResponse, error) {
	if err := s.require(ctx, s.students, studentID, "student not found"); err != nil {
		return nil, err
	}
	return s.list(ctx, models.EnrollmentFilter{StudentID: studentID, GradedOnly: true})
}

// ListForCourse returns the roster of a course.
func (s *EnrollmentService) ListForCourse(ctx context.Context, courseID string) ([]dto.EnrollmentResponse, error) {
	if err := s.require(ctx, s.courses, courseID, "course not found"); err != nil {
		return nil, err
	}
	return s.list(ctx, models.EnrollmentFilter{CourseID: courseID})
}

// ListForLecturerCourse returns a course roster to the lecturer teaching it.
func (s *EnrollmentService) ListForLecturerCourse(ctx context.Context, lecturerID, courseID string) ([]dto.EnrollmentResponse, error) {
	if err := s.requireTeaching(ctx, lecturerID, courseID); err != nil {
		return nil, err
	}
	return s.list(ctx, models.EnrollmentFilter{CourseID: courseID})
}

func (s *EnrollmentService) list(ctx context.Context, filter models.EnrollmentFilter) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list enrollments")
	}
	return mapper.EnrollmentsToDTO(enrollments), nil
}

// DropCourse removes an enrollment on behalf of the student that owns it.
func (s *EnrollmentService) DropCourse(ctx context.Context, studentID, enrollmentID string) error {
	err := runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		enrollment, err := s.repo.FindByIDForUpdateTx(ctx, tx, enrollmentID)
		if err != nil {
			if isNoRows(err) {
				return notFound("enrollment not found")
			}
			return internalError(err, "failed to load enrollment")
		}
		if enrollment.StudentID != studentID {
			return appErrors.Clone(appErrors.ErrInvalidOperation, "enrollment does not belong to student")
		}
		if err := s.repo.DeleteByIDTx(ctx, tx, enrollmentID); err != nil {
			if isNoRows(err) {
				return notFound("enrollment not found")
			}
			return internalError(err, "failed to drop course")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("course dropped", zap.String("student_id", studentID), zap.String("enrollment_id", enrollmentID))
	return nil
}

// AssignGrade overwrites the grade of an enrollment.
func (s *EnrollmentService) AssignGrade(ctx context.Context, enrollmentID, grade string) (*dto.EnrollmentResponse, error) {
	grade = strings.TrimSpace(grade)
	if grade == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidOperation, "grade must not be blank")
	}
	err := runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if _, err := s.repo.FindByIDForUpdateTx(ctx, tx, enrollmentID); err != nil {
			if isNoRows(err) {
				return notFound("enrollment not found")
			}
			return internalError(err, "failed to load enrollment")
		}
		if err := s.repo.UpdateGradeTx(ctx, tx, enrollmentID, grade); err != nil {
			return internalError(err, "failed to assign grade")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("grade assigned", zap.String("enrollment_id", enrollmentID))
	return s.load(ctx, enrollmentID)
}

// AssignGradeAsLecturer grades an enrollment of a course taught by lecturerID.
func (s *EnrollmentService) AssignGradeAsLecturer(ctx context.Context, lecturerID, enrollmentID, grade string) (*dto.EnrollmentResponse, error) {
	if err := s.require(ctx, s.lecturers, lecturerID, "lecturer not found"); err != nil {
		return nil, err
	}
	enrollment, err := s.repo.FindByID(ctx, enrollmentID)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("enrollment not found")
		}
		return nil, internalError(err, "failed to load enrollment")
	}
	if err := s.requireTeaching(ctx, lecturerID, enrollment.CourseID); err != nil {
		return nil, err
	}
	return s.AssignGrade(ctx, enrollmentID, grade)
}

// RemoveEnrollment deletes any enrollment without an ownership check.
func (s *EnrollmentService) RemoveEnrollment(ctx context.Context, enrollmentID string) error {
	if err := s.repo.DeleteByID(ctx, enrollmentID); err != nil {
		if isNoRows(err) {
			return notFound("enrollment not found")
		}
		return internalError(err, "failed to remove enrollment")
	}
	s.logger.Info("enrollment removed", zap.String("enrollment_id", enrollmentID))
	return nil
}

// Count returns the number of enrollments.
func (s *EnrollmentService) Count(ctx context.Context) (int64, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, internalError(err, "failed to count enrollments")
	}
	return total, nil
}

func (s *EnrollmentService) load(ctx context.Context, id string) (*dto.EnrollmentResponse, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("enrollment not found")
		}
		return nil, internalError(err, "failed to load enrollment")
	}
	out := mapper.EnrollmentToDTO(*enrollment)
	return &out, nil
}

func (s *EnrollmentService) require(ctx context.Context, lookup existenceChecker, id, message string) error {
	found, err := lookup.ExistsByID(ctx, id)
	if err != nil {
		return internalError(err, "failed to check "+strings.TrimSuffix(message, " not found"))
	}
	if !found {
		return notFound(message)
	}
	return nil
}

func (s *EnrollmentService) requireTeaching(ctx context.Context, lecturerID, courseID string) error {
	if err := s.require(ctx, s.lecturers, lecturerID, "lecturer not found"); err != nil {
		return err
	}
	if err := s.require(ctx, s.courses, courseID, "course not found"); err != nil {
		return err
	}
	taught, err := s.courses.IsTaughtBy(ctx, courseID, lecturerID)
	if err != nil {
		return internalError(err, "failed to check course lecturer")
	}
	if !taught {
		return appErrors.Clone(appErrors.ErrForbidden, "lecturer does not teach this course")
	}
	return nil
}
