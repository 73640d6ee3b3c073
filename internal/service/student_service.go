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

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	ExistsByAdmissionNumber(ctx context.Context, admissionNumber, excludeID string) (bool, error)
	SaveTx(ctx context.Context, tx *sqlx.Tx, student *models.Student) error
	DeleteByIDTx(ctx context.Context, tx *sqlx.Tx, id string) error
	Count(ctx context.Context) (int64, error)
}

type accountRepository interface {
	ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error)
	CreateTx(ctx context.Context, tx *sqlx.Tx, user *models.User) error
	UpdateUsernameTx(ctx context.Context, tx *sqlx.Tx, id, username string) error
	SetEnabledTx(ctx context.Context, tx *sqlx.Tx, id string, enabled bool) error
}

type studentEnrollmentCleaner interface {
	DeleteByStudentTx(ctx context.Context, tx *sqlx.Tx, studentID string) (int64, error)
}

// StudentService handles student use-cases. Every student owns a STUDENT account
// whose username and initial password are the admission number.
type StudentService struct {
	repo        studentRepository
	users       accountRepository
	enrollments studentEnrollmentCleaner
	tx          txProvider
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, users accountRepository, enrollments studentEnrollmentCleaner, tx txProvider, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, users: users, enrollments: enrollments, tx: tx, validator: validate, logger: logger}
}

// List returns all students.
func (s *StudentService) List(ctx context.Context) ([]dto.StudentResponse, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list students")
	}
	return mapper.StudentsToDTO(students), nil
}

// Get returns a student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*dto.StudentResponse, error) {
	student, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	out := mapper.StudentToDTO(*student)
	return &out, nil
}

func (s *StudentService) find(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("student not found")
		}
		return nil, internalError(err, "failed to load student")
	}
	return student, nil
}

// Create registers a student together with its login account.
func (s *StudentService) Create(ctx context.Context, req dto.StudentRequest) (*dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err)
	}
	student := mapper.StudentFromRequest(req)
	if err := s.ensureUnique(ctx, student, "", ""); err != nil {
		return nil, err
	}

	hash, err := hashPassword(student.AdmissionNumber)
	if err != nil {
		return nil, internalError(err, "failed to hash password")
	}
	user := &models.User{
		Username:     student.AdmissionNumber,
		PasswordHash: hash,
		Role:         models.RoleStudent,
		Enabled:      true,
	}

	err = runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if err := s.users.CreateTx(ctx, tx, user); err != nil {
			return storageError(err, "failed to create student account")
		}
		student.UserID = user.ID
		if err := s.repo.SaveTx(ctx, tx, &student); err != nil {
			return storageError(err, "failed to create student")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("student created", zap.String("student_id", student.ID), zap.String("user_id", user.ID))
	out := mapper.StudentToDTO(student)
	return &out, nil
}

// Update replaces the mutable fields of a student. The account username follows
// the admission number.
func (s *StudentService) Update(ctx context.Context, id string, req dto.StudentRequest) (*dto.StudentResponse, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err)
	}
	updated := mapper.StudentFromRequest(req)
	if err := s.ensureUnique(ctx, updated, existing.ID, existing.UserID); err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt

	err = runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if err := s.repo.SaveTx(ctx, tx, &updated); err != nil {
			if isNoRows(err) {
				return notFound("student not found")
			}
			return storageError(err, "failed to update student")
		}
		if updated.AdmissionNumber != existing.AdmissionNumber {
			if err := s.users.UpdateUsernameTx(ctx, tx, existing.UserID, updated.AdmissionNumber); err != nil {
				return storageError(err, "failed to update student account")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := mapper.StudentToDTO(updated)
	return &out, nil
}

// Delete removes a student and its enrollments and disables the login account.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	student, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	err = runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if _, err := s.enrollments.DeleteByStudentTx(ctx, tx, id); err != nil {
			return internalError(err, "failed to delete student enrollments")
		}
		if err := s.repo.DeleteByIDTx(ctx, tx, id); err != nil {
			if isNoRows(err) {
				return notFound("student not found")
			}
			return internalError(err, "failed to delete student")
		}
		if err := s.users.SetEnabledTx(ctx, tx, student.UserID, false); err != nil && !isNoRows(err) {
			return internalError(err, "failed to disable student account")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("student deleted", zap.String("student_id", id))
	return nil
}

// Count returns the number of students.
func (s *StudentService) Count(ctx context.Context) (int64, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, internalError(err, "failed to count students")
	}
	return total, nil
}

func (s *StudentService) ensureUnique(ctx context.Context, student models.Student, excludeID, excludeUserID string) error {
	taken, err := s.repo.ExistsByEmail(ctx, student.Email, excludeID)
	if err != nil {
		return internalError(err, "failed to validate email")
	}
	if taken {
		return conflict("email already exists")
	}
	taken, err = s.repo.ExistsByAdmissionNumber(ctx, student.AdmissionNumber, excludeID)
	if err != nil {
		return internalError(err, "failed to validate admission number")
	}
	if taken {
		return conflict("admission number already exists")
	}
	taken, err = s.users.ExistsByUsername(ctx, student.AdmissionNumber, excludeUserID)
	if err != nil {
		return internalError(err, "failed to validate username")
	}
	if taken {
		return conflict("username already exists")
	}
	return nil
}
