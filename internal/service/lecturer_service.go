package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/mapper"
	"github.com/noah-isme/campus-records-api/internal/models"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
	"github.com/noah-isme/campus-records-api/pkg/validation"
)

type lecturerRepository interface {
	List(ctx context.Context, filter models.LecturerFilter) ([]models.LecturerDetail, error)
	FindByID(ctx context.Context, id string) (*models.LecturerDetail, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	ExistsByEmployeeNumber(ctx context.Context, employeeNumber, excludeID string) (bool, error)
	SaveTx(ctx context.Context, tx *sqlx.Tx, lecturer *models.Lecturer) error
	Count(ctx context.Context) (int64, error)
}

type lecturerAccountRepository interface {
	accountRepository
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// LecturerService handles lecturer use-cases. Lecturers are never removed;
// deleting one disables its account.
type LecturerService struct {
	repo      lecturerRepository
	users     lecturerAccountRepository
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLecturerService constructs the lecturer service.
func NewLecturerService(repo lecturerRepository, users lecturerAccountRepository, tx txProvider, validate *validator.Validate, logger *zap.Logger) *LecturerService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LecturerService{repo: repo, users: users, tx: tx, validator: validate, logger: logger, now: time.Now}
}

// ListActive returns lecturers whose accounts are enabled.
func (s *LecturerService) ListActive(ctx context.Context) ([]dto.LecturerResponse, error) {
	return s.list(ctx, models.LecturerFilter{ActiveOnly: true})
}

// ListByDepartment returns enabled lecturers of a department.
func (s *LecturerService) ListByDepartment(ctx context.Context, department string) ([]dto.LecturerResponse, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department is required")
	}
	return s.list(ctx, models.LecturerFilter{ActiveOnly: true, Department: department})
}

func (s *LecturerService) list(ctx context.Context, filter models.LecturerFilter) ([]dto.LecturerResponse, error) {
	lecturers, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list lecturers")
	}
	return mapper.LecturersToDTO(lecturers), nil
}

// Get returns a lecturer by ID whether or not its account is enabled.
func (s *LecturerService) Get(ctx context.Context, id string) (*dto.LecturerResponse, error) {
	lecturer, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	out := mapper.LecturerToDTO(*lecturer)
	return &out, nil
}

func (s *LecturerService) find(ctx context.Context, id string) (*models.LecturerDetail, error) {
	lecturer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("lecturer not found")
		}
		return nil, internalError(err, "failed to load lecturer")
	}
	return lecturer, nil
}

// Create registers a lecturer and its LECTURER account. The username is the
// email and the initial password is the employee number.
func (s *LecturerService) Create(ctx context.Context, req dto.LecturerRequest) (*dto.LecturerResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err)
	}
	lecturer := mapper.LecturerFromRequest(req)
	if lecturer.HireDate.IsZero() {
		now := s.now().UTC()
		lecturer.HireDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if err := s.ensureUnique(ctx, lecturer, nil); err != nil {
		return nil, err
	}

	hash, err := hashPassword(lecturer.EmployeeNumber)
	if err != nil {
		return nil, internalError(err, "failed to hash password")
	}
	user := &models.User{
		Username:     lecturer.Email,
		PasswordHash: hash,
		Role:         models.RoleLecturer,
		Enabled:      true,
	}

	err = runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if err := s.users.CreateTx(ctx, tx, user); err != nil {
			return storageError(err, "failed to create lecturer account")
		}
		lecturer.UserID = user.ID
		if err := s.repo.SaveTx(ctx, tx, &lecturer); err != nil {
			return storageError(err, "failed to create lecturer")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lecturer created", zap.String("lecturer_id", lecturer.ID), zap.String("user_id", user.ID))
	out := mapper.LecturerToDTO(models.LecturerDetail{Lecturer: lecturer, Username: user.Username, Enabled: user.Enabled})
	return &out, nil
}

// Update replaces the mutable fields of a lecturer. Uniqueness is only checked
// for values that change, and the account username follows the email.
func (s *LecturerService) Update(ctx context.Context, id string, req dto.LecturerRequest) (*dto.LecturerResponse, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err)
	}
	updated := mapper.LecturerFromRequest(req)
	if updated.HireDate.IsZero() {
		updated.HireDate = existing.HireDate
	}
	if err := s.ensureUnique(ctx, updated, existing); err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt

	emailChanged := updated.Email != existing.Email
	err = runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if err := s.repo.SaveTx(ctx, tx, &updated); err != nil {
			if isNoRows(err) {
				return notFound("lecturer not found")
			}
			return storageError(err, "failed to update lecturer")
		}
		if emailChanged {
			if err := s.users.UpdateUsernameTx(ctx, tx, existing.UserID, updated.Email); err != nil {
				return storageError(err, "failed to update lecturer account")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	username := existing.Username
	if emailChanged {
		username = updated.Email
	}
	out := mapper.LecturerToDTO(models.LecturerDetail{Lecturer: updated, Username: username, Enabled: existing.Enabled})
	return &out, nil
}

// Delete disables the lecturer's account. The lecturer row and its course
// assignments are kept.
func (s *LecturerService) Delete(ctx context.Context, id string) error {
	lecturer, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	err = runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if err := s.users.SetEnabledTx(ctx, tx, lecturer.UserID, false); err != nil {
			if isNoRows(err) {
				return notFound("lecturer account not found")
			}
			return internalError(err, "failed to disable lecturer")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("lecturer disabled", zap.String("lecturer_id", id))
	return nil
}

// ChangePassword replaces the lecturer's password. The current password is not
// verified; callers are restricted to admins and the lecturer.
func (s *LecturerService) ChangePassword(ctx context.Context, id string, req dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validation.Error(err)
	}
	lecturer, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return internalError(err, "failed to hash password")
	}
	if err := s.users.UpdatePassword(ctx, lecturer.UserID, hash); err != nil {
		if isNoRows(err) {
			return notFound("lecturer account not found")
		}
		return internalError(err, "failed to update password")
	}
	s.logger.Info("lecturer password changed", zap.String("lecturer_id", id))
	return nil
}

// Count returns the number of lecturers.
func (s *LecturerService) Count(ctx context.Context) (int64, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, internalError(err, "failed to count lecturers")
	}
	return total, nil
}

func (s *LecturerService) ensureUnique(ctx context.Context, lecturer models.Lecturer, existing *models.LecturerDetail) error {
	excludeID, excludeUserID := "", ""
	checkEmail, checkEmployee := true, true
	if existing != nil {
		excludeID, excludeUserID = existing.ID, existing.UserID
		checkEmail = lecturer.Email != existing.Email
		checkEmployee = lecturer.EmployeeNumber != existing.EmployeeNumber
	}
	if checkEmail {
		taken, err := s.repo.ExistsByEmail(ctx, lecturer.Email, excludeID)
		if err != nil {
			return internalError(err, "failed to validate email")
		}
		if taken {
			return conflict("email already exists")
		}
		taken, err = s.users.ExistsByUsername(ctx, lecturer.Email, excludeUserID)
		if err != nil {
			return internalError(err, "failed to validate username")
		}
		if taken {
			return conflict("username already exists")
		}
	}
	if checkEmployee {
		taken, err := s.repo.ExistsByEmployeeNumber(ctx, lecturer.EmployeeNumber, excludeID)
		if err != nil {
			return internalError(err, "failed to validate employee number")
		}
		if taken {
			return conflict("employee number already exists")
		}
	}
	return nil
}
