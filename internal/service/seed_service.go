package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/models"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

const (
	seedStudentAdmission = "STU001"
	seedLecturerEmail    = "john.doe@test.com"
	seedLecturerEmployee = "EMP001"
	seedSemester         = "Fall 2024"
)

type seedUserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetEnabled(ctx context.Context, id string, enabled bool) error
}

type seedStudentCreator interface {
	Create(ctx context.Context, req dto.StudentRequest) (*dto.StudentResponse, error)
}

type seedLecturerCreator interface {
	Create(ctx context.Context, req dto.LecturerRequest) (*dto.LecturerResponse, error)
}

type seedCourseCreator interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, req dto.CourseRequest) (*dto.CourseResponse, error)
}

// SeedConfig holds the credentials of the development administrator.
type SeedConfig struct {
	AdminUsername string
	AdminPassword string
}

// SeedService inserts development fixtures. Running it repeatedly converges on
// the same accounts and never duplicates rows.
type SeedService struct {
	users     seedUserStore
	students  seedStudentCreator
	lecturers seedLecturerCreator
	courses   seedCourseCreator
	cfg       SeedConfig
	logger    *zap.Logger
}

// NewSeedService constructs a SeedService.
func NewSeedService(users seedUserStore, students seedStudentCreator, lecturers seedLecturerCreator, courses seedCourseCreator, cfg SeedConfig, logger *zap.Logger) *SeedService {
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = "admin123"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{users: users, students: students, lecturers: lecturers, courses: courses, cfg: cfg, logger: logger}
}

// Run upserts the admin, sample student and sample lecturer accounts and adds
// the sample catalogue when no course exists yet.
func (s *SeedService) Run(ctx context.Context) error {
	if err := s.upsertAccount(ctx, s.cfg.AdminUsername, s.cfg.AdminPassword, models.RoleAdmin, nil); err != nil {
		return err
	}

	if err := s.upsertAccount(ctx, seedStudentAdmission, seedStudentAdmission, models.RoleStudent, func() error {
		_, err := s.students.Create(ctx, dto.StudentRequest{
			FirstName:       "Sample",
			LastName:        "Student",
			Email:           "stu001@test.com",
			AdmissionNumber: seedStudentAdmission,
			DateOfBirth:     "2002-01-15",
			Department:      "Computer Engineering",
		})
		return err
	}); err != nil {
		return err
	}

	var lecturerID string
	if err := s.upsertAccount(ctx, seedLecturerEmail, seedLecturerEmployee, models.RoleLecturer, func() error {
		lecturer, err := s.lecturers.Create(ctx, dto.LecturerRequest{
			FirstName:      "John",
			LastName:       "Doe",
			Email:          seedLecturerEmail,
			EmployeeNumber: seedLecturerEmployee,
			Department:     "Computer Engineering",
			Specialization: "Software Engineering",
		})
		if err == nil {
			lecturerID = lecturer.ID
		}
		return err
	}); err != nil {
		return err
	}

	return s.seedCourses(ctx, lecturerID)
}

// upsertAccount resets the password of an existing account and re-enables it.
// Missing accounts are created by create, or directly when create is nil.
func (s *SeedService) upsertAccount(ctx context.Context, username, password string, role models.UserRole, create func() error) error {
	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil && !isNoRows(err) {
		return internalError(err, "failed to look up seed account")
	}

	if existing == nil {
		if create != nil {
			if err := create(); err != nil {
				return err
			}
			s.logger.Info("seeded account", zap.String("username", username), zap.String("role", string(role)))
			return nil
		}
		hash, err := hashPassword(password)
		if err != nil {
			return internalError(err, "failed to hash password")
		}
		if err := s.users.Create(ctx, &models.User{Username: username, PasswordHash: hash, Role: role, Enabled: true}); err != nil {
			return storageError(err, "failed to create seed account")
		}
		s.logger.Info("seeded account", zap.String("username", username), zap.String("role", string(role)))
		return nil
	}

	hash, err := hashPassword(password)
	if err != nil {
		return internalError(err, "failed to hash password")
	}
	if err := s.users.UpdatePassword(ctx, existing.ID, hash); err != nil {
		return internalError(err, "failed to reset seed password")
	}
	if !existing.Enabled {
		if err := s.users.SetEnabled(ctx, existing.ID, true); err != nil {
			return internalError(err, "failed to enable seed account")
		}
	}
	return nil
}

func (s *SeedService) seedCourses(ctx context.Context, lecturerID string) error {
	total, err := s.courses.Count(ctx)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	var assigned *string
	if lecturerID != "" {
		assigned = &lecturerID
	}
	catalogue := []dto.CourseRequest{
		{CourseCode: "CS101", CourseTitle: "Introduction to Computer Science", Credits: 3, Description: strPtr("Basic concepts of computer science and programming"), Semester: seedSemester, LecturerID: assigned},
		{CourseCode: "MATH201", CourseTitle: "Calculus I", Credits: 4, Description: strPtr("Introduction to differential calculus"), Semester: seedSemester},
		{CourseCode: "ENG101", CourseTitle: "English Composition", Credits: 3, Description: strPtr("Basic writing and communication skills"), Semester: seedSemester},
	}
	for _, req := range catalogue {
		if _, err := s.courses.Create(ctx, req); err != nil {
			if errors.Is(err, appErrors.ErrConflict) {
				continue
			}
			return err
		}
	}
	s.logger.Info("seeded course catalogue", zap.Int("courses", len(catalogue)))
	return nil
}

func strPtr(v string) *string {
	return &v
}
