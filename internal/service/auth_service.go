package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/models"
	"github.com/noah-isme/campus-records-api/internal/token"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
	"github.com/noah-isme/campus-records-api/pkg/validation"
)

const loginSuccessMessage = "Login successful"

var (
	unknownUserHashOnce sync.Once
	unknownUserHash     []byte
)

// placeholderHash is compared against when the username is unknown so that
// the rejection costs one bcrypt comparison like a wrong password does.
func placeholderHash() []byte {
	unknownUserHashOnce.Do(func() {
		unknownUserHash, _ = bcrypt.GenerateFromPassword([]byte("unknown-user-placeholder"), bcrypt.DefaultCost)
	})
	return unknownUserHash
}

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type studentProfileLookup interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

type lecturerProfileLookup interface {
	FindByUserID(ctx context.Context, userID string) (*models.LecturerDetail, error)
}

type studentRegistrar interface {
	Create(ctx context.Context, req dto.StudentRequest) (*dto.StudentResponse, error)
}

type tokenRevocationStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// AuthService provides authentication use cases.
type AuthService struct {
	users      authUserRepository
	students   studentProfileLookup
	lecturers  lecturerProfileLookup
	registrar  studentRegistrar
	issuer     token.Issuer
	revocation tokenRevocationStore
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
	compare    func(hash, password []byte) error
}

// AuthServiceParams groups constructor dependencies. Revocation and Metrics are optional.
type AuthServiceParams struct {
	Users      authUserRepository
	Students   studentProfileLookup
	Lecturers  lecturerProfileLookup
	Registrar  studentRegistrar
	Issuer     token.Issuer
	Revocation tokenRevocationStore
	Metrics    *MetricsService
	Validator  *validator.Validate
	Logger     *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(params AuthServiceParams) *AuthService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validation.New()
	}
	return &AuthService{
		users:      params.Users,
		students:   params.Students,
		lecturers:  params.Lecturers,
		registrar:  params.Registrar,
		issuer:     params.Issuer,
		revocation: params.Revocation,
		metrics:    params.Metrics,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
		compare:    bcrypt.CompareHashAndPassword,
	}
}

// Login authenticates a user and returns an issued token. Unknown users, wrong
// passwords and disabled accounts all fail with the same error.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err)
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if isNoRows(err) {
			_ = s.compare(placeholderHash(), []byte(req.Password))
			s.metrics.RecordLogin(false)
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, internalError(err, "failed to fetch user")
	}
	if err := s.compare([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.RecordLogin(false)
		return nil, appErrors.ErrInvalidCredentials
	}
	if !user.Enabled {
		s.logger.Info("login rejected for disabled account", zap.String("user_id", user.ID))
		s.metrics.RecordLogin(false)
		return nil, appErrors.ErrInvalidCredentials
	}

	tok, expiresAt, err := s.issuer.Generate(*user)
	if err != nil {
		return nil, internalError(err, "failed to issue token")
	}

	details, err := s.details(ctx, user)
	if err != nil {
		return nil, err
	}

	userID := user.ID
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionLogin,
		Resource:   "auth",
		ResourceID: &userID,
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record login audit log", zap.Error(err))
	}
	s.metrics.RecordLogin(true)

	return &models.LoginResponse{
		Token:     tok,
		ExpiresAt: expiresAt,
		Username:  user.Username,
		Role:      user.Role,
		Message:   loginSuccessMessage,
		Details:   details,
	}, nil
}

// Register creates a student exactly like an admin would. No token is issued.
func (s *AuthService) Register(ctx context.Context, req dto.StudentRequest) (*dto.StudentResponse, error) {
	return s.registrar.Create(ctx, req)
}

// Authenticate resolves a bearer token into the principal it belongs to.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*models.Principal, error) {
	claims, err := s.issuer.Parse(raw)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token expired")
		}
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	if s.revocation != nil {
		revoked, err := s.revocation.IsRevoked(ctx, raw)
		if err != nil {
			s.logger.Warn("token revocation lookup failed", zap.Error(err))
		} else if revoked {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token revoked")
		}
	}

	user, err := s.users.FindByUsername(ctx, claims.Username)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
		}
		return nil, internalError(err, "failed to fetch user")
	}
	if !user.Enabled {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account disabled")
	}
	if claims.Role != "" && claims.Role != user.Role {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}

	principal := &models.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}
	switch user.Role {
	case models.RoleStudent:
		if student, err := s.students.FindByUserID(ctx, user.ID); err == nil {
			principal.StudentID = student.ID
		} else if !isNoRows(err) {
			return nil, internalError(err, "failed to load student profile")
		}
	case models.RoleLecturer:
		if lecturer, err := s.lecturers.FindByUserID(ctx, user.ID); err == nil {
			principal.LecturerID = lecturer.ID
		} else if !isNoRows(err) {
			return nil, internalError(err, "failed to load lecturer profile")
		}
	}
	return principal, nil
}

// Me describes the authenticated principal and its profile.
func (s *AuthService) Me(ctx context.Context, principal models.Principal) (*models.UserDetails, error) {
	user, err := s.users.FindByUsername(ctx, principal.Username)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("user not found")
		}
		return nil, internalError(err, "failed to fetch user")
	}
	return s.details(ctx, user)
}

// Logout revokes raw until it would have expired. Without a revocation store
// the token stays valid until expiry.
func (s *AuthService) Logout(ctx context.Context, principal models.Principal, raw string, ip, userAgent string) error {
	claims, err := s.issuer.Parse(raw)
	if err != nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	if s.revocation != nil {
		if err := s.revocation.Revoke(ctx, raw, claims.ExpiresAt.Sub(s.now())); err != nil {
			return internalError(err, "failed to revoke token")
		}
	}
	userID := principal.UserID
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionLogout,
		Resource:   "auth",
		ResourceID: &userID,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}); err != nil {
		s.logger.Warn("failed to record logout audit log", zap.Error(err))
	}
	return nil
}

func (s *AuthService) details(ctx context.Context, user *models.User) (*models.UserDetails, error) {
	details := &models.UserDetails{ID: user.ID, Username: user.Username, Role: user.Role}
	switch user.Role {
	case models.RoleStudent:
		student, err := s.students.FindByUserID(ctx, user.ID)
		if err != nil {
			if isNoRows(err) {
				details.Message = "profile not found"
				return details, nil
			}
			return nil, internalError(err, "failed to load student profile")
		}
		details.StudentID = student.ID
		details.FirstName = student.FirstName
		details.LastName = student.LastName
		details.Email = student.Email
		details.AdmissionNumber = student.AdmissionNumber
	case models.RoleLecturer:
		lecturer, err := s.lecturers.FindByUserID(ctx, user.ID)
		if err != nil {
			if isNoRows(err) {
				details.Message = "profile not found"
				return details, nil
			}
			return nil, internalError(err, "failed to load lecturer profile")
		}
		details.LecturerID = lecturer.ID
		details.FirstName = lecturer.FirstName
		details.LastName = lecturer.LastName
		details.Email = lecturer.Email
		details.EmployeeNumber = lecturer.EmployeeNumber
	case models.RoleAdmin:
		details.Message = "Admin access granted"
	}
	return details, nil
}
