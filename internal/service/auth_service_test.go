package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-records-api/internal/models"
	"github.com/noah-isme/campus-records-api/internal/token"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

type fakeRevocation struct {
	revoked map[string]time.Duration
	err     error
}

func (f *fakeRevocation) Revoke(ctx context.Context, tok string, ttl time.Duration) error {
	if f.revoked == nil {
		f.revoked = map[string]time.Duration{}
	}
	f.revoked[tok] = ttl
	return nil
}

func (f *fakeRevocation) IsRevoked(ctx context.Context, tok string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[tok]
	return ok, nil
}

type authFixture struct {
	*campus
	auth       *AuthService
	revocation *fakeRevocation
	metrics    *MetricsService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	c := newCampus(t)
	f := &authFixture{campus: c, revocation: &fakeRevocation{}, metrics: NewMetricsService()}
	f.auth = NewAuthService(AuthServiceParams{
		Users:      memUsers{c.db},
		Students:   memStudents{c.db},
		Lecturers:  memLecturers{c.db},
		Registrar:  c.students,
		Issuer:     token.NewDevIssuer(time.Hour),
		Revocation: f.revocation,
		Metrics:    f.metrics,
	})
	return f
}

func (f *authFixture) seedAdmin(t *testing.T, enabled bool) {
	t.Helper()
	hash, err := hashPassword("admin123")
	require.NoError(t, err)
	require.NoError(t, memUsers{f.db}.Create(context.Background(), &models.User{
		Username: "admin", PasswordHash: hash, Role: models.RoleAdmin, Enabled: enabled,
	}))
}

func TestAuthServiceLoginStudentDetails(t *testing.T) {
	f := newAuthFixture(t)
	expectCommit(f.mock)
	student, err := f.students.Create(context.Background(), studentRequest("ADM-100", "jane@uni.test"))
	require.NoError(t, err)

	resp, err := f.auth.Login(context.Background(), models.LoginRequest{Username: "ADM-100", Password: "ADM-100", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "Login successful", resp.Message)
	assert.Equal(t, models.RoleStudent, resp.Role)
	assert.True(t, token.Validate(token.NewDevIssuer(time.Hour), resp.Token))
	require.NotNil(t, resp.Details)
	assert.Equal(t, student.ID, resp.Details.StudentID)
	assert.Equal(t, "ADM-100", resp.Details.AdmissionNumber)
	assert.Equal(t, "jane@uni.test", resp.Details.Email)

	require.Len(t, f.db.audits, 1)
	assert.Equal(t, models.AuditActionLogin, f.db.audits[0].Action)
	assert.Equal(t, "10.0.0.1", f.db.audits[0].IPAddress)
	assert.EqualValues(t, 1, f.metrics.Snapshot().LoginsSucceeded)
}

func TestAuthServiceLoginAdminDetails(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t, true)

	resp, err := f.auth.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, "Admin access granted", resp.Details.Message)
}

func TestAuthServiceLoginMissingProfile(t *testing.T) {
	f := newAuthFixture(t)
	hash, err := hashPassword("STU001")
	require.NoError(t, err)
	require.NoError(t, memUsers{f.db}.Create(context.Background(), &models.User{
		Username: "STU001", PasswordHash: hash, Role: models.RoleStudent, Enabled: true,
	}))

	resp, err := f.auth.Login(context.Background(), models.LoginRequest{Username: "STU001", Password: "STU001"})
	require.NoError(t, err)
	assert.Equal(t, "profile not found", resp.Details.Message)
	assert.Empty(t, resp.Details.StudentID)
}

func TestAuthServiceLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t, true)
	hash, err := hashPassword("secret")
	require.NoError(t, err)
	require.NoError(t, memUsers{f.db}.Create(context.Background(), &models.User{
		Username: "retired", PasswordHash: hash, Role: models.RoleAdmin, Enabled: false,
	}))

	cases := []models.LoginRequest{
		{Username: "nobody", Password: "admin123"},
		{Username: "admin", Password: "wrong"},
		{Username: "retired", Password: "secret"},
	}
	for _, req := range cases {
		_, err := f.auth.Login(context.Background(), req)
		require.Error(t, err, req.Username)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code, req.Username)
		assert.Equal(t, "invalid credentials", appErr.Message, req.Username)
	}
	assert.EqualValues(t, 3, f.metrics.Snapshot().LoginsFailed)
	assert.Empty(t, f.db.audits)
}

func TestAuthServiceLoginUnknownUserStillComparesHash(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t, true)
	var compared [][]byte
	f.auth.compare = func(hash, password []byte) error {
		compared = append(compared, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	_, err := f.auth.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "admin123"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
	require.Len(t, compared, 1)
	assert.Equal(t, placeholderHash(), compared[0])

	_, err = f.auth.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "wrong"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
	assert.Len(t, compared, 2)
}

func TestAuthServiceLoginValidatesInput(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.auth.Login(context.Background(), models.LoginRequest{Username: " ", Password: ""})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAuthServiceAuthenticateResolvesProfile(t *testing.T) {
	f := newAuthFixture(t)
	expectCommit(f.mock)
	student, err := f.students.Create(context.Background(), studentRequest("ADM-100", "jane@uni.test"))
	require.NoError(t, err)
	resp, err := f.auth.Login(context.Background(), models.LoginRequest{Username: "ADM-100", Password: "ADM-100"})
	require.NoError(t, err)

	principal, err := f.auth.Authenticate(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, student.ID, principal.StudentID)
	assert.Equal(t, student.UserID, principal.UserID)
	assert.True(t, principal.Owns(student.ID))

	_, err = f.auth.Authenticate(context.Background(), "garbage")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceAuthenticateRejectsDisabledAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t, true)
	resp, err := f.auth.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	admin, err := memUsers{f.db}.FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	require.NoError(t, memUsers{f.db}.SetEnabled(context.Background(), admin.ID, false))

	_, err = f.auth.Authenticate(context.Background(), resp.Token)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceLogoutRevokesToken(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t, true)
	resp, err := f.auth.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	principal, err := f.auth.Authenticate(context.Background(), resp.Token)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(context.Background(), *principal, resp.Token, "10.0.0.2", "curl"))
	ttl, ok := f.revocation.revoked[resp.Token]
	require.True(t, ok)
	assert.True(t, ttl > 0 && ttl <= time.Hour)

	_, err = f.auth.Authenticate(context.Background(), resp.Token)
	require.Error(t, err)
	assert.Equal(t, "token revoked", appErrors.FromError(err).Message)
	assert.Equal(t, models.AuditActionLogout, f.db.audits[len(f.db.audits)-1].Action)
}

func TestAuthServiceRevocationOutageFailsOpen(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t, true)
	resp, err := f.auth.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	f.revocation.err = errors.New("redis down")
	_, err = f.auth.Authenticate(context.Background(), resp.Token)
	assert.NoError(t, err)
}

func TestAuthServiceRegisterCreatesStudent(t *testing.T) {
	f := newAuthFixture(t)
	expectCommit(f.mock)

	created, err := f.auth.Register(context.Background(), studentRequest("ADM-300", "new@uni.test"))
	require.NoError(t, err)
	assert.Equal(t, "ADM-300", created.AdmissionNumber)

	resp, err := f.auth.Login(context.Background(), models.LoginRequest{Username: "ADM-300", Password: "ADM-300"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.Details.StudentID)
}

func TestAuthServiceMe(t *testing.T) {
	f := newAuthFixture(t)
	expectCommit(f.mock)
	_, err := f.lecturers.Create(context.Background(), lecturerRequest("ada@uni.test", "EMP-7", "Computing"))
	require.NoError(t, err)

	resp, err := f.auth.Login(context.Background(), models.LoginRequest{Username: "ada@uni.test", Password: "EMP-7"})
	require.NoError(t, err)
	principal, err := f.auth.Authenticate(context.Background(), resp.Token)
	require.NoError(t, err)

	me, err := f.auth.Me(context.Background(), *principal)
	require.NoError(t, err)
	assert.Equal(t, "EMP-7", me.EmployeeNumber)
	assert.Equal(t, principal.LecturerID, me.LecturerID)
}
