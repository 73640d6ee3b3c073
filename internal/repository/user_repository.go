package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-records-api/internal/models"
)

const userColumns = "id, username, password_hash, role, enabled, created_at, updated_at"

// UserRepository handles persistence for accounts and their audit trail.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername fetches a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, "SELECT "+userColumns+" FROM users WHERE username = $1", username); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID fetches a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, "SELECT "+userColumns+" FROM users WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsername checks whether a username is taken, optionally ignoring one user.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	found, err := existsExcluding(ctx, r.db, "users", "username", username, excludeID)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return found, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.create(ctx, r.db, user)
}

// CreateTx inserts a new user inside tx.
func (r *UserRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, user *models.User) error {
	return r.create(ctx, tx, user)
}

func (r *UserRepository) create(ctx context.Context, exec sqlx.ExtContext, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	const query = `INSERT INTO users (id, username, password_hash, role, enabled, created_at, updated_at)
        VALUES (:id, :username, :password_hash, :role, :enabled, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateUsernameTx renames a user inside tx.
func (r *UserRepository) UpdateUsernameTx(ctx context.Context, tx *sqlx.Tx, id, username string) error {
	res, err := tx.ExecContext(ctx, "UPDATE users SET username = $1, updated_at = $2 WHERE id = $3", username, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update username: %w", err)
	}
	return affectedOne(res)
}

// SetEnabled toggles whether the user may sign in.
func (r *UserRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return r.setEnabled(ctx, r.db, id, enabled)
}

// SetEnabledTx toggles the enabled flag inside tx.
func (r *UserRepository) SetEnabledTx(ctx context.Context, tx *sqlx.Tx, id string, enabled bool) error {
	return r.setEnabled(ctx, tx, id, enabled)
}

func (r *UserRepository) setEnabled(ctx context.Context, exec sqlx.ExtContext, id string, enabled bool) error {
	res, err := exec.ExecContext(ctx, "UPDATE users SET enabled = $1, updated_at = $2 WHERE id = $3", enabled, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set user enabled: %w", err)
	}
	return affectedOne(res)
}

// UpdatePassword updates the user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3", passwordHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return affectedOne(res)
}

// CreateAuditLog stores an audit log entry.
func (r *UserRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, ip_address, user_agent, created_at) VALUES (:id, :user_id, :action, :resource, :resource_id, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
