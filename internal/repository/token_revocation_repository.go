package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const revokedKeyPrefix = "revoked:"

// TokenRevocationRepository keeps a Redis deny-list of logged out bearer tokens.
// A nil client turns every operation into a no-op.
type TokenRevocationRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewTokenRevocationRepository constructs the repository.
func NewTokenRevocationRepository(client *redis.Client, logger *zap.Logger) *TokenRevocationRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenRevocationRepository{client: client, logger: logger}
}

// Enabled reports whether revocations are persisted.
func (r *TokenRevocationRepository) Enabled() bool {
	return r != nil && r.client != nil
}

// Revoke records token as revoked until ttl elapses.
func (r *TokenRevocationRepository) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if !r.Enabled() || ttl <= 0 {
		return nil
	}
	key := revocationKey(token)
	if err := r.client.Set(ctx, key, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// IsRevoked reports whether token was revoked.
func (r *TokenRevocationRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	if !r.Enabled() {
		return false, nil
	}
	key := revocationKey(token)
	if err := r.client.Get(ctx, key).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return true, nil
}

// Close releases the underlying Redis connection if present.
func (r *TokenRevocationRepository) Close() error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Close()
}

func revocationKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return revokedKeyPrefix + hex.EncodeToString(sum[:])
}
