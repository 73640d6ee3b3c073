package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService wraps a CacheRepository with hit/miss accounting. Cache failures
// are logged and reported as misses so callers fall back to the database.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get loads key into dest and reports whether it was a hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return true
}

// Set stores the value in cache, using the default TTL when ttl is not positive.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	if err := s.repo.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes cached values matching pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) {
	if !s.Enabled() {
		return
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
