package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-records-api/internal/dto"
)

const dashboardStatsCacheKey = "dash:admin:stats"

type recordCounter interface {
	Count(ctx context.Context) (int64, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the admin dashboard counters.
type DashboardService struct {
	students    recordCounter
	courses     recordCounter
	lecturers   recordCounter
	enrollments recordCounter
	cache       *CacheService
	logger      *zap.Logger
	cfg         DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Students    recordCounter
	Courses     recordCounter
	Lecturers   recordCounter
	Enrollments recordCounter
	Cache       *CacheService
	Logger      *zap.Logger
	Config      DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		students:    params.Students,
		courses:     params.Courses,
		lecturers:   params.Lecturers,
		enrollments: params.Enrollments,
		cache:       params.Cache,
		logger:      logger,
		cfg:         cfg,
	}
}

// Stats returns record totals and whether they were served from cache.
func (s *DashboardService) Stats(ctx context.Context) (*dto.DashboardStatsResponse, bool, error) {
	var cached dto.DashboardStatsResponse
	if s.cache.Get(ctx, dashboardStatsCacheKey, &cached) {
		return &cached, true, nil
	}

	stats := &dto.DashboardStatsResponse{}
	counters := []struct {
		name    string
		counter recordCounter
		dest    *int64
	}{
		{"students", s.students, &stats.TotalStudents},
		{"courses", s.courses, &stats.TotalCourses},
		{"lecturers", s.lecturers, &stats.TotalLecturers},
		{"enrollments", s.enrollments, &stats.TotalEnrollments},
	}
	for _, c := range counters {
		total, err := c.counter.Count(ctx)
		if err != nil {
			s.logger.Error("dashboard count failed", zap.String("resource", c.name), zap.Error(err))
			return nil, false, internalError(err, "failed to count "+c.name)
		}
		*c.dest = total
	}

	s.cache.Set(ctx, dashboardStatsCacheKey, stats, s.cfg.CacheTTL)
	return stats, false, nil
}

// Invalidate drops cached dashboard payloads after a write.
func (s *DashboardService) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, "dash:*")
}
