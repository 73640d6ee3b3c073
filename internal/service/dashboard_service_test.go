package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

type memCache struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
	failGet error
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.failGet != nil {
		return m.failGet
	}
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func newDashboard(c *campus, cache *CacheService) *DashboardService {
	return NewDashboardService(DashboardServiceParams{
		Students:    c.students,
		Courses:     c.courses,
		Lecturers:   c.lecturers,
		Enrollments: c.enrollments,
		Cache:       cache,
	})
}

func TestDashboardServiceStatsCountsRecords(t *testing.T) {
	c, student, course := enrolledCampus(t)
	_, err := c.enrollments.Enroll(context.Background(), student.ID, course.ID)
	require.NoError(t, err)

	stats, hit, err := newDashboard(c, nil).Stats(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.EqualValues(t, 1, stats.TotalStudents)
	assert.EqualValues(t, 1, stats.TotalCourses)
	assert.EqualValues(t, 0, stats.TotalLecturers)
	assert.EqualValues(t, 1, stats.TotalEnrollments)
}

func TestDashboardServiceStatsUsesCacheUntilInvalidated(t *testing.T) {
	c, _, _ := enrolledCampus(t)
	store := newMemCache()
	metrics := NewMetricsService()
	dashboard := newDashboard(c, NewCacheService(store, metrics, time.Minute, nil, true))
	ctx := context.Background()

	_, hit, err := dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, time.Minute, store.ttls[dashboardStatsCacheKey])

	_, err = c.courses.Create(ctx, courseRequest("ENG101", nil))
	require.NoError(t, err)

	cached, hit, err := dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.EqualValues(t, 1, cached.TotalCourses)

	dashboard.Invalidate(ctx)
	fresh, hit, err := dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.EqualValues(t, 2, fresh.TotalCourses)

	snapshot := metrics.Snapshot()
	assert.EqualValues(t, 1, snapshot.CacheHits)
	assert.EqualValues(t, 2, snapshot.CacheMisses)
}

func TestDashboardServiceStatsFallsBackWhenCacheFails(t *testing.T) {
	c, _, _ := enrolledCampus(t)
	store := newMemCache()
	store.failGet = errors.New("redis down")
	dashboard := newDashboard(c, NewCacheService(store, nil, 0, nil, true))

	stats, hit, err := dashboard.Stats(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.EqualValues(t, 1, stats.TotalStudents)
}

func TestDashboardServiceStatsPropagatesStorageErrors(t *testing.T) {
	c, _, _ := enrolledCampus(t)
	c.db.failWith = errors.New("connection reset")

	_, _, err := newDashboard(c, nil).Stats(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}
