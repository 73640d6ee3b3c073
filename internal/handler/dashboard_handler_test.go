package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus-records-api/internal/dto"
)

type fakeDashboardSrv struct {
	stats *dto.DashboardStatsResponse
	hit   bool
	err   error
}

func (f *fakeDashboardSrv) Stats(context.Context) (*dto.DashboardStatsResponse, bool, error) {
	return f.stats, f.hit, f.err
}

func TestDashboardHandlerStats(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboardSrv{
		stats: &dto.DashboardStatsResponse{TotalStudents: 3, TotalCourses: 2, TotalLecturers: 1, TotalEnrollments: 4},
		hit:   true,
	})

	rec := perform(t, http.MethodGet, "/admin/dashboard/stats", "/admin/dashboard/stats", "", nil, h.Stats)

	assertStatus(t, rec, http.StatusOK)
	envelope := decode(t, rec)
	assert.Equal(t, true, envelope.Meta["cacheHit"])
	var body dto.DashboardStatsResponse
	decodeData(t, rec, &body)
	assert.EqualValues(t, 3, body.TotalStudents)
	assert.EqualValues(t, 4, body.TotalEnrollments)
}

func TestDashboardHandlerStatsError(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboardSrv{err: errors.New("db down")})

	rec := perform(t, http.MethodGet, "/admin/dashboard/stats", "/admin/dashboard/stats", "", nil, h.Stats)

	assertStatus(t, rec, http.StatusInternalServerError)
	assert.NotContains(t, rec.Body.String(), "db down")
}
