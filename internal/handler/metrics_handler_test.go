package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus-records-api/internal/service"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(nil, fakePinger{})
	rec := perform(t, http.MethodGet, "/ready", "/ready", "", nil, h.Ready)
	assertStatus(t, rec, http.StatusOK)

	h = NewMetricsHandler(nil, fakePinger{err: errors.New("refused")})
	rec = perform(t, http.MethodGet, "/ready", "/ready", "", nil, h.Ready)
	assertStatus(t, rec, http.StatusServiceUnavailable)
	assert.Equal(t, "NOT_READY", decode(t, rec).Error.Code)
}

func TestMetricsHandlerPrometheusWithoutMetrics(t *testing.T) {
	h := NewMetricsHandler(nil, nil)
	rec := perform(t, http.MethodGet, "/metrics", "/metrics", "", nil, h.Prometheus)
	assertStatus(t, rec, http.StatusServiceUnavailable)
}

func TestMetricsHandlerSnapshot(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordLogin(true)
	h := NewMetricsHandler(metrics, nil)

	rec := perform(t, http.MethodGet, "/admin/metrics", "/admin/metrics", "", nil, h.Snapshot)

	assertStatus(t, rec, http.StatusOK)
	var body struct {
		LoginsSucceeded uint64 `json:"loginsSucceeded"`
	}
	decodeData(t, rec, &body)
	assert.EqualValues(t, 1, body.LoginsSucceeded)
}
