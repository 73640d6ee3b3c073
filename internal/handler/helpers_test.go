package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records-api/internal/middleware"
	"github.com/noah-isme/campus-records-api/internal/models"
)

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error *apiError              `json:"error"`
}

// perform registers h on route and sends one request through a fresh engine.
func perform(t *testing.T, method, route, target, body string, principal *models.Principal, h gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Handle(method, route, func(c *gin.Context) {
		if principal != nil {
			c.Set(middleware.ContextPrincipalKey, principal)
			c.Set(middleware.ContextTokenKey, "raw-token")
		}
		c.Next()
	}, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, dest))
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equalf(t, status, rec.Code, "body: %s", rec.Body.String())
}

