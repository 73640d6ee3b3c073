package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

func TestErrorHidesInternalCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, errors.New("pq: relation \"students\" does not exist"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
	require.Len(t, c.Errors, 1)
}

func TestErrorUsesTypedStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, appErrors.Clone(appErrors.ErrConflict, "email already exists"))

	assert.Equal(t, http.StatusConflict, w.Code)
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "CONFLICT", body.Error.Code)
	assert.Equal(t, "email already exists", body.Error.Message)
	assert.Empty(t, c.Errors)
}

func TestListIncludesTotal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	List(c, []string{"a", "b"}, 2)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":["a","b"],"meta":{"total":2}}`, w.Body.String())
}
