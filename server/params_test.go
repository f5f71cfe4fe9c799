package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestWithParamRunsNextOnlyAfterResolution(t *testing.T) {
	s := &Server{log: zap.NewNop()}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/agents/42", nil)

	resolved := ""
	s.withParam(c, policyWrapped, func(context.Context) (string, error) {
		return "42", nil
	}, func(value string) {
		resolved = value
	})

	assert.Equal(t, "42", resolved)
}

func TestWithParamFailureShortCircuitsTo400(t *testing.T) {
	s := &Server{log: zap.NewNop()}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/agents/", nil)

	entered := false
	s.withParam(c, policyWrapped, func(context.Context) (string, error) {
		return "", errors.New("id lookup failed")
	}, func(string) {
		entered = true
	})

	assert.False(t, entered)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"message":"id lookup failed"}}`, w.Body.String())
}

func TestGinParamMissingValue(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/agents/", nil)

	_, err := ginParam(c, "id")(context.Background())
	assert.Error(t, err)
}
