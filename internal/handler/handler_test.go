package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubHealth struct {
	err error
}

func (s stubHealth) HealthCheck(context.Context) error { return s.err }

func newTestRouter(health HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(nil, health).Register(r)
	return r
}

// TestHealthz checks readiness reflects the database ping, not just process
// liveness.
func TestHealthz(t *testing.T) {
	r := newTestRouter(stubHealth{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthzDatabaseDown(t *testing.T) {
	r := newTestRouter(stubHealth{err: errors.New("connection refused")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded"}`, w.Body.String())
}
