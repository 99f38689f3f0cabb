package routes

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthServer(h *HealthChecker) *echo.Echo {
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthChecker_Health(t *testing.T) {
	db := &fakePinger{}
	e := healthServer(NewHealthChecker(db, "1.2.3"))

	rec := get(e, "/api/v1/health")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[HealthStatus](t, rec)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Equal(t, "healthy", status.Checks["database"].Status)

	db.err = errors.New("connection refused")
	rec = get(e, "/api/v1/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	status = decode[HealthStatus](t, rec)
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "connection refused", status.Checks["database"].Message)
}

func TestHealthChecker_LiveAndReady(t *testing.T) {
	db := &fakePinger{}
	h := NewHealthChecker(db, "dev")
	e := healthServer(h)

	assert.Equal(t, http.StatusOK, get(e, "/api/v1/health/live").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/api/v1/health/ready").Code)

	h.SetReady(true)
	assert.Equal(t, http.StatusOK, get(e, "/api/v1/health/ready").Code)

	db.err = errors.New("timeout")
	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/api/v1/health/ready").Code)
}
