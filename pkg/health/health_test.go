package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, c *Checker, path string) (int, Response) {
	t.Helper()

	e := echo.New()
	c.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestChecker_Health(t *testing.T) {
	c := NewChecker("test")
	c.Register("database", PingFunc(func(context.Context) error { return nil }))
	c.Register("redis", PingFunc(func(context.Context) error { return errors.New("connection refused") }))

	code, resp := serve(t, c, "/api/v1/health")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Equal(t, StatusHealthy, resp.Checks["database"].Status)
	assert.Equal(t, "connection refused", resp.Checks["redis"].Message)
}

func TestChecker_Readiness(t *testing.T) {
	c := NewChecker("test")
	c.Register("database", PingFunc(func(context.Context) error { return nil }))

	code, resp := serve(t, c, "/api/v1/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, resp.Checks, "startup")

	c.SetReady(true)
	code, resp = serve(t, c, "/api/v1/health/ready")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusHealthy, resp.Status)

	code, _ = serve(t, c, "/api/v1/health/live")
	assert.Equal(t, http.StatusOK, code)
}

func TestChecker_NilDependency(t *testing.T) {
	c := NewChecker("test")
	c.Register("redis", nil)

	checks := c.RunChecks(context.Background())
	assert.Equal(t, StatusUnhealthy, checks["redis"].Status)
	assert.Equal(t, "redis not configured", checks["redis"].Message)
}
