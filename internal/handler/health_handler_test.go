package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPinger implements Pinger for testing health checks
type mockPinger struct {
	pingErr error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.pingErr
}

func checkHealth(t *testing.T, h *HealthHandler) (int, string) {
	t.Helper()
	app := fiber.New()
	app.Get("/health", h.Check)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHealthHandler_Check_Healthy(t *testing.T) {
	status, body := checkHealth(t, NewHealthHandler(&mockPinger{}, &mockPinger{}))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"status":"healthy"`)
}

func TestHealthHandler_Check_NoCache(t *testing.T) {
	status, body := checkHealth(t, NewHealthHandler(&mockPinger{}, nil))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"status":"healthy"`)
}

func TestHealthHandler_Check_CacheDown(t *testing.T) {
	status, body := checkHealth(t, NewHealthHandler(&mockPinger{}, &mockPinger{pingErr: errors.New("dial tcp: refused")}))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"status":"degraded"`)
	assert.Contains(t, body, `"cache":"unreachable"`)
}

func TestHealthHandler_Check_Unhealthy(t *testing.T) {
	status, body := checkHealth(t, NewHealthHandler(&mockPinger{pingErr: errors.New("connection refused")}, &mockPinger{}))

	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Contains(t, body, `"status":"unhealthy"`)
	assert.Contains(t, body, `"error":"database connection failed"`)
}
