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

type mockPool struct {
	pingErr error
}

func (m *mockPool) Ping(ctx context.Context) error {
	return m.pingErr
}

type mockGeneratorStatus struct {
	available bool
}

func (m *mockGeneratorStatus) Available() bool { return m.available }

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
	status, body := checkHealth(t, NewHealthHandler(&mockPool{}, &mockGeneratorStatus{available: true}))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"status":"healthy"`)
	assert.Contains(t, body, `"generator":"ok"`)
}

func TestHealthHandler_Check_NoGenerator(t *testing.T) {
	status, body := checkHealth(t, NewHealthHandler(&mockPool{}, nil))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"status":"healthy"`)
}

func TestHealthHandler_Check_GeneratorOpen(t *testing.T) {
	status, body := checkHealth(t, NewHealthHandler(&mockPool{}, &mockGeneratorStatus{available: false}))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"status":"degraded"`)
	assert.Contains(t, body, `"generator":"unavailable"`)
}

func TestHealthHandler_Check_Unhealthy(t *testing.T) {
	status, body := checkHealth(t, NewHealthHandler(&mockPool{pingErr: errors.New("connection refused")}, nil))

	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Contains(t, body, `"status":"unhealthy"`)
	assert.Contains(t, body, `"error":"database connection failed"`)
}
