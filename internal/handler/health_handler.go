package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Pinger is an interface for health check ping operations.
type Pinger interface {
	Ping(ctx context.Context) error
}

// GeneratorStatus reports whether the idea generator is accepting calls.
type GeneratorStatus interface {
	Available() bool
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	pool      Pinger
	generator GeneratorStatus
}

// NewHealthHandler creates a new HealthHandler. generator may be nil.
func NewHealthHandler(pool Pinger, generator GeneratorStatus) *HealthHandler {
	return &HealthHandler{pool: pool, generator: generator}
}

// Check pings the database and reports the generator circuit state.
// An unreachable database is 503; an open generator circuit only degrades
// the service, since balances, coupons and creations still work.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.pool.Ping(c.Context()); err != nil {
		log.Error().Err(err).Msg("health check failed: database unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  "database connection failed",
		})
	}

	generator := "ok"
	status := "healthy"
	if h.generator != nil && !h.generator.Available() {
		generator = "unavailable"
		status = "degraded"
	}
	return c.JSON(fiber.Map{
		"status":    status,
		"database":  "ok",
		"generator": generator,
	})
}
