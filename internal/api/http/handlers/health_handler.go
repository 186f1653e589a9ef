package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/correspondence-service/internal/persistence"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
}

// NewHealthHandler constructs handler.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": h.serviceName,
		"version": h.version,
		"status":  "ok",
	})
}

// Ready GET /health/ready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx := c.UserContext()
	status := http.StatusOK
	deps := fiber.Map{}

	if err := h.postgres.Ping(ctx); err != nil {
		deps["postgres"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		deps["postgres"] = "ok"
	}

	if err := h.redis.Ping(ctx); err != nil {
		deps["redis"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		deps["redis"] = "ok"
	}

	return c.Status(status).JSON(fiber.Map{
		"service":      h.serviceName,
		"version":      h.version,
		"dependencies": deps,
		"checked_at":   time.Now().UTC(),
	})
}
