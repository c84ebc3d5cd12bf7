package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"red-envelope/internal/config"
	"red-envelope/internal/domain/entity"
	"red-envelope/internal/infrastructure/database"
	"red-envelope/internal/infrastructure/redis"
)

// Pinger is a dependency the health check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]Pinger
	logger *zap.Logger
}

func NewHealthHandler(db *database.Database, rdb *redis.RedisClient, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		checks: map[string]Pinger{
			"database": db,
			"redis":    rdb,
		},
		logger: logger,
	}
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
}

// Health godoc
// @Summary Health check
// @Description Check if the service and its storage are reachable
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} entity.APIResponse
// @Failure 503 {object} entity.APIResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:       "healthy",
		Timestamp:    time.Now(),
		Version:      config.Version,
		Dependencies: make(map[string]string, len(h.checks)),
	}

	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			resp.Dependencies[name] = "down"
			resp.Status = "degraded"
			continue
		}
		resp.Dependencies[name] = "up"
	}

	if resp.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(&entity.APIResponse{
			Success: false,
			Message: "Service is degraded",
			Data:    resp,
		})
	}

	return c.JSON(entity.NewSuccessResponse(resp, "Service is healthy"))
}
