package handlers

import (
	"context"
	"time"

	"inventorycart/internal/services"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports liveness and storage reachability.
type HealthHandler struct {
	inventory *services.InventoryService
	broker    string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(inventory *services.InventoryService, broker string) *HealthHandler {
	return &HealthHandler{inventory: inventory, broker: broker}
}

// RegisterRoutes registers the health route.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth answers 200 when storage responds and 503 otherwise.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status, storage, code := "healthy", "ok", fiber.StatusOK
	if err := h.inventory.Ping(ctx); err != nil {
		status, storage, code = "degraded", err.Error(), fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":  status,
		"storage": storage,
		"events":  h.broker,
		"time":    time.Now().Format(time.RFC3339),
	})
}
