package handlers

import (
	"inventorycart/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// InventoryHandler handles HTTP requests for the inventory catalog.
type InventoryHandler struct {
	service  *services.InventoryService
	validate *validator.Validate
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(service *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the inventory routes with the Fiber router.
func (h *InventoryHandler) RegisterRoutes(router fiber.Router) {
	inventoryRoutes := router.Group("/inventory")
	inventoryRoutes.Get("/", h.HandleListItems)
	inventoryRoutes.Get("/:id", h.HandleGetItem)
	inventoryRoutes.Post("/", h.HandleCreateItem)
	inventoryRoutes.Put("/:id", h.HandleUpdateItem)
	inventoryRoutes.Delete("/:id", h.HandleDeleteItem)
}

// HandleListItems returns every inventory item.
func (h *InventoryHandler) HandleListItems(c *fiber.Ctx) error {
	items, err := h.service.ListItems(c.UserContext())
	if err != nil {
		return respondError(c, "list_items", err)
	}
	return c.JSON(items)
}

// HandleGetItem returns a single inventory item.
func (h *InventoryHandler) HandleGetItem(c *fiber.Ctx) error {
	item, err := h.service.GetItem(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "get_item", err)
	}
	return c.JSON(item)
}

// HandleCreateItem creates an inventory item and answers 204.
func (h *InventoryHandler) HandleCreateItem(c *fiber.Ctx) error {
	var req InventoryRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, "create_item", err)
	}
	if err := h.service.CreateItem(c.UserContext(), req.toModel("")); err != nil {
		return respondError(c, "create_item", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleUpdateItem replaces an inventory item and answers 204.
func (h *InventoryHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req InventoryRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, "update_item", err)
	}
	if err := h.service.UpdateItem(c.UserContext(), req.toModel(c.Params("id"))); err != nil {
		return respondError(c, "update_item", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleDeleteItem deletes an inventory item and answers 204.
func (h *InventoryHandler) HandleDeleteItem(c *fiber.Ctx) error {
	if err := h.service.DeleteItem(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, "delete_item", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
