package handlers

import (
	"inventorycart/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber router.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/", h.HandleAddToCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Put("/:cartId", h.HandleSetLineQuantity)
	cartRoutes.Delete("/:cartId", h.HandleRemoveLine)
}

// HandleGetCart returns the cart lines and grand total.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	view, err := h.service.GetCart(c.UserContext())
	if err != nil {
		return respondError(c, "get_cart", err)
	}
	return c.JSON(view)
}

// HandleAddToCart adds an item to the cart: 404 for an unknown item, 409 when
// the requested quantity exceeds stock.
func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req AddToCartRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, "add_to_cart", err)
	}
	if err := h.service.AddToCart(c.UserContext(), req.InventoryID, req.Quantity); err != nil {
		return respondError(c, "add_to_cart", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleClearCart removes every cart line.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.ClearCart(c.UserContext()); err != nil {
		return respondError(c, "clear_cart", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSetLineQuantity overwrites a line's quantity, deleting the line when
// the quantity is zero or negative.
func (h *CartHandler) HandleSetLineQuantity(c *fiber.Ctx) error {
	var req SetQuantityRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, "set_line_quantity", err)
	}
	if err := h.service.SetLineQuantity(c.UserContext(), c.Params("cartId"), *req.Quantity); err != nil {
		return respondError(c, "set_line_quantity", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleRemoveLine deletes a single cart line.
func (h *CartHandler) HandleRemoveLine(c *fiber.Ctx) error {
	if err := h.service.RemoveLine(c.UserContext(), c.Params("cartId")); err != nil {
		return respondError(c, "remove_line", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
