package handlers

import (
	"tienda/internal/middleware"
	"tienda/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the caller's shopping cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes on an authenticated router.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:productId", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
}

// HandleGetCart returns the cart with a priced summary.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	view, err := h.service.GetCart(c.UserContext(), middleware.PrincipalFrom(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve cart")
	}
	return c.JSON(view)
}

// AddItemRequest is the body of an add-to-cart request.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// HandleAddItem adds a product to the cart, merging with an existing line.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	principal := middleware.PrincipalFrom(c)
	if err := h.service.AddItem(c.UserContext(), principal, req.ProductID, req.Quantity); err != nil {
		return respondError(c, err, "Could not add item to cart")
	}
	view, err := h.service.GetCart(c.UserContext(), principal)
	if err != nil {
		return respondError(c, err, "Could not retrieve cart")
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// HandleUpdateItem sets the quantity of a cart line. Zero or less removes it.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req struct {
		Quantity *int `json:"quantity" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	principal := middleware.PrincipalFrom(c)
	if err := h.service.UpdateItem(c.UserContext(), principal, c.Params("productId"), *req.Quantity); err != nil {
		return respondError(c, err, "Could not update cart item")
	}
	view, err := h.service.GetCart(c.UserContext(), principal)
	if err != nil {
		return respondError(c, err, "Could not retrieve cart")
	}
	return c.JSON(view)
}

// HandleRemoveItem takes a product out of the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	if err := h.service.RemoveItem(c.UserContext(), middleware.PrincipalFrom(c), c.Params("productId")); err != nil {
		return respondError(c, err, "Could not remove cart item")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext(), middleware.PrincipalFrom(c)); err != nil {
		return respondError(c, err, "Could not clear cart")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
