package handlers

import (
	"petshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler exposes the authenticated user's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCartHandler(service *services.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *CartHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	cartRoutes := router.Group("/cart", auth)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:productId", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
}

type AddCartItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// UpdateCartItemRequest requires quantity; zero or less removes the line.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.logger, err, "Not authenticated")
	}
	cart, err := h.service.GetCart(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Could not retrieve cart")
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.logger, err, "Not authenticated")
	}
	var req AddCartItemRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	cart, err := h.service.AddItem(c.UserContext(), userID, req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, h.logger, err, "Could not add item to cart")
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.logger, err, "Not authenticated")
	}
	productID, err := paramID(c, "productId")
	if err != nil {
		return respondError(c, h.logger, err, "Invalid product id")
	}
	var req UpdateCartItemRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	cart, err := h.service.UpdateQuantity(c.UserContext(), userID, productID, *req.Quantity)
	if err != nil {
		return respondError(c, h.logger, err, "Could not update cart item")
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.logger, err, "Not authenticated")
	}
	productID, err := paramID(c, "productId")
	if err != nil {
		return respondError(c, h.logger, err, "Invalid product id")
	}
	cart, err := h.service.RemoveItem(c.UserContext(), userID, productID)
	if err != nil {
		return respondError(c, h.logger, err, "Could not remove cart item")
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.logger, err, "Not authenticated")
	}
	if err := h.service.Clear(c.UserContext(), userID); err != nil {
		return respondError(c, h.logger, err, "Could not clear cart")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
