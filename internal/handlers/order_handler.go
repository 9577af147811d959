package handlers

import (
	"petshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
}

// CreateOrderRequest is the checkout form. The items come from the cart.
type CreateOrderRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required,max=500"`
	PaymentMethod   string `json:"payment_method" validate:"required,max=32"`
	Notes           string `json:"notes"`
}

// HandleGetOrders lists the caller's orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.logger, err, "Not authenticated")
	}
	orders, err := h.service.GetOrdersByUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order of the caller.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.logger, err, "Not authenticated")
	}
	orderID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "Invalid order id")
	}
	order, err := h.service.GetOrderByID(c.UserContext(), orderID, userID)
	if err != nil {
		return respondError(c, h.logger, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// HandleCreateOrder checks out the caller's cart.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.logger, err, "Not authenticated")
	}
	var req CreateOrderRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	order, err := h.service.CreateOrder(c.UserContext(), userID, services.CreateOrderInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	})
	if err != nil {
		return respondError(c, h.logger, err, "Could not create order")
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}
