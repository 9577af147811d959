package handlers

import (
	"petshop/internal/middleware"
	"petshop/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth         *services.AuthService
	Products     *services.ProductService
	Carts        *services.CartService
	Orders       *services.OrderService
	Appointments *services.AppointmentService
	Pets         *services.PetService
}

// SetupRoutes mounts every API route under /api.
func SetupRoutes(app *fiber.App, s Services, logger *zap.Logger) {
	api := app.Group("/api")
	auth := middleware.AuthRequired(s.Auth, logger)
	staff := middleware.RequireStaff()

	NewAuthHandler(s.Auth, logger).RegisterRoutes(api, auth)
	NewProductHandler(s.Products, logger).RegisterRoutes(api, auth, staff)
	NewCartHandler(s.Carts, logger).RegisterRoutes(api, auth)
	NewOrderHandler(s.Orders, logger).RegisterRoutes(api, auth)
	NewAppointmentHandler(s.Appointments, logger).RegisterRoutes(api, auth, staff)
	NewPetHandler(s.Pets, logger).RegisterRoutes(api, auth)
}
