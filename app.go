package main

import (
	"time"

	"petshop/internal/config"
	"petshop/internal/dto"
	"petshop/internal/handlers"
	"petshop/internal/repositories"
	"petshop/internal/services"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewApp wires services and routes over db. publisher may be nil, in which
// case domain events are skipped.
func NewApp(cfg config.Config, db *gorm.DB, logger *zap.Logger, publisher services.EventPublisher) *fiber.App {
	store := repositories.NewGORMStore(db)
	locks := services.NewKeyLocker()
	mapper := dto.NewMapper(cfg.PetDefaultImages)

	app := fiber.New(fiber.Config{
		AppName:               "petshop",
		DisableStartupMessage: cfg.IsProduction(),
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		mqStatus := "disabled"
		if publisher != nil {
			mqStatus = "connected"
		}
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			logger.Warn("health check: database unreachable", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "down",
				"rabbitmq": mqStatus,
			})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "up",
			"rabbitmq": mqStatus,
		})
	})

	handlers.SetupRoutes(app, handlers.Services{
		Auth:         services.NewAuthService(store.Users(), cfg.JWTSecret, logger),
		Products:     services.NewProductService(store.Products()),
		Carts:        services.NewCartService(store, locks, logger),
		Orders:       services.NewOrderService(store, locks, publisher, logger),
		Appointments: services.NewAppointmentService(store, locks, mapper, publisher, logger),
		Pets:         services.NewPetService(store, mapper),
	}, logger)

	return app
}
