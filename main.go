package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"petshop/internal/config"
	"petshop/internal/database"
	"petshop/internal/logger"
	"petshop/internal/repositories"
	"petshop/internal/services"
	"petshop/pkg/rabbitmq"

	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(logger.Options{
		Production: cfg.IsProduction(),
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// --- Database ---
	db, err := database.Connect(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zl.Fatal("failed to migrate database", zap.Error(err))
	}

	if cfg.SeedDemoData {
		if err := seedDemoData(context.Background(), repositories.NewGORMStore(db), zl); err != nil {
			zl.Fatal("failed to seed demo data", zap.Error(err))
		}
	}

	// --- RabbitMQ ---
	// Events are best effort: without a broker the shop keeps running.
	var publisher services.EventPublisher
	if cfg.RabbitMQEnabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: services.EventsExchange,
		}, zl)
		if err != nil {
			zl.Warn("rabbitmq unavailable, domain events disabled", zap.Error(err))
		} else {
			defer mqClient.Close()
			publisher = mqClient
			if err := mqClient.ConsumeEvents(rabbitmq.LogEventHandler(zl)); err != nil {
				zl.Warn("failed to start event consumer", zap.Error(err))
			}
		}
	}

	app := NewApp(cfg, db, zl, publisher)

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zl.Info("starting server", zap.String("addr", cfg.AppPort), zap.String("env", cfg.Env))
		if err := app.Listen(cfg.AppPort); err != nil {
			zl.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	zl.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		zl.Error("error during fiber shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	zl.Info("server gracefully stopped")
}
