package main

import (
	"fmt"

	"expensetracker/internal/config"
	"expensetracker/internal/database"
	"expensetracker/internal/events"
	"expensetracker/internal/logger"
	"expensetracker/internal/middleware"
	"expensetracker/internal/router"

	"github.com/gin-gonic/gin"
)

// @title           Expense Tracker API
// @version         1.0
// @description     Expense Tracker records a user's income and expense transactions and reports totals per type, category and month.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.InitWithLevel(appConfig.Env, appConfig.LogLevel)
	log := logger.Get()

	if appConfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	publisher, err := newPublisher(appConfig)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warnf("event publisher close error: %v", err)
		}
	}()

	r := router.New(router.Deps{
		DB:          dbManager.DB(),
		Tokens:      middleware.NewTokenManager(appConfig.JWTSecret, appConfig.JWTExpirationDur),
		Publisher:   publisher,
		CORSOrigins: appConfig.CORSOrigins,
		BcryptCost:  appConfig.BcryptCost,
	})

	log.Infof("Starting Expense Tracker server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return r.Run(":" + appConfig.Port)
}

// newPublisher connects to the configured broker, or discards events when none is set.
func newPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		logger.Get().Info("AMQP_URL not set, transaction events are disabled")
		return events.NopPublisher{}, nil
	}
	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, fmt.Errorf("failed to connect event publisher: %w", err)
	}
	logger.Get().Infof("Publishing transaction events to exchange %s", cfg.AMQPExchange)
	return publisher, nil
}
