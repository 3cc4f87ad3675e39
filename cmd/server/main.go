package main

//go:generate swag init --parseInternal -d ../.. -g cmd/server/main.go -o ../../docs

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ruralpay/minibank/docs"
	"github.com/ruralpay/minibank/internal/config"
	"github.com/ruralpay/minibank/internal/database"
	"github.com/ruralpay/minibank/internal/handlers"
	"github.com/ruralpay/minibank/internal/logging"
	"github.com/ruralpay/minibank/internal/metrics"
	"github.com/ruralpay/minibank/internal/middleware"
	"github.com/ruralpay/minibank/internal/services"
)

// @title Minibank API
// @version 1.0
// @description Minimal banking service: register, log in, check balance, deposit and withdraw
// @host localhost:5000
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name bank_session

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := logging.New(cfg.Log)
	if cfg.UsesDevSecret() {
		logger.Warn("SESSION_SECRET not set, using the built-in development secret")
	}

	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		migrator, err := database.NewMigrator(db.DB, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to prepare migrations")
		}
		if err := migrator.Up(ctx); err != nil {
			logger.WithError(err).Fatal("Failed to apply migrations")
		}
	}

	var sessionStore services.SessionStore
	if redisClient := database.InitRedis(ctx, cfg.Redis, logger); redisClient != nil {
		defer redisClient.Close()
		sessionStore = services.NewRedisSessionStore(redisClient)
	} else {
		logger.Warn("Using in-memory session store; sessions will not survive a restart")
		sessionStore = services.NewMemorySessionStore()
	}

	collector := metrics.New()

	authService := services.NewAuthService(
		services.NewPostgresUserStore(db),
		sessionStore,
		services.NewPasswordHasher(cfg.Argon2),
		cfg.Session,
		logger,
	)
	ledgerService := services.NewLedgerService(services.NewPostgresAccountStore(db), collector, logger)
	sessionAuth := middleware.NewSessionAuth(authService, cfg.Session.CookieName)

	router := handlers.NewRouter(handlers.RouterDeps{
		Ledger:   handlers.NewLedgerHandler(ledgerService),
		Auth:     handlers.NewAuthHandler(authService, sessionAuth, cfg.Session),
		Health:   handlers.NewHealthHandler(db, logger),
		Sessions: sessionAuth,
		Limiter:  middleware.NewRateLimiter(cfg.Auth.RateLimitRPS, cfg.Auth.RateLimitBurst),
		Metrics:  collector,
		CORS:     cfg.CORS,
		Logger:   logging.Component(logger, "http"),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}
