package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nvaghela/dukaan-backend/config"
	"github.com/nvaghela/dukaan-backend/internal/app/controller"
	"github.com/nvaghela/dukaan-backend/internal/app/repository"
	"github.com/nvaghela/dukaan-backend/internal/app/service"
	"github.com/nvaghela/dukaan-backend/internal/db"
	"github.com/nvaghela/dukaan-backend/internal/middleware"
	"github.com/nvaghela/dukaan-backend/internal/router"
	"github.com/nvaghela/dukaan-backend/internal/scheduler"
	"github.com/nvaghela/dukaan-backend/internal/storage"
	"github.com/nvaghela/dukaan-backend/internal/validation"
	"github.com/nvaghela/dukaan-backend/internal/websocket"
	"github.com/nvaghela/dukaan-backend/pkg/logger"
	"github.com/nvaghela/dukaan-backend/pkg/redis"
)

// redisVerifiedCache adapts the redis package to the cache the review
// service publishes through.
type redisVerifiedCache struct{}

func (redisVerifiedCache) CacheVerified(ctx context.Context, sellerID uint, verified bool) error {
	return redis.CacheVerified(ctx, sellerID, verified)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting DUKAAN KYC Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Register PAN/Aadhaar/GSTIN/PIN/mobile binding validators
	if err := validation.RegisterCustomValidators(); err != nil {
		logger.Fatal("Failed to register request validators", err)
	}

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed database (optional)
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis backs the token blacklist and the verified-flag cache; the
	// server still works without it.
	var verifiedCache service.VerifiedCache
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, continuing without cache", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer redis.Close()
		verifiedCache = redisVerifiedCache{}
	}

	// Status event hub
	hub := websocket.NewHub()
	go hub.Run()

	// Document blob storage
	blobStorage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	kycRepo := repository.NewKYCRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	kycService := service.NewKYCService(kycRepo, hub)
	uploadService := service.NewUploadService(kycRepo, blobStorage, hub)
	reviewService := service.NewReviewService(db.GetDB(), kycRepo, userRepo, hub, verifiedCache)

	// Stale upload reservation sweeper
	sweeper := scheduler.NewReservationSweeper(uploadService, cfg.Upload.ReservationTTL)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start reservation sweeper", err)
	}
	defer sweeper.Stop()

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	kycController := controller.NewKYCController(kycService, uploadService, cfg.Upload.Timeout)
	reviewController := controller.NewReviewController(reviewService, uploadService, cfg.Upload.Timeout)
	eventsController := controller.NewEventsController(hub, cfg.CORS.AllowedOrigins)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		kycController,
		reviewController,
		eventsController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
