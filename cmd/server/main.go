package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jchoi/storefront-backend/config"
	"github.com/jchoi/storefront-backend/internal/app/controller"
	"github.com/jchoi/storefront-backend/internal/app/repository"
	"github.com/jchoi/storefront-backend/internal/app/service"
	"github.com/jchoi/storefront-backend/internal/db"
	"github.com/jchoi/storefront-backend/internal/router"
	"github.com/jchoi/storefront-backend/internal/storage"
	"github.com/jchoi/storefront-backend/pkg/logger"
	"github.com/jchoi/storefront-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       getLogLevel(cfg),
		Format:      logFormat,
		Output:      os.Stdout,
		EnableColor: cfg.Server.Environment == "development",
	})

	database, err := db.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close(database)

	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run database migrations", err)
	}

	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redis.Close()
		}
	}

	var s3Storage *storage.S3Storage
	s3Storage, err = storage.NewS3Storage(context.Background(), &cfg.S3)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			logger.Info("Object storage not configured, uploads disabled")
		} else {
			logger.Warn("Object storage setup failed, uploads disabled", map[string]interface{}{
				"error": err.Error(),
			})
		}
		s3Storage = nil
	}

	userRepo := repository.NewUserRepository(database)
	productRepo := repository.NewProductRepository(database)
	cartRepo := repository.NewCartRepository(database)

	authService := service.NewAuthService(userRepo, &cfg.JWT)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(database)

	engine := router.Setup(cfg, router.Controllers{
		Auth:    controller.NewAuthController(authService),
		Product: controller.NewProductController(productService),
		Cart:    controller.NewCartController(cartService),
		Order:   controller.NewOrderController(orderService),
		Upload:  controller.NewUploadController(s3Storage),
	})

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: engine,
	}

	go func() {
		logger.Info("Server starting", map[string]interface{}{
			"port":        cfg.Server.Port,
			"environment": cfg.Server.Environment,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", err)
	}
	logger.Info("Server stopped")
}

func getLogLevel(cfg *config.Config) string {
	if cfg.Server.Environment == "production" {
		return "info"
	}
	return "debug"
}
