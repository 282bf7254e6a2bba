package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/foodgram-backend/config"
	"github.com/ikkim/foodgram-backend/internal/app/controller"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/internal/app/service"
	"github.com/ikkim/foodgram-backend/internal/cache"
	"github.com/ikkim/foodgram-backend/internal/db"
	"github.com/ikkim/foodgram-backend/internal/middleware"
	"github.com/ikkim/foodgram-backend/internal/router"
	"github.com/ikkim/foodgram-backend/internal/storage"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"github.com/ikkim/foodgram-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := cfg.Server.LogLevel
	if logLevel == "" {
		logLevel = "info"
		if cfg.Server.Environment == "development" {
			logLevel = "debug"
		}
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Server.LogFormat,
		EnableColor: cfg.Server.LogFormat == "console",
	})

	logger.Info("Starting Foodgram backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
		"storage":     cfg.Storage.Driver,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs token revocation and the catalog cache; without it both
	// degrade to no-ops.
	catalogCache := cache.NewNoopCache()
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer redis.Close()
		catalogCache = cache.NewRedisCache(redis.GetClient(), cfg.Redis.CatalogTTL)
	}

	var store storage.ImageStore
	if cfg.Storage.Driver == "s3" {
		s3 := cfg.Storage.S3
		store = storage.NewS3Storage(s3.Region, s3.Bucket, s3.AccessKeyID, s3.SecretAccessKey, s3.BaseURL)
	} else {
		store = storage.NewLocalStorage(cfg.Storage.MediaDir, cfg.Storage.MediaURL)
	}
	images := storage.NewImageUploader(store, cfg.Storage.MaxImageDim, cfg.Storage.MaxImagePixels)

	conn := db.GetDB()

	// Initialize repositories
	userRepo := repository.NewUserRepository(conn)
	tagRepo := repository.NewTagRepository(conn)
	ingredientRepo := repository.NewIngredientRepository(conn)
	recipeRepo := repository.NewRecipeRepository(conn)
	favoriteRepo := repository.NewFavoriteRepository(conn)
	cartRepo := repository.NewShoppingCartRepository(conn)
	followRepo := repository.NewFollowRepository(conn)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	userService := service.NewUserService(userRepo, followRepo, recipeRepo)
	catalogService := service.NewCatalogService(tagRepo, ingredientRepo, catalogCache)
	recipeService := service.NewRecipeService(conn, recipeRepo, tagRepo, ingredientRepo, favoriteRepo, cartRepo, followRepo, images)
	favoriteService := service.NewFavoriteService(favoriteRepo, recipeRepo)
	cartService := service.NewShoppingCartService(cartRepo, recipeRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	userController := controller.NewUserController(authService, userService, images, cfg.Pagination)
	catalogController := controller.NewCatalogController(catalogService)
	recipeController := controller.NewRecipeController(recipeService, favoriteService, cartService, images, cfg.Pagination)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	loginLimiter := middleware.NewRateLimiter(cfg.RateLimit.LoginPerMinute, time.Minute)
	loginLimiter.StartCleanup(10 * time.Minute)
	defer loginLimiter.Stop()

	r := router.NewRouter(
		authController,
		userController,
		catalogController,
		recipeController,
		authMiddleware,
		loginLimiter,
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}
