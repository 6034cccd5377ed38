// File: app/app.go
package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-auth-api/config"
	"go-auth-api/db"
	"go-auth-api/handler"
	"go-auth-api/logger"
	"go-auth-api/repository"
	"go-auth-api/router"
	"go-auth-api/service"
)

func Run() {
	logger.Init()
	logger.Log.Info("Logger initialized")

	cfg, err := config.Load(".")
	if err != nil {
		logger.Log.Fatalf("Error loading configuration: %v", err)
	}
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect(cfg)
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(cfg, "file://db/migrations"); err != nil {
		logger.Log.Fatalf("Error running database migrations: %v", err)
	}

	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		logger.Log.Fatalf("Error connecting to redis: %v", err)
	}
	defer redisClient.Close()

	// --- Wiring All Layers Together ---
	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)
	verificationRepo := repository.NewVerificationRepository(database)

	hasher := service.NewPasswordHasher()
	tokenService := service.NewTokenService(cfg.JWT)
	blacklist := service.NewBlacklistService(redisClient)
	limiter := service.NewRateLimiterService(redisClient, cfg.RateLimit, cfg.Chat)

	authService := service.NewAuthService(
		userRepo, tokenRepo, hasher, tokenService, blacklist, limiter,
		cfg.JWT, cfg.Token,
	)
	userService := service.NewUserService(userRepo)
	verificationService := service.NewVerificationService(verificationRepo, userRepo, service.LogMailer{})

	authHandler := handler.NewAuthHandler(authService, verificationService, cfg.JWT)
	adminHandler := handler.NewAdminHandler(authService, userService, limiter)
	chatHandler := handler.NewChatHandler(limiter, cfg.Chat)
	mw := handler.NewMiddleware(authService, limiter, cfg.Chat)

	r := router.NewRouter(authHandler, adminHandler, chatHandler, mw, nil)

	// Nightly sweep of refresh tokens past their retention window.
	sweeperDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := authService.CleanupExpiredTokens()
				if err != nil {
					logger.Log.Errorf("Token cleanup failed: %v", err)
					continue
				}
				logger.Log.Infof("Token cleanup removed %d expired tokens", deleted)
			case <-sweeperDone:
				return
			}
		}
	}()

	// --- Start the Server with Graceful Shutdown ---
	port := cfg.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")
	close(sweeperDone)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
