package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"acquisitions/docs" // swagger docs
	"acquisitions/internal/auth"
	"acquisitions/internal/cache"
	"acquisitions/internal/config"
	"acquisitions/internal/db"
	"acquisitions/internal/handler"
	"acquisitions/internal/logging"
	"acquisitions/internal/ratelimit"
	"acquisitions/internal/repository"
	"acquisitions/internal/router"
	"acquisitions/internal/service"
	"acquisitions/internal/validation"
)

// @title Acquisitions API
// @version 1.0
// @description User management API with sign-up, sign-in, role-based access and rate limiting.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}
	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping users table")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		logger.Fatal("database migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		logger.Warn("redis unreachable, caching disabled and rate-limited routes will fail", zap.Error(err))
	}
	cancelPing()

	userRepo := repository.NewUserRepository(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	authService := service.NewAuthService(userRepo, jwtService, tokenStore, logger)
	userService := service.NewUserService(userRepo, cacheClient, logger)

	validator, err := validation.New()
	if err != nil {
		logger.Fatal("validator init", zap.Error(err))
	}
	gate := ratelimit.NewGate(
		ratelimit.NewRedisLimiter(cacheClient.Redis()),
		ratelimit.NewShield(cfg.RateLimit.BotUserAgents),
		ratelimit.Limits{
			ratelimit.RoleAdmin: cfg.RateLimit.Admin,
			ratelimit.RoleUser:  cfg.RateLimit.User,
			ratelimit.RoleGuest: cfg.RateLimit.Guest,
		},
	)

	e := echo.New()
	router.Register(e, router.Deps{
		Logger:     logger,
		Validator:  validator,
		JWTService: jwtService,
		TokenStore: tokenStore,
		Gate:       gate,
		Health:     handler.NewHealthHandler(),
		Auth:       handler.NewAuthHandler(authService, validator, cfg.IsProduction(), logger),
		Users:      handler.NewUserHandler(userService, validator, logger),
	})

	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
		docs.SwaggerInfo.Host = host
	}
	logger.Info("swagger documentation available", zap.String("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"))

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("server listening", zap.String("addr", addr), zap.String("env", cfg.AppEnv))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
