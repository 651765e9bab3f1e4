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

	_ "devrush/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"devrush/internal/auth"
	"devrush/internal/cache"
	"devrush/internal/config"
	"devrush/internal/db"
	"devrush/internal/handler"
	"devrush/internal/logger"
	"devrush/internal/metrics"
	"devrush/internal/router"
	"devrush/internal/service"
	"devrush/internal/session"
)

// @title DevRush API
// @version 1.0
// @description Hackathon registration API: participant sign-up, team formation by join code, idea submission and organizer approval.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	store, err := db.Open(cfg, zl)
	if err != nil {
		zl.Fatal("database init", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, zl)
	defer func() { _ = cacheClient.Close() }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	opts := service.Options{Logger: zl, Metrics: m}

	// Initialize services
	identityService := service.NewIdentityService(store, cacheClient, opts)
	teamService := service.NewTeamService(store, opts)
	submissionService := service.NewSubmissionService(store, opts)
	seeder := service.NewSeeder(store, opts)

	ctx := context.Background()
	if _, err := identityService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminName); err != nil {
		zl.Fatal("seed administrator", zap.Error(err))
	}

	sessions := service.NewSessions(identityService, teamService, submissionService, service.SessionConfig{
		AdminEmail:      cfg.AdminEmail,
		AdminPassword:   cfg.AdminPassword,
		VerifyPasswords: cfg.VerifyPasswords,
	}, opts)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.SessionTTL)
	slots := sessionSlots(ctx, cfg, cacheClient, jwtService, zl)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(sessions, slots, jwtService)
	teamHandler := handler.NewTeamHandler()
	submissionHandler := handler.NewSubmissionHandler()
	adminHandler := handler.NewAdminHandler(identityService, teamService, submissionService)
	seedHandler := handler.NewSeedHandler(seeder)

	e := echo.New()
	e.HideBanner = true

	// Register routes
	router.Register(
		e,
		cfg,
		zl,
		m,
		registry,
		jwtService,
		sessions,
		slots,
		authHandler,
		teamHandler,
		submissionHandler,
		adminHandler,
		seedHandler,
	)

	zl.Info("swagger documentation available", zap.String("url", swaggerURL(cfg)))

	go func() {
		addr := ":" + cfg.ServerPort
		zl.Info("server starting", zap.String("addr", addr), zap.String("store", cfg.StoreDriver), zap.String("sessions", cfg.SessionBackend))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("server shutdown", zap.Error(err))
	}
	zl.Info("server stopped")
}

// sessionSlots picks where sessions persist. Redis is used when reachable;
// otherwise sessions live in process memory and do not survive a restart.
func sessionSlots(ctx context.Context, cfg *config.Config, cacheClient *cache.Client, jwtService *auth.JWTService, zl *zap.Logger) session.Provider {
	if cfg.SessionBackend == config.SessionRedis {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := cacheClient.Ping(pingCtx)
		if err == nil {
			return auth.NewSessionSlots(cacheClient, jwtService.TTL())
		}
		zl.Warn("redis unavailable, keeping sessions in memory", zap.Error(err))
	}
	return session.NewMemorySlots()
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
