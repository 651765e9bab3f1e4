package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"devrush/internal/config"
	"devrush/internal/db"
	"devrush/internal/logger"
	"devrush/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if cfg.StoreDriver == config.StoreMemory {
		log.Fatalf("STORE_DRIVER=%s keeps nothing after exit; seed a mysql or postgres store, or POST /api/admin/seed on a running server", cfg.StoreDriver)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// Connect and migrate
	store, err := db.Open(cfg, zl)
	if err != nil {
		zl.Fatal("database init", zap.Error(err))
	}

	ctx := context.Background()
	opts := service.Options{Logger: zl}

	if _, err := service.NewIdentityService(store, nil, opts).EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminName); err != nil {
		zl.Fatal("seed administrator", zap.Error(err))
	}

	result, err := service.NewSeeder(store, opts).Seed(ctx, service.DemoTeams)
	if err != nil {
		zl.Fatal("seed demo teams", zap.Error(err))
	}

	zl.Info("seed completed",
		zap.Int("users_created", result.UsersCreated),
		zap.Int("teams_created", result.TeamsCreated),
		zap.Int("teams_skipped", result.TeamsSkipped),
		zap.String("demo_password", service.DemoPassword),
	)
}
