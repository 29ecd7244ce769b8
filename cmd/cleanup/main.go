package main

import (
	"context"
	"os"
	"time"

	"retail-service/config"
	"retail-service/internal/cleanup"
	"retail-service/internal/database"
	"retail-service/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// One-shot sweep of stale web sessions kept in postgres. Meant for cron
// jobs next to a service instance that does not run its own scheduler.
func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	svc := cleanup.NewCleanupService(db, cfg.Session.IdleTimeout, log)
	n, err := svc.CleanupExpiredSessions(ctx)
	if err != nil {
		log.Fatal("cleanup failed", zap.Error(err))
	}
	log.Info("cleanup finished", zap.Int64("deleted", n))
}
