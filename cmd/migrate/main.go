package main

// Apply the batch schema:
//   go run ./cmd/migrate

import (
	"context"
	"os"
	"strings"

	"applygen-backend/internal/shared/config"
	"applygen-backend/internal/shared/storage/db"
	"applygen-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	ctx := context.Background()

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Error("migrate.database_url_missing", nil)
		os.Exit(1)
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
