package main

import (
	"log"

	"applygen-backend/internal/bootstrap"
	"applygen-backend/internal/shared/config"
	"applygen-backend/internal/shared/server"
	"applygen-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	addr := server.Addr(cfg.Port)
	telemetry.Info("api.starting", map[string]any{"addr": addr, "env": cfg.Env})

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
