package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pageza/circlekitchen/backend/config"
	"github.com/pageza/circlekitchen/backend/internal/app"
	"github.com/pageza/circlekitchen/backend/internal/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Default().Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := app.NewLogger(cfg)
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to start", "error", err)
		os.Exit(1)
	}

	runErr := a.Server.Start(ctx)
	if err := a.Close(); err != nil {
		log.Warn("Error while closing connections", "error", err)
	}
	if runErr != nil {
		log.Error("Server error", "error", runErr)
		os.Exit(1)
	}
}
