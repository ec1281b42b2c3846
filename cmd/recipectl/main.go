package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pageza/circlekitchen/backend/config"
	"github.com/pageza/circlekitchen/backend/internal/app"
	"github.com/pageza/circlekitchen/backend/internal/logger"
)

func main() {
	cmd := newRootCommand(openApp)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log := app.NewLogger(cfg)
	logger.SetDefault(log)
	return app.New(ctx, cfg, log, app.WithoutObjectStorage())
}
