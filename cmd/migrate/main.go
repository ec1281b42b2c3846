package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/pageza/circlekitchen/backend/config"
	"github.com/pageza/circlekitchen/backend/internal/database"
	"github.com/pageza/circlekitchen/backend/internal/logger"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [up|down|status]\n", os.Args[0])
	}
	flag.Parse()
	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	log := logger.Default()
	if err := run(command); err != nil {
		log.Error("Migration failed", "command", command, "error", err)
		os.Exit(1)
	}
	log.Info("Migration finished", "command", command)
}

func run(command string) error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		dsn = cfg.DSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	switch command {
	case "up":
		return database.MigrateUp(ctx, db)
	case "down":
		return database.MigrateDown(ctx, db)
	case "status":
		return database.MigrationStatus(ctx, db)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}
