// Package main implements the entry point for the concept extraction
// server. It loads configuration, opens the result database, applies
// migrations, and serves the task API until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (YAML, TOML or JSON)")
	migrateCmd := flag.String("migrate", "", "run a migration command and exit: up, down, reset, status, version")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *migrateCmd); err != nil {
		log.Fatalf("scry-concepts: %v", err)
	}
}

// run loads configuration and either executes a migration command or
// serves the API until ctx is canceled.
func run(ctx context.Context, configPath, migrateCmd string) error {
	cfg, err := loadAppConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	db, dialect, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return handleMigrations(ctx, db, dialect, migrateCmd, logger)
	}

	if err := handleMigrations(ctx, db, dialect, "up", logger); err != nil {
		_ = db.Close()
		return err
	}

	completer, err := newCompleter(ctx, cfg.LLM, logger)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize %s provider: %w", cfg.LLM.Provider, err)
	}

	app, err := newApplication(cfg, logger, db, newResultStore(cfg, db, logger), completer)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
