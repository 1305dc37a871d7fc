package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-concepts/internal/platform/migrations"
)

// handleMigrations runs a goose command against db.
func handleMigrations(ctx context.Context, db *sql.DB, dialect migrations.Dialect, command string, logger *slog.Logger) error {
	logger.Info("Executing migrations", "command", command, "dialect", dialect)
	if err := migrations.Run(ctx, db, dialect, command, logger); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	version, err := migrations.CurrentVersion(ctx, db, dialect)
	if err != nil {
		logger.Warn("Could not read schema version", "error", err)
		return nil
	}
	logger.Info("Migrations finished", "command", command, "version", version)
	return nil
}
