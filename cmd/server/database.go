package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-concepts/internal/config"
	"github.com/phrazzld/scry-concepts/internal/platform/migrations"
	"github.com/phrazzld/scry-concepts/internal/platform/postgres"
	"github.com/phrazzld/scry-concepts/internal/platform/sqlite"
	"github.com/phrazzld/scry-concepts/internal/store"
)

// setupAppDatabase opens the configured database and returns it with its
// migration dialect.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, migrations.Dialect, error) {
	dialect, err := migrations.DialectForDriver(cfg.Database.Driver)
	if err != nil {
		return nil, "", err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var db *sql.DB
	switch dialect {
	case migrations.DialectPostgres:
		db, err = postgres.Open(ctx, cfg.Database.URL)
	default:
		db, err = sqlite.Open(ctx, cfg.Database.URL)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	logger.Info("Database connection established", "driver", cfg.Database.Driver)
	return db, dialect, nil
}

// newResultStore returns the result store for the configured driver.
func newResultStore(cfg *config.Config, db *sql.DB, logger *slog.Logger) store.ResultStore {
	if cfg.Database.Driver == "postgres" {
		return postgres.NewPostgresResultStore(db, logger)
	}
	return sqlite.NewResultStore(db, logger)
}
