package testdb

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/scry-concepts/internal/platform/migrations"
	"github.com/phrazzld/scry-concepts/internal/platform/postgres"
	"github.com/phrazzld/scry-concepts/internal/platform/sqlite"
)

// SQLite returns a migrated database in a per-test temporary file. It is
// closed when the test finishes.
func SQLite(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, "file:"+filepath.Join(t.TempDir(), "scry.db"))
	if err != nil {
		t.Fatalf("open sqlite test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migrations.Up(ctx, db, migrations.DialectSQLite, nil); err != nil {
		t.Fatalf("migrate sqlite test database: %v", err)
	}
	return db
}

// Postgres returns a migrated connection to the configured test server.
// The test is skipped when no URL is set, and fails in CI instead.
func Postgres(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := DatabaseURL()
	if dbURL == "" {
		if IsCI() {
			t.Fatalf("no Postgres test database configured; set %s", EnvScryTestDBURL)
		}
		t.Skipf("%s not set", EnvScryTestDBURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, dbURL)
	if err != nil {
		t.Fatalf("open postgres test database %s: %v", MaskURL(dbURL), err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migrations.Up(ctx, db, migrations.DialectPostgres, nil); err != nil {
		t.Fatalf("migrate postgres test database: %v", err)
	}
	return db
}

// WithTx runs fn inside a transaction that is rolled back afterwards, even
// if fn panics.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin test transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("rollback test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
