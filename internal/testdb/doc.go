// Package testdb provides migrated databases for tests.
//
// SQLite databases are created per test in a temporary directory and are
// always available. Postgres tests need a server: the URL is read from
// DATABASE_URL, SCRY_TEST_DB_URL or SCRY_DATABASE_URL, and tests are skipped
// when none is set outside CI. Use WithTx to isolate a test inside a
// transaction that is always rolled back.
package testdb
