// Package postgres provides the PostgreSQL implementation of the result
// store defined in internal/store, using pgx through database/sql.
package postgres
