// Package migrations embeds the SQL schema for the result store and applies
// it with goose, for PostgreSQL and SQLite.
package migrations
