// Package sqlite stores summarization results in a local SQLite file using
// the pure-Go modernc.org/sqlite driver. It is the default result store.
package sqlite
