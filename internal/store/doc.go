// Package store defines how summarization results are persisted: the
// dialogue a concept was extracted from and the flashcard generated for it.
// Implementations live under internal/platform (PostgreSQL and SQLite).
package store
