package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-concepts/internal/platform/logger"
	"github.com/phrazzld/scry-concepts/internal/store"
)

// PostgresResultStore implements store.ResultStore using a PostgreSQL
// database as the storage backend.
type PostgresResultStore struct {
	db     store.DBTX
	sqlDB  *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

var (
	_ store.ResultStore    = (*PostgresResultStore)(nil)
	_ store.SQLResultStore = (*PostgresResultStore)(nil)
	_ store.ResultSaver    = (*PostgresResultStore)(nil)
)

// NewPostgresResultStore creates a new PostgreSQL implementation of the
// ResultStore interface. If logger is nil, a default logger will be used.
func NewPostgresResultStore(db *sql.DB, logger *slog.Logger) *PostgresResultStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresResultStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "postgres_result_store")),
		now:    time.Now,
	}
}

// DB returns the underlying connection pool.
func (s *PostgresResultStore) DB() *sql.DB {
	return s.sqlDB
}

// WithTx returns a copy of the store bound to tx.
func (s *PostgresResultStore) WithTx(tx *sql.Tx) store.SQLResultStore {
	return &PostgresResultStore{db: tx, sqlDB: s.sqlDB, logger: s.logger, now: s.now}
}

// SaveResult writes the dialogue and flashcard in one transaction.
func (s *PostgresResultStore) SaveResult(
	ctx context.Context,
	dialogue store.DialogueRecord,
	flashcard store.FlashcardRecord,
) error {
	return store.SaveResultTx(ctx, s, dialogue, flashcard)
}

// SaveDialogue implements store.ResultStore.SaveDialogue.
// The dialogue is stored as JSONB.
func (s *PostgresResultStore) SaveDialogue(ctx context.Context, record store.DialogueRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("dialogue validation failed during save",
			slog.String("error", err.Error()),
			slog.Int64("user_id", record.UserID))
		return err
	}

	payload, err := json.Marshal(record.Dialogue)
	if err != nil {
		return fmt.Errorf("%w: encode dialogue: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO dialogues (user_id, dialogue, concept, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = s.db.ExecContext(ctx, query, record.UserID, string(payload), record.Concept, s.timestamp(record.CreatedAt))
	if err != nil {
		log.Error("failed to save dialogue",
			slog.String("error", err.Error()),
			slog.Int64("user_id", record.UserID))
		return store.NewStoreError("dialogue", "save", "insert failed", MapError(err))
	}

	log.Debug("dialogue saved successfully",
		slog.Int64("user_id", record.UserID),
		slog.String("concept", record.Concept))
	return nil
}

// SaveFlashcard implements store.ResultStore.SaveFlashcard.
func (s *PostgresResultStore) SaveFlashcard(ctx context.Context, record store.FlashcardRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("flashcard validation failed during save",
			slog.String("error", err.Error()),
			slog.Int64("user_id", record.UserID))
		return err
	}

	query := `
		INSERT INTO flashcards (user_id, concept, question, answer, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.UserID, record.Concept, record.Question, record.Answer, s.timestamp(record.CreatedAt))
	if err != nil {
		log.Error("failed to save flashcard",
			slog.String("error", err.Error()),
			slog.Int64("user_id", record.UserID))
		return store.NewStoreError("flashcard", "save", "insert failed", MapError(err))
	}

	log.Debug("flashcard saved successfully",
		slog.Int64("user_id", record.UserID),
		slog.String("concept", record.Concept))
	return nil
}

// FindFlashcard implements store.ResultStore.FindFlashcard.
// Returns store.ErrFlashcardNotFound if no card exists for concept.
func (s *PostgresResultStore) FindFlashcard(ctx context.Context, concept string) (store.FlashcardRecord, error) {
	query := `
		SELECT id, user_id, concept, question, answer, created_at
		FROM flashcards
		WHERE concept = $1
		ORDER BY id DESC
		LIMIT 1
	`
	var rec store.FlashcardRecord
	err := s.db.QueryRowContext(ctx, query, concept).
		Scan(&rec.ID, &rec.UserID, &rec.Concept, &rec.Question, &rec.Answer, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.FlashcardRecord{}, store.ErrFlashcardNotFound
	}
	if err != nil {
		return store.FlashcardRecord{}, store.NewStoreError("flashcard", "find", "query failed", MapError(err))
	}
	return rec, nil
}

func (s *PostgresResultStore) timestamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.now().UTC()
	}
	return t.UTC()
}
