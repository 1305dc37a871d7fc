package sqlite

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

// ResultStore implements store.ResultStore on SQLite. Timestamps are stored
// as unix milliseconds and dialogues as JSON text.
type ResultStore struct {
	db     store.DBTX
	sqlDB  *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

var (
	_ store.ResultStore    = (*ResultStore)(nil)
	_ store.SQLResultStore = (*ResultStore)(nil)
	_ store.ResultSaver    = (*ResultStore)(nil)
)

// NewResultStore creates a ResultStore on db. If logger is nil, a default
// logger will be used.
func NewResultStore(db *sql.DB, logger *slog.Logger) *ResultStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "sqlite_result_store")),
		now:    time.Now,
	}
}

// DB returns the underlying connection pool.
func (s *ResultStore) DB() *sql.DB {
	return s.sqlDB
}

// WithTx returns a copy of the store that runs its queries in tx.
func (s *ResultStore) WithTx(tx *sql.Tx) store.SQLResultStore {
	return &ResultStore{db: tx, sqlDB: s.sqlDB, logger: s.logger, now: s.now}
}

// SaveResult writes the dialogue and flashcard in one transaction.
func (s *ResultStore) SaveResult(ctx context.Context, dialogue store.DialogueRecord, flashcard store.FlashcardRecord) error {
	return store.SaveResultTx(ctx, s, dialogue, flashcard)
}

// SaveDialogue implements store.ResultStore.
func (s *ResultStore) SaveDialogue(ctx context.Context, record store.DialogueRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("dialogue validation failed during save", slog.String("error", err.Error()))
		return err
	}
	payload, err := json.Marshal(record.Dialogue)
	if err != nil {
		return fmt.Errorf("%w: encode dialogue: %v", store.ErrInvalidEntity, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO dialogues (user_id, dialogue, concept, created_at) VALUES (?, ?, ?, ?)`,
		record.UserID, string(payload), record.Concept, s.timestamp(record.CreatedAt).UnixMilli())
	if err != nil {
		log.Error("failed to save dialogue", slog.String("error", err.Error()))
		return store.NewStoreError("dialogue", "save", "insert failed", MapError(err))
	}

	log.Debug("dialogue saved", slog.Int64("user_id", record.UserID), slog.String("concept", record.Concept))
	return nil
}

// SaveFlashcard implements store.ResultStore.
func (s *ResultStore) SaveFlashcard(ctx context.Context, record store.FlashcardRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("flashcard validation failed during save", slog.String("error", err.Error()))
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO flashcards (user_id, concept, question, answer, created_at) VALUES (?, ?, ?, ?, ?)`,
		record.UserID, record.Concept, record.Question, record.Answer, s.timestamp(record.CreatedAt).UnixMilli())
	if err != nil {
		log.Error("failed to save flashcard", slog.String("error", err.Error()))
		return store.NewStoreError("flashcard", "save", "insert failed", MapError(err))
	}

	log.Debug("flashcard saved", slog.Int64("user_id", record.UserID), slog.String("concept", record.Concept))
	return nil
}

// FindFlashcard implements store.ResultStore.
func (s *ResultStore) FindFlashcard(ctx context.Context, concept string) (store.FlashcardRecord, error) {
	var (
		rec     store.FlashcardRecord
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, concept, question, answer, created_at
		 FROM flashcards WHERE concept = ? ORDER BY id DESC LIMIT 1`, concept).
		Scan(&rec.ID, &rec.UserID, &rec.Concept, &rec.Question, &rec.Answer, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return store.FlashcardRecord{}, store.ErrFlashcardNotFound
	}
	if err != nil {
		return store.FlashcardRecord{}, store.NewStoreError("flashcard", "find", "query failed", MapError(err))
	}
	rec.CreatedAt = time.UnixMilli(created).UTC()
	return rec, nil
}

func (s *ResultStore) timestamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}
