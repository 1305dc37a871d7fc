package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/scry-concepts/internal/domain"
)

// DialogueRecord is a summarized dialogue together with its concept.
type DialogueRecord struct {
	ID        int64
	UserID    int64
	Dialogue  domain.Dialogue
	Concept   string
	CreatedAt time.Time
}

// Validate checks the record before it is written.
func (r DialogueRecord) Validate() error {
	if err := r.Dialogue.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}
	if strings.TrimSpace(r.Concept) == "" {
		return fmt.Errorf("%w: concept cannot be empty", ErrInvalidEntity)
	}
	return nil
}

// FlashcardRecord is a stored flashcard for a concept.
type FlashcardRecord struct {
	ID        int64
	UserID    int64
	Concept   string
	Question  string
	Answer    string
	CreatedAt time.Time
}

// Validate checks the record before it is written.
func (r FlashcardRecord) Validate() error {
	if strings.TrimSpace(r.Concept) == "" {
		return fmt.Errorf("%w: concept cannot be empty", ErrInvalidEntity)
	}
	card := domain.Flashcard{Question: r.Question, Answer: r.Answer}
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}
	return nil
}

// ResultStore persists summarization output.
type ResultStore interface {
	// SaveDialogue stores a dialogue and the concept extracted from it.
	SaveDialogue(ctx context.Context, record DialogueRecord) error

	// SaveFlashcard stores the flashcard generated for a concept.
	SaveFlashcard(ctx context.Context, record FlashcardRecord) error

	// FindFlashcard returns the most recent flashcard for concept.
	// Returns ErrFlashcardNotFound if there is none.
	FindFlashcard(ctx context.Context, concept string) (FlashcardRecord, error)
}

// ResultSaver is implemented by stores that can write both records of one
// summarization atomically.
type ResultSaver interface {
	SaveResult(ctx context.Context, dialogue DialogueRecord, flashcard FlashcardRecord) error
}

// SQLResultStore is a ResultStore backed by database/sql that can be bound
// to a transaction.
type SQLResultStore interface {
	ResultStore
	DB() *sql.DB
	WithTx(tx *sql.Tx) SQLResultStore
}

// SaveResultTx writes both records inside one transaction on s.
func SaveResultTx(ctx context.Context, s SQLResultStore, dialogue DialogueRecord, flashcard FlashcardRecord) error {
	return RunInTransaction(ctx, s.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.WithTx(tx)
		if err := txStore.SaveDialogue(ctx, dialogue); err != nil {
			return err
		}
		return txStore.SaveFlashcard(ctx, flashcard)
	})
}
