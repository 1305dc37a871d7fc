package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/phrazzld/scry-concepts/internal/store"
)

// FlashcardService looks up stored flashcards.
type FlashcardService struct {
	results store.ResultStore
	logger  *slog.Logger
}

// NewFlashcardService creates a FlashcardService.
func NewFlashcardService(results store.ResultStore, logger *slog.Logger) (*FlashcardService, error) {
	if results == nil {
		return nil, fmt.Errorf("%w: result store cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FlashcardService{
		results: results,
		logger:  logger.With(slog.String("component", "flashcard_service")),
	}, nil
}

// Retrieve returns the latest flashcard for concept. It returns
// store.ErrFlashcardNotFound when none exists.
func (s *FlashcardService) Retrieve(ctx context.Context, concept string) (store.FlashcardRecord, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return store.FlashcardRecord{}, fmt.Errorf("%w: %w", domain.ErrValidation, ErrEmptyConcept)
	}

	card, err := s.results.FindFlashcard(ctx, concept)
	if err != nil {
		if store.IsNotFoundError(err) {
			s.logger.DebugContext(ctx, "Flashcard not found", "concept", concept)
		}
		return store.FlashcardRecord{}, err
	}
	return card, nil
}
