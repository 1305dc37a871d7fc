package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/phrazzld/scry-concepts/internal/extraction"
	"github.com/phrazzld/scry-concepts/internal/generation"
	"github.com/phrazzld/scry-concepts/internal/platform/logger"
	"github.com/phrazzld/scry-concepts/internal/store"
	"github.com/phrazzld/scry-concepts/internal/task"
)

// ConceptExtractor names the latent concept of a dialogue.
type ConceptExtractor interface {
	Extract(ctx context.Context, dialogue domain.Dialogue, report domain.ProgressFunc) (extraction.Result, error)
}

// SummarizationService runs one summarization: concept extraction, flashcard
// generation, then persistence of both. It implements task.Runner.
type SummarizationService struct {
	extractor  ConceptExtractor
	flashcards generation.FlashcardGenerator
	results    store.ResultStore
	logger     *slog.Logger
	now        func() time.Time
}

var _ task.Runner = (*SummarizationService)(nil)

// NewSummarizationService creates a SummarizationService.
// It returns an error if any of the required dependencies are nil.
func NewSummarizationService(
	extractor ConceptExtractor,
	flashcards generation.FlashcardGenerator,
	results store.ResultStore,
	log *slog.Logger,
) (*SummarizationService, error) {
	if extractor == nil {
		return nil, fmt.Errorf("%w: extractor cannot be nil", domain.ErrValidation)
	}
	if flashcards == nil {
		return nil, fmt.Errorf("%w: flashcard generator cannot be nil", domain.ErrValidation)
	}
	if results == nil {
		return nil, fmt.Errorf("%w: result store cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}

	return &SummarizationService{
		extractor:  extractor,
		flashcards: flashcards,
		results:    results,
		logger:     log.With(slog.String("component", "summarization_service")),
		now:        time.Now,
	}, nil
}

// Run implements task.Runner. It returns the concept label. Nothing is
// persisted unless both extraction and flashcard generation succeed.
func (s *SummarizationService) Run(ctx context.Context, payload task.Payload, report domain.ProgressFunc) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With("user_id", payload.UserID)

	report.Report(domain.StageGeneration, "Starting latent concept extraction")
	result, err := s.extractor.Extract(ctx, payload.Dialogue, report)
	if err != nil {
		return "", stepError("extraction", err)
	}
	concept := result.Candidate.Label
	log.InfoContext(ctx, "Concept extracted",
		"concept", concept,
		"score", result.Critique.Score,
		"loops", result.Loops)

	report.Report(domain.StageFlashcardGeneration, "Generating flashcard content")
	card, err := s.flashcards.GenerateFlashcard(ctx, concept)
	if err != nil {
		return "", stepError("flashcard generation", err)
	}

	report.Report(domain.StageSavingResults, "Saving results")
	now := s.now().UTC()
	dialogue := store.DialogueRecord{
		UserID:    payload.UserID,
		Dialogue:  payload.Dialogue,
		Concept:   concept,
		CreatedAt: now,
	}
	flashcard := store.FlashcardRecord{
		UserID:    payload.UserID,
		Concept:   concept,
		Question:  card.Question,
		Answer:    card.Answer,
		CreatedAt: now,
	}
	if err := s.save(ctx, dialogue, flashcard); err != nil {
		return "", stepError("persistence", fmt.Errorf("%w: %w", ErrPersistence, err))
	}

	log.DebugContext(ctx, "Summarization results saved", "concept", concept)
	return concept, nil
}

func (s *SummarizationService) save(ctx context.Context, dialogue store.DialogueRecord, flashcard store.FlashcardRecord) error {
	if saver, ok := s.results.(store.ResultSaver); ok {
		return saver.SaveResult(ctx, dialogue, flashcard)
	}
	if err := s.results.SaveDialogue(ctx, dialogue); err != nil {
		return err
	}
	return s.results.SaveFlashcard(ctx, flashcard)
}
