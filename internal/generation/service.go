package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-concepts/internal/domain"
)

// ModelService implements ConceptService and FlashcardGenerator on top of a
// Completer, rendering prompts from a catalog and parsing the replies.
type ModelService struct {
	completer Completer
	prompts   *PromptCatalog
	logger    *slog.Logger
}

// NewModelService creates a ModelService. A nil catalog selects the embedded
// default prompts.
func NewModelService(completer Completer, prompts *PromptCatalog, logger *slog.Logger) (*ModelService, error) {
	if completer == nil {
		return nil, fmt.Errorf("%w: completer cannot be nil", ErrInvalidConfig)
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if prompts == nil {
		var err error
		if prompts, err = DefaultPromptCatalog(); err != nil {
			return nil, err
		}
	}

	return &ModelService{
		completer: completer,
		prompts:   prompts,
		logger:    logger.With("component", "model_service"),
	}, nil
}

// GenerateCandidates asks for n completions of the generator prompt and
// keeps the ones that parse.
func (s *ModelService) GenerateCandidates(ctx context.Context, dialogue domain.Dialogue, n int) ([]domain.Candidate, error) {
	if n < 1 {
		n = 1
	}

	system, _, temperature, err := s.prompts.Render(PromptGenerator, "")
	if err != nil {
		return nil, err
	}
	user, err := DialoguePayload(dialogue)
	if err != nil {
		return nil, err
	}

	replies, err := s.completer.Complete(ctx, CompletionRequest{
		System:      system,
		User:        user,
		N:           n,
		Temperature: temperature,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("generate candidates: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(replies))
	for i, reply := range replies {
		c, err := ParseCandidate(reply)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping unparseable candidate", "choice", i, "error", err)
			continue
		}
		candidates = append(candidates, c)
	}

	s.logger.DebugContext(ctx, "Generated candidates",
		"requested", n,
		"received", len(replies),
		"valid", len(candidates))
	return candidates, nil
}

// EvaluateCandidate asks the critic prompt for a verdict on candidate.
func (s *ModelService) EvaluateCandidate(
	ctx context.Context,
	dialogue domain.Dialogue,
	candidate domain.Candidate,
	history *domain.InteractionHistory,
) (domain.Critique, error) {
	system, _, temperature, err := s.prompts.Render(PromptCritic, "")
	if err != nil {
		return domain.Critique{}, err
	}
	user, err := CriticPayload(dialogue, candidate, history)
	if err != nil {
		return domain.Critique{}, err
	}

	reply, err := s.completeOne(ctx, system, user, temperature)
	if err != nil {
		return domain.Critique{}, fmt.Errorf("evaluate candidate: %w", err)
	}

	critique, err := ParseCritique(reply)
	if err != nil {
		return domain.Critique{}, fmt.Errorf("evaluate candidate: %w", err)
	}
	return critique, nil
}

// RefineConcept picks the refiner prompt by verdict and returns the new label.
func (s *ModelService) RefineConcept(
	ctx context.Context,
	candidate domain.Candidate,
	critique domain.Critique,
	history *domain.InteractionHistory,
) (string, error) {
	name := PromptRefinerReject
	if critique.Verdict == domain.VerdictApprove {
		name = PromptRefinerApprove
	}

	system, _, temperature, err := s.prompts.Render(name, "")
	if err != nil {
		return "", err
	}
	user, err := RefinerPayload(candidate, critique, history)
	if err != nil {
		return "", err
	}

	reply, err := s.completeOne(ctx, system, user, temperature)
	if err != nil {
		return "", fmt.Errorf("refine concept: %w", err)
	}

	label, err := ParseRefinement(reply)
	if err != nil {
		return "", fmt.Errorf("refine concept: %w", err)
	}
	return label, nil
}

// GenerateFlashcard produces a question/answer pair for concept.
func (s *ModelService) GenerateFlashcard(ctx context.Context, concept string) (domain.Flashcard, error) {
	if concept == "" {
		return domain.Flashcard{}, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrEmptyLabel)
	}

	system, user, temperature, err := s.prompts.Render(PromptFlashcard, concept)
	if err != nil {
		return domain.Flashcard{}, err
	}

	reply, err := s.completeOne(ctx, system, user, temperature)
	if err != nil {
		return domain.Flashcard{}, fmt.Errorf("generate flashcard: %w", err)
	}

	card, err := ParseFlashcard(reply)
	if err != nil {
		return domain.Flashcard{}, fmt.Errorf("generate flashcard: %w", err)
	}
	return card, nil
}

func (s *ModelService) completeOne(ctx context.Context, system, user string, temperature float64) (string, error) {
	replies, err := s.completer.Complete(ctx, CompletionRequest{
		System:      system,
		User:        user,
		N:           1,
		Temperature: temperature,
		JSON:        true,
	})
	if err != nil {
		return "", err
	}
	if len(replies) == 0 {
		return "", fmt.Errorf("%w: no completion returned", ErrInvalidResponse)
	}
	return replies[0], nil
}

var (
	_ ConceptService     = (*ModelService)(nil)
	_ FlashcardGenerator = (*ModelService)(nil)
)
