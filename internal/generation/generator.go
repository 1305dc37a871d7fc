package generation

import (
	"context"

	"github.com/phrazzld/scry-concepts/internal/domain"
)

// ConceptService proposes, critiques and refines concept labels for a
// dialogue. Implementations may call remote models and block for a long time.
type ConceptService interface {
	// GenerateCandidates proposes up to n candidates. Outputs that fail to
	// parse are skipped, so fewer than n (possibly zero) may be returned.
	GenerateCandidates(ctx context.Context, dialogue domain.Dialogue, n int) ([]domain.Candidate, error)

	// EvaluateCandidate critiques a candidate. history is nil until at least
	// one refinement has happened.
	EvaluateCandidate(
		ctx context.Context,
		dialogue domain.Dialogue,
		candidate domain.Candidate,
		history *domain.InteractionHistory,
	) (domain.Critique, error)

	// RefineConcept returns an improved label for candidate given the critique.
	RefineConcept(
		ctx context.Context,
		candidate domain.Candidate,
		critique domain.Critique,
		history *domain.InteractionHistory,
	) (string, error)
}

// FlashcardGenerator produces a study card for a concept label.
type FlashcardGenerator interface {
	GenerateFlashcard(ctx context.Context, concept string) (domain.Flashcard, error)
}

// CompletionRequest is a single chat-style model call.
type CompletionRequest struct {
	// System is the instruction prompt
	System string

	// User is the user message, usually a JSON document
	User string

	// N is the number of independent completions requested; zero means one
	N int

	// Temperature controls sampling randomness
	Temperature float64

	// JSON asks the provider to constrain output to a JSON object
	JSON bool
}

// Completer is implemented by model providers. It returns the text of each
// completion choice in order.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) ([]string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, req CompletionRequest) ([]string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req CompletionRequest) ([]string, error) {
	return f(ctx, req)
}
