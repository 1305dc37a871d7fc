package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/phrazzld/scry-concepts/internal/generation"
)

// MockFlashcardGenerator implements generation.FlashcardGenerator for testing
type MockFlashcardGenerator struct {
	// GenerateFlashcardFn allows test cases to mock the GenerateFlashcard behavior
	GenerateFlashcardFn func(ctx context.Context, concept string) (domain.Flashcard, error)

	// Default response values
	Card domain.Flashcard
	Err  error

	mu       sync.Mutex
	Concepts []string
}

var _ generation.FlashcardGenerator = (*MockFlashcardGenerator)(nil)

// GenerateFlashcard implements the generation.FlashcardGenerator interface
func (m *MockFlashcardGenerator) GenerateFlashcard(ctx context.Context, concept string) (domain.Flashcard, error) {
	m.mu.Lock()
	m.Concepts = append(m.Concepts, concept)
	m.mu.Unlock()

	if m.GenerateFlashcardFn != nil {
		return m.GenerateFlashcardFn(ctx, concept)
	}
	return m.Card, m.Err
}

// CallCount returns how many flashcards were requested.
func (m *MockFlashcardGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Concepts)
}

// NewMockFlashcardGenerator returns a generator that always produces a card
// echoing the requested concept.
func NewMockFlashcardGenerator() *MockFlashcardGenerator {
	return &MockFlashcardGenerator{
		GenerateFlashcardFn: func(_ context.Context, concept string) (domain.Flashcard, error) {
			return domain.Flashcard{
				Question: "What is " + concept + "?",
				Answer:   concept + " is the idea the dialogue circles around.",
			}, nil
		},
	}
}
