package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-concepts/internal/store"
)

// MockResultStore implements store.ResultStore in memory for testing.
// Without overrides it behaves like a real store: saved flashcards can be
// found by concept.
type MockResultStore struct {
	SaveDialogueFn  func(ctx context.Context, record store.DialogueRecord) error
	SaveFlashcardFn func(ctx context.Context, record store.FlashcardRecord) error
	FindFlashcardFn func(ctx context.Context, concept string) (store.FlashcardRecord, error)

	mu         sync.Mutex
	Dialogues  []store.DialogueRecord
	Flashcards []store.FlashcardRecord
}

var _ store.ResultStore = (*MockResultStore)(nil)

// SaveDialogue implements the store.ResultStore interface
func (m *MockResultStore) SaveDialogue(ctx context.Context, record store.DialogueRecord) error {
	if m.SaveDialogueFn != nil {
		if err := m.SaveDialogueFn(ctx, record); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	record.ID = int64(len(m.Dialogues) + 1)
	m.Dialogues = append(m.Dialogues, record)
	return nil
}

// SaveFlashcard implements the store.ResultStore interface
func (m *MockResultStore) SaveFlashcard(ctx context.Context, record store.FlashcardRecord) error {
	if m.SaveFlashcardFn != nil {
		if err := m.SaveFlashcardFn(ctx, record); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	record.ID = int64(len(m.Flashcards) + 1)
	m.Flashcards = append(m.Flashcards, record)
	return nil
}

// FindFlashcard implements the store.ResultStore interface
func (m *MockResultStore) FindFlashcard(ctx context.Context, concept string) (store.FlashcardRecord, error) {
	if m.FindFlashcardFn != nil {
		return m.FindFlashcardFn(ctx, concept)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Flashcards) - 1; i >= 0; i-- {
		if m.Flashcards[i].Concept == concept {
			return m.Flashcards[i], nil
		}
	}
	return store.FlashcardRecord{}, store.ErrFlashcardNotFound
}

// Counts returns the number of saved dialogues and flashcards.
func (m *MockResultStore) Counts() (dialogues, flashcards int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Dialogues), len(m.Flashcards)
}
