package service_test

import (
	"context"
	"testing"

	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/phrazzld/scry-concepts/internal/mocks"
	"github.com/phrazzld/scry-concepts/internal/service"
	"github.com/phrazzld/scry-concepts/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashcardServiceRetrieve(t *testing.T) {
	t.Parallel()

	results := &mocks.MockResultStore{}
	require.NoError(t, results.SaveFlashcard(context.Background(), store.FlashcardRecord{
		Concept:  "closures",
		Question: "What does a closure capture?",
		Answer:   "Variables from its enclosing scope.",
	}))

	svc, err := service.NewFlashcardService(results, nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		concept string
		want    string
		wantErr error
	}{
		{name: "found", concept: "closures", want: "What does a closure capture?"},
		{name: "trimmed", concept: "  closures ", want: "What does a closure capture?"},
		{name: "missing", concept: "monads", wantErr: store.ErrFlashcardNotFound},
		{name: "empty", concept: "  ", wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, err := svc.Retrieve(context.Background(), tt.concept)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, card.Question)
		})
	}
}

func TestNewFlashcardServiceRequiresStore(t *testing.T) {
	t.Parallel()

	_, err := service.NewFlashcardService(nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
