package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/scry-concepts/internal/api/shared"
	"github.com/phrazzld/scry-concepts/internal/mocks"
	"github.com/phrazzld/scry-concepts/internal/service"
	"github.com/phrazzld/scry-concepts/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flashcardRouter(t *testing.T, results store.ResultStore) http.Handler {
	t.Helper()
	svc, err := service.NewFlashcardService(results, discardLogger())
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/api/v1/flashcards", NewFlashcardHandler(svc, discardLogger()).Lookup)
	return r
}

func TestFlashcardLookup(t *testing.T) {
	results := &mocks.MockResultStore{}
	created := time.Unix(1700000000, 500000000)
	require.NoError(t, results.SaveFlashcard(context.Background(), store.FlashcardRecord{
		UserID:    7,
		Concept:   "greetings",
		Question:  "What opens a conversation?",
		Answer:    "A greeting.",
		CreatedAt: created,
	}))
	h := flashcardRouter(t, results)

	t.Run("found", func(t *testing.T) {
		rr := doRequest(t, h, http.MethodGet, "/api/v1/flashcards?concept=greetings", "")
		require.Equal(t, http.StatusOK, rr.Code)

		resp := decodeBody[FlashcardResponse](t, rr)
		assert.True(t, resp.Found)
		assert.Equal(t, "greetings", resp.Card.Concept)
		assert.Equal(t, "What opens a conversation?", resp.Card.Question)
		assert.Equal(t, "A greeting.", resp.Card.Answer)
		assert.Equal(t, int64(7), resp.Card.UserID)
		assert.InDelta(t, 1700000000.5, resp.Card.CreatedAt, 0.001)
	})

	t.Run("not found", func(t *testing.T) {
		rr := doRequest(t, h, http.MethodGet, "/api/v1/flashcards?concept=monads", "")
		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Flashcard not found", decodeBody[shared.ErrorResponse](t, rr).Error)
	})

	t.Run("missing concept", func(t *testing.T) {
		rr := doRequest(t, h, http.MethodGet, "/api/v1/flashcards", "")
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Concept is required", decodeBody[shared.ErrorResponse](t, rr).Error)
	})
}

func TestFlashcardLookupStoreFailure(t *testing.T) {
	results := &mocks.MockResultStore{
		FindFlashcardFn: func(context.Context, string) (store.FlashcardRecord, error) {
			return store.FlashcardRecord{}, errors.New("postgres://admin:hunter2@db/scry is down")
		},
	}
	h := flashcardRouter(t, results)

	rr := doRequest(t, h, http.MethodGet, "/api/v1/flashcards?concept=x", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	body := decodeBody[shared.ErrorResponse](t, rr).Error
	assert.Equal(t, "Failed to retrieve flashcard", body)
	assert.NotContains(t, body, "hunter2")
}
