package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-concepts/internal/api/shared"
	"github.com/phrazzld/scry-concepts/internal/store"
)

// FlashcardRetriever looks up stored flashcards by concept.
type FlashcardRetriever interface {
	Retrieve(ctx context.Context, concept string) (store.FlashcardRecord, error)
}

// FlashcardHandler serves flashcard lookups.
type FlashcardHandler struct {
	flashcards FlashcardRetriever
	logger     *slog.Logger
}

// NewFlashcardHandler creates a new FlashcardHandler.
func NewFlashcardHandler(flashcards FlashcardRetriever, logger *slog.Logger) *FlashcardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlashcardHandler{
		flashcards: flashcards,
		logger:     logger.With("component", "flashcard_handler"),
	}
}

// Lookup handles GET /flashcards?concept=.
func (h *FlashcardHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	card, err := h.flashcards.Retrieve(r.Context(), r.URL.Query().Get("concept"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve flashcard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, FlashcardResponse{Found: true, Card: flashcardToDTO(card)})
}
