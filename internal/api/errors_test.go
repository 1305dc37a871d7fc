package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/scry-concepts/internal/api/shared"
	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/phrazzld/scry-concepts/internal/service"
	"github.com/phrazzld/scry-concepts/internal/service/auth"
	"github.com/phrazzld/scry-concepts/internal/store"
	"github.com/phrazzld/scry-concepts/internal/task"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized, "Invalid token"},
		{"unknown task", fmt.Errorf("lookup: %w", task.ErrTaskNotFound), http.StatusNotFound, "Task not found"},
		{"missing flashcard", store.ErrFlashcardNotFound, http.StatusNotFound, "Flashcard not found"},
		{"empty dialogue", fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrEmptyDialogue), http.StatusBadRequest, "Dialogue cannot be empty"},
		{"empty role", fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrEmptyRole), http.StatusBadRequest, "Every dialogue turn needs a role"},
		{"empty concept", fmt.Errorf("%w: %w", domain.ErrValidation, service.ErrEmptyConcept), http.StatusBadRequest, "Concept is required"},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest, "Validation error"},
		{"queue full", task.ErrQueueFull, http.StatusServiceUnavailable, "Too many pending tasks, try again later"},
		{"stopped", fmt.Errorf("%w: %w", task.ErrManagerStopped, task.ErrQueueClosed), http.StatusServiceUnavailable, "Service is shutting down"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, MapErrorToStatusCode(tt.err))
			assert.Equal(t, tt.message, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestGetSafeErrorMessageNil(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}

func TestHandleAPIErrorUsesDefaultForInternalErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.SetTraceID(req.Context()))

	HandleAPIError(rr, req, errors.New("sqlite: disk I/O error at /var/lib/scry.db"), "Failed to do the thing")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	resp := decodeBody[shared.ErrorResponse](t, rr)
	assert.Equal(t, "Failed to do the thing", resp.Error)
	assert.Equal(t, shared.GetTraceID(req.Context()), resp.TraceID)
}

func TestSanitizeValidationErrorFallback(t *testing.T) {
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("not a validator error")))
}
