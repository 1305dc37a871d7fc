package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/scry-concepts/internal/api/shared"
	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/phrazzld/scry-concepts/internal/platform/logger"
	"github.com/phrazzld/scry-concepts/internal/task"
)

// TaskManager is the part of task.Manager the summary handlers use.
type TaskManager interface {
	Submit(ctx context.Context, dialogue domain.Dialogue, userID int64) (string, error)
	Status(id string) (task.Snapshot, bool)
	Wait(ctx context.Context, id string, timeout time.Duration) (task.Snapshot, bool)
	MaxWait() time.Duration
}

// SummaryHandler serves the summarization task endpoints.
type SummaryHandler struct {
	tasks  TaskManager
	logger *slog.Logger
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(tasks TaskManager, logger *slog.Logger) *SummaryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryHandler{
		tasks:  tasks,
		logger: logger.With("component", "summary_handler"),
	}
}

// Submit handles POST /summaries. It queues the dialogue and returns 202
// with the task id.
func (h *SummaryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.submit(w, r)
	if !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitResponse{
		TaskID:  id,
		Status:  "started",
		Message: "Summarization task started. Use the task_id to check status.",
	})
}

// Get handles GET /summaries/{id}.
func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, ok := h.tasks.Status(id)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(snap))
}

// Wait handles GET /summaries/{id}/wait?timeout=seconds. It blocks until
// the task finishes or the timeout, clamped to the manager's maximum,
// elapses, then returns the current snapshot.
func (h *SummaryHandler) Wait(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var timeout time.Duration
	if raw := r.URL.Query().Get("timeout"); raw != "" {
		seconds, err := strconv.ParseFloat(raw, 64)
		if err != nil || seconds < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid timeout")
			return
		}
		timeout = time.Duration(seconds * float64(time.Second))
		if maxWait := h.tasks.MaxWait(); timeout > maxWait {
			timeout = maxWait
		}
	}

	snap, ok := h.tasks.Wait(r.Context(), id, timeout)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(snap))
}

// SummarizeSync handles POST /summarize-dialogue. It submits the dialogue
// and waits up to the maximum wait for the result.
func (h *SummaryHandler) SummarizeSync(w http.ResponseWriter, r *http.Request) {
	id, ok := h.submit(w, r)
	if !ok {
		return
	}

	snap, ok := h.tasks.Wait(r.Context(), id, h.tasks.MaxWait())
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Task disappeared before completion")
		return
	}

	switch snap.Status {
	case task.StatusCompleted:
		shared.RespondWithJSON(w, r, http.StatusOK, SyncSummaryResponse{Summary: snap.Result})
	case task.StatusFailed:
		shared.RespondWithError(w, r, http.StatusInternalServerError, snap.Error)
	default:
		shared.RespondWithJSON(w, r, http.StatusGatewayTimeout, SyncTimeoutResponse{
			Error:  "Summarization did not finish in time",
			TaskID: id,
			Status: string(snap.Status),
		})
	}
}

func (h *SummaryHandler) submit(w http.ResponseWriter, r *http.Request) (string, bool) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SummaryRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		log.Debug("invalid summary request body", "error", err)
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return "", false
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return "", false
	}

	userID := req.UserID
	if authUserID, ok := shared.GetUserID(r.Context()); ok && userID == 0 {
		userID = authUserID
	}

	id, err := h.tasks.Submit(r.Context(), req.ToDialogue(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start summarization")
		return "", false
	}
	return id, true
}
