package task

import (
	"errors"
	"log/slog"

	"github.com/phrazzld/scry-concepts/internal/domain"
)

// ProgressAppender is the store capability a progress reporter needs.
type ProgressAppender interface {
	AppendProgress(id string, stage domain.Stage, message string) error
}

// NewProgressReporter returns a ProgressFunc that appends entries for task
// id. Updates that arrive after the task finished or was evicted are logged
// at debug level and dropped.
func NewProgressReporter(store ProgressAppender, id string, logger *slog.Logger) domain.ProgressFunc {
	return func(stage domain.Stage, message string) {
		err := store.AppendProgress(id, stage, message)
		switch {
		case err == nil:
			logger.Debug("task progress", "task_id", id, "stage", stage, "message", message)
		case errors.Is(err, ErrTaskFinished), errors.Is(err, ErrTaskNotFound):
			logger.Debug("dropping progress update", "task_id", id, "stage", stage, "reason", err.Error())
		default:
			logger.Warn("failed to record progress", "task_id", id, "stage", stage, "error", err)
		}
	}
}
