package task

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/scry-concepts/internal/events"
)

// LifecycleRecorder implements events.EventHandler. It logs every lifecycle
// event and keeps running totals per event type.
type LifecycleRecorder struct {
	mu     sync.Mutex
	counts map[events.EventType]int
	logger *slog.Logger
}

// NewLifecycleRecorder creates a recorder that logs through logger.
func NewLifecycleRecorder(logger *slog.Logger) *LifecycleRecorder {
	return &LifecycleRecorder{
		counts: make(map[events.EventType]int),
		logger: logger.With("component", "task_lifecycle_recorder"),
	}
}

// HandleEvent records the event.
func (r *LifecycleRecorder) HandleEvent(ctx context.Context, event *events.LifecycleEvent) error {
	r.mu.Lock()
	r.counts[event.Type]++
	r.mu.Unlock()

	level := slog.LevelDebug
	if event.Type == events.TaskFailed {
		level = slog.LevelWarn
	}
	r.logger.Log(ctx, level, "task lifecycle event",
		"event_id", event.ID,
		"event_type", event.Type,
		"task_id", event.TaskID)
	return nil
}

// Counts returns a copy of the per-type totals.
func (r *LifecycleRecorder) Counts() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]int, len(r.counts))
	for k, v := range r.counts {
		out[string(k)] = v
	}
	return out
}

// Ensure LifecycleRecorder implements events.EventHandler
var _ events.EventHandler = (*LifecycleRecorder)(nil)
