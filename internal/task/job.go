package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/phrazzld/scry-concepts/internal/events"
	"github.com/phrazzld/scry-concepts/internal/redact"
)

// runJob executes one submitted task: it marks the task running, hands the
// payload to the runner with a store-backed reporter, and records the
// outcome. Runner panics are recorded as failures before being returned.
type runJob struct {
	id      string
	payload Payload
	runner  Runner
	store   *MemoryStore
	emitter events.EventEmitter
	logger  *slog.Logger
}

func (j *runJob) ID() string {
	return j.id
}

func (j *runJob) Execute(ctx context.Context) (err error) {
	log := j.logger.With("task_id", j.id)

	if err := j.store.Transition(j.id, Transition{
		To:      StatusRunning,
		Stage:   domain.StageInitializing,
		Message: "Starting summarization process",
	}); err != nil {
		return fmt.Errorf("failed to start task: %w", err)
	}
	j.emit(ctx, events.TaskStarted, nil)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while running task: %v", r)
			j.fail(ctx, log, err)
		}
	}()

	result, runErr := j.runner.Run(ctx, j.payload, NewProgressReporter(j.store, j.id, log))
	if runErr != nil {
		j.fail(ctx, log, runErr)
		return runErr
	}

	if err := j.store.Transition(j.id, Transition{
		To:      StatusCompleted,
		Result:  result,
		Stage:   domain.StageCompleted,
		Message: "Summary completed: " + result,
	}); err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	log.Info("task completed", "result", result)
	j.emit(ctx, events.TaskCompleted, map[string]string{"result": result})
	return nil
}

func (j *runJob) fail(ctx context.Context, log *slog.Logger, cause error) {
	msg := redact.Error(cause)
	if msg == "" {
		msg = "task failed"
	}

	if err := j.store.Transition(j.id, Transition{To: StatusFailed, Error: msg}); err != nil {
		log.Error("failed to record task failure", "error", err)
		return
	}
	j.emit(ctx, events.TaskFailed, map[string]string{"error": msg})
}

func (j *runJob) emit(ctx context.Context, eventType events.EventType, payload interface{}) {
	emit(ctx, j.emitter, j.logger, eventType, j.id, payload)
}

func emit(ctx context.Context, emitter events.EventEmitter, logger *slog.Logger, eventType events.EventType, taskID string, payload interface{}) {
	if emitter == nil {
		return
	}
	event, err := events.NewLifecycleEvent(eventType, taskID, payload)
	if err != nil {
		logger.Error("failed to build lifecycle event", "event_type", eventType, "task_id", taskID, "error", err)
		return
	}
	// Handler errors are logged by the emitter.
	_ = emitter.EmitEvent(ctx, event)
}
