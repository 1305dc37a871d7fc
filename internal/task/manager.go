package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/phrazzld/scry-concepts/internal/events"
)

// ManagerConfig holds configuration for the task manager
type ManagerConfig struct {
	// WorkerCount determines how many tasks run concurrently
	WorkerCount int

	// MaxQueueDepth caps queued tasks; zero means unbounded
	MaxQueueDepth int

	// Retention is how long finished tasks remain queryable
	Retention time.Duration

	// CleanupInterval is the time between janitor sweeps
	CleanupInterval time.Duration

	// PollInterval, DefaultWait and MaxWait configure long-polling
	PollInterval time.Duration
	DefaultWait  time.Duration
	MaxWait      time.Duration
}

// DefaultManagerConfig returns a ManagerConfig with reasonable defaults
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WorkerCount:     2,
		MaxQueueDepth:   0,
		Retention:       DefaultRetention,
		CleanupInterval: DefaultCleanupInterval,
		PollInterval:    DefaultPollInterval,
		DefaultWait:     DefaultWaitTimeout,
		MaxWait:         MaxWaitTimeout,
	}
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithEventEmitter publishes lifecycle events through emitter.
func WithEventEmitter(emitter events.EventEmitter) ManagerOption {
	return func(m *Manager) {
		m.emitter = emitter
	}
}

// WithStore replaces the manager's task store.
func WithStore(store *MemoryStore) ManagerOption {
	return func(m *Manager) {
		m.store = store
	}
}

// Manager ties together the task store, queue, worker pool, waiter and
// janitor. It is constructed once at startup and passed to whatever needs it.
type Manager struct {
	store   *MemoryStore
	queue   *TaskQueue
	pool    *WorkerPool
	waiter  *Waiter
	janitor *Janitor
	runner  Runner
	emitter events.EventEmitter
	logger  *slog.Logger

	mu            sync.Mutex
	started       bool
	stopped       bool
	janitorCancel context.CancelFunc
	janitorDone   chan struct{}
}

// NewManager creates a Manager that executes every task with runner.
func NewManager(runner Runner, config ManagerConfig, logger *slog.Logger, opts ...ManagerOption) *Manager {
	logger = logger.With("component", "task_manager")

	m := &Manager{
		runner: runner,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = NewMemoryStore()
	}

	m.queue = NewTaskQueue(config.MaxQueueDepth, logger)
	m.pool = NewWorkerPool(m.queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)
	m.waiter = NewWaiter(m.store, WaiterConfig{
		PollInterval:   config.PollInterval,
		DefaultTimeout: config.DefaultWait,
		MaxTimeout:     config.MaxWait,
	})
	m.janitor = NewJanitor(m.store, JanitorConfig{
		Retention: config.Retention,
		Interval:  config.CleanupInterval,
	}, logger)

	return m
}

// Start launches the workers and the janitor. Calling Start more than once
// has no effect.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started || m.stopped {
		return
	}
	m.started = true

	m.pool.Start()

	janitorCtx, cancel := context.WithCancel(ctx)
	m.janitorCancel = cancel
	m.janitorDone = make(chan struct{})
	go func() {
		defer close(m.janitorDone)
		m.janitor.Run(janitorCtx)
	}()

	m.logger.Info("task manager started")
}

// Shutdown stops accepting tasks, stops the janitor, and waits for the
// workers to finish every queued task or for ctx to expire.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	started := m.started
	m.mu.Unlock()

	m.queue.Close()
	if !started {
		return nil
	}

	m.janitorCancel()
	<-m.janitorDone

	if err := m.pool.Shutdown(ctx); err != nil {
		return fmt.Errorf("task manager shutdown: %w", err)
	}
	m.logger.Info("task manager stopped")
	return nil
}

// Submit validates the dialogue, records a pending task and queues it.
// It returns the new task id.
func (m *Manager) Submit(ctx context.Context, dialogue domain.Dialogue, userID int64) (string, error) {
	if err := dialogue.Validate(); err != nil {
		return "", err
	}

	payload := Payload{Dialogue: dialogue, UserID: userID}
	id := m.store.Create(payload)

	job := &runJob{
		id:      id,
		payload: payload,
		runner:  m.runner,
		store:   m.store,
		emitter: m.emitter,
		logger:  m.logger,
	}
	// task.submitted must precede task.started for the same id.
	emit(ctx, m.emitter, m.logger, events.TaskSubmitted, id, map[string]int64{"user_id": userID})

	if err := m.queue.Enqueue(job); err != nil {
		m.store.Delete(id)
		emit(ctx, m.emitter, m.logger, events.TaskRejected, id, map[string]string{"error": err.Error()})
		if errors.Is(err, ErrQueueClosed) {
			return "", fmt.Errorf("%w: %w", ErrManagerStopped, err)
		}
		return "", fmt.Errorf("failed to queue task: %w", err)
	}

	m.logger.Info("task submitted",
		"task_id", id,
		"user_id", userID,
		"turns", len(dialogue))
	return id, nil
}

// Status returns the task snapshot, or false if the id is unknown or evicted.
func (m *Manager) Status(id string) (Snapshot, bool) {
	return m.store.Snapshot(id)
}

// Wait long-polls until the task finishes or the clamped timeout elapses.
func (m *Manager) Wait(ctx context.Context, id string, timeout time.Duration) (Snapshot, bool) {
	return m.waiter.Wait(ctx, id, timeout)
}

// MaxWait returns the longest wait the manager allows.
func (m *Manager) MaxWait() time.Duration {
	return m.waiter.config.MaxTimeout
}

// TaskCount returns the number of tasks currently retained.
func (m *Manager) TaskCount() int {
	return m.store.Len()
}

// QueueDepth returns the number of tasks waiting for a worker.
func (m *Manager) QueueDepth() int {
	return m.queue.Len()
}
