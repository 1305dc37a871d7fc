package task

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-concepts/internal/domain"
)

// Transition describes a status change applied by MemoryStore.Transition.
// Result is kept only when moving to completed and Error only when moving
// to failed. If Stage is set, a progress entry is appended in the same
// critical section as the status change.
type Transition struct {
	To      Status
	Result  string
	Error   string
	Stage   domain.Stage
	Message string
}

var allowedTransitions = map[Status][]Status{
	StatusPending: {StatusRunning, StatusFailed},
	StatusRunning: {StatusCompleted, StatusFailed},
}

// MemoryStore holds every task record in a map guarded by a single mutex.
// All reads return copies.
type MemoryStore struct {
	mu    sync.Mutex
	tasks map[string]*Task
	now   func() time.Time
}

// StoreOption configures a MemoryStore.
type StoreOption func(*MemoryStore)

// WithClock replaces the store's time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		tasks: make(map[string]*Task),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new pending task and returns its id.
func (s *MemoryStore) Create(payload Payload) string {
	id := uuid.NewString()
	payload.Dialogue = payload.Dialogue.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[id] = &Task{
		ID:        id,
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: s.now(),
	}
	return id
}

// Get returns a copy of the task. The boolean is false for unknown or
// evicted ids.
func (s *MemoryStore) Get(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return t.clone(), true
}

// Snapshot returns the external view of the task.
func (s *MemoryStore) Snapshot(id string) (Snapshot, bool) {
	t, ok := s.Get(id)
	if !ok {
		return Snapshot{}, false
	}
	return t.Snapshot(), true
}

// Transition applies a status change. Moving to running stamps StartedAt;
// moving to a terminal status stamps CompletedAt. Terminal tasks are
// write-once and return ErrTaskFinished.
func (s *MemoryStore) Transition(id string, tr Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if t.Status.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrTaskFinished, id, t.Status)
	}
	if !transitionAllowed(t.Status, tr.To) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, tr.To)
	}

	now := s.timestamp(t)
	t.Status = tr.To
	switch tr.To {
	case StatusRunning:
		t.StartedAt = &now
	case StatusCompleted:
		t.Result = tr.Result
		t.CompletedAt = &now
	case StatusFailed:
		t.Error = tr.Error
		t.CompletedAt = &now
	}

	if tr.Stage != "" {
		t.Progress = append(t.Progress, ProgressEntry{Stage: tr.Stage, Message: tr.Message, Timestamp: now})
	}
	return nil
}

// AppendProgress adds a progress entry to a pending or running task.
func (s *MemoryStore) AppendProgress(id string, stage domain.Stage, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if t.Status.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrTaskFinished, id, t.Status)
	}

	t.Progress = append(t.Progress, ProgressEntry{Stage: stage, Message: message, Timestamp: s.timestamp(t)})
	return nil
}

// DeleteExpired removes terminal tasks that completed strictly before cutoff
// and returns how many were removed.
func (s *MemoryStore) DeleteExpired(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, t := range s.tasks {
		if t.Status.IsTerminal() && t.CompletedAt != nil && t.CompletedAt.Before(cutoff) {
			delete(s.tasks, id)
			removed++
		}
	}
	return removed
}

// Delete removes a task regardless of its status.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
}

// Len returns the number of tasks currently held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// timestamp returns the current time, never earlier than the task's latest
// recorded timestamp. Callers hold s.mu.
func (s *MemoryStore) timestamp(t *Task) time.Time {
	now := s.now()
	latest := t.CreatedAt
	if t.StartedAt != nil && t.StartedAt.After(latest) {
		latest = *t.StartedAt
	}
	if n := len(t.Progress); n > 0 && t.Progress[n-1].Timestamp.After(latest) {
		latest = t.Progress[n-1].Timestamp
	}
	if now.Before(latest) {
		return latest
	}
	return now
}

func transitionAllowed(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
