package task

import (
	"context"
	"time"

	"github.com/phrazzld/scry-concepts/internal/domain"
)

// Status represents the lifecycle state of a task
type Status string

// Possible task status values
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Payload is the immutable input of a summarization task.
type Payload struct {
	Dialogue domain.Dialogue `json:"dialogue"`
	UserID   int64           `json:"user_id"`
}

// ProgressEntry records a stage a running task reached.
type ProgressEntry struct {
	Stage     domain.Stage `json:"stage"`
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
}

// Task is the record the store keeps for each submitted job. Values returned
// from the store are copies and may be read without locking.
type Task struct {
	ID          string
	Payload     Payload
	Status      Status
	Progress    []ProgressEntry
	Result      string
	Error       string
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

func (t *Task) clone() Task {
	out := *t
	out.Payload.Dialogue = t.Payload.Dialogue.Clone()
	if t.Progress != nil {
		out.Progress = make([]ProgressEntry, len(t.Progress))
		copy(out.Progress, t.Progress)
	}
	if t.StartedAt != nil {
		started := *t.StartedAt
		out.StartedAt = &started
	}
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		out.CompletedAt = &completed
	}
	return out
}

// Snapshot is the externally visible view of a task.
type Snapshot struct {
	TaskID        string
	Status        Status
	CurrentStage  domain.Stage
	ProgressCount int
	TotalStages   int
	Result        string
	Error         string
	CreatedAt     time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	Progress      []ProgressEntry
}

// Snapshot builds the external view of t. CurrentStage is the stage of the
// latest progress entry, or initializing when there is none yet.
func (t Task) Snapshot() Snapshot {
	stage := domain.StageInitializing
	if n := len(t.Progress); n > 0 {
		stage = t.Progress[n-1].Stage
	}

	return Snapshot{
		TaskID:        t.ID,
		Status:        t.Status,
		CurrentStage:  stage,
		ProgressCount: len(t.Progress),
		TotalStages:   domain.TotalStages,
		Result:        t.Result,
		Error:         t.Error,
		CreatedAt:     t.CreatedAt,
		StartedAt:     t.StartedAt,
		CompletedAt:   t.CompletedAt,
		Progress:      t.Progress,
	}
}

// Runner performs the work of a single task. It reports progress through
// report, which may be nil, and returns the task result.
type Runner interface {
	Run(ctx context.Context, payload Payload, report domain.ProgressFunc) (string, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, payload Payload, report domain.ProgressFunc) (string, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, payload Payload, report domain.ProgressFunc) (string, error) {
	return f(ctx, payload, report)
}

// Job is a unit of work consumed by the worker pool.
type Job interface {
	// ID returns the identifier of the task the job belongs to
	ID() string

	// Execute runs the job to completion
	Execute(ctx context.Context) error
}

// TaskQueueReader provides blocking read access to queued jobs
// allowing workers to consume jobs without the ability to enqueue
type TaskQueueReader interface {
	// Dequeue blocks until a job is available. It returns false once the
	// queue is closed and drained.
	Dequeue() (Job, bool)
}

// TaskQueueWriter provides write access to the task queue
// allowing the manager to enqueue jobs for processing
type TaskQueueWriter interface {
	// Enqueue adds a job to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(job Job) error

	// Close stops accepting new jobs; queued jobs remain readable
	Close()
}
