package task

import (
	"fmt"
	"log/slog"
	"sync"
)

// TaskQueue is a FIFO job queue that satisfies both TaskQueueReader and
// TaskQueueWriter. It is unbounded unless created with a positive maxDepth.
type TaskQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	jobs     []Job
	maxDepth int
	closed   bool
	logger   *slog.Logger
}

// NewTaskQueue creates a queue. A maxDepth of zero or less means unbounded.
func NewTaskQueue(maxDepth int, logger *slog.Logger) *TaskQueue {
	q := &TaskQueue{
		maxDepth: maxDepth,
		logger:   logger,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue adds a job to the back of the queue
// Returns an error if the queue is full or closed
func (q *TaskQueue) Enqueue(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if q.maxDepth > 0 && len(q.jobs) >= q.maxDepth {
		return fmt.Errorf("%w: queue depth %d reached", ErrQueueFull, q.maxDepth)
	}

	q.jobs = append(q.jobs, job)
	q.cond.Signal()

	q.logger.Debug("job enqueued",
		"task_id", job.ID(),
		"queue_len", len(q.jobs))
	return nil
}

// Dequeue blocks until a job is available or the queue is closed and empty.
func (q *TaskQueue) Dequeue() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.jobs) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.jobs) == 0 {
		return nil, false
	}

	job := q.jobs[0]
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	return job, true
}

// Close stops accepting jobs and wakes blocked readers. Jobs already queued
// are still handed out by Dequeue.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		q.cond.Broadcast()
		q.logger.Info("task queue closed", "pending_jobs", len(q.jobs))
	}
}

// Len returns the number of queued jobs.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}
