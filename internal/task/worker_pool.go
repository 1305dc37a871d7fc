package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/scry-concepts/internal/redact"
)

// WorkerPool manages a fixed set of worker goroutines that process jobs
// from a task queue. Each worker runs one job end to end before taking the
// next. A panicking job is converted to an error and never stops its worker.
type WorkerPool struct {
	// taskQueue provides read access to the jobs to be processed
	taskQueue TaskQueueReader

	// workerCount is the number of concurrent workers to start
	workerCount int

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is handed to every job; it is cancelled only after all workers exit
	ctx context.Context

	// cancel is the function to call to cancel the context
	cancel context.CancelFunc

	// logger for structured logging
	logger *slog.Logger
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(taskQueue TaskQueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// Start launches the worker goroutines
func (p *WorkerPool) Start() {
	p.logger.Info("starting worker pool", "worker_count", p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop waits for the workers to drain the queue and exit. The queue must be
// closed first, otherwise Stop blocks until it is.
func (p *WorkerPool) Stop() {
	p.wg.Wait()
	p.cancel()
	p.logger.Info("worker pool stopped")
}

// Shutdown is Stop bounded by ctx. Running jobs are not cancelled when ctx
// expires; Shutdown just stops waiting for them and returns ctx.Err().
func (p *WorkerPool) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown deadline exceeded, jobs still running")
		return ctx.Err()
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)
	for {
		job, ok := p.taskQueue.Dequeue()
		if !ok {
			p.logger.Debug("stopping worker, queue drained", "worker_id", id)
			return
		}
		p.processJob(id, job)
	}
}

func (p *WorkerPool) processJob(workerID int, job Job) {
	log := p.logger.With("task_id", job.ID(), "worker_id", workerID)

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic in job %s: %v", job.ID(), r)
			}
		}()
		log.Debug("processing job")
		err = job.Execute(p.ctx)
	}()

	if err == nil {
		log.Debug("job finished")
		return
	}

	log.Error("job failed", "error", redact.Error(err))
}
