package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-concepts/internal/redact"
)

// Default retention settings
const (
	DefaultRetention       = time.Hour
	DefaultCleanupInterval = 5 * time.Minute
)

// ExpiredDeleter is the store capability the janitor needs.
type ExpiredDeleter interface {
	DeleteExpired(cutoff time.Time) int
}

// JanitorConfig holds retention settings
type JanitorConfig struct {
	// Retention is how long a finished task stays queryable
	Retention time.Duration

	// Interval is the time between sweeps
	Interval time.Duration
}

// Janitor periodically evicts finished tasks older than the retention window.
type Janitor struct {
	store  ExpiredDeleter
	config JanitorConfig
	now    func() time.Time
	logger *slog.Logger
}

// NewJanitor creates a Janitor. Zero config fields take their defaults.
func NewJanitor(store ExpiredDeleter, config JanitorConfig, logger *slog.Logger) *Janitor {
	if config.Retention <= 0 {
		config.Retention = DefaultRetention
	}
	if config.Interval <= 0 {
		config.Interval = DefaultCleanupInterval
	}
	return &Janitor{
		store:  store,
		config: config,
		now:    time.Now,
		logger: logger.With("component", "task_janitor"),
	}
}

// Sweep evicts tasks that completed more than the retention window before now.
// A panic inside the store is recovered and returned as an error.
func (j *Janitor) Sweep(now time.Time) (removed int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task sweep panicked: %v", r)
		}
	}()
	return j.store.DeleteExpired(now.Add(-j.config.Retention)), nil
}

// Run sweeps on every tick until ctx is cancelled. Sweep failures are logged
// and the loop keeps going.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	j.logger.Info("task janitor started",
		"retention", j.config.Retention.String(),
		"interval", j.config.Interval.String())

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("task janitor stopped")
			return
		case <-ticker.C:
			removed, err := j.Sweep(j.now())
			if err != nil {
				j.logger.Error("task sweep failed", "error", redact.Error(err))
				continue
			}
			if removed > 0 {
				j.logger.Info("evicted finished tasks", "count", removed)
			}
		}
	}
}
