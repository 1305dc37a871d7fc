package task

import (
	"context"
	"time"
)

// Default long-poll settings
const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultWaitTimeout  = 300 * time.Second
	MaxWaitTimeout      = 600 * time.Second
)

// SnapshotSource is the store capability a Waiter needs.
type SnapshotSource interface {
	Snapshot(id string) (Snapshot, bool)
}

// WaiterConfig holds long-poll settings
type WaiterConfig struct {
	// PollInterval is how often the store is checked while waiting
	PollInterval time.Duration

	// DefaultTimeout applies when the caller passes a non-positive timeout
	DefaultTimeout time.Duration

	// MaxTimeout is the upper clamp for caller supplied timeouts
	MaxTimeout time.Duration
}

// DefaultWaiterConfig returns a WaiterConfig with reasonable defaults
func DefaultWaiterConfig() WaiterConfig {
	return WaiterConfig{
		PollInterval:   DefaultPollInterval,
		DefaultTimeout: DefaultWaitTimeout,
		MaxTimeout:     MaxWaitTimeout,
	}
}

// Waiter blocks callers until a task finishes or a timeout elapses. It reads
// the store on a fixed interval and never holds the store lock while sleeping.
type Waiter struct {
	store  SnapshotSource
	config WaiterConfig
}

// NewWaiter creates a Waiter. Zero config fields take their defaults and
// MaxTimeout never exceeds MaxWaitTimeout.
func NewWaiter(store SnapshotSource, config WaiterConfig) *Waiter {
	defaults := DefaultWaiterConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = defaults.DefaultTimeout
	}
	if config.MaxTimeout <= 0 || config.MaxTimeout > MaxWaitTimeout {
		config.MaxTimeout = defaults.MaxTimeout
	}
	if config.DefaultTimeout > config.MaxTimeout {
		config.DefaultTimeout = config.MaxTimeout
	}
	return &Waiter{store: store, config: config}
}

// ClampTimeout applies the default and maximum to a requested timeout.
func (w *Waiter) ClampTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return w.config.DefaultTimeout
	}
	if timeout > w.config.MaxTimeout {
		return w.config.MaxTimeout
	}
	return timeout
}

// Wait returns the task snapshot once it is terminal, when the timeout
// elapses, or when ctx is done, whichever happens first. The boolean is
// false if the task does not exist or was evicted while waiting.
func (w *Waiter) Wait(ctx context.Context, id string, timeout time.Duration) (Snapshot, bool) {
	snap, ok := w.store.Snapshot(id)
	if !ok || snap.Status.IsTerminal() {
		return snap, ok
	}

	deadline := time.NewTimer(w.ClampTimeout(timeout))
	defer deadline.Stop()
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return w.store.Snapshot(id)
		case <-deadline.C:
			return w.store.Snapshot(id)
		case <-ticker.C:
			snap, ok = w.store.Snapshot(id)
			if !ok || snap.Status.IsTerminal() {
				return snap, ok
			}
		}
	}
}
