package task

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// mockJob implements Job for testing
type mockJob struct {
	id     string
	execFn func(ctx context.Context) error
}

func newMockJob(id string) *mockJob {
	return &mockJob{
		id:     id,
		execFn: func(ctx context.Context) error { return nil },
	}
}

func (m *mockJob) ID() string {
	return m.id
}

func (m *mockJob) Execute(ctx context.Context) error {
	return m.execFn(ctx)
}

// fakeClock is a manually advanced time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
