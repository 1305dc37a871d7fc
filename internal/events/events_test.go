package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLifecycleEvent(t *testing.T) {
	type failurePayload struct {
		Error string `json:"error"`
	}

	event, err := NewLifecycleEvent(TaskFailed, "task-1", failurePayload{Error: "boom"})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TaskFailed, event.Type)
	assert.Equal(t, "task-1", event.TaskID)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded failurePayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, "boom", decoded.Error)
}

func TestNewLifecycleEvent_NilPayload(t *testing.T) {
	event, err := NewLifecycleEvent(TaskSubmitted, "task-2", nil)

	require.NoError(t, err)
	assert.Nil(t, event.Payload)
}

func TestNewLifecycleEvent_UnmarshalablePayload(t *testing.T) {
	_, err := NewLifecycleEvent(TaskStarted, "task-3", make(chan int))
	assert.Error(t, err)
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	// The last event received by this handler
	LastEvent *LifecycleEvent
	// Error to return from HandleEvent
	HandlerError error
	// Number of times HandleEvent was called
	HandledCount int
}

func (m *MockEventHandler) HandleEvent(ctx context.Context, event *LifecycleEvent) error {
	m.LastEvent = event
	m.HandledCount++
	return m.HandlerError
}
