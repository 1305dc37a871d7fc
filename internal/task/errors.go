package task

import "errors"

// Errors returned by the task store and queue
var (
	// ErrTaskNotFound is returned when no task exists for an id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskFinished is returned when a completed or failed task is modified.
	ErrTaskFinished = errors.New("task already finished")

	// ErrInvalidTransition is returned for status changes the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid task status transition")

	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")

	// ErrManagerStopped is returned when submitting to a manager that is shut down.
	ErrManagerStopped = errors.New("task manager is stopped")
)
