// Package events publishes task lifecycle notifications.
//
// The task manager emits a LifecycleEvent whenever a task is submitted,
// starts running, completes, or fails. Handlers registered with an emitter
// receive every event without the manager knowing who consumes them.
package events
