// Package api serves the HTTP surface of the concept extraction service:
// task submission, status and long-poll wait, the synchronous legacy
// summarize endpoint, flashcard lookup, and health probes. Handlers
// translate HTTP concerns to calls on the task manager and services and
// never expose raw internal errors.
package api
