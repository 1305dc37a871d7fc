// Package task runs summarization jobs asynchronously. It keeps an in-memory
// record per submitted task, executes jobs on a fixed pool of workers, records
// stage progress as jobs run, lets callers long-poll for completion, and
// evicts finished tasks once they have outlived the retention window.
//
// Task state lives only in process memory and does not survive a restart.
package task
