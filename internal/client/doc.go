// Package client is a Go client for the concept extraction HTTP API. It is
// used by the concept-watch terminal UI and by tests.
package client
