package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the services in this package. The API layer
// maps them to status codes.
var (
	// ErrEmptyConcept indicates a lookup was attempted without a concept.
	ErrEmptyConcept = errors.New("concept cannot be empty")

	// ErrPersistence indicates the results of a summarization could not be saved.
	ErrPersistence = errors.New("failed to save summarization results")
)

// SummarizationError records which step of a summarization failed.
type SummarizationError struct {
	Step string
	Err  error
}

// Error implements the error interface for SummarizationError.
func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarization %s failed: %v", e.Step, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *SummarizationError) Unwrap() error {
	return e.Err
}

func stepError(step string, err error) error {
	return &SummarizationError{Step: step, Err: err}
}
