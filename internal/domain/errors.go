package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyDialogue is returned when a dialogue has no turns.
	ErrEmptyDialogue = errors.New("dialogue cannot be empty")

	// ErrEmptyRole is returned when a dialogue turn has no speaker role.
	ErrEmptyRole = errors.New("dialogue turn role cannot be empty")

	// ErrEmptyLabel is returned when a concept candidate has no label.
	ErrEmptyLabel = errors.New("concept label cannot be empty")

	// ErrInvalidVerdict is returned when a critique verdict is neither approve nor reject.
	ErrInvalidVerdict = errors.New("invalid critique verdict")

	// ErrScoreOutOfRange is returned when a critique score is outside [MinScore, MaxScore].
	ErrScoreOutOfRange = errors.New("critique score out of range")

	// ErrEmptyFlashcard is returned when a flashcard is missing its question or answer.
	ErrEmptyFlashcard = errors.New("flashcard question and answer are required")
)
