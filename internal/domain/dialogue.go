package domain

import (
	"fmt"
	"strings"
)

// Turn is one utterance in a dialogue transcript.
type Turn struct {
	Role    string `json:"role"    validate:"required"`
	Message string `json:"message"`
}

// Dialogue is an ordered transcript of turns. It is treated as immutable once
// submitted for summarization.
type Dialogue []Turn

// Validate checks that the dialogue has at least one turn and that every
// turn names its speaker. Errors wrap ErrValidation.
func (d Dialogue) Validate() error {
	if len(d) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyDialogue)
	}

	for i, turn := range d {
		if strings.TrimSpace(turn.Role) == "" {
			return fmt.Errorf("%w: turn %d: %w", ErrValidation, i, ErrEmptyRole)
		}
	}

	return nil
}

// Clone returns a deep copy so callers cannot mutate a stored transcript.
func (d Dialogue) Clone() Dialogue {
	if d == nil {
		return nil
	}
	out := make(Dialogue, len(d))
	copy(out, d)
	return out
}

// Transcript renders the dialogue as "role: message" lines for prompting.
func (d Dialogue) Transcript() string {
	var b strings.Builder
	for i, turn := range d {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(turn.Role)
		b.WriteString(": ")
		b.WriteString(turn.Message)
	}
	return b.String()
}
