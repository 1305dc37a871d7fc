package domain

import (
	"fmt"
	"strings"
)

// Length and score bounds for model output.
const (
	MaxLabelLength     = 60
	MaxRationaleLength = 1000
	MaxCritiqueLength  = 200
	MinScore           = 0
	MaxScore           = 4
)

// Verdict is the critic's accept/reject decision.
type Verdict string

// Critic verdicts
const (
	VerdictApprove Verdict = "approve"
	VerdictReject  Verdict = "reject"
)

// IsValid reports whether v is approve or reject.
func (v Verdict) IsValid() bool {
	return v == VerdictApprove || v == VerdictReject
}

// Candidate is a proposed concept label together with the argument for it.
type Candidate struct {
	Label     string `json:"latent"`
	Rationale string `json:"argument"`
}

// Normalize trims whitespace and truncates both fields to their bounds.
func (c Candidate) Normalize() Candidate {
	return Candidate{
		Label:     Truncate(strings.TrimSpace(c.Label), MaxLabelLength),
		Rationale: Truncate(strings.TrimSpace(c.Rationale), MaxRationaleLength),
	}
}

// Validate requires a non-empty label.
func (c Candidate) Validate() error {
	if strings.TrimSpace(c.Label) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyLabel)
	}
	return nil
}

// Critique is the critic's assessment of a candidate.
type Critique struct {
	Verdict Verdict `json:"verdict"`
	Score   int     `json:"score"`
	Text    string  `json:"critique"`
}

// Normalize lower-cases the verdict and truncates the critique text.
func (c Critique) Normalize() Critique {
	return Critique{
		Verdict: Verdict(strings.ToLower(strings.TrimSpace(string(c.Verdict)))),
		Score:   c.Score,
		Text:    Truncate(strings.TrimSpace(c.Text), MaxCritiqueLength),
	}
}

// Validate checks the verdict and score range.
func (c Critique) Validate() error {
	if !c.Verdict.IsValid() {
		return fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidVerdict, c.Verdict)
	}
	if c.Score < MinScore || c.Score > MaxScore {
		return fmt.Errorf("%w: %w: %d", ErrValidation, ErrScoreOutOfRange, c.Score)
	}
	return nil
}

// Flashcard is the question/answer pair produced for a concept.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Validate requires both sides of the card.
func (f Flashcard) Validate() error {
	if strings.TrimSpace(f.Question) == "" || strings.TrimSpace(f.Answer) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyFlashcard)
	}
	return nil
}

// InteractionHistory summarizes prior generate/critique/refine rounds. Model
// providers receive it once at least one refinement has happened.
type InteractionHistory struct {
	TotalLoops         int      `json:"total_loops"`
	GeneratorAttempts  int      `json:"generator_attempts"`
	CriticEvaluations  int      `json:"critic_evaluations"`
	RefinementAttempts int      `json:"refinement_attempts"`
	PreviousLabels     []string `json:"previous_latents"`
	PreviousScores     []int    `json:"previous_scores"`
	PreviousCritiques  []string `json:"previous_critiques"`
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
