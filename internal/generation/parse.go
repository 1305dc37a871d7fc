package generation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/tidwall/gjson"
)

// extractObject finds the JSON object in a model reply. Models sometimes
// wrap it in a markdown fence or surround it with prose.
func extractObject(text string) (gjson.Result, error) {
	text = strings.TrimSpace(text)
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return gjson.Result{}, fmt.Errorf("%w: no JSON object in reply", ErrInvalidResponse)
	}

	obj := text[start : end+1]
	if !gjson.Valid(obj) {
		return gjson.Result{}, fmt.Errorf("%w: malformed JSON in reply", ErrInvalidResponse)
	}
	return gjson.Parse(obj), nil
}

// ParseCandidate reads {"latent", "argument"}. The label is required; both
// fields are truncated to their limits.
func ParseCandidate(text string) (domain.Candidate, error) {
	obj, err := extractObject(text)
	if err != nil {
		return domain.Candidate{}, err
	}

	c := domain.Candidate{
		Label:     obj.Get("latent").String(),
		Rationale: obj.Get("argument").String(),
	}.Normalize()
	if err := c.Validate(); err != nil {
		return domain.Candidate{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return c, nil
}

// ParseCritique reads {"verdict", "score", "critique"}. The verdict must be
// approve or reject and the score an integer within range.
func ParseCritique(text string) (domain.Critique, error) {
	obj, err := extractObject(text)
	if err != nil {
		return domain.Critique{}, err
	}

	score, err := critiqueScore(obj.Get("score"))
	if err != nil {
		return domain.Critique{}, err
	}

	c := domain.Critique{
		Verdict: domain.Verdict(obj.Get("verdict").String()),
		Score:   score,
		Text:    obj.Get("critique").String(),
	}.Normalize()
	if err := c.Validate(); err != nil {
		return domain.Critique{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return c, nil
}

// critiqueScore accepts an integral JSON number or a string holding a
// base-10 integer.
func critiqueScore(score gjson.Result) (int, error) {
	switch score.Type {
	case gjson.Number:
		if score.Float() != float64(score.Int()) {
			return 0, fmt.Errorf("%w: critique score %s is not an integer", ErrInvalidResponse, score.Raw)
		}
		return int(score.Int()), nil
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(score.Str))
		if err != nil {
			return 0, fmt.Errorf("%w: critique score %q is not an integer", ErrInvalidResponse, score.Str)
		}
		return n, nil
	case gjson.Null:
		if !score.Exists() {
			return 0, fmt.Errorf("%w: critique has no score", ErrInvalidResponse)
		}
	}
	return 0, fmt.Errorf("%w: critique score is not a number", ErrInvalidResponse)
}

// ParseRefinement reads {"latent"} and returns the truncated label.
func ParseRefinement(text string) (string, error) {
	obj, err := extractObject(text)
	if err != nil {
		return "", err
	}

	label := domain.Truncate(strings.TrimSpace(obj.Get("latent").String()), domain.MaxLabelLength)
	if label == "" {
		return "", fmt.Errorf("%w: %w", ErrInvalidResponse, domain.ErrEmptyLabel)
	}
	return label, nil
}

// ParseFlashcard reads {"question", "answer"}.
func ParseFlashcard(text string) (domain.Flashcard, error) {
	obj, err := extractObject(text)
	if err != nil {
		return domain.Flashcard{}, err
	}

	card := domain.Flashcard{
		Question: strings.TrimSpace(obj.Get("question").String()),
		Answer:   strings.TrimSpace(obj.Get("answer").String()),
	}
	if err := card.Validate(); err != nil {
		return domain.Flashcard{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return card, nil
}
