package generation

import (
	"fmt"

	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// DialoguePayload renders the dialogue as an indented JSON array of
// {"role", "message"} objects.
func DialoguePayload(dialogue domain.Dialogue) (string, error) {
	doc, err := setDialogue("[]", "", dialogue)
	if err != nil {
		return "", err
	}
	return string(pretty.Pretty([]byte(doc))), nil
}

// CriticPayload builds the critic's user message: the candidate, the
// dialogue and the interaction history (null before any refinement).
func CriticPayload(dialogue domain.Dialogue, candidate domain.Candidate, history *domain.InteractionHistory) (string, error) {
	doc := "{}"
	var err error

	if doc, err = sjson.Set(doc, "candidate.latent", candidate.Label); err != nil {
		return "", fmt.Errorf("failed to build critic payload: %w", err)
	}
	if doc, err = sjson.Set(doc, "candidate.argument", candidate.Rationale); err != nil {
		return "", fmt.Errorf("failed to build critic payload: %w", err)
	}
	if doc, err = sjson.SetRaw(doc, "dialogue", "[]"); err != nil {
		return "", fmt.Errorf("failed to build critic payload: %w", err)
	}
	if doc, err = setDialogue(doc, "dialogue.", dialogue); err != nil {
		return "", err
	}
	if doc, err = setHistory(doc, history); err != nil {
		return "", err
	}
	return string(pretty.Pretty([]byte(doc))), nil
}

// RefinerPayload builds the refiner's user message from the current label,
// its critique and the interaction history.
func RefinerPayload(candidate domain.Candidate, critique domain.Critique, history *domain.InteractionHistory) (string, error) {
	doc := "{}"
	var err error

	if doc, err = sjson.Set(doc, "current_latent", candidate.Label); err != nil {
		return "", fmt.Errorf("failed to build refiner payload: %w", err)
	}
	if doc, err = sjson.Set(doc, "current_critique", critique.Text); err != nil {
		return "", fmt.Errorf("failed to build refiner payload: %w", err)
	}
	if doc, err = setHistory(doc, history); err != nil {
		return "", err
	}
	return string(pretty.Pretty([]byte(doc))), nil
}

// setDialogue appends each turn to the array at prefix ("" for a root array,
// "field." for a nested one).
func setDialogue(doc, prefix string, dialogue domain.Dialogue) (string, error) {
	var err error
	for i, turn := range dialogue {
		base := fmt.Sprintf("%s%d", prefix, i)
		if doc, err = sjson.Set(doc, base+".role", turn.Role); err != nil {
			return "", fmt.Errorf("failed to encode dialogue turn %d: %w", i, err)
		}
		if doc, err = sjson.Set(doc, base+".message", turn.Message); err != nil {
			return "", fmt.Errorf("failed to encode dialogue turn %d: %w", i, err)
		}
	}
	return doc, nil
}

func setHistory(doc string, history *domain.InteractionHistory) (string, error) {
	var err error
	if history == nil {
		doc, err = sjson.SetRaw(doc, "interaction_history", "null")
	} else {
		doc, err = sjson.Set(doc, "interaction_history", history)
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode interaction history: %w", err)
	}
	return doc, nil
}
