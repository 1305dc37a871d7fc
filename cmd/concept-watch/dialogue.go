package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phrazzld/scry-concepts/internal/api"
	"github.com/phrazzld/scry-concepts/internal/domain"
)

// readDialogue loads a dialogue from path, or from stdin when path is empty.
func readDialogue(path string) (domain.Dialogue, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open dialogue: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dialogue: %w", err)
	}
	return parseDialogue(data)
}

// parseDialogue accepts either a JSON array of {"role","message"} turns or
// plain text with one "role: message" turn per line.
func parseDialogue(data []byte) (domain.Dialogue, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var turns []api.TurnRequest
		if err := json.Unmarshal(trimmed, &turns); err != nil {
			return nil, fmt.Errorf("invalid dialogue JSON: %w", err)
		}
		req := api.SummaryRequest{Dialogue: turns}
		return validated(req.ToDialogue())
	}

	var dialogue domain.Dialogue
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		role, message, ok := strings.Cut(text, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: expected \"role: message\"", line)
		}
		dialogue = append(dialogue, domain.Turn{
			Role:    strings.TrimSpace(role),
			Message: strings.TrimSpace(message),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return validated(dialogue)
}

func validated(d domain.Dialogue) (domain.Dialogue, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
