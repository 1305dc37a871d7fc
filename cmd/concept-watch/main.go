// Command concept-watch submits a dialogue to a running server, or follows
// an existing task, and renders its stage progress in the terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/phrazzld/scry-concepts/internal/client"
	"github.com/phrazzld/scry-concepts/internal/domain"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "server base URL")
	token := flag.String("token", os.Getenv("SCRY_API_TOKEN"), "bearer token")
	dialoguePath := flag.String("dialogue", "", "dialogue file (JSON turns or role: message lines); stdin when empty")
	taskID := flag.String("task", "", "follow an existing task instead of submitting")
	userID := flag.Int64("user", 0, "user id recorded with the summary")
	poll := flag.Duration("poll", 2*time.Second, "long-poll timeout per request")
	flag.Parse()

	if err := run(*server, *token, *dialoguePath, *taskID, *userID, *poll); err != nil {
		fmt.Fprintf(os.Stderr, "concept-watch: %v\n", err)
		os.Exit(1)
	}
}

func run(server, token, dialoguePath, taskID string, userID int64, poll time.Duration) error {
	c, err := client.New(server,
		client.WithToken(token),
		client.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		return err
	}

	var dialogue domain.Dialogue
	if taskID == "" {
		if dialogue, err = readDialogue(dialoguePath); err != nil {
			return err
		}
	}

	p := tea.NewProgram(newModel(c, dialogue, taskID, userID, poll))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	if m, ok := final.(model); ok && m.err != nil {
		return m.err
	}
	return nil
}
