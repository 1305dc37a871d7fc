package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/phrazzld/scry-concepts/internal/api"
	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/phrazzld/scry-concepts/internal/task"
)

// taskClient is the part of the HTTP client the watcher needs.
type taskClient interface {
	Submit(ctx context.Context, dialogue domain.Dialogue, userID int64) (string, error)
	Wait(ctx context.Context, taskID string, timeout time.Duration) (api.TaskResponse, error)
}

type submittedMsg struct{ taskID string }

type snapshotMsg struct{ snapshot api.TaskResponse }

type errMsg struct{ err error }

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
	resultStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1)
)

// model follows one summarization task until it finishes.
type model struct {
	client   taskClient
	dialogue domain.Dialogue
	userID   int64
	poll     time.Duration

	spinner  spinner.Model
	taskID   string
	snapshot *api.TaskResponse
	err      error
	done     bool
}

func newModel(c taskClient, dialogue domain.Dialogue, taskID string, userID int64, poll time.Duration) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = titleStyle

	if poll <= 0 {
		poll = 2 * time.Second
	}
	return model{
		client:   c,
		dialogue: dialogue,
		userID:   userID,
		poll:     poll,
		spinner:  s,
		taskID:   taskID,
	}
}

func (m model) Init() tea.Cmd {
	if m.taskID != "" {
		return tea.Batch(m.spinner.Tick, m.waitCmd())
	}
	return tea.Batch(m.spinner.Tick, m.submitCmd())
}

func (m model) submitCmd() tea.Cmd {
	c, dialogue, userID := m.client, m.dialogue, m.userID
	return func() tea.Msg {
		id, err := c.Submit(context.Background(), dialogue, userID)
		if err != nil {
			return errMsg{fmt.Errorf("submit failed: %w", err)}
		}
		return submittedMsg{taskID: id}
	}
}

func (m model) waitCmd() tea.Cmd {
	c, id, poll := m.client, m.taskID, m.poll
	return func() tea.Msg {
		snap, err := c.Wait(context.Background(), id, poll)
		if err != nil {
			return errMsg{fmt.Errorf("status of %s: %w", id, err)}
		}
		return snapshotMsg{snapshot: snap}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.done = true
			return m, tea.Quit
		}
		return m, nil

	case submittedMsg:
		m.taskID = msg.taskID
		return m, m.waitCmd()

	case snapshotMsg:
		snap := msg.snapshot
		m.snapshot = &snap
		if task.Status(snap.Status).IsTerminal() {
			m.done = true
			return m, tea.Quit
		}
		return m, m.waitCmd()

	case errMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	header := "Submitting dialogue"
	if m.taskID != "" {
		header = "Task " + m.taskID
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	if m.snapshot != nil {
		b.WriteString(renderStages(*m.snapshot, m.spinner.View()))
		b.WriteString("\n")
		if m.snapshot.Result != nil {
			b.WriteString(resultStyle.Render("Concept: " + *m.snapshot.Result))
			b.WriteString("\n")
		}
		if m.snapshot.Error != nil {
			b.WriteString(errorStyle.Render("Failed: " + *m.snapshot.Error))
			b.WriteString("\n")
		}
	} else if m.err == nil {
		b.WriteString(m.spinner.View() + " waiting for the server\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	if !m.done {
		b.WriteString(pendingStyle.Render("\nq to quit"))
		b.WriteString("\n")
	}
	return b.String()
}

// renderStages lists each reported stage; the latest one gets the spinner
// while the task is still running.
func renderStages(snap api.TaskResponse, spin string) string {
	running := !task.Status(snap.Status).IsTerminal()

	var lines []string
	for i, p := range snap.Progress {
		last := i == len(snap.Progress)-1
		marker := doneStyle.Render("✓")
		if last && running {
			marker = spin
		}
		lines = append(lines, fmt.Sprintf("%s %-22s %s", marker, p.Stage, pendingStyle.Render(p.Message)))
	}
	lines = append(lines, pendingStyle.Render(fmt.Sprintf("%d/%d stages, status %s",
		snap.ProgressCount, snap.TotalStages, snap.Status)))
	return strings.Join(lines, "\n")
}
