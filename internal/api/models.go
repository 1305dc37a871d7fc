package api

import (
	"time"

	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/phrazzld/scry-concepts/internal/store"
	"github.com/phrazzld/scry-concepts/internal/task"
)

// TurnRequest is one dialogue turn in a summarization request.
type TurnRequest struct {
	Role    string `json:"role"    validate:"required"`
	Message string `json:"message"`
}

// SummaryRequest is the body of POST /summaries and /summarize-dialogue.
type SummaryRequest struct {
	Dialogue []TurnRequest `json:"dialogue" validate:"required,min=1,dive"`
	UserID   int64         `json:"user_id"  validate:"gte=0"`
}

// ToDialogue converts the request turns to a domain dialogue.
func (r SummaryRequest) ToDialogue() domain.Dialogue {
	d := make(domain.Dialogue, len(r.Dialogue))
	for i, t := range r.Dialogue {
		d[i] = domain.Turn{Role: t.Role, Message: t.Message}
	}
	return d
}

// SubmitResponse acknowledges an accepted summarization task.
type SubmitResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ProgressResponse is one progress entry of a task.
type ProgressResponse struct {
	Stage     string  `json:"stage"`
	Message   string  `json:"message"`
	Timestamp float64 `json:"timestamp"`
}

// TaskResponse is the wire form of a task snapshot. Timestamps are unix
// seconds.
type TaskResponse struct {
	TaskID        string             `json:"task_id"`
	Status        string             `json:"status"`
	CurrentStage  string             `json:"current_stage"`
	ProgressCount int                `json:"progress_count"`
	TotalStages   int                `json:"total_stages"`
	Result        *string            `json:"result"`
	Error         *string            `json:"error"`
	CreatedAt     float64            `json:"created_at"`
	StartedAt     *float64           `json:"started_at"`
	CompletedAt   *float64           `json:"completed_at"`
	Progress      []ProgressResponse `json:"progress"`
}

// SyncSummaryResponse is the body of a successful /summarize-dialogue call.
type SyncSummaryResponse struct {
	Summary string `json:"summary"`
}

// SyncTimeoutResponse is returned when a synchronous summary is still
// running after the maximum wait.
type SyncTimeoutResponse struct {
	Error  string `json:"error"`
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// FlashcardDTO is the wire form of a stored flashcard.
type FlashcardDTO struct {
	Concept   string  `json:"concept"`
	Question  string  `json:"question"`
	Answer    string  `json:"answer"`
	UserID    int64   `json:"user_id"`
	CreatedAt float64 `json:"created_at"`
}

// FlashcardResponse is the body of a successful flashcard lookup.
type FlashcardResponse struct {
	Found bool         `json:"found"`
	Card  FlashcardDTO `json:"card"`
}

// HealthResponse is returned by the health probes.
type HealthResponse struct {
	Status     string `json:"status"`
	Tasks      *int   `json:"tasks,omitempty"`
	QueueDepth *int   `json:"queue_depth,omitempty"`
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func optionalUnixSeconds(t *time.Time) *float64 {
	if t == nil {
		return nil
	}
	v := unixSeconds(*t)
	return &v
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func taskToResponse(s task.Snapshot) TaskResponse {
	progress := make([]ProgressResponse, len(s.Progress))
	for i, p := range s.Progress {
		progress[i] = ProgressResponse{
			Stage:     string(p.Stage),
			Message:   p.Message,
			Timestamp: unixSeconds(p.Timestamp),
		}
	}

	return TaskResponse{
		TaskID:        s.TaskID,
		Status:        string(s.Status),
		CurrentStage:  string(s.CurrentStage),
		ProgressCount: s.ProgressCount,
		TotalStages:   s.TotalStages,
		Result:        optionalString(s.Result),
		Error:         optionalString(s.Error),
		CreatedAt:     unixSeconds(s.CreatedAt),
		StartedAt:     optionalUnixSeconds(s.StartedAt),
		CompletedAt:   optionalUnixSeconds(s.CompletedAt),
		Progress:      progress,
	}
}

func flashcardToDTO(r store.FlashcardRecord) FlashcardDTO {
	return FlashcardDTO{
		Concept:   r.Concept,
		Question:  r.Question,
		Answer:    r.Answer,
		UserID:    r.UserID,
		CreatedAt: unixSeconds(r.CreatedAt),
	}
}
