package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/phrazzld/scry-concepts/internal/task"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testManagerConfig() task.ManagerConfig {
	cfg := task.DefaultManagerConfig()
	cfg.PollInterval = 5 * time.Millisecond
	cfg.DefaultWait = 2 * time.Second
	cfg.MaxWait = 2 * time.Second
	return cfg
}

// startManager runs a task manager for the duration of the test.
func startManager(t *testing.T, runner task.Runner, cfg task.ManagerConfig) *task.Manager {
	t.Helper()
	m := task.NewManager(runner, cfg, discardLogger())
	m.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Shutdown(ctx)
	})
	return m
}

func summaryRouter(h *SummaryHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/summaries", h.Submit)
		r.Get("/summaries/{id}", h.Get)
		r.Get("/summaries/{id}/wait", h.Wait)
		r.Post("/summarize-dialogue", h.SummarizeSync)
	})
	return r
}

// payloadRunner completes every task with result and records the payloads
// it ran.
type payloadRunner struct {
	result   string
	err      error
	payloads chan task.Payload
}

func newPayloadRunner(result string, err error) *payloadRunner {
	return &payloadRunner{result: result, err: err, payloads: make(chan task.Payload, 16)}
}

func (r *payloadRunner) Run(_ context.Context, payload task.Payload, report domain.ProgressFunc) (string, error) {
	report.Report(domain.StageGeneration, "Starting latent concept extraction")
	r.payloads <- payload
	return r.result, r.err
}
