package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/scry-concepts/internal/api"
	"github.com/phrazzld/scry-concepts/internal/config"
	"github.com/phrazzld/scry-concepts/internal/domain"
	"github.com/phrazzld/scry-concepts/internal/generation"
	"github.com/phrazzld/scry-concepts/internal/platform/migrations"
	"github.com/phrazzld/scry-concepts/internal/service/auth"
	"github.com/phrazzld/scry-concepts/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// modelReply carries every field the prompt parsers read, so one fake
// completer can answer generation, critique, refinement and flashcard calls.
const modelReply = `{"latent":"greetings","argument":"both turns say hello",` +
	`"verdict":"approve","score":4,"critique":"precise",` +
	`"question":"How do people greet each other?","answer":"By saying hello."}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, LogLevel: "error"},
		Database: config.DatabaseConfig{Driver: "sqlite", URL: "file:" + filepath.Join(t.TempDir(), "app.db")},
		Auth:     config.AuthConfig{TokenLifetimeMinutes: 60},
		LLM: config.LLMConfig{
			Provider:          "gemini",
			Model:             "test-model",
			GeminiAPIKey:      "unused",
			RetryDelaySeconds: 1,
			BeamWidth:         2,
			MaxLoops:          1,
			AcceptScore:       4,
		},
		Task: config.TaskConfig{
			WorkerCount:     2,
			Retention:       time.Hour,
			CleanupInterval: time.Minute,
			PollInterval:    5 * time.Millisecond,
			DefaultWait:     time.Second,
			MaxWait:         5 * time.Second,
		},
	}
}

func fakeCompleter() generation.Completer {
	return generation.CompleterFunc(func(_ context.Context, req generation.CompletionRequest) ([]string, error) {
		n := req.N
		if n < 1 {
			n = 1
		}
		replies := make([]string, n)
		for i := range replies {
			replies[i] = modelReply
		}
		return replies, nil
	})
}

// newTestApp opens a migrated sqlite database and wires the application
// around completer.
func newTestApp(t *testing.T, cfg *config.Config, completer generation.Completer) *application {
	t.Helper()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, dialect, err := setupAppDatabase(ctx, cfg, logger)
	require.NoError(t, err)
	require.Equal(t, migrations.DialectSQLite, dialect)
	require.NoError(t, handleMigrations(ctx, db, dialect, "up", logger))

	app, err := newApplication(cfg, logger, db, newResultStore(cfg, db, logger), completer)
	require.NoError(t, err)
	return app
}

// startTestApp wires the application with the fake completer and serves
// its router.
func startTestApp(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	app := newTestApp(t, cfg, fakeCompleter())
	app.tasks.Start(context.Background())
	srv := httptest.NewServer(app.setupRouter())
	t.Cleanup(func() {
		srv.Close()
		_ = app.drainTasks()
		app.cleanup()
	})
	return srv
}

func postJSON(t *testing.T, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

const dialogueBody = `{"dialogue":[{"role":"user","message":"hello"},{"role":"assistant","message":"hi there"}],"user_id":3}`

func TestSummarizeDialogueEndToEnd(t *testing.T) {
	srv := startTestApp(t, testConfig(t))

	resp := postJSON(t, srv.URL+"/api/v1/summarize-dialogue", "", dialogueBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[api.SyncSummaryResponse](t, resp)
	assert.Equal(t, "greetings", summary.Summary)

	resp = get(t, srv.URL+"/api/v1/flashcards?concept=greetings", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	card := decode[api.FlashcardResponse](t, resp)
	assert.True(t, card.Found)
	assert.Equal(t, "How do people greet each other?", card.Card.Question)
	assert.Equal(t, int64(3), card.Card.UserID)
}

func TestAsyncSubmitAndWait(t *testing.T) {
	srv := startTestApp(t, testConfig(t))

	resp := postJSON(t, srv.URL+"/api/v1/summaries", "", dialogueBody)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	submitted := decode[api.SubmitResponse](t, resp)
	require.NotEmpty(t, submitted.TaskID)

	resp = get(t, srv.URL+"/api/v1/summaries/"+submitted.TaskID+"/wait?timeout=5", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[api.TaskResponse](t, resp)
	assert.Equal(t, "completed", snap.Status)
	require.NotNil(t, snap.Result)
	assert.Equal(t, "greetings", *snap.Result)

	stages := make([]string, 0, len(snap.Progress))
	for _, p := range snap.Progress {
		stages = append(stages, p.Stage)
	}
	assert.Equal(t, "initializing", stages[0])
	assert.Contains(t, stages, "criticism")
	assert.Contains(t, stages, "saving_results")
	assert.Equal(t, "completed", stages[len(stages)-1])

	resp = get(t, srv.URL+"/api/v1/summaries/unknown", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestHealthProbes(t *testing.T) {
	srv := startTestApp(t, testConfig(t))

	resp := get(t, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[api.HealthResponse](t, resp).Status)

	resp = get(t, srv.URL+"/readyz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", decode[api.HealthResponse](t, resp).Status)
}

func TestAuthenticationGuardsAPI(t *testing.T) {
	cfg := testConfig(t)
	hash, err := auth.HashToken("static-token", bcrypt.MinCost)
	require.NoError(t, err)
	cfg.Auth.TokenHash = hash
	cfg.Auth.JWTSecret = strings.Repeat("s", 32)

	srv := startTestApp(t, cfg)

	resp := postJSON(t, srv.URL+"/api/v1/summaries", "", dialogueBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/v1/summaries", "wrong-token", dialogueBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/v1/summaries", "static-token", dialogueBody)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	_ = resp.Body.Close()

	jwtService, err := auth.NewJWTService(cfg.Auth)
	require.NoError(t, err)
	token, err := jwtService.GenerateToken(context.Background(), 11)
	require.NoError(t, err)

	resp = postJSON(t, srv.URL+"/api/v1/summaries", token, dialogueBody)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	_ = resp.Body.Close()

	// Probes stay open.
	resp = get(t, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestInvalidRequestsAreRejected(t *testing.T) {
	srv := startTestApp(t, testConfig(t))

	tests := []struct {
		name string
		body string
	}{
		{"empty dialogue", `{"dialogue":[]}`},
		{"missing role", `{"dialogue":[{"message":"hi"}]}`},
		{"malformed json", `{"dialogue":`},
		{"unknown field", `{"dialogue":[{"role":"user","message":"hi"}],"extra":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/v1/summaries", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			_ = resp.Body.Close()
		})
	}
}

func TestNewCompleterRejectsUnknownProvider(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := newCompleter(context.Background(), config.LLMConfig{Provider: "anthropic"}, logger)
	assert.Error(t, err)

	_, err = newCompleter(context.Background(), config.LLMConfig{Provider: "openai", Model: "m"}, logger)
	assert.Error(t, err)
}

func TestLoadPromptsFromFile(t *testing.T) {
	_, err := loadPrompts(config.LLMConfig{PromptsFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)

	prompts, err := loadPrompts(config.LLMConfig{})
	require.NoError(t, err)
	assert.NotNil(t, prompts)
}


// slowCompleter answers like fakeCompleter after delay, closing started on
// its first call.
func slowCompleter(delay time.Duration, started chan struct{}) generation.Completer {
	var once sync.Once
	fast := fakeCompleter()
	return generation.CompleterFunc(func(ctx context.Context, req generation.CompletionRequest) ([]string, error) {
		once.Do(func() { close(started) })
		time.Sleep(delay)
		return fast.Complete(ctx, req)
	})
}

func runUntilCancelled(t *testing.T, app *application, started chan struct{}) error {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- app.Run(ctx) }()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("task never reached the model")
	}
	cancel()

	select {
	case err := <-runErr:
		return err
	case <-time.After(30 * time.Second):
		t.Fatal("Run did not return after cancellation")
		return nil
	}
}

func TestRunDrainsRunningTasksBeforeReturning(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = 0

	started := make(chan struct{})
	app := newTestApp(t, cfg, slowCompleter(150*time.Millisecond, started))

	dialogue := domain.Dialogue{
		{Role: "user", Message: "hello"},
		{Role: "assistant", Message: "hi there"},
	}
	id, err := app.tasks.Submit(context.Background(), dialogue, 3)
	require.NoError(t, err)

	require.NoError(t, runUntilCancelled(t, app, started))

	snap, ok := app.tasks.Status(id)
	require.True(t, ok)
	assert.Equal(t, task.StatusCompleted, snap.Status)
	assert.Equal(t, "greetings", snap.Result)
	assert.True(t, app.drained)
	assert.Error(t, app.db.Ping(), "database should be closed after a clean drain")
}

func TestRunLeavesDatabaseOpenWhenDrainTimesOut(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = 0
	cfg.Task.ShutdownTimeout = 20 * time.Millisecond

	started := make(chan struct{})
	app := newTestApp(t, cfg, slowCompleter(500*time.Millisecond, started))

	dialogue := domain.Dialogue{
		{Role: "user", Message: "hello"},
		{Role: "assistant", Message: "hi there"},
	}
	id, err := app.tasks.Submit(context.Background(), dialogue, 3)
	require.NoError(t, err)

	err = runUntilCancelled(t, app, started)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, app.drained)
	assert.NoError(t, app.db.Ping(), "database must stay open for the running task")

	snap, ok := app.tasks.Wait(context.Background(), id, 5*time.Second)
	require.True(t, ok)
	assert.Equal(t, task.StatusCompleted, snap.Status)
	require.NoError(t, app.db.Close())
}
