package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-concepts/internal/config"
	"github.com/phrazzld/scry-concepts/internal/events"
	"github.com/phrazzld/scry-concepts/internal/extraction"
	"github.com/phrazzld/scry-concepts/internal/generation"
	"github.com/phrazzld/scry-concepts/internal/platform/gemini"
	"github.com/phrazzld/scry-concepts/internal/platform/openai"
	"github.com/phrazzld/scry-concepts/internal/service"
	"github.com/phrazzld/scry-concepts/internal/service/auth"
	"github.com/phrazzld/scry-concepts/internal/store"
	"github.com/phrazzld/scry-concepts/internal/task"
)

// application holds every long-lived component of the server.
type application struct {
	config        *config.Config
	logger        *slog.Logger
	db            *sql.DB
	tasks         *task.Manager
	flashcards    *service.FlashcardService
	authenticator *auth.Authenticator
	lifecycle     *task.LifecycleRecorder

	// drained is set once the task manager has finished every task
	drained bool
}

// newApplication wires the services on top of an open database and a
// model completer.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	results store.ResultStore,
	completer generation.Completer,
) (*application, error) {
	prompts, err := loadPrompts(cfg.LLM)
	if err != nil {
		return nil, err
	}

	models, err := generation.NewModelService(completer, prompts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model service: %w", err)
	}

	extractor := extraction.NewExtractor(models, extraction.Config{
		BeamWidth:   cfg.LLM.BeamWidth,
		MaxLoops:    cfg.LLM.MaxLoops,
		AcceptScore: cfg.LLM.AcceptScore,
	}, logger)

	summarizer, err := service.NewSummarizationService(extractor, models, results, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create summarization service: %w", err)
	}

	flashcards, err := service.NewFlashcardService(results, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create flashcard service: %w", err)
	}

	lifecycle := task.NewLifecycleRecorder(logger)
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(lifecycle)

	manager := task.NewManager(summarizer, task.ManagerConfig{
		WorkerCount:     cfg.Task.WorkerCount,
		MaxQueueDepth:   cfg.Task.MaxQueueDepth,
		Retention:       cfg.Task.Retention,
		CleanupInterval: cfg.Task.CleanupInterval,
		PollInterval:    cfg.Task.PollInterval,
		DefaultWait:     cfg.Task.DefaultWait,
		MaxWait:         cfg.Task.MaxWait,
	}, logger, task.WithEventEmitter(emitter))

	var authenticator *auth.Authenticator
	if cfg.Auth.Enabled() {
		if authenticator, err = newAuthenticator(cfg.Auth); err != nil {
			return nil, err
		}
	} else {
		logger.Warn("Authentication disabled; API is open to all callers")
	}

	return &application{
		config:        cfg,
		logger:        logger,
		db:            db,
		tasks:         manager,
		flashcards:    flashcards,
		authenticator: authenticator,
		lifecycle:     lifecycle,
	}, nil
}

// Run starts the task engine and serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	app.tasks.Start(ctx)
	return startHTTPServer(ctx, app, app.setupRouter())
}

// cleanup releases the database connection. It is skipped while tasks
// may still be writing results.
func (app *application) cleanup() {
	if app.db == nil {
		return
	}
	if !app.drained {
		app.logger.Warn("Tasks still running, leaving database connection open")
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("Error closing database connection", "error", err)
		return
	}
	app.logger.Info("Database connection closed")
}

func loadPrompts(cfg config.LLMConfig) (*generation.PromptCatalog, error) {
	if cfg.PromptsFile == "" {
		return generation.DefaultPromptCatalog()
	}
	prompts, err := generation.LoadPromptCatalog(cfg.PromptsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts from %s: %w", cfg.PromptsFile, err)
	}
	return prompts, nil
}

func newAuthenticator(cfg config.AuthConfig) (*auth.Authenticator, error) {
	var jwtService auth.JWTService
	if cfg.JWTSecret != "" {
		svc, err := auth.NewJWTService(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create JWT service: %w", err)
		}
		jwtService = svc
	}

	var verifier auth.PasswordVerifier
	if cfg.TokenHash != "" {
		verifier = auth.NewBcryptVerifier()
	}

	return auth.NewAuthenticator(jwtService, cfg.TokenHash, verifier)
}

// newCompleter returns the model client for the configured provider.
func newCompleter(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Completer, error) {
	switch cfg.Provider {
	case "gemini":
		c, err := gemini.NewCompleter(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "openai":
		c, err := openai.NewCompleter(cfg, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, errors.New("unsupported llm provider: " + cfg.Provider)
	}
}
