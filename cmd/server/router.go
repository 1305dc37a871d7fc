package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/scry-concepts/internal/api"
	"github.com/phrazzld/scry-concepts/internal/api/middleware"
)

// setupRouter mounts the health probes and the versioned task API.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewTraceMiddleware(app.logger))
	r.Use(chimiddleware.Recoverer)

	summaries := api.NewSummaryHandler(app.tasks, app.logger)
	flashcards := api.NewFlashcardHandler(app.flashcards, app.logger)
	health := api.NewHealthHandler(app.db, app.tasks, app.logger)

	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	r.Route("/api/v1", func(r chi.Router) {
		if app.authenticator != nil {
			r.Use(middleware.NewAuthMiddleware(app.authenticator).Authenticate)
		}

		r.Post("/summaries", summaries.Submit)
		r.Get("/summaries/{id}", summaries.Get)
		r.Get("/summaries/{id}/wait", summaries.Wait)
		r.Post("/summarize-dialogue", summaries.SummarizeSync)
		r.Get("/flashcards", flashcards.Lookup)
	})

	return r
}
