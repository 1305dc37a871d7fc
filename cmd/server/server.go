package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// httpShutdownTimeout bounds how long in-flight HTTP requests may finish.
// The task drain has its own budget, task.shutdown_timeout.
const httpShutdownTimeout = 10 * time.Second

// startHTTPServer serves handler until ctx is canceled, then shuts down the
// HTTP server and drains the task engine.
func startHTTPServer(ctx context.Context, app *application, handler http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Long-poll requests may hold the connection for MaxWait.
		WriteTimeout: app.config.Task.MaxWait + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("Server starting", "port", app.config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			_ = app.drainTasks()
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.logger.Info("Shutdown signal received, shutting down gracefully")

	var errs []error
	httpCtx, cancelHTTP := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer cancelHTTP()
	if err := srv.Shutdown(httpCtx); err != nil {
		errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
	}

	if err := app.drainTasks(); err != nil {
		errs = append(errs, err)
	}

	app.logger.Info("Server stopped", "task_events", app.lifecycle.Counts())
	return errors.Join(errs...)
}

// drainTasks waits for queued and running tasks to finish. The budget
// starts only once the HTTP server has stopped accepting submissions.
func (app *application) drainTasks() error {
	ctx := context.Background()
	if timeout := app.config.Task.ShutdownTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := app.tasks.Shutdown(ctx); err != nil {
		return err
	}
	app.drained = true
	return nil
}
