package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"
)

// RetryPolicy controls how provider calls are retried.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int

	// BaseDelay is the backoff for the first retry; it doubles each attempt
	BaseDelay time.Duration
}

// DefaultRetryPolicy returns a RetryPolicy with reasonable defaults
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: 2 * time.Second}
}

var (
	jitterMu  sync.Mutex
	jitterRng = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Backoff returns the delay before retry number attempt (0-based):
// base * 2^attempt * (0.5 + rand[0, 0.5)).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	jitterMu.Lock()
	jitter := 0.5 + jitterRng.Float64()*0.5
	jitterMu.Unlock()

	backoff := float64(p.BaseDelay) * math.Pow(2, float64(attempt)) * jitter
	return time.Duration(backoff)
}

// CallWithRetry runs call until it succeeds, returns a permanent error, or
// the retry budget is spent. Transient failures are retried with
// exponential backoff and jitter. The provider name is only used for logs.
func CallWithRetry(
	ctx context.Context,
	logger *slog.Logger,
	provider string,
	policy RetryPolicy,
	call func(ctx context.Context) ([]string, error),
) ([]string, error) {
	maxRetries := policy.MaxRetries
	if maxRetries < 0 {
		logger.WarnContext(ctx, "Invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = DefaultRetryPolicy().BaseDelay
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		attemptNum := attempt + 1
		logger.DebugContext(ctx, "Making model call",
			"provider", provider,
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		logger.WarnContext(ctx, "Model call failed",
			"provider", provider,
			"attempt", attemptNum,
			"error", err)

		if IsPermanent(err) {
			return nil, err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrTransientFailure, err)
		}
		if attempt == maxRetries {
			break
		}

		delay := policy.Backoff(attempt)
		logger.InfoContext(ctx, "Retrying after delay",
			"provider", provider,
			"attempt", attemptNum,
			"delay_ms", delay.Milliseconds())

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", ErrTransientFailure, ctx.Err())
		}
	}

	return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %w",
		ErrTransientFailure, maxRetries, lastErr)
}
