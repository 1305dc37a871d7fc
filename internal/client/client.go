package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/scry-concepts/internal/api"
	"github.com/phrazzld/scry-concepts/internal/api/shared"
	"github.com/phrazzld/scry-concepts/internal/domain"
)

const (
	// DefaultTimeout bounds a single HTTP attempt
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is the number of retries after the first attempt
	DefaultRetries = 2

	baseDelay = 300 * time.Millisecond
	maxDelay  = 2 * time.Second
	maxJitter = 100 * time.Millisecond
)

var (
	// ErrNotFound is returned when the server answers 404.
	ErrNotFound = errors.New("not found")

	// ErrTimeout is returned when a synchronous summary did not finish in time.
	ErrTimeout = errors.New("summary did not finish in time")
)

// APIError is a non-success response from the server.
type APIError struct {
	StatusCode int
	Message    string
	TraceID    string
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.TraceID != "" {
		return fmt.Sprintf("api error %d: %s (trace %s)", e.StatusCode, e.Message, e.TraceID)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout sets the per-attempt timeout. Wait requests add their own
// wait duration on top.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetries sets how many times a failed transport call is retried.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Client calls the /api/v1 endpoints.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	retries int
	http    *http.Client
	logger  *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Client for the server at baseURL, for example
// "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		timeout: DefaultTimeout,
		retries: DefaultRetries,
		http:    &http.Client{},
		logger:  slog.Default(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retries < 0 {
		c.retries = 0
	}
	c.logger = c.logger.With("component", "api_client")
	return c, nil
}

// Submit starts an asynchronous summarization and returns the task id.
func (c *Client) Submit(ctx context.Context, dialogue domain.Dialogue, userID int64) (string, error) {
	var resp api.SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/summaries", summaryRequest(dialogue, userID), c.timeout, &resp); err != nil {
		return "", fmt.Errorf("submit summary: %w", err)
	}
	return resp.TaskID, nil
}

// Status returns the current snapshot of a task.
func (c *Client) Status(ctx context.Context, taskID string) (api.TaskResponse, error) {
	var resp api.TaskResponse
	path := "/summaries/" + url.PathEscape(taskID)
	if err := c.do(ctx, http.MethodGet, path, nil, c.timeout, &resp); err != nil {
		return api.TaskResponse{}, fmt.Errorf("task status: %w", err)
	}
	return resp, nil
}

// Wait long-polls a task for up to timeout. The server clamps the timeout.
func (c *Client) Wait(ctx context.Context, taskID string, timeout time.Duration) (api.TaskResponse, error) {
	var resp api.TaskResponse
	path := "/summaries/" + url.PathEscape(taskID) + "/wait?timeout=" +
		strconv.FormatFloat(timeout.Seconds(), 'f', -1, 64)
	if err := c.do(ctx, http.MethodGet, path, nil, c.timeout+timeout, &resp); err != nil {
		return api.TaskResponse{}, fmt.Errorf("wait for task: %w", err)
	}
	return resp, nil
}

// Summarize calls the synchronous endpoint and returns the concept.
// ErrTimeout is returned if the server gave up waiting.
func (c *Client) Summarize(ctx context.Context, dialogue domain.Dialogue, wait time.Duration) (string, error) {
	var resp api.SyncSummaryResponse
	err := c.do(ctx, http.MethodPost, "/summarize-dialogue", summaryRequest(dialogue, 0), c.timeout+wait, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusGatewayTimeout {
			return "", fmt.Errorf("summarize dialogue: %w", ErrTimeout)
		}
		return "", fmt.Errorf("summarize dialogue: %w", err)
	}
	return resp.Summary, nil
}

// Flashcard looks up the flashcard for concept. A missing card is reported
// as Found false with a nil error.
func (c *Client) Flashcard(ctx context.Context, concept string) (api.FlashcardResponse, error) {
	var resp api.FlashcardResponse
	path := "/flashcards?concept=" + url.QueryEscape(concept)
	if err := c.do(ctx, http.MethodGet, path, nil, c.timeout, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return api.FlashcardResponse{Found: false}, nil
		}
		return api.FlashcardResponse{}, fmt.Errorf("flashcard lookup: %w", err)
	}
	return resp, nil
}

func summaryRequest(dialogue domain.Dialogue, userID int64) api.SummaryRequest {
	turns := make([]api.TurnRequest, len(dialogue))
	for i, t := range dialogue {
		turns[i] = api.TurnRequest{Role: t.Role, Message: t.Message}
	}
	return api.SummaryRequest{Dialogue: turns, UserID: userID}
}

// do sends one request with retries. Transport failures and 502/503
// responses are retried; every other response is final.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, timeout time.Duration, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		err := c.attempt(ctx, method, path, payload, timeout, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) || attempt == c.retries || ctx.Err() != nil {
			break
		}

		delay := c.backoff(attempt)
		c.logger.WarnContext(ctx, "HTTP call failed, retrying",
			"method", method,
			"path", path,
			"attempt", attempt+1,
			"delay_ms", delay.Milliseconds(),
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, timeout time.Duration, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var errBody shared.ErrorResponse
	if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); readErr == nil &&
		json.Unmarshal(data, &errBody) == nil && errBody.Error != "" {
		apiErr.Message = errBody.Error
		apiErr.TraceID = errBody.TraceID
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrNotFound, apiErr)
	}
	return apiErr
}

// backoff returns min(2s, 300ms*2^attempt) plus up to 100ms of jitter.
func (c *Client) backoff(attempt int) time.Duration {
	delay := baseDelay << attempt
	if delay > maxDelay || delay <= 0 {
		delay = maxDelay
	}
	c.mu.Lock()
	jitter := time.Duration(c.rng.Int63n(int64(maxJitter)))
	c.mu.Unlock()
	return delay + jitter
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var te *transportError
	if errors.As(err, &te) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusBadGateway || apiErr.StatusCode == http.StatusServiceUnavailable
	}
	return false
}
