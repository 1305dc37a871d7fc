package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/scry-concepts/internal/config"
	"github.com/phrazzld/scry-concepts/internal/generation"
	"google.golang.org/genai"
)

// ProviderName labels log lines and errors from this package.
const ProviderName = "gemini"

// contentGenerator is the subset of *genai.Models used by Completer.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Completer implements generation.Completer using the Gemini API.
type Completer struct {
	models contentGenerator
	model  string
	retry  generation.RetryPolicy
	logger *slog.Logger
}

var _ generation.Completer = (*Completer)(nil)

// NewCompleter creates a Gemini client from cfg.
func NewCompleter(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Completer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	policy := generation.RetryPolicy{MaxRetries: cfg.MaxRetries, BaseDelay: cfg.RetryDelay()}
	return newCompleter(client.Models, cfg.Model, policy, logger), nil
}

func newCompleter(models contentGenerator, model string, retry generation.RetryPolicy, logger *slog.Logger) *Completer {
	return &Completer{
		models: models,
		model:  model,
		retry:  retry,
		logger: logger.With("component", "gemini_completer", "model", model),
	}
}

// Complete sends the request and returns the text of each candidate.
// Transient API failures are retried according to the retry policy.
func (c *Completer) Complete(ctx context.Context, req generation.CompletionRequest) ([]string, error) {
	n := req.N
	if n < 1 {
		n = 1
	}
	temperature := float32(req.Temperature)

	cfg := &genai.GenerateContentConfig{
		Temperature:    &temperature,
		CandidateCount: int32(n),
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	return generation.CallWithRetry(ctx, c.logger, ProviderName, c.retry, func(ctx context.Context) ([]string, error) {
		resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(req.User), cfg)
		if err != nil {
			return nil, classifyError(err)
		}
		return extractTexts(resp)
	})
}

// extractTexts returns the joined text parts of every usable candidate.
func extractTexts(resp *genai.GenerateContentResponse) ([]string, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	texts := make([]string, 0, len(resp.Candidates))
	blocked := 0
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		if cand.FinishReason == genai.FinishReasonSafety {
			blocked++
			continue
		}
		if cand.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if part != nil && !part.Thought {
				sb.WriteString(part.Text)
			}
		}
		if sb.Len() > 0 {
			texts = append(texts, sb.String())
		}
	}

	if len(texts) == 0 {
		if blocked > 0 {
			return nil, fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
		}
		return nil, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}
	return texts, nil
}

// classifyError marks client errors other than rate limiting as permanent.
func classifyError(err error) error {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code = apiErrPtr.Code
	}

	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %v", generation.ErrInvalidConfig, err)
	case code >= 400 && code < 500 && code != http.StatusTooManyRequests && code != http.StatusRequestTimeout:
		return fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	default:
		return err
	}
}
