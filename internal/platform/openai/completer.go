package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/phrazzld/scry-concepts/internal/config"
	"github.com/phrazzld/scry-concepts/internal/generation"
)

// ProviderName labels log lines and errors from this package.
const ProviderName = "openai"

// chatCompletions is the subset of the SDK's chat completion service used
// by Completer.
type chatCompletions interface {
	New(
		ctx context.Context,
		body openai.ChatCompletionNewParams,
		opts ...option.RequestOption,
	) (*openai.ChatCompletion, error)
}

// Completer implements generation.Completer using chat completions.
type Completer struct {
	chat   chatCompletions
	model  string
	retry  generation.RetryPolicy
	logger *slog.Logger
}

var _ generation.Completer = (*Completer)(nil)

// NewCompleter creates an OpenAI client from cfg. The SDK's own retries are
// disabled so that generation.CallWithRetry alone decides.
func NewCompleter(cfg config.LLMConfig, logger *slog.Logger) (*Completer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithMaxRetries(0),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	client := openai.NewClient(opts...)

	policy := generation.RetryPolicy{MaxRetries: cfg.MaxRetries, BaseDelay: cfg.RetryDelay()}
	return newCompleter(&client.Chat.Completions, cfg.Model, policy, logger), nil
}

func newCompleter(chat chatCompletions, model string, retry generation.RetryPolicy, logger *slog.Logger) *Completer {
	return &Completer{
		chat:   chat,
		model:  model,
		retry:  retry,
		logger: logger.With("component", "openai_completer", "model", model),
	}
}

// Complete sends the request and returns the content of each choice.
func (c *Completer) Complete(ctx context.Context, req generation.CompletionRequest) ([]string, error) {
	n := req.N
	if n < 1 {
		n = 1
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.User))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		N:           openai.Int(int64(n)),
		Temperature: openai.Float(req.Temperature),
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	return generation.CallWithRetry(ctx, c.logger, ProviderName, c.retry, func(ctx context.Context) ([]string, error) {
		resp, err := c.chat.New(ctx, params)
		if err != nil {
			return nil, classifyError(err)
		}
		return extractContents(resp)
	})
}

func extractContents(resp *openai.ChatCompletion) ([]string, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", generation.ErrInvalidResponse)
	}

	out := make([]string, 0, len(resp.Choices))
	filtered := 0
	for _, choice := range resp.Choices {
		if choice.FinishReason == "content_filter" {
			filtered++
			continue
		}
		if choice.Message.Refusal != "" {
			filtered++
			continue
		}
		if choice.Message.Content != "" {
			out = append(out, choice.Message.Content)
		}
	}

	if len(out) == 0 {
		if filtered > 0 {
			return nil, fmt.Errorf("%w: response filtered or refused", generation.ErrContentBlocked)
		}
		return nil, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}
	return out, nil
}

// classifyError marks client errors other than rate limiting as permanent.
func classifyError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	code := apiErr.StatusCode
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %v", generation.ErrInvalidConfig, err)
	case code >= 400 && code < 500 && code != http.StatusTooManyRequests && code != http.StatusRequestTimeout:
		return fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	default:
		return err
	}
}
