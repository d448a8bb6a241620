package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"tickermate/internal/resilience/circuitbreaker"
	"tickermate/internal/usecase/classify"
	"tickermate/internal/utils/text"
)

// OpenAIConfig configures the OpenAI completer.
type OpenAIConfig struct {
	APIKey string
	// BaseURL overrides the API endpoint, for proxies and tests.
	BaseURL    string
	HTTPClient *http.Client
	// Timeout bounds one API call.
	Timeout time.Duration
}

// OpenAI implements classify.Completer with the chat completions API.
type OpenAI struct {
	client          *openai.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	timeout         time.Duration
	metricsRecorder MetricsRecorder
}

// NewOpenAI creates an OpenAI completer.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &OpenAI{
		client:          openai.NewClientWithConfig(clientCfg),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.LLMConfig("openai")),
		timeout:         cfg.Timeout,
		metricsRecorder: NewPrometheusMetrics(),
	}
}

// Provider implements classify.Completer.
func (o *OpenAI) Provider() string { return "openai" }

// Complete sends req as a single user message and returns the first choice.
func (o *OpenAI) Complete(ctx context.Context, req classify.CompletionRequest) (string, error) {
	return circuitbreaker.Call(o.circuitBreaker, func() (string, error) {
		return o.doComplete(ctx, req)
	})
}

func (o *OpenAI) doComplete(ctx context.Context, req classify.CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: req.Prompt,
		}},
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	})
	duration := time.Since(start)

	if err != nil {
		err = o.mapError(err)
		o.metricsRecorder.RecordRequest(o.Provider(), req.Model, statusOf(err), duration)
		slog.ErrorContext(ctx, "completion failed",
			slog.String("provider", o.Provider()),
			slog.String("model", req.Model),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return "", err
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("openai api returned empty response")
		o.metricsRecorder.RecordRequest(o.Provider(), req.Model, statusOf(err), duration)
		return "", err
	}

	out := resp.Choices[0].Message.Content
	o.metricsRecorder.RecordRequest(o.Provider(), req.Model, statusOf(nil), duration)
	o.metricsRecorder.RecordResponseLength(o.Provider(), text.CountRunes(out))
	slog.DebugContext(ctx, "completion finished",
		slog.String("provider", o.Provider()),
		slog.String("model", req.Model),
		slog.Int("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens),
		slog.Duration("duration", duration))
	return out, nil
}

func (o *OpenAI) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, ok := apiErr.Code.(string); ok && code == "model_not_found" {
			return fmt.Errorf("openai: %w: %s", ErrModelUnavailable, apiErr.Message)
		}
		return classifyStatus("openai", "OPENAI_API_KEY", apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus("openai", "OPENAI_API_KEY", reqErr.HTTPStatusCode, http.StatusText(reqErr.HTTPStatusCode), err)
	}
	return fmt.Errorf("openai api error: %w", err)
}
