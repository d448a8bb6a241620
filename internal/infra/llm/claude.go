package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"tickermate/internal/resilience/circuitbreaker"
	"tickermate/internal/usecase/classify"
	"tickermate/internal/utils/text"
)

// ClaudeConfig configures the Anthropic completer.
type ClaudeConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Claude implements classify.Completer with the Anthropic messages API.
type Claude struct {
	client          anthropic.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	timeout         time.Duration
	metricsRecorder MetricsRecorder
}

// NewClaude creates a Claude completer. The SDK's own retries are disabled;
// the classifier retries.
func NewClaude(cfg ClaudeConfig) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Claude{
		client:          anthropic.NewClient(opts...),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.LLMConfig("claude")),
		timeout:         cfg.Timeout,
		metricsRecorder: NewPrometheusMetrics(),
	}
}

// Provider implements classify.Completer.
func (c *Claude) Provider() string { return "claude" }

// Complete sends req as a single user message and joins the text blocks of the reply.
func (c *Claude) Complete(ctx context.Context, req classify.CompletionRequest) (string, error) {
	return circuitbreaker.Call(c.circuitBreaker, func() (string, error) {
		return c.doComplete(ctx, req)
	})
}

func (c *Claude) doComplete(ctx context.Context, req classify.CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.New().String()
	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	duration := time.Since(start)

	if err != nil {
		err = c.mapError(err)
		c.metricsRecorder.RecordRequest(c.Provider(), req.Model, statusOf(err), duration)
		slog.ErrorContext(ctx, "completion failed",
			slog.String("provider", c.Provider()),
			slog.String("request_id", requestID),
			slog.String("model", req.Model),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return "", err
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	if sb.Len() == 0 {
		err := fmt.Errorf("claude api returned no text content")
		c.metricsRecorder.RecordRequest(c.Provider(), req.Model, statusOf(err), duration)
		return "", err
	}

	out := sb.String()
	c.metricsRecorder.RecordRequest(c.Provider(), req.Model, statusOf(nil), duration)
	c.metricsRecorder.RecordResponseLength(c.Provider(), text.CountRunes(out))
	slog.DebugContext(ctx, "completion finished",
		slog.String("provider", c.Provider()),
		slog.String("request_id", requestID),
		slog.String("model", req.Model),
		slog.Int64("input_tokens", message.Usage.InputTokens),
		slog.Int64("output_tokens", message.Usage.OutputTokens),
		slog.Duration("duration", duration))
	return out, nil
}

func (c *Claude) mapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyStatus("claude", "ANTHROPIC_API_KEY", apiErr.StatusCode, http.StatusText(apiErr.StatusCode), err)
	}
	return fmt.Errorf("claude api error: %w", err)
}
