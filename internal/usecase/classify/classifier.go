package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"tickermate/internal/domain/entity"
	"tickermate/internal/observability/metrics"
	"tickermate/internal/observability/tracing"
	"tickermate/internal/resilience/circuitbreaker"
	"tickermate/internal/resilience/retry"
	"tickermate/internal/utils/text"
)

// maxInputRunes bounds the content sent to the model.
const maxInputRunes = 10000

// Config holds the completion parameters used for every prompt.
type Config struct {
	Model string
	// FallbackModel is tried once when Model is unavailable. Empty disables it.
	FallbackModel string
	MaxTokens     int
	Temperature   float64
	// Timeout bounds one Classify call, retries included.
	Timeout time.Duration
	Retry   retry.Config
}

// DefaultConfig returns gpt-4o-mini at temperature 0 with 120 output tokens.
func DefaultConfig() Config {
	return Config{
		Model:         "gpt-4o-mini",
		FallbackModel: "gpt-3.5-turbo",
		MaxTokens:     120,
		Temperature:   0,
		Timeout:       2 * time.Minute,
		Retry:         retry.LLMConfig(),
	}
}

// Classifier summarizes and labels content with one prompt per item.
type Classifier struct {
	completer Completer
	template  Template
	cfg       Config
}

// New creates a Classifier. Zero Config fields take DefaultConfig values.
func New(c Completer, t Template, cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = def.Retry
	}
	return &Classifier{completer: c, template: t, cfg: cfg}
}

// WithTemplate returns a copy of c using another prompt template.
func (c *Classifier) WithTemplate(t Template) *Classifier {
	cp := *c
	cp.template = t
	return &cp
}

// Classify asks the model for a summary of at most wordLimit words and a
// sentiment. A response that is not JSON is salvaged, never rejected. When
// the completion itself fails after retries, the result is an empty summary
// with SentimentUnknown together with the error.
func (c *Classifier) Classify(ctx context.Context, body string, wordLimit int) (entity.Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	ctx, span := tracing.StartSpan(ctx, "classify",
		attribute.String("provider", c.completer.Provider()),
		attribute.String("template", c.template.Name),
		attribute.Int("word_limit", wordLimit))

	prompt := c.template.Render(text.Truncate(body, maxInputRunes), wordLimit)
	raw, err := c.complete(ctx, prompt)
	if err != nil {
		metrics.RecordClassification("error")
		tracing.EndSpan(span, err)
		slog.WarnContext(ctx, "classification failed",
			slog.String("provider", c.completer.Provider()),
			slog.Any("error", err))
		return entity.Classification{Sentiment: entity.SentimentUnknown}, fmt.Errorf("classify: %w", err)
	}

	parsed := Parse(raw)
	metrics.RecordClassification(parsed.Kind.String())
	if parsed.Kind == Salvaged {
		slog.DebugContext(ctx, "model response was not JSON, salvaged first line",
			slog.Int("response_length", text.CountRunes(raw)))
	}
	span.SetAttributes(attribute.String("parse_kind", parsed.Kind.String()))
	tracing.EndSpan(span, nil)
	return parsed.Classification, nil
}

func (c *Classifier) complete(ctx context.Context, prompt string) (string, error) {
	raw, err := c.completeWith(ctx, c.cfg.Model, prompt)
	if err == nil || !errors.Is(err, ErrModelUnavailable) || c.cfg.FallbackModel == "" || c.cfg.FallbackModel == c.cfg.Model {
		return raw, err
	}

	slog.WarnContext(ctx, "model unavailable, using fallback",
		slog.String("model", c.cfg.Model),
		slog.String("fallback_model", c.cfg.FallbackModel))
	return c.completeWith(ctx, c.cfg.FallbackModel, prompt)
}

func (c *Classifier) completeWith(ctx context.Context, model, prompt string) (string, error) {
	req := CompletionRequest{
		Prompt:      prompt,
		Model:       model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}
	retryCfg := c.cfg.Retry
	userRetryable := retryCfg.Retryable
	retryCfg.Retryable = func(err error) bool {
		if errors.Is(err, ErrModelUnavailable) || circuitbreaker.IsOpenError(err) {
			return false
		}
		return userRetryable == nil || userRetryable(err)
	}
	return retry.Do(ctx, retryCfg, func(ctx context.Context) (string, error) {
		return c.completer.Complete(ctx, req)
	})
}
