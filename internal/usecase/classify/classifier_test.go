package classify_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickermate/internal/domain/entity"
	"tickermate/internal/resilience/retry"
	"tickermate/internal/usecase/classify"
)

// fakeCompleter replays canned responses and records requests.
type fakeCompleter struct {
	mu        sync.Mutex
	requests  []classify.CompletionRequest
	responses []string
	errs      []error
	byModel   map[string]error
}

func (f *fakeCompleter) Provider() string { return "fake" }

func (f *fakeCompleter) Complete(_ context.Context, req classify.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.requests)
	f.requests = append(f.requests, req)

	if err, ok := f.byModel[req.Model]; ok {
		return "", err
	}
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return f.responses[len(f.responses)-1], nil
}

func testConfig() classify.Config {
	cfg := classify.DefaultConfig()
	cfg.Retry = retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
	return cfg
}

func TestClassifier_Structured(t *testing.T) {
	fc := &fakeCompleter{responses: []string{`{"summary":"EV tariffs hurt margins","sentiment":"Bearish"}`}}
	c := classify.New(fc, classify.SocialTemplate, testConfig())

	got, err := c.Classify(t.Context(), "Tariffs on $TSLA suppliers!", 50)
	require.NoError(t, err)
	assert.Equal(t, entity.Classification{Summary: "EV tariffs hurt margins", Sentiment: entity.SentimentBearish}, got)

	require.Len(t, fc.requests, 1)
	req := fc.requests[0]
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Equal(t, 120, req.MaxTokens)
	assert.Zero(t, req.Temperature)
	assert.Contains(t, req.Prompt, "Tariffs on $TSLA suppliers!")
	assert.Contains(t, req.Prompt, "≤50 words")
	assert.True(t, strings.HasPrefix(req.Prompt, "Donald Trump posted the following on Truth Social."))
}

func TestClassifier_RetriesTransientFailures(t *testing.T) {
	fc := &fakeCompleter{
		errs:      []error{errors.New("502 bad gateway"), errors.New("timeout")},
		responses: []string{"", "", `{"summary":"ok","sentiment":"Neutral"}`},
	}
	c := classify.New(fc, classify.NewsTemplate, testConfig())

	got, err := c.Classify(t.Context(), "article", 15)
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Summary)
	assert.Len(t, fc.requests, 3)
}

func TestClassifier_FallbackModel(t *testing.T) {
	fc := &fakeCompleter{
		byModel:   map[string]error{"gpt-4o-mini": fmt.Errorf("openai: %w", classify.ErrModelUnavailable)},
		responses: []string{`{"summary":"fallback","sentiment":"Bullish"}`},
	}
	c := classify.New(fc, classify.SocialTemplate, testConfig())

	got, err := c.Classify(t.Context(), "post", 15)
	require.NoError(t, err)
	assert.Equal(t, "fallback", got.Summary)

	require.Len(t, fc.requests, 2, "unavailable model must not be retried")
	assert.Equal(t, "gpt-4o-mini", fc.requests[0].Model)
	assert.Equal(t, "gpt-3.5-turbo", fc.requests[1].Model)
}

func TestClassifier_NoFallbackConfigured(t *testing.T) {
	fc := &fakeCompleter{byModel: map[string]error{"gpt-4o-mini": classify.ErrModelUnavailable}}
	cfg := testConfig()
	cfg.FallbackModel = ""
	c := classify.New(fc, classify.SocialTemplate, cfg)

	got, err := c.Classify(t.Context(), "post", 15)
	assert.ErrorIs(t, err, classify.ErrModelUnavailable)
	assert.Equal(t, entity.SentimentUnknown, got.Sentiment)
	assert.Len(t, fc.requests, 1)
}

func TestClassifier_FailureAfterRetries(t *testing.T) {
	boom := errors.New("provider down")
	fc := &fakeCompleter{errs: []error{boom, boom, boom}, responses: []string{""}}
	c := classify.New(fc, classify.SocialTemplate, testConfig())

	got, err := c.Classify(t.Context(), "post", 15)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, entity.Classification{Sentiment: entity.SentimentUnknown}, got)
	assert.Len(t, fc.requests, 3)
}

func TestClassifier_SalvagesFreeText(t *testing.T) {
	fc := &fakeCompleter{responses: []string{"Markets shrug.\nMore text"}}
	c := classify.New(fc, classify.StreamTemplate, testConfig())

	got, err := c.Classify(t.Context(), "msg", 15)
	require.NoError(t, err)
	assert.Equal(t, "Markets shrug.", got.Summary)
	assert.Equal(t, entity.SentimentUnknown, got.Sentiment)
}

func TestClassifier_WithTemplate(t *testing.T) {
	fc := &fakeCompleter{responses: []string{`{"summary":"x","sentiment":"Neutral"}`}}
	base := classify.New(fc, classify.SocialTemplate, testConfig())
	news := base.WithTemplate(classify.NewsTemplate)

	_, err := news.Classify(t.Context(), "article", 15)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fc.requests[0].Prompt, "The following is an economic news article."))
}

func TestTemplateFor(t *testing.T) {
	assert.Equal(t, classify.SocialTemplate, classify.TemplateFor(entity.ChannelSocial))
	assert.Equal(t, classify.NewsTemplate, classify.TemplateFor(entity.ChannelNews))
	assert.Equal(t, classify.StreamTemplate, classify.TemplateFor(entity.ChannelStream))
}

func TestTemplate_Render(t *testing.T) {
	got := classify.Template{Text: "{text} in ≤{word_limit} words; {text}"}.Render("hi", 7)
	assert.Equal(t, "hi in ≤7 words; hi", got)
}
