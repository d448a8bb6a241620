package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RateLimitError is a 429 answer from a webhook.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
}

// ClientError is a non-429 4xx answer. It is not retried.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string { return e.Message }

// ServerError is a 5xx answer.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string { return e.Message }

// webhook posts JSON payloads with pacing and a short retry loop.
type webhook struct {
	service     string
	url         string
	client      *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseDelay   time.Duration
}

func newWebhook(service, url string, timeout time.Duration, perSecond float64, burst int) *webhook {
	return &webhook{
		service:     service,
		url:         url,
		client:      &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(perSecond), burst),
		maxAttempts: 2,
		baseDelay:   5 * time.Second,
	}
}

// send paces, posts and retries payload. 429 answers wait for the
// advertised delay; 4xx answers fail at once.
func (w *webhook) send(ctx context.Context, ticker string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", w.service, err)
	}
	logger := slog.With(
		slog.String("request_id", uuid.NewString()),
		slog.String("service", w.service),
		slog.String("ticker", ticker))

	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limiter: %w", w.service, err)
	}

	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		err := w.post(ctx, body)
		if err == nil {
			logger.Info("notification sent", slog.Int("attempt", attempt))
			return nil
		}
		lastErr = err

		var wait time.Duration
		var rl *RateLimitError
		var ce *ClientError
		switch {
		case errors.As(err, &rl):
			wait = rl.RetryAfter
		case errors.As(err, &ce):
			logger.Error("notification rejected", slog.Any("error", err))
			return err
		default:
			wait = w.baseDelay * time.Duration(attempt)
		}
		if attempt == w.maxAttempts {
			break
		}

		logger.Warn("notification failed, retrying",
			slog.Any("error", err),
			slog.Int("attempt", attempt),
			slog.Duration("delay", wait))
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return fmt.Errorf("%s notification cancelled: %w", w.service, ctx.Err())
		}
	}

	logger.Error("notification failed after all retries", slog.Any("error", lastErr))
	return fmt.Errorf("%s notification failed after %d attempts: %w", w.service, w.maxAttempts, lastErr)
}

func (w *webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", w.service, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s webhook: %w", w.service, err)
	}
	defer func() { _ = resp.Body.Close() }()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			RetryAfter: retryAfter(resp, respBody),
			Message:    w.service + " rate limit exceeded",
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s client error %d: %s", w.service, resp.StatusCode, respBody),
		}
	case resp.StatusCode >= 500:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s server error %d: %s", w.service, resp.StatusCode, respBody),
		}
	}
	return fmt.Errorf("unexpected %s status code %d", w.service, resp.StatusCode)
}

// retryAfter reads the JSON retry_after field (seconds) used by Discord,
// then the Retry-After header, and defaults to 5 seconds.
func retryAfter(resp *http.Response, body []byte) time.Duration {
	var payload struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.RetryAfter > 0 {
		return time.Duration(payload.RetryAfter * float64(time.Second))
	}
	if h := resp.Header.Get("Retry-After"); h != "" {
		if seconds, err := strconv.Atoi(h); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 5 * time.Second
}
