// Package llm provides completion backends for the classifier: OpenAI and
// Anthropic Claude clients guarded by circuit breakers, and a fixed-response
// stub for offline runs.
package llm

import (
	"fmt"
	"net/http"

	"tickermate/internal/domain/entity"
	"tickermate/internal/resilience/retry"
	"tickermate/internal/usecase/classify"
)

// ErrModelUnavailable is returned when the provider does not serve the requested model.
var ErrModelUnavailable = classify.ErrModelUnavailable

// classifyStatus maps a provider HTTP status onto the retry and domain errors.
// Auth failures and bad requests are permanent; 404 means the model is unknown;
// 408, 429 and 5xx stay retryable.
func classifyStatus(provider, credential string, status int, msg string, err error) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return retry.Permanent(&entity.ConfigurationError{
			Setting: credential,
			Err:     fmt.Errorf("%s rejected the API key: %w", provider, err),
		})
	case status == http.StatusNotFound:
		return fmt.Errorf("%s: %w: %s", provider, ErrModelUnavailable, msg)
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%s api error: %w", provider, &retry.HTTPError{StatusCode: status, Message: msg})
	case status >= 400:
		return retry.Permanent(fmt.Errorf("%s api error: %w", provider, &retry.HTTPError{StatusCode: status, Message: msg}))
	}
	return fmt.Errorf("%s api error: %w", provider, err)
}
