// Package classify turns one content item into a short market-impact
// summary and a sentiment label by prompting a language model.
package classify

import (
	"context"
	"errors"
)

// ErrModelUnavailable is returned by a Completer when the requested model
// does not exist or is not enabled for the account.
var ErrModelUnavailable = errors.New("model unavailable")

// Completer is a text completion backend.
// This abstraction allows switching between providers (OpenAI, Anthropic,
// a fixed stub) without changing the classifier.
type Completer interface {
	// Complete returns the raw completion text for req.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Provider names the backend for logs and metrics.
	Provider() string
}

// CompletionRequest is a single-prompt completion.
type CompletionRequest struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
}
