package llm

import (
	"context"

	"tickermate/internal/domain/entity"
	"tickermate/internal/resilience/retry"
	"tickermate/internal/usecase/classify"
)

// Static returns the same response for every request. It backs offline
// runs and end-to-end tests.
type Static struct {
	Response string
}

// NewStatic creates a Static completer.
func NewStatic(response string) *Static {
	return &Static{Response: response}
}

// Provider implements classify.Completer.
func (s *Static) Provider() string { return "static" }

// Complete implements classify.Completer.
func (s *Static) Complete(context.Context, classify.CompletionRequest) (string, error) {
	return s.Response, nil
}

// Unconfigured stands in for a provider whose credential is missing. Every
// call fails with a permanent *entity.ConfigurationError, so reports with no
// content to classify still build without a key.
type Unconfigured struct {
	Name    string
	Setting string
}

// Provider implements classify.Completer.
func (u *Unconfigured) Provider() string { return u.Name }

// Complete implements classify.Completer.
func (u *Unconfigured) Complete(context.Context, classify.CompletionRequest) (string, error) {
	return "", retry.Permanent(entity.MissingCredential(u.Setting))
}
