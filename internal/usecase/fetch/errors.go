// Package fetch retrieves content items for a ticker by trying an ordered
// list of retrieval strategies until one yields results.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"tickermate/internal/resilience/circuitbreaker"
	"tickermate/internal/resilience/retry"
)

// Kind classifies why a strategy failed.
type Kind string

const (
	KindAccessBlocked     Kind = "access_blocked"
	KindTimeout           Kind = "timeout"
	KindParse             Kind = "parse"
	KindEngineUnavailable Kind = "engine_unavailable"
	KindUpstream          Kind = "upstream"
)

// Sentinel errors returned by strategies.
var (
	// ErrAccessBlocked indicates the source refused the request (401/403, login wall).
	ErrAccessBlocked = errors.New("access blocked by source")

	// ErrLikelyBlocked indicates a rendered page never showed its content marker.
	ErrLikelyBlocked = errors.New("content marker not found, likely blocked")

	// ErrEngineUnavailable indicates the rendering engine is not installed or failed to start.
	ErrEngineUnavailable = errors.New("rendering engine unavailable")

	// ErrParse indicates the response could not be decoded.
	ErrParse = errors.New("unparseable source response")
)

// RetrievalError is the error recorded for one failed strategy.
type RetrievalError struct {
	Strategy string
	Kind     Kind
	Err      error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("strategy %s failed (%s): %v", e.Strategy, e.Kind, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// NewRetrievalError wraps err with the strategy name and its classified kind.
func NewRetrievalError(strategy string, err error) *RetrievalError {
	var re *RetrievalError
	if errors.As(err, &re) {
		return &RetrievalError{Strategy: strategy, Kind: re.Kind, Err: re.Err}
	}
	return &RetrievalError{Strategy: strategy, Kind: KindOf(err), Err: err}
}

// KindOf classifies err.
func KindOf(err error) Kind {
	var re *RetrievalError
	if errors.As(err, &re) {
		return re.Kind
	}

	switch {
	case errors.Is(err, ErrAccessBlocked), errors.Is(err, ErrLikelyBlocked):
		return KindAccessBlocked
	case errors.Is(err, ErrEngineUnavailable):
		return KindEngineUnavailable
	case errors.Is(err, ErrParse):
		return KindParse
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case circuitbreaker.IsOpenError(err):
		return KindUpstream
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var httpErr *retry.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return KindAccessBlocked
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return KindTimeout
		}
	}

	return KindUpstream
}
