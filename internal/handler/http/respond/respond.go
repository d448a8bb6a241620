// Package respond writes JSON responses and keeps internal error details
// out of them.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes v as JSON with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent.
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes err's message verbatim.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, ErrorResponse{Error: err.Error()})
}

// safeFragments mark messages that describe the caller's input.
var safeFragments = []string{
	"required",
	"invalid",
	"not found",
	"not enabled",
	"must be",
	"cannot be",
	"too long",
	"exceeded",
}

// SafeError writes err's message when it describes the caller's input and
// code is below 500. Anything else is logged with secrets masked and
// answered with "internal server error".
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	if code < 500 && isSafe(err.Error()) {
		JSON(w, code, ErrorResponse{Error: err.Error()})
		return
	}
	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, ErrorResponse{Error: "internal server error"})
}

// Message writes a fixed user-facing message and logs err, masked.
func Message(w http.ResponseWriter, code int, msg string, err error) {
	if err != nil {
		slog.Default().Error("request failed",
			slog.Int("code", code),
			slog.String("message", msg),
			slog.String("error", SanitizeError(err)))
	}
	JSON(w, code, ErrorResponse{Error: msg})
}

func isSafe(msg string) bool {
	lower := strings.ToLower(msg)
	for _, f := range safeFragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}
