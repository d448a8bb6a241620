// Package http provides the HTTP server pieces of the report API: health
// probes, request middleware and metrics.
package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"tickermate/internal/handler/http/respond"
)

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version"`
	Checks    map[string]CheckStatus `json:"checks"`
}

// CheckStatus is the outcome of one check.
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	// Optional dependencies degrade the service without failing it.
	Optional bool `json:"optional,omitempty"`
}

// HealthHandler runs every check and answers 503 when a required one fails.
type HealthHandler struct {
	Version  string
	Required map[string]Check
	// Optional checks report "degraded" instead of failing the endpoint.
	Optional map[string]Check
	Timeout  time.Duration
	Now      func() time.Time
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	checks := make(map[string]CheckStatus, len(h.Required)+len(h.Optional))
	status, code := "healthy", http.StatusOK

	for _, name := range sortedKeys(h.Required) {
		if err := h.Required[name](ctx); err != nil {
			checks[name] = CheckStatus{Status: "unhealthy", Message: respond.SanitizeError(err)}
			status, code = "unhealthy", http.StatusServiceUnavailable
			continue
		}
		checks[name] = CheckStatus{Status: "healthy"}
	}
	for _, name := range sortedKeys(h.Optional) {
		if err := h.Optional[name](ctx); err != nil {
			checks[name] = CheckStatus{Status: "unhealthy", Message: respond.SanitizeError(err), Optional: true}
			if status == "healthy" {
				status = "degraded"
			}
			continue
		}
		checks[name] = CheckStatus{Status: "healthy", Optional: true}
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: now().UTC().Format(time.RFC3339),
		Version:   h.Version,
		Checks:    checks,
	})
}

// ReadyHandler answers 200 once every required check passes.
type ReadyHandler struct {
	Required map[string]Check
}

// ServeHTTP implements http.Handler.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	for _, name := range sortedKeys(h.Required) {
		if err := h.Required[name](ctx); err != nil {
			respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "check": name})
			return
		}
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// LiveHandler answers 200 while the process runs.
type LiveHandler struct{}

// ServeHTTP implements http.Handler.
func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func sortedKeys(m map[string]Check) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
