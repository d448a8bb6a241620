package llm

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tickermate/internal/usecase/classify"
)

// Provider names accepted by New.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderStatic = "static"
)

// DefaultClaudeModel is used when the Claude provider is selected without LLM_MODEL.
const DefaultClaudeModel = "claude-3-5-haiku-latest"

// Settings selects and configures a completion backend.
type Settings struct {
	Provider     string
	OpenAIKey    string
	AnthropicKey string
	// BaseURL overrides the provider endpoint.
	BaseURL string
	Timeout time.Duration
	// StaticResponse is returned by the static provider.
	StaticResponse string
}

// New builds the completer named by s.Provider. A missing API key yields an
// Unconfigured completer rather than an error.
func New(s Settings) (classify.Completer, error) {
	switch strings.ToLower(s.Provider) {
	case "", ProviderOpenAI:
		if s.OpenAIKey == "" {
			slog.Warn("OPENAI_API_KEY not set, classification disabled")
			return &Unconfigured{Name: ProviderOpenAI, Setting: "OPENAI_API_KEY"}, nil
		}
		return NewOpenAI(OpenAIConfig{APIKey: s.OpenAIKey, BaseURL: s.BaseURL, Timeout: s.Timeout}), nil
	case ProviderClaude:
		if s.AnthropicKey == "" {
			slog.Warn("ANTHROPIC_API_KEY not set, classification disabled")
			return &Unconfigured{Name: ProviderClaude, Setting: "ANTHROPIC_API_KEY"}, nil
		}
		return NewClaude(ClaudeConfig{APIKey: s.AnthropicKey, BaseURL: s.BaseURL, Timeout: s.Timeout}), nil
	case ProviderStatic:
		return NewStatic(s.StaticResponse), nil
	}
	return nil, fmt.Errorf("unknown LLM provider %q", s.Provider)
}
