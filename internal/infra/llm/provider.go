package llm

import (
	"errors"
	"fmt"
	"strings"

	"newsdigest/internal/usecase/rewrite"
)

// ErrUnknownProvider is returned by New for an unsupported provider name.
var ErrUnknownProvider = errors.New("llm: unknown provider")

// Providers lists the accepted provider names.
func Providers() []string {
	return []string{ProviderGemini, ProviderGenAI, ProviderClaude, ProviderOpenAI}
}

// New builds the generator for provider. Provider names are case-insensitive.
func New(provider, apiKey string, opts ...Option) (rewrite.Generator, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderGemini, "":
		return NewGemini(apiKey, opts...), nil
	case ProviderGenAI:
		return NewGenAI(apiKey, opts...), nil
	case ProviderClaude:
		return NewClaude(apiKey, opts...), nil
	case ProviderOpenAI:
		return NewOpenAI(apiKey, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownProvider, provider, strings.Join(Providers(), ", "))
	}
}

// APIKeyEnv returns the environment variable holding the key for provider.
func APIKeyEnv(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderClaude:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}
