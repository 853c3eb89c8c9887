package llm

import (
	"context"
	"fmt"

	"github.com/taxsaathi/taxsaathi/internal/config"
)

// Provider generates a completion for a prompt pair.
type Provider interface {
	// Generate sends the system and user prompts to the model and returns the
	// raw completion text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelName returns the configured model identifier.
	ModelName() string
}

// Request is a single generation request.
type Request struct {
	System string
	User   string

	// ResponseSchema, when non-nil, asks the model for JSON output conforming
	// to the given JSON Schema. Providers that cannot enforce a schema fall
	// back to prompt-level instructions.
	ResponseSchema map[string]interface{}
}

// Response is the raw model output plus token accounting.
type Response struct {
	Content string
	Usage   Usage
}

type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// NewProvider builds the provider selected by AI_PROVIDER.
func NewProvider(cfg *config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg)
	case "gemini", "":
		return NewGemini(cfg)
	default:
		return nil, fmt.Errorf("unknown AI provider: %q", cfg.Provider)
	}
}
