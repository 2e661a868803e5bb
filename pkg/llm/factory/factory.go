package factory

import (
	"context"
	"fmt"

	"github.com/noah-isme/iep-hero-api/pkg/config"
	"github.com/noah-isme/iep-hero-api/pkg/llm"
	"github.com/noah-isme/iep-hero-api/pkg/llm/gemini"
	"github.com/noah-isme/iep-hero-api/pkg/llm/openai"
)

// NewProvider picks the backend named by cfg.Provider.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "", "openai":
		return openai.New(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "gemini":
		return gemini.New(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
