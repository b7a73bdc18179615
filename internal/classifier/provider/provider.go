// Package provider builds the classifier.Model selected by configuration.
package provider

import (
	"context"
	"fmt"
	"net/http"

	"email-classifier/internal/classifier"
	"email-classifier/internal/classifier/provider/gemini"
	"email-classifier/internal/classifier/provider/openai"
	"email-classifier/internal/common/config"
)

// New returns the model for cfg.Provider. httpClient carries the configured timeout.
func New(ctx context.Context, cfg config.GenAIConfig, httpClient *http.Client) (classifier.Model, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.New(ctx, gemini.Config{
			APIKey:          cfg.APIKey,
			Model:           cfg.Model,
			BaseURL:         cfg.BaseURL,
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
			HTTPClient:      httpClient,
		})
	case config.ProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:          cfg.APIKey,
			Model:           cfg.Model,
			BaseURL:         cfg.BaseURL,
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
			HTTPClient:      httpClient,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported genai provider %q", cfg.Provider)
	}
}
