package gemini

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"email-classifier/internal/classifier"
	"email-classifier/internal/models"
)

const Name = "gemini"

type Config struct {
	APIKey          string
	Model           string
	BaseURL         string // empty means the public Gemini API
	Temperature     float32
	MaxOutputTokens int32
	HTTPClient      *http.Client
}

// Provider implements classifier.Model on top of the Gemini API.
type Provider struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

var _ classifier.Model = (*Provider)(nil)

// New creates the genai client once; it is reused for every request.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Provider{
		client: client,
		model:  cfg.Model,
		config: generateConfig(cfg),
	}, nil
}

func generateConfig(cfg Config) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	}
	if cfg.Temperature > 0 {
		config.Temperature = genai.Ptr(cfg.Temperature)
	}
	if cfg.MaxOutputTokens > 0 {
		config.MaxOutputTokens = cfg.MaxOutputTokens
	}
	return config
}

// responseSchema mirrors classifier.OutputSchema in Gemini's schema dialect.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"categoria": {
				Type: genai.TypeString,
				Enum: []string{string(models.CategoryProductive), string(models.CategoryUnproductive)},
			},
			"resposta_sugerida": {
				Type: genai.TypeString,
			},
		},
		Required: []string{"categoria", "resposta_sugerida"},
	}
}

func (p *Provider) Name() string { return Name }

func (p *Provider) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	config := *p.config
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), &config)
	if err != nil {
		return "", fmt.Errorf("gemini api error: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", classifier.ErrEmptyResponse
	}

	text := resp.Text()
	if text == "" {
		return "", classifier.ErrEmptyResponse
	}
	return text, nil
}
