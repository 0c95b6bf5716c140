package providers

import (
	"context"
	"fmt"
	"net/http"
)

const (
	xaiAPIURL = "https://api.x.ai/v1/chat/completions"
)

// XAIProvider implements the TranslationProvider interface for xAI's Grok.
// The API is OpenAI compatible.
type XAIProvider struct {
	Config
	httpClient *http.Client
}

// NewXAIProvider creates a new instance of the xAI provider
func NewXAIProvider(config Config) *XAIProvider {
	return &XAIProvider{
		Config: config,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Name returns the provider name
func (p *XAIProvider) Name() string {
	return ProviderXAI
}

// Translate implements the TranslationProvider interface for xAI
func (p *XAIProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	if p.APIKey == "" {
		return "", fmt.Errorf("xAI API key not provided")
	}

	model := p.ModelID
	if model == "" {
		model = "grok-3-mini"
	}
	endpoint := p.BaseURL
	if endpoint == "" {
		endpoint = xaiAPIURL
	}

	return chatCompletion(ctx, p.httpClient, endpoint, p.APIKey, "xAI", ChatRequest{
		Model: model,
		Messages: []ChatMessage{
			{Role: "system", Content: translatorSystemPrompt},
			{Role: "user", Content: translationPrompt(text, source, target)},
		},
		MaxTokens: 4096,
	})
}
