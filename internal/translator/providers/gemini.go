package providers

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	geminiDefaultModel = "gemini-2.0-flash"
)

// GeminiProvider translates with Google's Gemini models through the genai SDK.
type GeminiProvider struct {
	Config
}

// NewGeminiProvider creates a new instance of the Gemini provider
func NewGeminiProvider(config Config) *GeminiProvider {
	return &GeminiProvider{Config: config}
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return ProviderGemini
}

// Translate implements the TranslationProvider interface for Gemini
func (p *GeminiProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	if p.APIKey == "" {
		return "", fmt.Errorf("Gemini API key not provided")
	}

	model := p.ModelID
	if model == "" {
		model = geminiDefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  p.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if p.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	prompt := translatorSystemPrompt + "\n\n" + translationPrompt(text, source, target)
	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	out := cleanModelOutput(b.String())
	if out == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return out, nil
}
