package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	anthropicAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
)

// AnthropicProvider implements the TranslationProvider interface for Anthropic's Claude
type AnthropicProvider struct {
	Config
	httpClient *http.Client
	version    string
}

// AnthropicMessage represents a message in Anthropic's API
type AnthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnthropicRequest represents a request to Anthropic's API
type AnthropicRequest struct {
	Model     string             `json:"model"`
	System    string             `json:"system,omitempty"`
	Messages  []AnthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
}

// AnthropicResponse represents a response from Anthropic's API
type AnthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAnthropicProvider creates a new instance of the Anthropic provider
func NewAnthropicProvider(config Config) *AnthropicProvider {
	return &AnthropicProvider{
		Config: config,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		version: anthropicAPIVersion,
	}
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return ProviderAnthropic
}

// Translate implements the TranslationProvider interface for Anthropic
func (p *AnthropicProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	if p.APIKey == "" {
		return "", fmt.Errorf("Anthropic API key not provided")
	}

	model := p.ModelID
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	endpoint := p.BaseURL
	if endpoint == "" {
		endpoint = anthropicAPIURL
	}

	reqJSON, err := json.Marshal(AnthropicRequest{
		Model:  model,
		System: translatorSystemPrompt,
		Messages: []AnthropicMessage{
			{Role: "user", Content: translationPrompt(text, source, target)},
		},
		MaxTokens: 4096,
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqJSON))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", p.APIKey)
	req.Header.Set("Anthropic-Version", p.version)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request to Anthropic API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	var anthResponse AnthropicResponse
	if err := json.Unmarshal(respBody, &anthResponse); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}

	if anthResponse.Error != nil {
		return "", fmt.Errorf("Anthropic API error: %s: %s",
			anthResponse.Error.Type, anthResponse.Error.Message)
	}

	var b strings.Builder
	for _, block := range anthResponse.Content {
		b.WriteString(block.Text)
	}
	out := cleanModelOutput(b.String())
	if out == "" {
		return "", fmt.Errorf("empty response from Anthropic API")
	}
	return out, nil
}
