package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	openaiAPIURL = "https://api.openai.com/v1/chat/completions"
)

// OpenAIProvider implements the TranslationProvider interface for OpenAI's models
type OpenAIProvider struct {
	Config
	httpClient *http.Client
}

// ChatMessage represents a message in the OpenAI chat format
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a chat completion request. xAI accepts the same shape.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// ChatResponse represents a chat completion response
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIProvider creates a new instance of the OpenAI provider
func NewOpenAIProvider(config Config) *OpenAIProvider {
	return &OpenAIProvider{
		Config: config,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// Translate implements the TranslationProvider interface for OpenAI
func (p *OpenAIProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	if p.APIKey == "" {
		return "", fmt.Errorf("OpenAI API key not provided")
	}

	model := p.ModelID
	if model == "" {
		model = "gpt-4o-mini"
	}
	endpoint := p.BaseURL
	if endpoint == "" {
		endpoint = openaiAPIURL
	}

	return chatCompletion(ctx, p.httpClient, endpoint, p.APIKey, "OpenAI", ChatRequest{
		Model: model,
		Messages: []ChatMessage{
			{Role: "system", Content: translatorSystemPrompt},
			{Role: "user", Content: translationPrompt(text, source, target)},
		},
		MaxTokens: 4096,
	})
}

// chatCompletion posts an OpenAI-compatible request and returns the first choice.
func chatCompletion(ctx context.Context, client *http.Client, endpoint, apiKey, vendor string, reqBody ChatRequest) (string, error) {
	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqJSON))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request to %s API: %w", vendor, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	var chatResponse ChatResponse
	if err := json.Unmarshal(respBody, &chatResponse); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}

	if chatResponse.Error != nil {
		return "", fmt.Errorf("%s API error: %s: %s", vendor, chatResponse.Error.Type, chatResponse.Error.Message)
	}

	if len(chatResponse.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s API", vendor)
	}
	out := cleanModelOutput(chatResponse.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("empty response from %s API", vendor)
	}
	return out, nil
}
