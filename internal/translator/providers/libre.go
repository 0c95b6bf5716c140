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
	libreDefaultURL = "http://localhost:5000"
)

// LibreProvider calls a LibreTranslate server.
type LibreProvider struct {
	Config
	httpClient *http.Client
}

// LibreRequest represents a request to the LibreTranslate API
type LibreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

// LibreResponse represents a response from the LibreTranslate API
type LibreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

// NewLibreProvider creates a new instance of the LibreTranslate provider
func NewLibreProvider(config Config) *LibreProvider {
	return &LibreProvider{
		Config: config,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Name returns the provider name
func (p *LibreProvider) Name() string {
	return ProviderLibre
}

// Translate implements the TranslationProvider interface for LibreTranslate
func (p *LibreProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	base := p.BaseURL
	if base == "" {
		base = libreDefaultURL
	}
	if source == "" {
		source = "auto"
	}

	reqJSON, err := json.Marshal(LibreRequest{
		Q:      text,
		Source: source,
		Target: target,
		Format: "text",
		APIKey: p.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(base, "/")+"/translate", bytes.NewReader(reqJSON))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request to LibreTranslate: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	var libreResponse LibreResponse
	if err := json.Unmarshal(respBody, &libreResponse); err != nil {
		return "", fmt.Errorf("error unmarshaling response (status %d): %w", resp.StatusCode, err)
	}
	if libreResponse.Error != "" {
		return "", fmt.Errorf("LibreTranslate error: %s", libreResponse.Error)
	}
	if libreResponse.TranslatedText == "" {
		return "", fmt.Errorf("empty response from LibreTranslate")
	}

	return libreResponse.TranslatedText, nil
}
