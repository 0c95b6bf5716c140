package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	googleTranslateURL = "https://translate.googleapis.com/translate_a/single"
)

// GoogleProvider calls the public Google Translate endpoint. It needs no key.
type GoogleProvider struct {
	Config
	httpClient *http.Client
}

// NewGoogleProvider creates a new instance of the Google Translate provider
func NewGoogleProvider(config Config) *GoogleProvider {
	return &GoogleProvider{
		Config: config,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Name returns the provider name
func (p *GoogleProvider) Name() string {
	return ProviderGoogle
}

// Translate implements the TranslationProvider interface for Google Translate
func (p *GoogleProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	endpoint := p.BaseURL
	if endpoint == "" {
		endpoint = googleTranslateURL
	}
	if source == "" {
		source = "auto"
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", source)
	params.Set("tl", target)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request to Google Translate: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Google Translate returned status %d", resp.StatusCode)
	}

	return parseGoogleResponse(respBody)
}

// parseGoogleResponse concatenates the translated segments of a gtx
// response: [[["translated","original",...],...],...].
func parseGoogleResponse(body []byte) (string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty response from Google Translate")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", fmt.Errorf("unexpected response shape: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			continue
		}
		b.WriteString(part)
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("empty translation from Google Translate")
	}
	return b.String(), nil
}
