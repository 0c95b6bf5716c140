package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// MockResponseConfig holds configuration for mock API responses
type MockResponseConfig struct {
	StatusCode   int
	ResponseBody interface{}
	Headers      map[string]string
}

// MockServer creates a test server that returns the configured response
func MockServer(t *testing.T, config MockResponseConfig) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range config.Headers {
			w.Header().Set(k, v)
		}
		if _, exists := config.Headers["Content-Type"]; !exists {
			w.Header().Set("Content-Type", "application/json")
		}

		w.WriteHeader(config.StatusCode)

		if config.ResponseBody != nil {
			var respBytes []byte
			var err error

			switch body := config.ResponseBody.(type) {
			case string:
				respBytes = []byte(body)
			case []byte:
				respBytes = body
			default:
				respBytes, err = json.Marshal(body)
				if err != nil {
					t.Errorf("Failed to marshal mock response: %v", err)
					return
				}
			}

			if _, err := w.Write(respBytes); err != nil {
				t.Errorf("Failed to write response body: %v", err)
			}
		}
	}))
}

// TestProvider is a simple implementation of TranslationProvider for testing.
// It fails the first failures calls, then returns returnString.
type TestProvider struct {
	name         string
	returnError  error
	returnString string
	failures     int

	mu    sync.Mutex
	calls int
}

// NewTestProvider creates a new TestProvider that always returns the same result
func NewTestProvider(name string, returnString string, returnError error) *TestProvider {
	failures := 0
	if returnError != nil {
		failures = -1
	}
	return &TestProvider{
		name:         name,
		returnString: returnString,
		returnError:  returnError,
		failures:     failures,
	}
}

// NewFlakyProvider creates a TestProvider that fails failures times before succeeding
func NewFlakyProvider(name, returnString string, returnError error, failures int) *TestProvider {
	return &TestProvider{
		name:         name,
		returnString: returnString,
		returnError:  returnError,
		failures:     failures,
	}
}

// Name returns the provider name
func (p *TestProvider) Name() string {
	return p.name
}

// Translate returns the configured string or error
func (p *TestProvider) Translate(ctx context.Context, _, _, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.failures < 0 || p.calls <= p.failures {
		return "", p.returnError
	}
	return p.returnString, nil
}

// Calls returns how many times Translate was called
func (p *TestProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// CapturingProvider is a provider that captures the inputs for testing
type CapturingProvider struct {
	name         string
	returnError  error
	returnString string

	mu             sync.Mutex
	capturedText   string
	capturedSource string
	capturedTarget string
}

// NewCapturingProvider creates a new CapturingProvider
func NewCapturingProvider(name, returnString string, returnError error) *CapturingProvider {
	return &CapturingProvider{
		name:         name,
		returnString: returnString,
		returnError:  returnError,
	}
}

// Name returns the provider name
func (p *CapturingProvider) Name() string {
	return p.name
}

// Translate captures inputs and returns configured response
func (p *CapturingProvider) Translate(_ context.Context, text, source, target string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.capturedText = text
	p.capturedSource = source
	p.capturedTarget = target
	return p.returnString, p.returnError
}

// GetCapturedText returns the text that was passed to Translate
func (p *CapturingProvider) GetCapturedText() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capturedText
}

// GetCapturedLanguages returns the source and target passed to Translate
func (p *CapturingProvider) GetCapturedLanguages() (string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capturedSource, p.capturedTarget
}
