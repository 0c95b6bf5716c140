// Package providers contains implementations of the translation
// services the translator chain can call.
package providers

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// Provider constants
	ProviderGoogle    = "google"
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderXAI       = "xai"
	ProviderLibre     = "libretranslate"

	// Default settings
	DefaultTimeout        = 30 * time.Second
	DefaultMaxInputLength = 8000
)

// TranslationProvider defines the interface for translation services
type TranslationProvider interface {
	// Translate returns text in the target language. An empty source lets
	// the provider detect it.
	Translate(ctx context.Context, text, source, target string) (string, error)

	// Name returns the provider name
	Name() string
}

// Config holds common configuration for translation providers
type Config struct {
	APIKey  string
	ModelID string
	// BaseURL overrides the provider endpoint, e.g. a self-hosted LibreTranslate.
	BaseURL string
}

// RequiresAPIKey reports whether a provider cannot be used without a key.
func RequiresAPIKey(name string) bool {
	switch name {
	case ProviderGoogle, ProviderLibre:
		return false
	default:
		return true
	}
}

// translationPrompt builds the instruction sent to chat-style models.
func translationPrompt(text, source, target string) string {
	from := "the source language"
	if source != "" {
		from = fmt.Sprintf("language %q", source)
	}
	return fmt.Sprintf(
		"Translate the following text from %s into the language with BCP 47 tag %q. "+
			"Reply with the translation only, without quotes, notes or explanations.\n\n%s",
		from, target, truncate(text))
}

const translatorSystemPrompt = "You are a precise translator. You preserve sentence boundaries and never summarize."

// truncate bounds the input sent to a model.
func truncate(text string) string {
	if len(text) <= DefaultMaxInputLength {
		return text
	}
	cut := DefaultMaxInputLength
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// cleanModelOutput strips whitespace and wrapping quotes some models add.
func cleanModelOutput(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
