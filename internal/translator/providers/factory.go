package providers

import (
	"fmt"
	"sort"
)

// ProviderFactory creates and returns translation providers
type ProviderFactory struct {
	// ProviderConfigs stores configuration for each provider
	ProviderConfigs map[string]Config
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(configs map[string]Config) *ProviderFactory {
	if configs == nil {
		configs = make(map[string]Config)
	}
	return &ProviderFactory{
		ProviderConfigs: configs,
	}
}

// GetProvider returns an initialized provider instance for the specified provider name
func (f *ProviderFactory) GetProvider(providerName string) (TranslationProvider, error) {
	config, exists := f.ProviderConfigs[providerName]
	if !exists {
		return nil, fmt.Errorf("configuration for provider '%s' not found", providerName)
	}

	switch providerName {
	case ProviderGoogle:
		return NewGoogleProvider(config), nil
	case ProviderGemini:
		return NewGeminiProvider(config), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(config), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(config), nil
	case ProviderXAI:
		return NewXAIProvider(config), nil
	case ProviderLibre:
		return NewLibreProvider(config), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", providerName)
	}
}

// usable reports whether a configured provider can make calls.
func (f *ProviderFactory) usable(name string) bool {
	config, exists := f.ProviderConfigs[name]
	return exists && (!RequiresAPIKey(name) || config.APIKey != "")
}

// GetAllProviders returns every usable configured provider, sorted by name
func (f *ProviderFactory) GetAllProviders() []TranslationProvider {
	names := make([]string, 0, len(f.ProviderConfigs))
	for name := range f.ProviderConfigs {
		names = append(names, name)
	}
	sort.Strings(names)

	var providers []TranslationProvider
	for _, name := range names {
		if !f.usable(name) {
			continue
		}
		if provider, err := f.GetProvider(name); err == nil {
			providers = append(providers, provider)
		}
	}
	return providers
}

// GetProviderChain returns the usable providers in preference order,
// skipping duplicates and names in exclude.
func (f *ProviderFactory) GetProviderChain(preferenceOrder []string, exclude ...string) []TranslationProvider {
	seen := make(map[string]bool, len(preferenceOrder)+len(exclude))
	for _, name := range exclude {
		seen[name] = true
	}

	var chain []TranslationProvider
	for _, name := range preferenceOrder {
		if seen[name] || !f.usable(name) {
			continue
		}
		seen[name] = true
		if provider, err := f.GetProvider(name); err == nil {
			chain = append(chain, provider)
		}
	}
	return chain
}
