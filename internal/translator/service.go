// Package translator provides the production translation capability:
// a provider chain with bounded timeouts, retries, a result cache and metrics.
package translator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/localrivet/polysum/internal/errortypes"
	"github.com/localrivet/polysum/internal/telemetry"
	"github.com/localrivet/polysum/internal/translator/providers"
)

const (
	// Default settings
	DefaultTimeout       = 30 * time.Second
	DefaultMaxRetries    = 2
	DefaultRetryDelay    = time.Second
	DefaultCacheCapacity = 1000
	DefaultCacheTTL      = 24 * time.Hour
)

// Errors
var (
	ErrTranslationFailed = errors.New("translation failed")
	ErrNoProvider        = errors.New("no translation provider configured")
)

// FallbackConfig configures one provider of the fallback chain.
type FallbackConfig struct {
	Name    string
	ModelID string
	APIKey  string
	BaseURL string
}

// Config holds configuration for the Service
type Config struct {
	ProviderName      string
	ModelID           string
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	CacheCapacity     int
	CacheTTL          time.Duration
	FallbackProviders []FallbackConfig

	Logger  *slog.Logger
	Metrics *telemetry.MetricsCollector
}

// Service translates through a primary provider and falls back along a
// chain when it fails. A Service is safe for concurrent use.
type Service struct {
	config            Config
	provider          providers.TranslationProvider
	fallbackProviders []providers.TranslationProvider
	initialized       bool
	cache             *translationCache
	metrics           *telemetry.MetricsCollector
	logger            *slog.Logger
	mu                sync.RWMutex
}

// NewService creates a Service. Providers are built on Initialize.
func NewService(config *Config) *Service {
	if config == nil {
		config = &Config{}
	}
	cfg := *config

	if cfg.ProviderName == "" {
		cfg.ProviderName = providers.ProviderGoogle
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = DefaultCacheCapacity
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = telemetry.NewMetricsCollector()
	}

	return &Service{
		config:  cfg,
		cache:   newTranslationCache(cfg.CacheCapacity, cfg.CacheTTL),
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

// WithProviders replaces the configured chain, mainly for tests and embedding.
func (s *Service) WithProviders(primary providers.TranslationProvider, fallbacks ...providers.TranslationProvider) *Service {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.provider = primary
	s.fallbackProviders = fallbacks
	s.initialized = primary != nil
	return s
}

// Initialize builds the primary provider and the fallback chain.
func (s *Service) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	configs := map[string]providers.Config{
		s.config.ProviderName: {
			APIKey:  s.config.APIKey,
			ModelID: s.config.ModelID,
			BaseURL: s.config.BaseURL,
		},
	}
	var order []string
	for _, fb := range s.config.FallbackProviders {
		name := strings.TrimSpace(fb.Name)
		if name == "" || name == s.config.ProviderName {
			continue
		}
		configs[name] = providers.Config{APIKey: fb.APIKey, ModelID: fb.ModelID, BaseURL: fb.BaseURL}
		order = append(order, name)
	}

	factory := providers.NewProviderFactory(configs)

	primary, err := factory.GetProvider(s.config.ProviderName)
	if err != nil {
		return errortypes.ConfigError(err, "failed to create primary translation provider")
	}
	if providers.RequiresAPIKey(s.config.ProviderName) && s.config.APIKey == "" {
		return errortypes.ConfigError(
			fmt.Errorf("missing API key for provider %s", s.config.ProviderName),
			"translation provider is not configured")
	}

	s.provider = primary
	s.fallbackProviders = factory.GetProviderChain(order, s.config.ProviderName)
	s.initialized = true

	s.logger.Info("Translation service initialized",
		"provider", primary.Name(),
		"fallbacks", len(s.fallbackProviders))
	return nil
}

// chain returns the providers to try in order.
func (s *Service) chain() []providers.TranslationProvider {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.provider == nil {
		return nil
	}
	out := make([]providers.TranslationProvider, 0, 1+len(s.fallbackProviders))
	out = append(out, s.provider)
	return append(out, s.fallbackProviders...)
}

// Translate translates text from source (empty for auto) into target.
// Empty text is returned as is without calling a provider.
func (s *Service) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	startTime := time.Now()
	defer func() {
		s.metrics.RecordTimer(telemetry.MetricTranslateTime, time.Since(startTime))
	}()

	if err := s.Initialize(); err != nil {
		return "", err
	}

	key := cacheKey(text, source, target)
	if translated, found := s.cache.get(key); found {
		s.metrics.IncrementCounter(telemetry.MetricCacheHits, 1)
		return translated, nil
	}
	s.metrics.IncrementCounter(telemetry.MetricCacheMisses, 1)

	chain := s.chain()
	if len(chain) == 0 {
		return "", errortypes.TranslationError(ErrNoProvider, "translation unavailable")
	}

	var lastErr error
	for i, provider := range chain {
		if i > 0 {
			s.metrics.IncrementCounter(telemetry.MetricFallbackAttempts, 1)
			s.logger.Debug("Trying fallback translation provider", "provider", provider.Name(), "previous_error", lastErr)
		}
		s.metrics.IncrementCounter(telemetry.MetricAPICalls(provider.Name()), 1)

		providerStart := time.Now()
		translated, err := s.translateWithRetries(ctx, provider, text, source, target)
		if err == nil {
			s.cacheResult(key, translated)
			s.metrics.IncrementCounter(telemetry.MetricAPICallsSuccess, 1)
			s.metrics.RecordTimer(telemetry.MetricResponseTime(provider.Name()), time.Since(providerStart))
			if i > 0 {
				s.metrics.IncrementCounter(telemetry.MetricFallbackSuccess, 1)
			}
			return translated, nil
		}

		s.metrics.IncrementCounter(telemetry.MetricAPICallsFailure, 1)
		lastErr = fmt.Errorf("%s: %w", provider.Name(), err)

		if ctx.Err() != nil {
			break
		}
	}

	return "", errortypes.TranslationError(errors.Join(ErrTranslationFailed, lastErr), "all translation providers failed").
		WithField("target", target)
}

// translateWithRetries calls one provider, each attempt bounded by the
// configured timeout, waiting longer before every retry.
func (s *Service) translateWithRetries(ctx context.Context, provider providers.TranslationProvider, text, source, target string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			s.metrics.IncrementCounter(telemetry.MetricRetryAttempts, 1)

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(s.config.RetryDelay * time.Duration(attempt)):
			}
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
		translated, err := provider.Translate(attemptCtx, text, source, target)
		cancel()

		if err == nil && strings.TrimSpace(translated) != "" {
			if attempt > 0 {
				s.metrics.IncrementCounter(telemetry.MetricRetrySuccess, 1)
			}
			return translated, nil
		}
		if err == nil {
			err = errors.New("empty translation")
		}
		lastErr = err
	}

	return "", lastErr
}

// GetMetrics returns the metrics collector for this service
func (s *Service) GetMetrics() *telemetry.MetricsCollector {
	return s.metrics
}

// PrimaryName returns the name of the primary provider, or "" before Initialize.
func (s *Service) PrimaryName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// CheckProviderHealth translates a short probe with every provider.
func (s *Service) CheckProviderHealth(ctx context.Context) map[string]bool {
	results := make(map[string]bool)
	if err := s.Initialize(); err != nil {
		return results
	}

	for _, provider := range s.chain() {
		name := provider.Name()
		if _, checked := results[name]; checked {
			continue
		}

		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		out, err := provider.Translate(probeCtx, "Good morning.", "en", "fr")
		cancel()

		results[name] = err == nil && out != ""
		s.metrics.SetGauge(telemetry.MetricProviderHealth(name), boolToFloat64(results[name]))
	}

	return results
}

// boolToFloat64 converts a boolean to a float64 (1.0 for true, 0.0 for false)
func boolToFloat64(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

func cacheKey(text, source, target string) string {
	hash := sha256.Sum256([]byte(source + "\x00" + target + "\x00" + text))
	return hex.EncodeToString(hash[:])
}

func (s *Service) cacheResult(key, translated string) {
	size := s.cache.put(key, translated)
	s.metrics.SetGauge(telemetry.MetricCacheSize, float64(size))
}
