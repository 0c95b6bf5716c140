// Package config loads polysum settings from a JSON file, defaults and
// POLYSUM_* environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/localrivet/configurator"
	"github.com/localrivet/polysum/internal/errortypes"
)

// Global configuration instance
var (
	// Global is the global configuration instance
	Global *Config
	// initOnce ensures initialization happens only once
	initOnce sync.Once
)

// InitGlobal initializes the global configuration
func InitGlobal(configPath string) (*Config, error) {
	var err error
	initOnce.Do(func() {
		Global, err = LoadConfigWithPath(configPath)
	})
	return Global, err
}

// Config represents the polysum configuration
type Config struct {
	// Store contains storage-related configuration.
	Store struct {
		// SQLitePath is the path to the SQLite database of stored summaries.
		SQLitePath string `json:"sqlite_path" env:"SQLITE_PATH" validate:"required"`
	} `json:"store"`

	// Translator configures the translation provider chain.
	Translator struct {
		// Provider is the primary provider ("google", "libretranslate",
		// "gemini", "openai", "anthropic", "xai").
		Provider string `json:"provider" env:"TRANSLATOR_PROVIDER" validate:"required"`

		// ModelID selects the model for LLM-backed providers.
		ModelID string `json:"model_id" env:"TRANSLATOR_MODEL_ID"`

		// APIKey is the key of the primary provider.
		APIKey string `json:"api_key" env:"TRANSLATOR_API_KEY"`

		// BaseURL overrides the provider endpoint.
		BaseURL string `json:"base_url" env:"TRANSLATOR_BASE_URL"`

		// FallbackProviders are tried in order when the primary fails.
		FallbackProviders []string `json:"fallback_providers"`

		// TimeoutSeconds bounds each provider call.
		TimeoutSeconds int `json:"timeout_seconds" env:"TRANSLATOR_TIMEOUT_SECONDS" validate:"min:1"`

		// MaxRetries is the number of retries per provider.
		MaxRetries int `json:"max_retries" env:"TRANSLATOR_MAX_RETRIES"`

		// CacheCapacity is the number of cached translations.
		CacheCapacity int `json:"cache_capacity" env:"TRANSLATOR_CACHE_CAPACITY"`
	} `json:"translator"`

	// Detector configures language identification.
	Detector struct {
		// Provider names the detector; only "whatlang" is built in.
		Provider string `json:"provider" env:"DETECTOR_PROVIDER"`

		// MinConfidence is the confidence below which detection falls back
		// to the working language.
		MinConfidence float64 `json:"min_confidence" env:"DETECTOR_MIN_CONFIDENCE"`
	} `json:"detector"`

	// Summary contains summarization settings.
	Summary struct {
		// WorkingLanguage is the language the summarizer operates in.
		WorkingLanguage string `json:"working_language" env:"SUMMARY_WORKING_LANGUAGE" validate:"required"`

		// DefaultSize is the size category used when a request names none.
		// Empty keeps the 5 sentence default.
		DefaultSize string `json:"default_size" env:"SUMMARY_DEFAULT_SIZE"`

		// AnnotateImages appends the image annotation to documents that
		// contain image markers.
		AnnotateImages bool `json:"annotate_images" env:"SUMMARY_ANNOTATE_IMAGES"`
	} `json:"summary"`

	// Server configures the HTTP transport.
	Server struct {
		// HTTPAddr is the listen address of the HTTP API.
		HTTPAddr string `json:"http_addr" env:"SERVER_HTTP_ADDR"`

		// MaxUploadBytes bounds uploaded documents.
		MaxUploadBytes int64 `json:"max_upload_bytes" env:"SERVER_MAX_UPLOAD_BYTES"`
	} `json:"server"`

	// Watcher configures the inbox directory watcher.
	Watcher struct {
		// InboxDir is the directory watched for new documents.
		InboxDir string `json:"inbox_dir" env:"WATCHER_INBOX_DIR"`

		// OutputDir receives <name>.summary.txt files.
		OutputDir string `json:"output_dir" env:"WATCHER_OUTPUT_DIR"`

		// OwnerID owns the summaries the watcher stores.
		OwnerID string `json:"owner_id" env:"WATCHER_OWNER_ID"`

		// MaxConcurrent bounds the documents processed at once.
		MaxConcurrent int `json:"max_concurrent" env:"WATCHER_MAX_CONCURRENT"`
	} `json:"watcher"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`

	// Internal state (not saved to config file)
	configPath     string       `json:"-"`
	mutex          sync.RWMutex `json:"-"`
	lastModifiedAt time.Time    `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename     = ".polysumconfig"
	DefaultSQLitePath         = ".polysum.db"
	DefaultTranslator         = "google"
	DefaultTimeoutSeconds     = 30
	DefaultMaxRetries         = 2
	DefaultCacheCapacity      = 1000
	DefaultDetector           = "whatlang"
	DefaultMinConfidence      = 0.5
	DefaultWorkingLanguage    = "en"
	DefaultSize               = ""
	DefaultHTTPAddr           = ":8080"
	DefaultMaxUploadBytes     = 16 << 20
	DefaultWatcherOwner       = "watcher"
	DefaultWatcherConcurrency = 2
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
)

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	config := &Config{}
	config.Store.SQLitePath = DefaultSQLitePath
	config.Translator.Provider = DefaultTranslator
	config.Translator.TimeoutSeconds = DefaultTimeoutSeconds
	config.Translator.MaxRetries = DefaultMaxRetries
	config.Translator.CacheCapacity = DefaultCacheCapacity
	config.Detector.Provider = DefaultDetector
	config.Detector.MinConfidence = DefaultMinConfidence
	config.Summary.WorkingLanguage = DefaultWorkingLanguage
	config.Summary.DefaultSize = DefaultSize
	config.Summary.AnnotateImages = true
	config.Server.HTTPAddr = DefaultHTTPAddr
	config.Server.MaxUploadBytes = DefaultMaxUploadBytes
	config.Watcher.OwnerID = DefaultWatcherOwner
	config.Watcher.MaxConcurrent = DefaultWatcherConcurrency
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	return config
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename)
}

// LoadConfigWithPath loads the configuration from a specific path.
// A missing file is not an error: defaults and environment apply.
func LoadConfigWithPath(configPath string) (*Config, error) {
	// stdout belongs to the MCP stdio transport
	stdLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cfg := NewConfig()

	if configPath == "" {
		configPath = DefaultConfigFilename
	}
	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	loader := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider())

	if _, err := os.Stat(configPath); err == nil {
		stdLogger.Info("Loading configuration", "path", configPath)
		loader = loader.WithProvider(configurator.NewFileProvider(configPath))
	} else if os.IsNotExist(err) {
		stdLogger.Info("Config file not found, using default configuration", "path", configPath)
	} else {
		return nil, errortypes.ConfigError(err, "failed to stat configuration file").WithField("path", configPath)
	}

	loader = loader.
		WithProvider(configurator.NewEnvProvider("POLYSUM")).
		WithValidator(configurator.NewDefaultValidator())

	if err := loader.Load(context.Background(), cfg); err != nil {
		return nil, errortypes.ConfigError(err, "failed to load configuration").WithField("path", configPath)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.configPath = configPath
	cfg.lastModifiedAt = time.Now()

	return cfg, nil
}

// Validate checks the cross-field constraints the struct tags cannot express.
func (c *Config) Validate() error {
	var problems []error

	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		problems = append(problems, fmt.Errorf("detector.min_confidence must be within [0, 1], got %v", c.Detector.MinConfidence))
	}
	if c.Translator.MaxRetries < 0 {
		problems = append(problems, fmt.Errorf("translator.max_retries must not be negative"))
	}
	if c.Translator.TimeoutSeconds <= 0 {
		problems = append(problems, fmt.Errorf("translator.timeout_seconds must be positive"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		problems = append(problems, fmt.Errorf("server.max_upload_bytes must be positive"))
	}
	if c.Watcher.MaxConcurrent <= 0 {
		problems = append(problems, fmt.Errorf("watcher.max_concurrent must be positive"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errortypes.ConfigError(errors.Join(problems...), "invalid configuration")
	}
	return nil
}

// TranslatorTimeout returns the per-call translation timeout.
func (c *Config) TranslatorTimeout() time.Duration {
	return time.Duration(c.Translator.TimeoutSeconds) * time.Second
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	c.configPath = path
	c.lastModifiedAt = time.Now()

	return nil
}

// Save saves the configuration to the last used file path
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = DefaultConfigFilename
	}
	return c.SaveToFile(c.configPath)
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}
