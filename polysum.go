// Package polysum summarizes documents in their own language. Text is
// detected, translated into a working language, summarized by term
// frequency and translated back sentence by sentence. Summaries are stored
// per owner and served over MCP, HTTP and an inbox watcher.
package polysum

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/localrivet/polysum/internal/config"
	"github.com/localrivet/polysum/internal/errortypes"
	"github.com/localrivet/polysum/internal/extractor"
	"github.com/localrivet/polysum/internal/language"
	"github.com/localrivet/polysum/internal/pipeline"
	"github.com/localrivet/polysum/internal/server"
	"github.com/localrivet/polysum/internal/summaries"
	"github.com/localrivet/polysum/internal/summarizer"
	"github.com/localrivet/polysum/internal/summarystore"
	"github.com/localrivet/polysum/internal/telemetry"
	"github.com/localrivet/polysum/internal/translator"
	"github.com/localrivet/polysum/internal/translator/providers"
	"github.com/localrivet/polysum/internal/watcher"
)

// Config represents the configuration for the polysum service.
type Config = config.Config

// Outcome is a produced summary together with its stored record.
type Outcome = summaries.Outcome

// Record is one stored summary.
type Record = summarystore.Record

// Components are the wired parts of the service.
type Components struct {
	Store      *summarystore.SQLiteStore
	Translator *translator.Service
	Pipeline   *pipeline.Pipeline
	Summaries  *summaries.Service
	Metrics    *telemetry.MetricsCollector
}

// Close releases the store.
func (c *Components) Close() error {
	if c == nil || c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// Server represents the polysum service.
type Server struct {
	config     *config.Config
	components *Components
	toolServer server.ToolServer
	logger     *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
}

// ServerOptions defines the options for creating a new Server.
type ServerOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
}

// NewServer creates a new polysum Server with the given options.
// If opts.Config is provided, it will be used directly.
// Otherwise, if opts.ConfigPath is provided, configuration will be loaded from that path.
// If neither is provided, DefaultConfig() will be used.
func NewServer(opts ServerOptions) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Info("Using provided Config object for server initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for server initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			logger.Error("Failed to load configuration from path", "path", opts.ConfigPath, "error", err)
			return nil, errortypes.ConfigError(err, "Failed to load configuration from path: "+opts.ConfigPath)
		}
	} else {
		logger.Warn("No Config object or ConfigPath provided, using default configuration for server initialization")
		cfg = DefaultConfig()
	}

	components, err := CreateComponents(cfg, logger)
	if err != nil {
		logger.Error("Failed to create components during server initialization", "error", err)
		return nil, err
	}

	logger.Info("Initializing summary tool server component")
	toolServer := server.NewSummaryToolServer(components.Summaries, logger.With("component", "mcp"))
	if err := toolServer.Initialize(); err != nil {
		components.Close()
		logger.Error("Failed to initialize MCP summary tool server component", "error", err)
		return nil, errortypes.ConfigError(err, "Failed to initialize MCP summary tool server component")
	}

	logger.Info("polysum server successfully initialized")
	return &Server{
		config:     cfg,
		components: components,
		toolServer: toolServer,
		logger:     logger,
	}, nil
}

// DefaultConfig returns the default configuration for the polysum service.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// Start serves the MCP tools on stdio until stdin closes.
func (s *Server) Start() error {
	s.logger.Info("Starting polysum MCP service")
	return s.toolServer.Start()
}

// Handler returns the HTTP API.
func (s *Server) Handler() http.Handler {
	return server.NewHTTPHandler(s.components.Summaries, server.HTTPOptions{
		MaxUploadBytes: s.config.Server.MaxUploadBytes,
		Logger:         s.logger.With("component", "http"),
	})
}

// StartHTTP serves the HTTP API on the configured address until ctx is
// done or Stop is called.
func (s *Server) StartHTTP(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting polysum HTTP service", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// Watch summarizes documents dropped into the configured inbox until ctx
// is done.
func (s *Server) Watch(ctx context.Context) error {
	if s.config.Watcher.InboxDir == "" {
		return errortypes.ConfigError(errors.New("watcher.inbox_dir is empty"), "cannot start watcher")
	}

	w, err := watcher.New(s.components.Summaries, watcher.Options{
		InboxDir:      s.config.Watcher.InboxDir,
		OutputDir:     s.config.Watcher.OutputDir,
		OwnerID:       s.config.Watcher.OwnerID,
		Size:          s.config.Summary.DefaultSize,
		MaxConcurrent: s.config.Watcher.MaxConcurrent,
		Logger:        s.logger.With("component", "watcher"),
	})
	if err != nil {
		return errortypes.ConfigError(err, "cannot start watcher")
	}
	defer w.Stop()

	err = w.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop stops the polysum service.
func (s *Server) Stop() error {
	s.logger.Info("Stopping polysum service")
	if err := s.toolServer.Stop(); err != nil {
		s.logger.Error("Error stopping tool server", "error", err)
		return err
	}

	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()
	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("Error stopping HTTP server", "error", err)
		}
	}

	s.logger.Info("Closing store")
	if err := s.components.Close(); err != nil {
		s.logger.Error("Failed to close store", "error", err)
		return err
	}

	s.logger.Info("polysum service stopped")
	return nil
}

// SummarizeText summarizes pasted text for ownerID.
func (s *Server) SummarizeText(ctx context.Context, ownerID, text, size string) (*Outcome, error) {
	return s.components.Summaries.SummarizeText(ctx, ownerID, text, size)
}

// SummarizeFile summarizes the document at path for ownerID.
func (s *Server) SummarizeFile(ctx context.Context, ownerID, path, size string) (*Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errortypes.InvalidRequestError(err, "cannot read document").WithField("path", path)
	}
	doc, err := extractor.NewDocument(path, data)
	if err != nil {
		return nil, errortypes.InvalidRequestError(err, "unsupported document").WithField("path", path)
	}
	return s.components.Summaries.SummarizeDocument(ctx, ownerID, doc, size)
}

// History lists an owner's summaries, newest first.
func (s *Server) History(ownerID string, limit int) ([]Record, error) {
	return s.components.Summaries.History(ownerID, limit)
}

// GetComponents returns the wired components.
func (s *Server) GetComponents() *Components {
	return s.components
}

// GetMetricsReport returns the collected translation and pipeline metrics.
func (s *Server) GetMetricsReport() string {
	return s.components.Metrics.GetReport()
}

// CreateComponents creates and initializes the components of the polysum
// service without creating a server instance.
func CreateComponents(cfg *Config, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	metrics := telemetry.NewMetricsCollector()

	logger.Info("Initializing SQLite summary store", "path", cfg.Store.SQLitePath)
	store := summarystore.NewSQLiteStore()
	if err := store.Initialize(cfg.Store.SQLitePath); err != nil {
		logger.Error("Failed to initialize SQLite summary store", "path", cfg.Store.SQLitePath, "error", err)
		return nil, errortypes.DatabaseError(err, "Failed to initialize SQLite summary store")
	}

	fail := func(err error) (*Components, error) {
		store.Close()
		return nil, err
	}

	logger.Info("Initializing translator", "provider", cfg.Translator.Provider, "fallbacks", cfg.Translator.FallbackProviders)
	translatorSvc := translator.NewService(&translator.Config{
		ProviderName:      cfg.Translator.Provider,
		ModelID:           cfg.Translator.ModelID,
		APIKey:            firstNonEmpty(cfg.Translator.APIKey, ProviderAPIKey(cfg.Translator.Provider)),
		BaseURL:           cfg.Translator.BaseURL,
		Timeout:           cfg.TranslatorTimeout(),
		MaxRetries:        cfg.Translator.MaxRetries,
		CacheCapacity:     cfg.Translator.CacheCapacity,
		FallbackProviders: fallbackConfigs(cfg.Translator.FallbackProviders),
		Logger:            logger.With("component", "translator"),
		Metrics:           metrics,
	})
	if err := translatorSvc.Initialize(); err != nil {
		logger.Error("Failed to initialize translator", "error", err)
		return fail(err)
	}

	var detector language.Detector
	switch strings.ToLower(cfg.Detector.Provider) {
	case "whatlang", "":
		detector = language.NewWhatlangDetector(cfg.Detector.MinConfidence)
	default:
		return fail(errortypes.ConfigError(fmt.Errorf("unknown detector %q", cfg.Detector.Provider), "Failed to initialize detector"))
	}

	sum := summarizer.NewFrequencySummarizer(nil, logger.With("component", "summarizer"))
	if err := sum.Initialize(); err != nil {
		logger.Error("Failed to initialize summarizer", "error", err)
		return fail(errortypes.ConfigError(err, "Failed to initialize summarizer"))
	}

	pl := pipeline.New(pipeline.Options{
		Extractor: extractor.New(extractor.Options{
			AnnotateImages: cfg.Summary.AnnotateImages,
			Logger:         logger.With("component", "extractor"),
		}),
		Bridge:     language.NewBridge(detector, translatorSvc, cfg.Summary.WorkingLanguage, logger.With("component", "language")),
		Summarizer: sum,
		Metrics:    metrics,
		Logger:     logger.With("component", "pipeline"),
	})

	svc, err := summaries.New(summaries.Options{
		Pipeline:    pl,
		Store:       store,
		Translator:  translatorSvc,
		DefaultSize: cfg.Summary.DefaultSize,
		Logger:      logger.With("component", "summaries"),
	})
	if err != nil {
		return fail(err)
	}

	logger.Info("Components successfully initialized")
	return &Components{
		Store:      store,
		Translator: translatorSvc,
		Pipeline:   pl,
		Summaries:  svc,
		Metrics:    metrics,
	}, nil
}

// providerKeyEnv lists the conventional API key variables per provider.
var providerKeyEnv = map[string]string{
	providers.ProviderGemini:    "GEMINI_API_KEY",
	providers.ProviderOpenAI:    "OPENAI_API_KEY",
	providers.ProviderAnthropic: "ANTHROPIC_API_KEY",
	providers.ProviderXAI:       "XAI_API_KEY",
	providers.ProviderLibre:     "LIBRETRANSLATE_API_KEY",
}

// ProviderAPIKey looks up a provider's API key in the environment, first
// as POLYSUM_<PROVIDER>_API_KEY and then under its conventional name.
func ProviderAPIKey(provider string) string {
	name := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(provider))
	if key := os.Getenv("POLYSUM_" + name + "_API_KEY"); key != "" {
		return key
	}
	if env, ok := providerKeyEnv[provider]; ok {
		return os.Getenv(env)
	}
	return ""
}

func fallbackConfigs(names []string) []translator.FallbackConfig {
	out := make([]translator.FallbackConfig, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, translator.FallbackConfig{Name: name, APIKey: ProviderAPIKey(name)})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
