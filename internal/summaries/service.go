// Package summaries runs the pipeline on behalf of an owner and keeps the
// results in the summary store. The MCP tools, the HTTP API and the
// inbox watcher all go through a Service.
package summaries

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/localrivet/polysum/internal/errortypes"
	"github.com/localrivet/polysum/internal/extractor"
	"github.com/localrivet/polysum/internal/pipeline"
	"github.com/localrivet/polysum/internal/summarystore"
	"github.com/localrivet/polysum/internal/translator"
)

// ErrMissingOwner is returned when a request carries no owner id.
var ErrMissingOwner = errors.New("owner id is required")

// Runner is the part of the pipeline a Service drives.
type Runner interface {
	Run(ctx context.Context, doc *extractor.Document, k int) (*pipeline.Result, error)
	RunText(ctx context.Context, text string, k int) (*pipeline.Result, error)
}

// Outcome is a produced summary together with its stored record.
type Outcome struct {
	Result *pipeline.Result
	Record summarystore.Record
}

// Options configures a Service.
type Options struct {
	Pipeline Runner
	Store    summarystore.Store
	// Translator is optional; without it TranslatorHealth reports an error.
	Translator *translator.Service
	// DefaultSize is the size category used when a request names none.
	// Empty leaves the request's size to SentencesForSize, which yields
	// the default length of 5.
	DefaultSize string
	Logger      *slog.Logger
}

// Service summarizes and records summaries per owner.
type Service struct {
	pipeline    Runner
	store       summarystore.Store
	translator  *translator.Service
	defaultSize string
	logger      *slog.Logger
}

// New creates a Service. Pipeline and Store are required.
func New(opts Options) (*Service, error) {
	if opts.Pipeline == nil || opts.Store == nil {
		return nil, errortypes.ConfigError(errors.New("pipeline and store are required"), "summary service initialization failed")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		pipeline:    opts.Pipeline,
		store:       opts.Store,
		translator:  opts.Translator,
		defaultSize: opts.DefaultSize,
		logger:      opts.Logger,
	}, nil
}

// SentenceCount resolves a size category. An empty size uses the
// configured default when one is set.
func (s *Service) SentenceCount(size string) int {
	if strings.TrimSpace(size) == "" && s.defaultSize != "" {
		size = s.defaultSize
	}
	return pipeline.SentencesForSize(size)
}

// SummarizeText summarizes pasted text and stores it under the
// "pasted_text" label.
func (s *Service) SummarizeText(ctx context.Context, ownerID, text, size string) (*Outcome, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}
	result, err := s.pipeline.RunText(ctx, text, s.SentenceCount(size))
	if err != nil {
		return nil, err
	}
	return s.record(ownerID, summarystore.PastedTextLabel, result)
}

// SummarizeDocument summarizes an uploaded document and stores it under
// its file name.
func (s *Service) SummarizeDocument(ctx context.Context, ownerID string, doc *extractor.Document, size string) (*Outcome, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errortypes.InvalidRequestError(pipeline.ErrNoInput, "a document is required")
	}

	result, err := s.pipeline.Run(ctx, doc, s.SentenceCount(size))
	if err != nil {
		return nil, err
	}
	return s.record(ownerID, doc.Label, result)
}

func (s *Service) record(ownerID, label string, result *pipeline.Result) (*Outcome, error) {
	rec := summarystore.Record{
		OwnerID:        ownerID,
		SourceLabel:    label,
		SummaryText:    result.Text(),
		SourceLanguage: result.SourceLanguage,
	}
	if err := s.store.Save(&rec); err != nil {
		errortypes.LogError(s.logger, err)
		return nil, err
	}

	s.logger.Info("Summary stored",
		"id", rec.ID,
		"owner", ownerID,
		"source", rec.SourceLabel,
		"request_id", result.RequestID)

	return &Outcome{Result: result, Record: rec}, nil
}

// History lists an owner's summaries, newest first.
func (s *Service) History(ownerID string, limit int) ([]summarystore.Record, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}
	return s.store.List(ownerID, limit)
}

// Summary returns one of an owner's summaries.
func (s *Service) Summary(id, ownerID string) (summarystore.Record, error) {
	if err := checkOwner(ownerID); err != nil {
		return summarystore.Record{}, err
	}
	if strings.TrimSpace(id) == "" {
		return summarystore.Record{}, errortypes.InvalidRequestError(errors.New("empty id"), "summary id is required")
	}
	return s.store.Get(id, ownerID)
}

// Delete removes one of an owner's summaries.
func (s *Service) Delete(id, ownerID string) error {
	if err := checkOwner(ownerID); err != nil {
		return err
	}
	return s.store.Delete(id, ownerID)
}

// TranslatorHealth probes the translation providers.
func (s *Service) TranslatorHealth(ctx context.Context) (*translator.HealthReport, error) {
	if s.translator == nil {
		return nil, errortypes.ConfigError(translator.ErrNoProvider, "translator health unavailable")
	}
	return translator.CreateHealthReport(ctx, s.translator)
}

func checkOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return errortypes.InvalidRequestError(ErrMissingOwner, "missing owner")
	}
	return nil
}
