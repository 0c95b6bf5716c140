// Package pipeline runs the document-to-summary flow: extract, normalize,
// detect, translate into the working language, summarize and translate
// each selected sentence back.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localrivet/polysum/internal/errortypes"
	"github.com/localrivet/polysum/internal/extractor"
	"github.com/localrivet/polysum/internal/language"
	"github.com/localrivet/polysum/internal/summarizer"
	"github.com/localrivet/polysum/internal/telemetry"
	"github.com/localrivet/polysum/internal/textnorm"
)

// Degradation marks a stage that fell back instead of failing.
type Degradation string

const (
	DegradationExtractionFailed   Degradation = "extraction_failed"
	DegradationDetectionDefaulted Degradation = "detection_defaulted"
	DegradationTranslationSkipped Degradation = "translation_skipped"
)

// ErrNoInput is returned when Run is called without a document.
var ErrNoInput = errors.New("no input provided")

// Extractor turns a document into raw text.
type Extractor interface {
	Extract(ctx context.Context, doc *extractor.Document) (string, error)
}

// LanguageBridge detects languages and translates with explicit results.
type LanguageBridge interface {
	WorkingLanguage() string
	Detect(text string) language.Detection
	TranslateFrom(ctx context.Context, text, source, target string) language.Translation
}

// Result is the outcome of one pipeline run.
type Result struct {
	RequestID string `json:"request_id"`
	// Sentences are in document order, in the source language when the
	// return translation succeeded.
	Sentences      []string      `json:"sentences"`
	SourceLanguage string        `json:"source_language"`
	Translated     bool          `json:"translated"`
	Degradations   []Degradation `json:"degradations,omitempty"`
}

// Text joins the summary sentences with newlines, the stored form.
func (r *Result) Text() string {
	return strings.Join(r.Sentences, "\n")
}

// Degraded reports whether d was recorded.
func (r *Result) Degraded(d Degradation) bool {
	for _, got := range r.Degradations {
		if got == d {
			return true
		}
	}
	return false
}

func (r *Result) degrade(d Degradation) {
	if !r.Degraded(d) {
		r.Degradations = append(r.Degradations, d)
	}
}

// Options configures a Pipeline.
type Options struct {
	Extractor  Extractor
	Bridge     LanguageBridge
	Summarizer summarizer.Summarizer
	Metrics    *telemetry.MetricsCollector
	Logger     *slog.Logger
}

// Pipeline composes the stages. It holds no per-run state and may be used
// from several goroutines.
type Pipeline struct {
	extractor  Extractor
	bridge     LanguageBridge
	summarizer summarizer.Summarizer
	metrics    *telemetry.MetricsCollector
	logger     *slog.Logger
}

// New creates a Pipeline. Missing stages get their defaults: an extractor
// with image annotation, a bridge without detector or translator and the
// Punkt frequency summarizer.
func New(opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Extractor == nil {
		opts.Extractor = extractor.New(extractor.Options{AnnotateImages: true, Logger: opts.Logger})
	}
	if opts.Bridge == nil {
		opts.Bridge = language.NewBridge(nil, nil, language.WorkingLanguage, opts.Logger)
	}
	if opts.Summarizer == nil {
		opts.Summarizer = summarizer.NewFrequencySummarizer(nil, opts.Logger)
	}
	if opts.Metrics == nil {
		opts.Metrics = telemetry.NewMetricsCollector()
	}
	return &Pipeline{
		extractor:  opts.Extractor,
		bridge:     opts.Bridge,
		summarizer: opts.Summarizer,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
}

// Metrics returns the collector the pipeline records into.
func (p *Pipeline) Metrics() *telemetry.MetricsCollector {
	return p.metrics
}

// Run summarizes a document into at most k sentences. Only an invalid k or
// a nil document is an error; every stage failure degrades instead.
func (p *Pipeline) Run(ctx context.Context, doc *extractor.Document, k int) (*Result, error) {
	if err := p.validate(k); err != nil {
		return nil, err
	}
	if doc == nil {
		p.metrics.IncrementCounter(telemetry.MetricPipelineRejected, 1)
		return nil, errortypes.InvalidRequestError(ErrNoInput, "a document is required")
	}

	result := newResult()
	raw, err := p.extractor.Extract(ctx, doc)
	if err != nil {
		errortypes.LogError(p.logger, err)
		raw = ""
		result.degrade(DegradationExtractionFailed)
		p.metrics.IncrementCounter(telemetry.MetricPipelineExtractionFailed, 1)
	}

	return p.summarize(ctx, raw, k, result)
}

// RunText summarizes pasted text into at most k sentences.
func (p *Pipeline) RunText(ctx context.Context, text string, k int) (*Result, error) {
	if err := p.validate(k); err != nil {
		return nil, err
	}
	return p.summarize(ctx, text, k, newResult())
}

func newResult() *Result {
	return &Result{RequestID: uuid.New().String(), Sentences: []string{}}
}

func (p *Pipeline) validate(k int) error {
	if k <= 0 {
		p.metrics.IncrementCounter(telemetry.MetricPipelineRejected, 1)
		return errortypes.InvalidRequestError(summarizer.ErrInvalidLength, fmt.Sprintf("invalid summary length %d", k))
	}
	return nil
}

func (p *Pipeline) summarize(ctx context.Context, raw string, k int, result *Result) (*Result, error) {
	start := time.Now()
	defer func() {
		p.metrics.RecordTimer(telemetry.MetricPipelineTotalTime, time.Since(start))
		p.metrics.RecordTimestamp(telemetry.MetricPipelineLastRun)
	}()
	p.metrics.IncrementCounter(telemetry.MetricPipelineRuns, 1)

	text := textnorm.Normalize(raw)
	working := p.bridge.WorkingLanguage()

	detection := p.bridge.Detect(text)
	result.SourceLanguage = detection.Lang
	if detection.Defaulted() && text != "" {
		result.degrade(DegradationDetectionDefaulted)
		p.metrics.IncrementCounter(telemetry.MetricPipelineDetectionDefaulted, 1)
	}

	foreign := !language.SameLanguage(detection.Lang, working)
	if foreign {
		inbound := p.bridge.TranslateFrom(ctx, text, detection.Lang, working)
		if inbound.Failed() {
			result.degrade(DegradationTranslationSkipped)
			p.metrics.IncrementCounter(telemetry.MetricPipelineTranslationSkipped, 1)
			// The text is still in the source language, so there is nothing to translate back.
			foreign = false
		} else {
			text = inbound.Text
			result.Translated = true
			p.metrics.IncrementCounter(telemetry.MetricPipelineTranslatedDocuments, 1)
		}
	}

	sentences, err := p.summarizer.Summarize(text, k)
	if err != nil {
		return nil, err
	}
	if sentences == nil {
		sentences = []string{}
	}

	if foreign {
		for i, sentence := range sentences {
			back := p.bridge.TranslateFrom(ctx, sentence, working, detection.Lang)
			if back.Failed() {
				result.degrade(DegradationTranslationSkipped)
			}
			sentences[i] = back.Text
		}
		if result.Degraded(DegradationTranslationSkipped) {
			p.metrics.IncrementCounter(telemetry.MetricPipelineTranslationSkipped, 1)
		}
	}

	result.Sentences = sentences
	p.logger.Info("Summary produced",
		"request_id", result.RequestID,
		"source_language", result.SourceLanguage,
		"translated", result.Translated,
		"sentences", len(sentences),
		"requested", k,
		"degradations", result.Degradations)

	return result, nil
}
