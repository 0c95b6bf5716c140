// Package watcher summarizes documents dropped into an inbox directory.
package watcher

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

	"github.com/fsnotify/fsnotify"
	"github.com/localrivet/polysum/internal/extractor"
	"github.com/localrivet/polysum/internal/summaries"
)

// SummarySuffix is appended to a document's name to form its summary file.
const SummarySuffix = ".summary.txt"

// Defaults for Options.
const (
	DefaultMaxConcurrent = 2
	DefaultSettleDelay   = 500 * time.Millisecond
)

// DocumentSummarizer summarizes a document for an owner.
type DocumentSummarizer interface {
	SummarizeDocument(ctx context.Context, ownerID string, doc *extractor.Document, size string) (*summaries.Outcome, error)
}

// Options configures a Watcher.
type Options struct {
	InboxDir string
	// OutputDir receives summary files; it defaults to InboxDir.
	OutputDir     string
	OwnerID       string
	Size          string
	MaxConcurrent int
	// SettleDelay is waited after a create event so the writer can finish.
	SettleDelay time.Duration
	Logger      *slog.Logger
}

// Watcher watches InboxDir and summarizes every supported document that
// appears in it, at most MaxConcurrent at a time.
type Watcher struct {
	opts       Options
	summarizer DocumentSummarizer
	watcher    *fsnotify.Watcher
	semaphore  chan struct{}
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// New creates a Watcher on opts.InboxDir.
func New(summarizer DocumentSummarizer, opts Options) (*Watcher, error) {
	if summarizer == nil {
		return nil, errors.New("watcher needs a summarizer")
	}
	if opts.InboxDir == "" {
		return nil, errors.New("watcher needs an inbox directory")
	}
	if opts.OutputDir == "" {
		opts.OutputDir = opts.InboxDir
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(opts.InboxDir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	return &Watcher{
		opts:       opts,
		summarizer: summarizer,
		watcher:    fw,
		semaphore:  make(chan struct{}, opts.MaxConcurrent),
		logger:     opts.Logger.With("inbox", opts.InboxDir),
	}, nil
}

// Start processes inbox events until ctx is done, then waits for the
// documents in flight.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("Inbox watcher started", "max_concurrent", w.opts.MaxConcurrent, "output", w.opts.OutputDir)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Waiting for documents in flight")
			w.wg.Wait()
			w.logger.Info("Inbox watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !Accepts(event.Name) {
				w.logger.Debug("Ignoring file", "path", event.Name)
				continue
			}

			w.logger.Info("New document detected", "path", event.Name)
			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(path string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()

					if !sleepCtx(ctx, w.opts.SettleDelay) {
						return
					}
					if err := w.ProcessFile(ctx, path); err != nil {
						w.logger.Error("Failed to summarize document", "path", path, "error", err)
					}
				}(event.Name)
			case <-ctx.Done():
				w.wg.Wait()
				return ctx.Err()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("Watcher error", "error", err)
		}
	}
}

// Stop closes the file watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// ProcessFile summarizes one document and writes its summary file next to
// the others in OutputDir.
func (w *Watcher) ProcessFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := extractor.NewDocument(path, data)
	if err != nil {
		return err
	}

	out, err := w.summarizer.SummarizeDocument(ctx, w.opts.OwnerID, doc, w.opts.Size)
	if err != nil {
		return err
	}

	target := SummaryPath(w.opts.OutputDir, path)
	text := out.Record.SummaryText
	if text != "" {
		text += "\n"
	}
	if err := os.WriteFile(target, []byte(text), 0644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}

	w.logger.Info("Document summarized",
		"path", path,
		"summary", target,
		"id", out.Record.ID,
		"source_language", out.Result.SourceLanguage,
		"degradations", out.Result.Degradations)
	return nil
}

// SummaryPath is where the summary of document is written in outputDir.
func SummaryPath(outputDir, document string) string {
	return filepath.Join(outputDir, filepath.Base(document)+SummarySuffix)
}

// Accepts reports whether path is a document the watcher summarizes.
// Summary files and hidden or temporary files are skipped.
func Accepts(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, SummarySuffix) {
		return false
	}
	_, ok := extractor.FormatFromFilename(base)
	return ok
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
