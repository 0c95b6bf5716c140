package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/localrivet/polysum/internal/errortypes"
	"github.com/tsawler/tabula"
)

var (
	// ErrNoDocument is returned when Extract is called without a document.
	ErrNoDocument = errors.New("no document provided")

	// ErrInvalidEncoding is returned for plain text that is not UTF-8.
	ErrInvalidEncoding = errors.New("plain text is not valid UTF-8")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options configures an Extractor.
type Options struct {
	// AnnotateImages enables the image-marker annotation step.
	AnnotateImages bool
	// TempDir is where binary payloads are spooled for tabula. Empty uses os.TempDir.
	TempDir string
	Logger  *slog.Logger
}

// Extractor converts documents to raw text.
type Extractor struct {
	annotateImages bool
	tempDir        string
	logger         *slog.Logger
}

// New creates an Extractor.
func New(opts Options) *Extractor {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Extractor{
		annotateImages: opts.AnnotateImages,
		tempDir:        opts.TempDir,
		logger:         opts.Logger,
	}
}

// Extract returns the text of doc. Any parse failure is an extraction
// error; callers decide whether to fall back to empty text.
func (e *Extractor) Extract(ctx context.Context, doc *Document) (string, error) {
	if doc == nil {
		return "", errortypes.InvalidRequestError(ErrNoDocument, "nothing to extract")
	}
	if err := ctx.Err(); err != nil {
		return "", errortypes.ExtractionError(err, "extraction canceled")
	}

	var (
		text string
		err  error
	)
	switch doc.Format {
	case FormatPlain:
		text, err = plainText(doc.Data)
	case FormatHTML:
		text, err = htmlText(doc.Data)
	case FormatPDF, FormatDOCX, FormatODT:
		text, err = e.tabulaText(doc)
	default:
		err = fmt.Errorf("unsupported format %q", doc.Format)
	}
	if err != nil {
		return "", errortypes.ExtractionError(err, "failed to extract document text").
			WithField("format", string(doc.Format)).
			WithField("label", doc.Label)
	}

	if e.annotateImages {
		text = AnnotateImages(text)
	}

	e.logger.Debug("Extracted document text",
		"format", doc.Format,
		"label", doc.Label,
		"bytes", len(doc.Data),
		"chars", len(text))

	return text, nil
}

// plainText decodes UTF-8, dropping a leading byte order mark.
func plainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", ErrInvalidEncoding
	}
	return string(data), nil
}

// tabulaText spools the payload to disk because tabula opens by file name
// and picks its reader from the extension.
func (e *Extractor) tabulaText(doc *Document) (string, error) {
	f, err := os.CreateTemp(e.tempDir, "polysum-*"+doc.Format.extension())
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.Write(doc.Data); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to spool document: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to spool document: %w", err)
	}

	text, warnings, err := tabula.Open(name).Text()
	if err != nil {
		return "", err
	}
	if len(warnings) > 0 {
		e.logger.Debug("Extraction produced warnings", "label", doc.Label, "warnings", len(warnings))
	}
	return text, nil
}
