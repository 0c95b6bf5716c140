// Package extractor turns raw documents into flat text for the
// summarization pipeline.
package extractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/localrivet/polysum/internal/errortypes"
)

// Format identifies how a document payload is encoded.
type Format string

// Supported formats
const (
	FormatPlain Format = "plain"
	FormatPDF   Format = "pdf"
	FormatDOCX  Format = "docx"
	FormatODT   Format = "odt"
	FormatHTML  Format = "html"
)

// Document is an immutable raw input.
type Document struct {
	Data   []byte
	Format Format
	// Label is the name the document is stored under, usually its file name.
	Label string
}

// extensionFormats maps lower-cased file extensions to formats.
var extensionFormats = map[string]Format{
	".txt":  FormatPlain,
	".text": FormatPlain,
	".md":   FormatPlain,
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".odt":  FormatODT,
	".html": FormatHTML,
	".htm":  FormatHTML,
}

// FormatFromFilename derives the format from a file name extension.
func FormatFromFilename(name string) (Format, bool) {
	f, ok := extensionFormats[strings.ToLower(filepath.Ext(name))]
	return f, ok
}

// ParseFormat validates a format tag.
func ParseFormat(tag string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(tag))); f {
	case FormatPlain, FormatPDF, FormatDOCX, FormatODT, FormatHTML:
		return f, nil
	case "txt", "text":
		return FormatPlain, nil
	case "word":
		return FormatDOCX, nil
	default:
		return "", errortypes.ValidationError(fmt.Errorf("unknown format %q", tag), "unsupported document format")
	}
}

// NewDocument builds a document from a file name and its contents.
func NewDocument(name string, data []byte) (*Document, error) {
	f, ok := FormatFromFilename(name)
	if !ok {
		return nil, errortypes.ValidationError(
			fmt.Errorf("unsupported extension %q", filepath.Ext(name)),
			"unsupported document format").WithField("filename", name)
	}
	return &Document{Data: data, Format: f, Label: filepath.Base(name)}, nil
}

// extension returns the file extension tabula uses to pick a reader.
func (f Format) extension() string {
	switch f {
	case FormatPDF:
		return ".pdf"
	case FormatDOCX:
		return ".docx"
	case FormatODT:
		return ".odt"
	case FormatHTML:
		return ".html"
	default:
		return ".txt"
	}
}
