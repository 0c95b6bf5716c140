// Package export renders stored summaries as downloadable files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/localrivet/polysum/internal/errortypes"
	"github.com/localrivet/polysum/internal/summarystore"
)

const (
	fontName  = "Times New Roman"
	fontSize  = 12
	titleSize = 16

	// MIMEText and MIMEDOCX are the content types of the rendered files.
	MIMEText = "text/plain; charset=utf-8"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Filename returns the attachment name for rec in the given format
// ("txt" or "docx").
func Filename(rec summarystore.Record, format string) string {
	return fmt.Sprintf("summary_%s.%s", rec.ID, format)
}

// Text renders the summary as plain text, one sentence per line.
func Text(rec summarystore.Record) []byte {
	text := rec.SummaryText
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return []byte(text)
}

// DOCX renders the summary as a Word document: a bold title naming the
// source followed by one paragraph per sentence.
func DOCX(rec summarystore.Record) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, errortypes.InternalError(err, "failed to create document")
	}

	addRun(doc.AddParagraph(""), title(rec), true, titleSize)
	for _, sentence := range Sentences(rec.SummaryText) {
		addRun(doc.AddParagraph(""), sentence, false, fontSize)
	}

	dir, err := os.MkdirTemp("", "polysum-export-*")
	if err != nil {
		return nil, errortypes.InternalError(err, "failed to create export directory")
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "summary.docx")
	if err := doc.SaveTo(path); err != nil {
		return nil, errortypes.InternalError(err, "failed to write document").WithField("id", rec.ID)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errortypes.InternalError(err, "failed to read document").WithField("id", rec.ID)
	}
	return data, nil
}

// Sentences splits stored summary text back into its sentences.
func Sentences(summaryText string) []string {
	var out []string
	for _, line := range strings.Split(summaryText, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func title(rec summarystore.Record) string {
	label := rec.SourceLabel
	if label == "" || label == summarystore.PastedTextLabel {
		label = "Pasted text"
	}
	return "Summary: " + label
}

func addRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size)
	if bold {
		run.Bold(true)
	}
}
