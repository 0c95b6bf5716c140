package extractor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gomutex/godocx"
	"github.com/localrivet/polysum/internal/errortypes"
)

func TestExtract_Plain(t *testing.T) {
	e := New(Options{})

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "utf8", data: []byte("Bonjour le monde.\nÇa va?"), want: "Bonjour le monde.\nÇa va?"},
		{name: "bom stripped", data: append([]byte{0xEF, 0xBB, 0xBF}, "Hello."...), want: "Hello."},
		{name: "empty", data: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Extract(context.Background(), &Document{Data: tt.data, Format: FormatPlain})
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract_Failures(t *testing.T) {
	e := New(Options{TempDir: t.TempDir()})

	tests := []struct {
		name string
		doc  *Document
	}{
		{name: "invalid utf8", doc: &Document{Data: []byte{0xff, 0xfe, 0xfd}, Format: FormatPlain}},
		{name: "corrupt pdf", doc: &Document{Data: []byte("not a pdf at all"), Format: FormatPDF, Label: "broken.pdf"}},
		{name: "corrupt docx", doc: &Document{Data: []byte("PK but not really"), Format: FormatDOCX}},
		{name: "corrupt odt", doc: &Document{Data: []byte{0, 1, 2, 3}, Format: FormatODT}},
		{name: "unknown format", doc: &Document{Data: []byte("x"), Format: Format("rtf")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Extract(context.Background(), tt.doc)
			if !errortypes.IsType(err, errortypes.ErrorTypeExtraction) {
				t.Errorf("Extract() error = %v, want extraction error", err)
			}
		})
	}
}

func TestExtract_NilDocument(t *testing.T) {
	_, err := New(Options{}).Extract(context.Background(), nil)
	if !errortypes.IsInvalidRequest(err) {
		t.Errorf("Extract(nil) error = %v, want invalid request", err)
	}
}

func TestExtract_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{}).Extract(ctx, &Document{Data: []byte("text"), Format: FormatPlain})
	if !errortypes.IsType(err, errortypes.ErrorTypeExtraction) {
		t.Errorf("Extract() error = %v, want extraction error", err)
	}
}

func TestExtract_HTML(t *testing.T) {
	page := `<!DOCTYPE html><html><head><title>Ignored</title><style>p{color:red}</style></head>
<body><h1>Report</h1><p>First <b>bold</b> point.</p><script>var x = 1;</script><ul><li>Item one.</li><li>Item two.</li></ul></body></html>`

	got, err := New(Options{}).Extract(context.Background(), &Document{Data: []byte(page), Format: FormatHTML})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	for _, want := range []string{"Report", "First bold point.", "Item one.", "Item two."} {
		if !strings.Contains(got, want) {
			t.Errorf("Extract() = %q, missing %q", got, want)
		}
	}
	for _, unwanted := range []string{"Ignored", "color:red", "var x", "<title>"} {
		if strings.Contains(got, unwanted) {
			t.Errorf("Extract() = %q, should not contain %q", got, unwanted)
		}
	}
	if !strings.Contains(got, "Report\n") {
		t.Errorf("block elements should end a line: %q", got)
	}
}

// writeDOCX builds a Word document with one paragraph per entry.
func writeDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	doc, err := godocx.NewDocument()
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	for _, text := range paragraphs {
		doc.AddParagraph("").AddText(text)
	}

	path := filepath.Join(t.TempDir(), "notes.docx")
	if err := doc.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return data
}

func TestExtract_DOCX(t *testing.T) {
	data := writeDOCX(t, "Quarterly notes", "First paragraph here.", "Second one [image] here.")

	doc, err := NewDocument("notes.docx", data)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	if doc.Format != FormatDOCX {
		t.Fatalf("Format = %q, want docx", doc.Format)
	}

	got, err := New(Options{AnnotateImages: true}).Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	body, ok := strings.CutSuffix(got, "\n"+ImageAnnotation)
	if !ok {
		t.Fatalf("Extract() = %q, want the image annotation on its own last line", got)
	}
	want := "Quarterly notes\nFirst paragraph here.\nSecond one [image] here."
	if strings.TrimSpace(body) != want {
		t.Errorf("paragraphs = %q, want %q", strings.TrimSpace(body), want)
	}

	plain, err := New(Options{}).Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if strings.Contains(plain, ImageAnnotation) {
		t.Errorf("annotation added while disabled: %q", plain)
	}
}

func TestExtract_ImageAnnotationToggle(t *testing.T) {
	doc := &Document{Data: []byte("See the flow [image] above."), Format: FormatPlain}

	on, err := New(Options{AnnotateImages: true}).Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if want := "See the flow [image] above.\n" + ImageAnnotation; on != want {
		t.Errorf("annotated = %q, want %q", on, want)
	}

	off, err := New(Options{AnnotateImages: false}).Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if off != "See the flow [image] above." {
		t.Errorf("disabled annotation changed text: %q", off)
	}
}

func TestAnnotateImages(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"[IMAGE]", true},
		{"Figure [Image] here", true},
		{"an [iMaGe] marker", true},
		{"an image without brackets", false},
		{"[IMAGES] is not the marker", false},
		{"", false},
	}
	for _, tt := range tests {
		got := AnnotateImages(tt.in)
		if annotated := strings.HasSuffix(got, "\n"+ImageAnnotation); annotated != tt.want {
			t.Errorf("AnnotateImages(%q) annotated = %v, want %v", tt.in, annotated, tt.want)
		}
	}
}

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		name   string
		want   Format
		wantOK bool
	}{
		{"notes.txt", FormatPlain, true},
		{"README.md", FormatPlain, true},
		{"Paper.PDF", FormatPDF, true},
		{"letter.docx", FormatDOCX, true},
		{"sheet.odt", FormatODT, true},
		{"index.htm", FormatHTML, true},
		{"archive.zip", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		got, ok := FormatFromFilename(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("FormatFromFilename(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for tag, want := range map[string]Format{"plain": FormatPlain, "TXT": FormatPlain, "pdf": FormatPDF, "word": FormatDOCX, " html ": FormatHTML} {
		got, err := ParseFormat(tag)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tag, got, err, want)
		}
	}
	if _, err := ParseFormat("rtf"); !errortypes.IsValidationError(err) {
		t.Errorf("ParseFormat(rtf) error = %v, want validation error", err)
	}
}

func TestNewDocument(t *testing.T) {
	doc, err := NewDocument("/tmp/inbox/report.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	if doc.Format != FormatPDF || doc.Label != "report.pdf" {
		t.Errorf("NewDocument() = %+v", doc)
	}
	if _, err := NewDocument("photo.png", nil); !errortypes.IsValidationError(err) {
		t.Errorf("NewDocument(png) error = %v, want validation error", err)
	}
}
