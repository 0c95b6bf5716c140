package summaries

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/localrivet/polysum/internal/errortypes"
	"github.com/localrivet/polysum/internal/extractor"
	"github.com/localrivet/polysum/internal/pipeline"
	"github.com/localrivet/polysum/internal/summarystore"
)

// fakeRunner records the requested lengths and returns canned sentences.
type fakeRunner struct {
	lengths []int
	docs    []*extractor.Document
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, doc *extractor.Document, k int) (*pipeline.Result, error) {
	f.docs = append(f.docs, doc)
	return f.RunText(ctx, "", k)
}

func (f *fakeRunner) RunText(ctx context.Context, text string, k int) (*pipeline.Result, error) {
	f.lengths = append(f.lengths, k)
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.Result{
		RequestID:      "req-1",
		Sentences:      []string{"Les chats dorment.", "Les chiens jouent."},
		SourceLanguage: "fr",
		Translated:     true,
	}, nil
}

func newTestService(t *testing.T, runner Runner) (*Service, *summarystore.SQLiteStore) {
	t.Helper()
	store := summarystore.NewSQLiteStore()
	if err := store.Initialize(filepath.Join(t.TempDir(), "polysum.db")); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc, err := New(Options{Pipeline: runner, Store: store})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, store
}

func TestSummarizeTextStoresPastedText(t *testing.T) {
	runner := &fakeRunner{}
	svc, _ := newTestService(t, runner)

	out, err := svc.SummarizeText(context.Background(), "alice", "Les chats dorment. Les chiens jouent.", pipeline.SizeShort)
	if err != nil {
		t.Fatalf("SummarizeText: %v", err)
	}
	if runner.lengths[0] != 4 {
		t.Errorf("requested %d sentences, want 4", runner.lengths[0])
	}
	if out.Record.SourceLabel != summarystore.PastedTextLabel {
		t.Errorf("SourceLabel = %q", out.Record.SourceLabel)
	}
	if out.Record.SummaryText != "Les chats dorment.\nLes chiens jouent." {
		t.Errorf("SummaryText = %q", out.Record.SummaryText)
	}

	got, err := svc.Summary(out.Record.ID, "alice")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if got.SourceLanguage != "fr" {
		t.Errorf("SourceLanguage = %q, want fr", got.SourceLanguage)
	}
}

func TestSummarizeDocumentUsesFileName(t *testing.T) {
	runner := &fakeRunner{}
	svc, _ := newTestService(t, runner)

	doc, err := extractor.NewDocument("/uploads/report.txt", []byte("text"))
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	out, err := svc.SummarizeDocument(context.Background(), "alice", doc, "")
	if err != nil {
		t.Fatalf("SummarizeDocument: %v", err)
	}
	if out.Record.SourceLabel != "report.txt" {
		t.Errorf("SourceLabel = %q, want report.txt", out.Record.SourceLabel)
	}
	if runner.lengths[0] != 5 {
		t.Errorf("empty size requested %d sentences, want 5", runner.lengths[0])
	}
}

func TestSentenceCount(t *testing.T) {
	store := summarystore.NewSQLiteStore()
	tests := []struct {
		name        string
		defaultSize string
		size        string
		want        int
	}{
		{"empty size without default", "", "", 5},
		{"blank size without default", "", "  ", 5},
		{"unknown size", "", "bogus", 5},
		{"short", "", "short", 4},
		{"medium", "", "medium", 7},
		{"long", "", "long", 9},
		{"empty size with configured default", "long", "", 9},
		{"explicit size wins over default", "long", "short", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := New(Options{Pipeline: &fakeRunner{}, Store: store, DefaultSize: tt.defaultSize})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := svc.SentenceCount(tt.size); got != tt.want {
				t.Errorf("SentenceCount(%q) = %d, want %d", tt.size, got, tt.want)
			}
		})
	}
}

func TestSummarizeTextEmptySizeUsesFive(t *testing.T) {
	runner := &fakeRunner{}
	svc, _ := newTestService(t, runner)

	if _, err := svc.SummarizeText(context.Background(), "alice", "text", ""); err != nil {
		t.Fatalf("SummarizeText: %v", err)
	}
	if _, err := svc.SummarizeText(context.Background(), "alice", "text", "bogus"); err != nil {
		t.Fatalf("SummarizeText: %v", err)
	}
	if runner.lengths[0] != 5 || runner.lengths[1] != 5 {
		t.Errorf("requested lengths = %v, want [5 5]", runner.lengths)
	}
}

func TestHistoryIsOwnerScoped(t *testing.T) {
	svc, _ := newTestService(t, &fakeRunner{})
	ctx := context.Background()

	for _, owner := range []string{"alice", "alice", "bob"} {
		if _, err := svc.SummarizeText(ctx, owner, "text", ""); err != nil {
			t.Fatalf("SummarizeText: %v", err)
		}
	}

	history, err := svc.History("alice", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("alice has %d summaries, want 2", len(history))
	}

	if _, err := svc.Summary(history[0].ID, "bob"); !errors.Is(err, summarystore.ErrNotFound) {
		t.Errorf("bob reading alice's summary err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(history[0].ID, "alice"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestInvalidRequests(t *testing.T) {
	svc, _ := newTestService(t, &fakeRunner{})
	ctx := context.Background()

	if _, err := svc.SummarizeText(ctx, "", "text", ""); !errortypes.IsInvalidRequest(err) {
		t.Errorf("missing owner err = %v, want invalid request", err)
	}
	if _, err := svc.SummarizeDocument(ctx, "alice", nil, ""); !errortypes.IsInvalidRequest(err) {
		t.Errorf("nil document err = %v, want invalid request", err)
	}
	if _, err := svc.History(" ", 10); !errortypes.IsInvalidRequest(err) {
		t.Errorf("blank owner history err = %v, want invalid request", err)
	}
	if _, err := svc.Summary("", "alice"); !errortypes.IsInvalidRequest(err) {
		t.Errorf("empty id err = %v, want invalid request", err)
	}
}

func TestPipelineErrorIsNotStored(t *testing.T) {
	runner := &fakeRunner{err: errortypes.InvalidRequestError(errors.New("k=0"), "invalid")}
	svc, store := newTestService(t, runner)

	if _, err := svc.SummarizeText(context.Background(), "alice", "text", ""); err == nil {
		t.Fatal("expected the pipeline error")
	}
	records, _ := store.List("alice", 0)
	if len(records) != 0 {
		t.Errorf("stored %d records after a failed run", len(records))
	}
}

func TestTranslatorHealthWithoutTranslator(t *testing.T) {
	svc, _ := newTestService(t, &fakeRunner{})
	if _, err := svc.TranslatorHealth(context.Background()); err == nil {
		t.Error("expected an error without a translator")
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("New without dependencies should fail")
	}
}
