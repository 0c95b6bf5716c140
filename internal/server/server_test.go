package server

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/localrivet/polysum/internal/errortypes"
	"github.com/localrivet/polysum/internal/extractor"
	"github.com/localrivet/polysum/internal/pipeline"
	"github.com/localrivet/polysum/internal/summaries"
	"github.com/localrivet/polysum/internal/summarystore"
	"github.com/localrivet/polysum/internal/tools"
	"github.com/localrivet/polysum/internal/translator"
)

var testError = errors.New("test error")

// MockService implements SummaryService for testing
type MockService struct {
	Records      []summarystore.Record
	Sentences    []string
	Degradations []pipeline.Degradation
	Docs         []*extractor.Document
	Sizes        []string
	Texts        []string
	Health       *translator.HealthReport
	ReturnError  error
}

func (m *MockService) outcome(ownerID, label string) *summaries.Outcome {
	rec := summarystore.Record{
		ID:          "rec-" + label,
		OwnerID:     ownerID,
		SourceLabel: label,
		CreatedAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	result := &pipeline.Result{
		RequestID:      "req-1",
		Sentences:      m.Sentences,
		SourceLanguage: "fr",
		Translated:     true,
		Degradations:   m.Degradations,
	}
	rec.SummaryText = result.Text()
	m.Records = append(m.Records, rec)
	return &summaries.Outcome{Result: result, Record: rec}
}

func (m *MockService) SummarizeText(ctx context.Context, ownerID, text, size string) (*summaries.Outcome, error) {
	if m.ReturnError != nil {
		return nil, m.ReturnError
	}
	m.Sizes = append(m.Sizes, size)
	m.Texts = append(m.Texts, text)
	return m.outcome(ownerID, summarystore.PastedTextLabel), nil
}

func (m *MockService) SummarizeDocument(ctx context.Context, ownerID string, doc *extractor.Document, size string) (*summaries.Outcome, error) {
	if m.ReturnError != nil {
		return nil, m.ReturnError
	}
	m.Docs = append(m.Docs, doc)
	m.Sizes = append(m.Sizes, size)
	return m.outcome(ownerID, doc.Label), nil
}

func (m *MockService) History(ownerID string, limit int) ([]summarystore.Record, error) {
	if m.ReturnError != nil {
		return nil, m.ReturnError
	}
	var out []summarystore.Record
	for i := len(m.Records) - 1; i >= 0; i-- {
		if m.Records[i].OwnerID == ownerID {
			out = append(out, m.Records[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockService) Summary(id, ownerID string) (summarystore.Record, error) {
	if m.ReturnError != nil {
		return summarystore.Record{}, m.ReturnError
	}
	for _, rec := range m.Records {
		if rec.ID == id && rec.OwnerID == ownerID {
			return rec, nil
		}
	}
	return summarystore.Record{}, summarystore.ErrNotFound
}

func (m *MockService) Delete(id, ownerID string) error {
	if _, err := m.Summary(id, ownerID); err != nil {
		return err
	}
	kept := m.Records[:0]
	for _, rec := range m.Records {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	m.Records = kept
	return nil
}

func (m *MockService) TranslatorHealth(ctx context.Context) (*translator.HealthReport, error) {
	if m.ReturnError != nil {
		return nil, m.ReturnError
	}
	if m.Health == nil {
		return nil, errortypes.ConfigError(translator.ErrNoProvider, "translator health unavailable")
	}
	return m.Health, nil
}

func newToolServer(t *testing.T, svc *MockService) *MCPSummaryToolServer {
	t.Helper()
	srv := NewSummaryToolServer(svc, nil)
	if err := srv.Initialize(); err != nil {
		t.Fatalf("Failed to initialize server: %v", err)
	}
	return srv
}

// TestSummarizeText tests the summarize_text tool handler
func TestSummarizeText(t *testing.T) {
	svc := &MockService{Sentences: []string{"Les chats dorment.", "Les chiens jouent."}}
	srv := newToolServer(t, svc)

	response, err := srv.handleSummarizeText(nil, tools.SummarizeTextRequest{
		OwnerID: "alice",
		Text:    "Les chats dorment. Les chiens jouent.",
		Size:    "short",
	})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}

	if response.Status != tools.StatusSuccess {
		t.Errorf("Expected status 'success', got '%s'", response.Status)
	}
	if response.ID != "rec-pasted_text" {
		t.Errorf("Expected stored id, got '%s'", response.ID)
	}
	if len(response.Sentences) != 2 || response.SourceLanguage != "fr" || !response.Translated {
		t.Errorf("Unexpected response: %+v", response)
	}
	if svc.Sizes[0] != "short" {
		t.Errorf("Expected size 'short' to reach the service, got %q", svc.Sizes[0])
	}
}

// TestSummarizeDocument tests the summarize_document tool handler
func TestSummarizeDocument(t *testing.T) {
	svc := &MockService{
		Sentences:    []string{"Report sentence."},
		Degradations: []pipeline.Degradation{pipeline.DegradationTranslationSkipped},
	}
	srv := newToolServer(t, svc)

	response, err := srv.handleSummarizeDocument(nil, tools.SummarizeDocumentRequest{
		OwnerID:  "alice",
		Filename: "report.txt",
		Content:  base64.StdEncoding.EncodeToString([]byte("Report sentence.")),
	})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if response.Status != tools.StatusSuccess {
		t.Fatalf("Expected status 'success', got '%s' (%s)", response.Status, response.Error)
	}
	if len(svc.Docs) != 1 || svc.Docs[0].Format != extractor.FormatPlain || string(svc.Docs[0].Data) != "Report sentence." {
		t.Errorf("Unexpected document: %+v", svc.Docs)
	}
	if len(response.Degradations) != 1 || response.Degradations[0] != "translation_skipped" {
		t.Errorf("Expected the degradation to be reported, got %v", response.Degradations)
	}

	// An explicit format overrides the extension.
	response, _ = srv.handleSummarizeDocument(nil, tools.SummarizeDocumentRequest{
		OwnerID:  "alice",
		Filename: "page",
		Format:   "html",
		Content:  base64.StdEncoding.EncodeToString([]byte("<p>Hi.</p>")),
	})
	if response.Status != tools.StatusSuccess || svc.Docs[1].Format != extractor.FormatHTML {
		t.Errorf("Explicit format not honored: %+v", response)
	}
}

// TestSummarizeDocumentInvalid tests rejected document requests
func TestSummarizeDocumentInvalid(t *testing.T) {
	testCases := []struct {
		name string
		req  tools.SummarizeDocumentRequest
	}{
		{"bad base64", tools.SummarizeDocumentRequest{OwnerID: "alice", Filename: "a.txt", Content: "***"}},
		{"unsupported extension", tools.SummarizeDocumentRequest{OwnerID: "alice", Filename: "a.exe", Content: ""}},
		{"unknown format", tools.SummarizeDocumentRequest{OwnerID: "alice", Filename: "a", Format: "rtf", Content: ""}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &MockService{}
			srv := newToolServer(t, svc)

			response, err := srv.handleSummarizeDocument(nil, tc.req)
			if err != nil {
				t.Fatalf("Handler returned error: %v", err)
			}
			if response.Status != tools.StatusError || response.Error == "" {
				t.Errorf("Expected an error response, got %+v", response)
			}
			if len(svc.Docs) != 0 {
				t.Errorf("Service should not be called")
			}
		})
	}
}

// TestListAndGetSummaries tests the history tools
func TestListAndGetSummaries(t *testing.T) {
	svc := &MockService{Sentences: []string{"One."}}
	srv := newToolServer(t, svc)

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		if _, err := srv.handleSummarizeDocument(nil, tools.SummarizeDocumentRequest{
			OwnerID: "alice", Filename: name, Content: base64.StdEncoding.EncodeToString([]byte("One.")),
		}); err != nil {
			t.Fatalf("Handler returned error: %v", err)
		}
	}

	list, err := srv.handleListSummaries(nil, tools.ListSummariesRequest{OwnerID: "alice", Limit: 2})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if list.Status != tools.StatusSuccess || len(list.Summaries) != 2 {
		t.Fatalf("Unexpected list response: %+v", list)
	}
	if list.Summaries[0].SourceLabel != "c.txt" {
		t.Errorf("Expected newest first, got %s", list.Summaries[0].SourceLabel)
	}
	if list.Summaries[0].CreatedAt != "2026-03-01T09:00:00Z" {
		t.Errorf("Unexpected created_at %q", list.Summaries[0].CreatedAt)
	}

	got, _ := srv.handleGetSummary(nil, tools.GetSummaryRequest{OwnerID: "alice", ID: "rec-b.txt"})
	if got.Status != tools.StatusSuccess || got.Summary == nil || got.Summary.SummaryText != "One." {
		t.Errorf("Unexpected get response: %+v", got)
	}

	missing, _ := srv.handleGetSummary(nil, tools.GetSummaryRequest{OwnerID: "bob", ID: "rec-b.txt"})
	if missing.Status != tools.StatusError {
		t.Errorf("Expected error for another owner's summary, got %+v", missing)
	}
}

// TestTranslatorHealth tests the translator_health tool handler
func TestTranslatorHealth(t *testing.T) {
	svc := &MockService{Health: &translator.HealthReport{
		Status:      translator.StatusDegraded,
		Providers:   map[string]bool{"google": true, "libretranslate": false},
		SuccessRate: 0.5,
	}}
	srv := newToolServer(t, svc)

	response, err := srv.handleTranslatorHealth(nil, tools.TranslatorHealthRequest{})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if response.Status != tools.StatusSuccess || response.Health != "degraded" || !response.Providers["google"] {
		t.Errorf("Unexpected response: %+v", response)
	}

	svc.Health = nil
	response, _ = srv.handleTranslatorHealth(nil, tools.TranslatorHealthRequest{})
	if response.Status != tools.StatusError {
		t.Errorf("Expected error without a translator, got %+v", response)
	}
}

// TestErrorHandling tests that service failures become error responses
func TestErrorHandling(t *testing.T) {
	svc := &MockService{ReturnError: errortypes.InvalidRequestError(testError, "invalid summary length 0")}
	srv := newToolServer(t, svc)

	text, err := srv.handleSummarizeText(nil, tools.SummarizeTextRequest{OwnerID: "alice", Text: "x"})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if text.Status != tools.StatusError || text.Sentences == nil {
		t.Errorf("Expected error response with empty sentences, got %+v", text)
	}

	list, _ := srv.handleListSummaries(nil, tools.ListSummariesRequest{OwnerID: "alice"})
	if list.Status != tools.StatusError {
		t.Errorf("Expected error response, got %+v", list)
	}
}

// TestInitializeRequiresService tests server initialization without dependencies
func TestInitializeRequiresService(t *testing.T) {
	srv := NewSummaryToolServer(nil, nil)
	if err := srv.Initialize(); err == nil {
		t.Error("Expected initialization to fail without a service")
	}
	if err := srv.Start(); err == nil {
		t.Error("Expected Start to fail before Initialize")
	}
}
