package server

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"github.com/localrivet/gomcp/server"
	"github.com/localrivet/polysum/internal/errortypes"
	"github.com/localrivet/polysum/internal/extractor"
	"github.com/localrivet/polysum/internal/summaries"
	"github.com/localrivet/polysum/internal/summarystore"
	"github.com/localrivet/polysum/internal/tools"
)

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingDependencies  = errors.New("one or more required dependencies are nil")
)

// DefaultToolTimeout bounds one tool call, translation included.
const DefaultToolTimeout = 5 * time.Minute

// MCPSummaryToolServer implements the ToolServer interface for the
// summary tools.
type MCPSummaryToolServer struct {
	service   SummaryService
	logger    *slog.Logger
	timeout   time.Duration
	mcpServer server.Server
}

// NewSummaryToolServer creates a new MCPSummaryToolServer instance.
func NewSummaryToolServer(service SummaryService, logger *slog.Logger) *MCPSummaryToolServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &MCPSummaryToolServer{
		service: service,
		logger:  logger,
		timeout: DefaultToolTimeout,
	}
}

// Initialize initializes the server with dependencies and configurations.
func (s *MCPSummaryToolServer) Initialize() error {
	s.logger.Info("Initializing MCP Summary Tool Server")

	if s.service == nil {
		return errortypes.ConfigError(ErrMissingDependencies, "server initialization failed")
	}

	srv := server.NewServer("polysum")

	srv = srv.Tool(tools.ToolSummarizeText,
		"Summarize pasted text in its own language and store the summary",
		s.handleSummarizeText)

	srv = srv.Tool(tools.ToolSummarizeDocument,
		"Summarize a base64 encoded PDF, DOCX, ODT, HTML or text document and store the summary",
		s.handleSummarizeDocument)

	srv = srv.Tool(tools.ToolListSummaries,
		"List an owner's stored summaries, newest first",
		s.handleListSummaries)

	srv = srv.Tool(tools.ToolGetSummary,
		"Get one stored summary by id",
		s.handleGetSummary)

	srv = srv.Tool(tools.ToolTranslatorHealth,
		"Probe the translation providers and report their health",
		s.handleTranslatorHealth)

	s.mcpServer = srv
	s.logger.Info("MCP Summary Tool Server initialized successfully", "tool_count", 5)
	return nil
}

// Start starts the MCP server on the stdio transport.
func (s *MCPSummaryToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	s.logger.Info("Starting MCP Summary Tool Server")
	return s.mcpServer.AsStdio().Run()
}

// Stop gracefully shuts down the MCP server.
func (s *MCPSummaryToolServer) Stop() error {
	s.logger.Info("Stopping MCP Summary Tool Server")
	// The server will exit when stdin is closed
	return nil
}

func (s *MCPSummaryToolServer) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// handleSummarizeText handles the summarize_text MCP tool call.
func (s *MCPSummaryToolServer) handleSummarizeText(ctx *server.Context, req tools.SummarizeTextRequest) (tools.SummarizeResponse, error) {
	s.logger.Info("Processing summarize_text request", "text_length", len(req.Text), "size", req.Size)

	callCtx, cancel := s.callContext()
	defer cancel()

	out, err := s.service.SummarizeText(callCtx, req.OwnerID, req.Text, req.Size)
	if err != nil {
		errortypes.LogError(s.logger, err)
		return tools.SummarizeResponse{Status: tools.StatusError, Sentences: []string{}, Error: err.Error()}, nil
	}
	return summarizeResponse(out), nil
}

// handleSummarizeDocument handles the summarize_document MCP tool call.
func (s *MCPSummaryToolServer) handleSummarizeDocument(ctx *server.Context, req tools.SummarizeDocumentRequest) (tools.SummarizeResponse, error) {
	s.logger.Info("Processing summarize_document request", "filename", req.Filename, "size", req.Size)

	failed := func(err error) (tools.SummarizeResponse, error) {
		errortypes.LogError(s.logger, err)
		return tools.SummarizeResponse{Status: tools.StatusError, Sentences: []string{}, Error: err.Error()}, nil
	}

	data, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		return failed(errortypes.InvalidRequestError(err, "content must be base64 encoded").
			WithField("filename", req.Filename))
	}

	doc, err := documentFromRequest(req.Filename, req.Format, data)
	if err != nil {
		return failed(err)
	}

	callCtx, cancel := s.callContext()
	defer cancel()

	out, err := s.service.SummarizeDocument(callCtx, req.OwnerID, doc, req.Size)
	if err != nil {
		return failed(err)
	}
	return summarizeResponse(out), nil
}

// handleListSummaries handles the list_summaries MCP tool call.
func (s *MCPSummaryToolServer) handleListSummaries(ctx *server.Context, req tools.ListSummariesRequest) (tools.ListSummariesResponse, error) {
	s.logger.Info("Processing list_summaries request", "owner", req.OwnerID, "limit", req.Limit)

	limit := req.Limit
	if limit <= 0 {
		limit = tools.DefaultListLimit
		s.logger.Debug("Using default limit for list_summaries", "limit", limit)
	}

	records, err := s.service.History(req.OwnerID, limit)
	if err != nil {
		errortypes.LogError(s.logger, err)
		return tools.ListSummariesResponse{Status: tools.StatusError, Summaries: []tools.SummaryEntry{}, Error: err.Error()}, nil
	}

	entries := make([]tools.SummaryEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, summaryEntry(rec))
	}
	s.logger.Info("Successfully listed summaries", "count", len(entries))
	return tools.ListSummariesResponse{Status: tools.StatusSuccess, Summaries: entries}, nil
}

// handleGetSummary handles the get_summary MCP tool call.
func (s *MCPSummaryToolServer) handleGetSummary(ctx *server.Context, req tools.GetSummaryRequest) (tools.GetSummaryResponse, error) {
	s.logger.Info("Processing get_summary request", "id", req.ID)

	rec, err := s.service.Summary(req.ID, req.OwnerID)
	if err != nil {
		if !errors.Is(err, summarystore.ErrNotFound) {
			errortypes.LogError(s.logger, err)
		}
		return tools.GetSummaryResponse{Status: tools.StatusError, Error: err.Error()}, nil
	}

	entry := summaryEntry(rec)
	return tools.GetSummaryResponse{Status: tools.StatusSuccess, Summary: &entry}, nil
}

// handleTranslatorHealth handles the translator_health MCP tool call.
func (s *MCPSummaryToolServer) handleTranslatorHealth(ctx *server.Context, req tools.TranslatorHealthRequest) (tools.TranslatorHealthResponse, error) {
	s.logger.Info("Processing translator_health request")

	callCtx, cancel := s.callContext()
	defer cancel()

	report, err := s.service.TranslatorHealth(callCtx)
	if err != nil {
		errortypes.LogError(s.logger, err)
		return tools.TranslatorHealthResponse{Status: tools.StatusError, Error: err.Error()}, nil
	}

	return tools.TranslatorHealthResponse{
		Status:      tools.StatusSuccess,
		Health:      string(report.Status),
		Providers:   report.Providers,
		SuccessRate: report.SuccessRate,
	}, nil
}

// documentFromRequest builds a document from a file name and an optional
// explicit format.
func documentFromRequest(filename, format string, data []byte) (*extractor.Document, error) {
	if format == "" {
		doc, err := extractor.NewDocument(filename, data)
		if err != nil {
			return nil, errortypes.InvalidRequestError(err, "unsupported document")
		}
		return doc, nil
	}

	f, err := extractor.ParseFormat(format)
	if err != nil {
		return nil, errortypes.InvalidRequestError(err, "unsupported document format")
	}
	label := filename
	if label == "" {
		label = "document." + string(f)
	}
	return &extractor.Document{Data: data, Format: f, Label: label}, nil
}

func summarizeResponse(out *summaries.Outcome) tools.SummarizeResponse {
	degradations := make([]string, 0, len(out.Result.Degradations))
	for _, d := range out.Result.Degradations {
		degradations = append(degradations, string(d))
	}
	if len(degradations) == 0 {
		degradations = nil
	}

	sentences := out.Result.Sentences
	if sentences == nil {
		sentences = []string{}
	}

	return tools.SummarizeResponse{
		Status:         tools.StatusSuccess,
		ID:             out.Record.ID,
		RequestID:      out.Result.RequestID,
		Sentences:      sentences,
		SourceLanguage: out.Result.SourceLanguage,
		Translated:     out.Result.Translated,
		Degradations:   degradations,
	}
}

func summaryEntry(rec summarystore.Record) tools.SummaryEntry {
	return tools.SummaryEntry{
		ID:             rec.ID,
		SourceLabel:    rec.SourceLabel,
		SummaryText:    rec.SummaryText,
		SourceLanguage: rec.SourceLanguage,
		CreatedAt:      rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}
