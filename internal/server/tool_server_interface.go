// Package server exposes polysum over MCP and HTTP.
package server

import (
	"context"

	"github.com/localrivet/polysum/internal/extractor"
	"github.com/localrivet/polysum/internal/summaries"
	"github.com/localrivet/polysum/internal/summarystore"
	"github.com/localrivet/polysum/internal/translator"
)

// ToolServer defines the interface for the MCP server that handles
// summary tool calls from MCP clients.
type ToolServer interface {
	// Initialize registers the tools.
	Initialize() error

	// Start serves the tools on the stdio transport until stdin closes.
	Start() error

	// Stop gracefully shuts down the MCP server.
	Stop() error
}

// SummaryService is what the transports need from the application.
// *summaries.Service implements it.
type SummaryService interface {
	SummarizeText(ctx context.Context, ownerID, text, size string) (*summaries.Outcome, error)
	SummarizeDocument(ctx context.Context, ownerID string, doc *extractor.Document, size string) (*summaries.Outcome, error)
	History(ownerID string, limit int) ([]summarystore.Record, error)
	Summary(id, ownerID string) (summarystore.Record, error)
	Delete(id, ownerID string) error
	TranslatorHealth(ctx context.Context) (*translator.HealthReport, error)
}
