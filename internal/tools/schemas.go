// Package tools defines the request and response schemas of the polysum
// MCP tools.
package tools

const (
	// ToolSummarizeText is the name of the summarize_text MCP tool
	ToolSummarizeText = "summarize_text"

	// ToolSummarizeDocument is the name of the summarize_document MCP tool
	ToolSummarizeDocument = "summarize_document"

	// ToolListSummaries is the name of the list_summaries MCP tool
	ToolListSummaries = "list_summaries"

	// ToolGetSummary is the name of the get_summary MCP tool
	ToolGetSummary = "get_summary"

	// ToolTranslatorHealth is the name of the translator_health MCP tool
	ToolTranslatorHealth = "translator_health"

	// DefaultListLimit is the number of summaries list_summaries returns
	// when no limit is given.
	DefaultListLimit = 20

	// StatusSuccess and StatusError are the values of every response's
	// Status field.
	StatusSuccess = "success"
	StatusError   = "error"
)

// SummarizeTextRequest defines the input schema for summarize_text tool
type SummarizeTextRequest struct {
	// OwnerID identifies whose history the summary is stored in
	OwnerID string `json:"owner_id"`

	// Text is the pasted text to summarize
	Text string `json:"text"`

	// Size is the summary size category: short, medium or long
	Size string `json:"size,omitempty"`
}

// SummarizeDocumentRequest defines the input schema for summarize_document tool
type SummarizeDocumentRequest struct {
	// OwnerID identifies whose history the summary is stored in
	OwnerID string `json:"owner_id"`

	// Filename names the document; its extension selects the format
	Filename string `json:"filename"`

	// Content is the base64 encoded document
	Content string `json:"content"`

	// Format overrides the format derived from Filename
	Format string `json:"format,omitempty"`

	// Size is the summary size category: short, medium or long
	Size string `json:"size,omitempty"`
}

// SummarizeResponse defines the output schema for both summarize tools
type SummarizeResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// ID is the identifier of the stored summary
	ID string `json:"id,omitempty"`

	// RequestID identifies the pipeline run in logs
	RequestID string `json:"request_id,omitempty"`

	// Sentences are the summary sentences in document order
	Sentences []string `json:"sentences"`

	// SourceLanguage is the detected language of the input
	SourceLanguage string `json:"source_language,omitempty"`

	// Translated reports whether the input went through translation
	Translated bool `json:"translated"`

	// Degradations lists the stages that fell back
	Degradations []string `json:"degradations,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// ListSummariesRequest defines the input schema for list_summaries tool
type ListSummariesRequest struct {
	// OwnerID selects whose history to list
	OwnerID string `json:"owner_id"`

	// Limit is the maximum number of summaries to return
	// If not specified, DefaultListLimit will be used
	Limit int `json:"limit,omitempty"`
}

// SummaryEntry is one stored summary as returned by the tools
type SummaryEntry struct {
	ID             string `json:"id"`
	SourceLabel    string `json:"source_label"`
	SummaryText    string `json:"summary_text"`
	SourceLanguage string `json:"source_language,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// ListSummariesResponse defines the output schema for list_summaries tool
type ListSummariesResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Summaries are the owner's summaries, newest first
	Summaries []SummaryEntry `json:"summaries"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// GetSummaryRequest defines the input schema for get_summary tool
type GetSummaryRequest struct {
	// OwnerID is the owner of the summary
	OwnerID string `json:"owner_id"`

	// ID is the identifier of the summary
	ID string `json:"id"`
}

// GetSummaryResponse defines the output schema for get_summary tool
type GetSummaryResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Summary is the requested summary
	Summary *SummaryEntry `json:"summary,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// TranslatorHealthRequest defines the input schema for translator_health tool
type TranslatorHealthRequest struct{}

// TranslatorHealthResponse defines the output schema for translator_health tool
type TranslatorHealthResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Health is the overall provider health: healthy, degraded or unhealthy
	Health string `json:"health,omitempty"`

	// Providers maps each provider to whether it answered the probe
	Providers map[string]bool `json:"providers,omitempty"`

	// SuccessRate is the share of successful provider calls so far
	SuccessRate float64 `json:"success_rate"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}
