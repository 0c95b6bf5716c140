package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/localrivet/polysum/internal/errortypes"
	"github.com/localrivet/polysum/internal/export"
	"github.com/localrivet/polysum/internal/extractor"
	"github.com/localrivet/polysum/internal/summaries"
	"github.com/localrivet/polysum/internal/tools"
)

// OwnerHeader carries the id of the user a request acts for.
const OwnerHeader = "X-Owner-ID"

// DefaultMaxUploadBytes bounds request bodies when HTTPOptions leaves it unset.
const DefaultMaxUploadBytes = 16 << 20

// ErrMissingInput is returned when a summarize request has neither a file nor text.
var ErrMissingInput = errors.New("a file or text is required")

// HTTPOptions configures the HTTP API.
type HTTPOptions struct {
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// HTTPHandler serves the summary API:
//
//	POST   /api/summarize
//	GET    /api/history
//	GET    /api/history/{id}
//	DELETE /api/history/{id}
//	GET    /api/history/{id}/download?format=txt|docx
//	GET    /api/health/translator
type HTTPHandler struct {
	service   SummaryService
	maxUpload int64
	logger    *slog.Logger
	mux       *http.ServeMux
}

// NewHTTPHandler creates the HTTP API over service.
func NewHTTPHandler(service SummaryService, opts HTTPOptions) *HTTPHandler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	h := &HTTPHandler{
		service:   service,
		maxUpload: opts.MaxUploadBytes,
		logger:    opts.Logger,
		mux:       http.NewServeMux(),
	}

	h.mux.HandleFunc("POST /api/summarize", h.withOwner(h.handleSummarize))
	h.mux.HandleFunc("GET /api/history", h.withOwner(h.handleHistory))
	h.mux.HandleFunc("GET /api/history/{id}", h.withOwner(h.handleGetSummary))
	h.mux.HandleFunc("DELETE /api/history/{id}", h.withOwner(h.handleDeleteSummary))
	h.mux.HandleFunc("GET /api/history/{id}/download", h.withOwner(h.handleDownload))
	h.mux.HandleFunc("GET /api/health/translator", h.handleTranslatorHealth)

	return h
}

// ServeHTTP implements http.Handler.
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type ownerHandler func(w http.ResponseWriter, r *http.Request, ownerID string)

// withOwner rejects requests without an owner header.
func (h *HTTPHandler) withOwner(next ownerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := strings.TrimSpace(r.Header.Get(OwnerHeader))
		if ownerID == "" {
			WriteError(w, errortypes.PermissionError(summaries.ErrMissingOwner, "missing "+OwnerHeader+" header"), http.StatusUnauthorized)
			return
		}
		next(w, r, ownerID)
	}
}

// summarizeBody is the JSON form of a pasted-text request. A nil Text
// means the field was absent.
type summarizeBody struct {
	Text      *string `json:"text"`
	Sentences string  `json:"sentences"`
}

func (h *HTTPHandler) handleSummarize(w http.ResponseWriter, r *http.Request, ownerID string) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		out *summaries.Outcome
		err error
	)
	switch mediaType {
	case "multipart/form-data":
		out, err = h.summarizeMultipart(r, ownerID)
	case "application/json":
		var body summarizeBody
		if decodeErr := json.NewDecoder(r.Body).Decode(&body); decodeErr != nil {
			err = requestError(decodeErr, "invalid JSON body")
			break
		}
		out, err = h.summarizeText(r, ownerID, body.Text, body.Sentences)
	default:
		if parseErr := r.ParseForm(); parseErr != nil {
			err = requestError(parseErr, "invalid form body")
			break
		}
		out, err = h.summarizeText(r, ownerID, formText(r), r.PostFormValue("sentences"))
	}

	if err != nil {
		HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summarizeResponse(out))
}

func (h *HTTPHandler) summarizeMultipart(r *http.Request, ownerID string) (*summaries.Outcome, error) {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return nil, requestError(err, "invalid multipart body")
	}
	size := r.FormValue("sentences")

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return h.summarizeText(r, ownerID, formText(r), size)
	}
	if err != nil {
		return nil, requestError(err, "invalid file upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, requestError(err, "failed to read upload")
	}

	doc, err := extractor.NewDocument(header.Filename, data)
	if err != nil {
		return nil, errortypes.InvalidRequestError(err, "unsupported document").WithField("filename", header.Filename)
	}

	h.logger.Info("Summarizing upload", "filename", doc.Label, "bytes", len(data), "size", size)
	return h.service.SummarizeDocument(r.Context(), ownerID, doc, size)
}

// summarizeText summarizes a pasted string. Only a missing text field is
// rejected; an empty string yields an empty summary.
func (h *HTTPHandler) summarizeText(r *http.Request, ownerID string, text *string, size string) (*summaries.Outcome, error) {
	if text == nil {
		return nil, errortypes.InvalidRequestError(ErrMissingInput, "nothing to summarize")
	}
	h.logger.Info("Summarizing pasted text", "text_length", len(*text), "size", size)
	return h.service.SummarizeText(r.Context(), ownerID, *text, size)
}

// formText returns the posted text field, or nil when the form has none.
// The form must already be parsed.
func formText(r *http.Request) *string {
	values, ok := r.PostForm["text"]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// requestError keeps upload limit errors recognizable for HandleError.
func requestError(err error, message string) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return err
	}
	if strings.Contains(err.Error(), "request body too large") {
		return &http.MaxBytesError{}
	}
	return errortypes.InvalidRequestError(err, message)
}

func (h *HTTPHandler) handleHistory(w http.ResponseWriter, r *http.Request, ownerID string) {
	limit := tools.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			HandleError(w, errortypes.InvalidRequestError(err, "limit must be an integer"))
			return
		}
		limit = n
	}

	records, err := h.service.History(ownerID, limit)
	if err != nil {
		HandleError(w, err)
		return
	}

	entries := make([]tools.SummaryEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, summaryEntry(rec))
	}
	writeJSON(w, http.StatusOK, tools.ListSummariesResponse{Status: tools.StatusSuccess, Summaries: entries})
}

func (h *HTTPHandler) handleGetSummary(w http.ResponseWriter, r *http.Request, ownerID string) {
	rec, err := h.service.Summary(r.PathValue("id"), ownerID)
	if err != nil {
		HandleError(w, err)
		return
	}
	entry := summaryEntry(rec)
	writeJSON(w, http.StatusOK, tools.GetSummaryResponse{Status: tools.StatusSuccess, Summary: &entry})
}

func (h *HTTPHandler) handleDeleteSummary(w http.ResponseWriter, r *http.Request, ownerID string) {
	if err := h.service.Delete(r.PathValue("id"), ownerID); err != nil {
		HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleDownload(w http.ResponseWriter, r *http.Request, ownerID string) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "txt"
	}
	if format != "txt" && format != "docx" {
		HandleError(w, NewErrorWithStatus(fmt.Errorf("unknown format %q", format),
			http.StatusBadRequest, ErrorCodeInvalidRequest, "format must be txt or docx"))
		return
	}

	rec, err := h.service.Summary(r.PathValue("id"), ownerID)
	if err != nil {
		HandleError(w, err)
		return
	}

	var (
		body        []byte
		contentType string
	)
	if format == "docx" {
		body, err = export.DOCX(rec)
		if err != nil {
			HandleError(w, err)
			return
		}
		contentType = export.MIMEDOCX
	} else {
		body = export.Text(rec)
		contentType = export.MIMEText
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": export.Filename(rec, format),
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Warn("Failed to write download", "id", rec.ID, "error", err)
	}
}

func (h *HTTPHandler) handleTranslatorHealth(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.TranslatorHealth(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
