package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/localrivet/polysum/internal/errortypes"
	"github.com/localrivet/polysum/internal/summarystore"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", errortypes.ValidationError(errors.New("x"), "bad record"), http.StatusBadRequest, ErrorCodeInvalidRequest},
		{"invalid request", errortypes.InvalidRequestError(errors.New("k=0"), "invalid summary length 0"), http.StatusBadRequest, ErrorCodeInvalidRequest},
		{"permission", errortypes.PermissionError(errors.New("x"), "no owner"), http.StatusUnauthorized, ErrorCodeAuthenticationError},
		{"database", errortypes.DatabaseError(errors.New("locked"), "save failed"), http.StatusInternalServerError, ErrorCodeInternalError},
		{"network", errortypes.NetworkError(errors.New("timeout"), "dial"), http.StatusBadGateway, ErrorCodeBadGateway},
		{"translation", errortypes.TranslationError(errors.New("503"), "all providers failed"), http.StatusBadGateway, ErrorCodeBadGateway},
		{"config", errortypes.ConfigError(errors.New("x"), "no translator"), http.StatusInternalServerError, ErrorCodeInternalError},
		{"extraction falls back", errortypes.ExtractionError(errors.New("x"), "pdf"), http.StatusInternalServerError, ErrorCodeInternalError},
		{"not found", fmt.Errorf("get: %w", summarystore.ErrNotFound), http.StatusNotFound, ErrorCodeResourceNotFound},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge},
		{"plain", errors.New("boom"), http.StatusInternalServerError, ErrorCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := classify(tt.err)
			if c.status != tt.wantStatus || c.code != tt.wantCode {
				t.Errorf("classify() = (%d, %s), want (%d, %s)", c.status, c.code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestHandleErrorBody(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, errortypes.InvalidRequestError(errors.New("k=0"), "invalid summary length"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "error" || resp.Code != ErrorCodeInvalidRequest {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Details["error"] != "invalid summary length: k=0" {
		t.Errorf("details = %v", resp.Details)
	}
}

func TestHandleErrorWithStatus(t *testing.T) {
	base := errors.New("unknown format \"pdf\"")
	err := fmt.Errorf("download: %w", NewErrorWithStatus(base, http.StatusBadRequest, ErrorCodeInvalidRequest, "format must be txt or docx"))

	w := httptest.NewRecorder()
	HandleError(w, err)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "format must be txt or docx" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Details["error"] != base.Error() {
		t.Errorf("details = %v", resp.Details)
	}
}

func TestErrorWithStatus(t *testing.T) {
	base := errors.New("base error")
	statusErr := NewErrorWithStatus(base, http.StatusConflict, "TEST_ERROR", "Test error message")

	if statusErr.Error() != "Test error message: base error" {
		t.Errorf("Error() = %q", statusErr.Error())
	}
	if statusErr.StatusCode() != http.StatusConflict || statusErr.ErrorCode() != "TEST_ERROR" {
		t.Errorf("status/code = %d/%s", statusErr.StatusCode(), statusErr.ErrorCode())
	}
	if !errors.Is(statusErr, base) {
		t.Error("errors.Is should reach the base error")
	}

	bare := NewErrorWithStatus(base, http.StatusConflict, "TEST_ERROR", "")
	if bare.Error() != "base error" {
		t.Errorf("Error() without message = %q", bare.Error())
	}
}

func TestWriteError(t *testing.T) {
	err := errortypes.PermissionError(errors.New("missing owner"), "missing X-Owner-ID header").
		WithField("header", OwnerHeader)

	w := httptest.NewRecorder()
	WriteError(w, err, http.StatusUnauthorized)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != StatusCodePermissionError {
		t.Errorf("code = %s", resp.Code)
	}
	if resp.Details["header"] != OwnerHeader {
		t.Errorf("details = %v", resp.Details)
	}
	if resp.StackTrace == "" {
		t.Error("expected a stack trace")
	}
}

func TestErrorToResponseCodes(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errortypes.InvalidRequestError(errors.New("x"), "bad"), StatusCodeInvalidRequest},
		{errortypes.ExtractionError(errors.New("x"), "pdf"), StatusCodePipelineError},
		{errortypes.DetectionError(errors.New("x"), "lang"), StatusCodePipelineError},
		{errortypes.APIError(errors.New("x"), "upstream"), StatusCodeExternalError},
		{errortypes.ConfigError(errors.New("x"), "cfg"), StatusCodeConfigError},
		{errors.New("plain"), StatusCodeUnknownError},
	}
	for _, tt := range tests {
		if got := errorToResponse(tt.err).Code; got != tt.want {
			t.Errorf("errorToResponse(%v).Code = %s, want %s", tt.err, got, tt.want)
		}
	}
}
