package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/localrivet/polysum/internal/errortypes"
	"github.com/localrivet/polysum/internal/summarystore"
)

// ErrorResponse represents the structure of error responses sent by the API
type ErrorResponse struct {
	Status     string                 `json:"status"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StackTrace string                 `json:"stack_trace,omitempty"`
}

// HTTP error codes
const (
	ErrorCodeInvalidRequest      = "INVALID_REQUEST"
	ErrorCodeInternalError       = "INTERNAL_ERROR"
	ErrorCodeAuthenticationError = "AUTHENTICATION_ERROR"
	ErrorCodeResourceNotFound    = "RESOURCE_NOT_FOUND"
	ErrorCodeBadGateway          = "BAD_GATEWAY"
	ErrorCodePayloadTooLarge     = "PAYLOAD_TOO_LARGE"
)

// Error response codes derived from the error type
const (
	StatusCodeValidationError = "VALIDATION_ERROR"
	StatusCodePermissionError = "PERMISSION_ERROR"
	StatusCodeNetworkError    = "NETWORK_ERROR"
	StatusCodeInternalError   = "INTERNAL_ERROR"
	StatusCodeConfigError     = "CONFIG_ERROR"
	StatusCodeExternalError   = "EXTERNAL_ERROR"
	StatusCodeInvalidRequest  = "INVALID_REQUEST"
	StatusCodePipelineError   = "PIPELINE_ERROR"
	StatusCodeUnknownError    = "UNKNOWN_ERROR"
)

// errorClass is how one kind of error is presented to HTTP clients.
type errorClass struct {
	status  int
	code    string
	message string
}

var (
	classBadRequest   = errorClass{http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid request parameters"}
	classUnauthorized = errorClass{http.StatusUnauthorized, ErrorCodeAuthenticationError, "Permission denied"}
	classNotFound     = errorClass{http.StatusNotFound, ErrorCodeResourceNotFound, "Summary not found"}
	classTooLarge     = errorClass{http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge, "Upload exceeds the size limit"}
	classBadGateway   = errorClass{http.StatusBadGateway, ErrorCodeBadGateway, "Downstream service error"}
	classInternal     = errorClass{http.StatusInternalServerError, ErrorCodeInternalError, "An unexpected error occurred"}
	classMisconfig    = errorClass{http.StatusInternalServerError, ErrorCodeInternalError, "Service is misconfigured"}
)

// classByType maps AppError types to their HTTP presentation. Types that
// are missing fall back to classInternal.
var classByType = map[errortypes.ErrorType]errorClass{
	errortypes.ErrorTypeValidation:     classBadRequest,
	errortypes.ErrorTypeInvalidRequest: classBadRequest,
	errortypes.ErrorTypePermission:     classUnauthorized,
	errortypes.ErrorTypeNetwork:        classBadGateway,
	errortypes.ErrorTypeAPI:            classBadGateway,
	errortypes.ErrorTypeExternal:       classBadGateway,
	errortypes.ErrorTypeTranslation:    classBadGateway,
	errortypes.ErrorTypeDatabase:       classInternal,
	errortypes.ErrorTypeInternal:       classInternal,
	errortypes.ErrorTypeConfig:         classMisconfig,
}

// responseCodeByType maps AppError types to the code carried in WriteError bodies.
var responseCodeByType = map[errortypes.ErrorType]string{
	errortypes.ErrorTypeValidation:     StatusCodeValidationError,
	errortypes.ErrorTypeInvalidRequest: StatusCodeInvalidRequest,
	errortypes.ErrorTypeExtraction:     StatusCodePipelineError,
	errortypes.ErrorTypeDetection:      StatusCodePipelineError,
	errortypes.ErrorTypeTranslation:    StatusCodePipelineError,
	errortypes.ErrorTypePermission:     StatusCodePermissionError,
	errortypes.ErrorTypeNetwork:        StatusCodeNetworkError,
	errortypes.ErrorTypeDatabase:       StatusCodeInternalError,
	errortypes.ErrorTypeInternal:       StatusCodeInternalError,
	errortypes.ErrorTypeAPI:            StatusCodeExternalError,
	errortypes.ErrorTypeExternal:       StatusCodeExternalError,
	errortypes.ErrorTypeConfig:         StatusCodeConfigError,
}

// classify picks the HTTP presentation for err.
func classify(err error) errorClass {
	if errors.Is(err, summarystore.ErrNotFound) {
		return classNotFound
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return classTooLarge
	}

	var appErr *errortypes.AppError
	if errors.As(err, &appErr) {
		if c, ok := classByType[appErr.Type]; ok {
			return c
		}
	}
	return classInternal
}

// writeErrorResponse writes a structured error response to the HTTP response writer
func writeErrorResponse(w http.ResponseWriter, status int, code, message string, err error) {
	errResp := ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}

		logErr := errortypes.APIError(err, fmt.Sprintf("API Error (%s)", code)).
			WithField("status_code", status).
			WithField("error_code", code).
			WithField("client_message", message)

		errortypes.LogError(nil, logErr)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

// ErrorWithStatus pins an error to an explicit HTTP status and code.
type ErrorWithStatus struct {
	err        error
	statusCode int
	errorCode  string
	message    string
}

// NewErrorWithStatus creates a new error with HTTP status code
func NewErrorWithStatus(err error, status int, code, message string) *ErrorWithStatus {
	return &ErrorWithStatus{
		err:        err,
		statusCode: status,
		errorCode:  code,
		message:    message,
	}
}

// Error returns the error message
func (e *ErrorWithStatus) Error() string {
	if e.message != "" {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.err.Error()
}

// Unwrap returns the underlying error
func (e *ErrorWithStatus) Unwrap() error {
	return e.err
}

// StatusCode returns the HTTP status code
func (e *ErrorWithStatus) StatusCode() int {
	return e.statusCode
}

// ErrorCode returns the application error code
func (e *ErrorWithStatus) ErrorCode() string {
	return e.errorCode
}

// Message returns the client-friendly message
func (e *ErrorWithStatus) Message() string {
	return e.message
}

// HandleError writes err as a JSON error response, choosing the status
// from an ErrorWithStatus wrapper or from the error's type.
func HandleError(w http.ResponseWriter, err error) {
	var statusErr *ErrorWithStatus
	if errors.As(err, &statusErr) {
		writeErrorResponse(w, statusErr.StatusCode(), statusErr.ErrorCode(),
			statusErr.Message(), statusErr.Unwrap())
		return
	}

	c := classify(err)
	writeErrorResponse(w, c.status, c.code, c.message, err)
}

// WriteError writes err with the given status, exposing the AppError's
// fields and stack in the body.
func WriteError(w http.ResponseWriter, err error, status int) {
	slog.Error("API Error", "error", err, "status", status)

	errorResponse := errorToResponse(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		slog.Error("Error encoding JSON error response", "error", err, "original_error_message", errorResponse.Message, "status", status)
	}
}

// errorToResponse converts an error to a standardized ErrorResponse
func errorToResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Status:  "error",
		Code:    StatusCodeUnknownError,
		Message: err.Error(),
	}

	var appErr *errortypes.AppError
	if errors.As(err, &appErr) {
		resp.Details = appErr.Fields
		resp.StackTrace = appErr.StackInfo
		if code, ok := responseCodeByType[appErr.Type]; ok {
			resp.Code = code
		}
	}
	return resp
}
