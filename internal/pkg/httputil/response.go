package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/ignite/opportunity-analyst/internal/pkg/logger"
)

// ErrorResponse is the standard error envelope for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes carried in ErrorResponse.Code so clients can branch without
// parsing messages.
const (
	CodeBadRequest         = "bad_request"
	CodeNotFound           = "not_found"
	CodeServiceUnavailable = "service_unavailable"
	CodeInternal           = "internal"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("httputil: JSON encode failed", "error", err)
	}
}

// Attachment writes data as an indented JSON file download.
func Attachment(w http.ResponseWriter, filename string, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		logger.Error("httputil: attachment encode failed", "error", err, "filename", filename)
	}
}

// OK writes a 200 response with the given data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorResponse{Error: message, Code: code})
}

// BadRequest writes a 400 error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, CodeBadRequest, message)
}

// NotFound writes a 404 error.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, CodeNotFound, message)
}

// ServiceUnavailable writes a 503 error. The internal cause is logged, not returned.
func ServiceUnavailable(w http.ResponseWriter, err error, message string) {
	if err != nil {
		logger.Error("httputil: service unavailable", "error", err)
	}
	Error(w, http.StatusServiceUnavailable, CodeServiceUnavailable, message)
}

// InternalError writes a 500 error. Logs the real error but returns only
// message to the client; an empty message becomes "internal server error".
func InternalError(w http.ResponseWriter, err error, message string) {
	logger.Error("httputil: internal error", "error", err)
	if message == "" {
		message = "internal server error"
	}
	Error(w, http.StatusInternalServerError, CodeInternal, message)
}
