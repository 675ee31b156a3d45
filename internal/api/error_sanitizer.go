package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ignite/opportunity-analyst/internal/analysis"
	"github.com/ignite/opportunity-analyst/internal/pkg/httputil"
)

// =============================================================================
// ERROR SANITIZER
// Internal errors (file paths, DSNs, upstream bodies) never reach API
// consumers. Known error kinds map to fixed status codes; everything else is
// logged in full and answered with a generic message.
// =============================================================================

// respondAnalysisError maps an analysis error to its HTTP status.
func respondAnalysisError(w http.ResponseWriter, customerID string, err error) {
	switch {
	case errors.Is(err, analysis.ErrCustomerNotFound):
		httputil.NotFound(w, "Customer not found")
	case errors.Is(err, analysis.ErrDataUnavailable):
		httputil.ServiceUnavailable(w, err, "Transaction data is not available")
	default:
		msg := safeErrorMessage(http.StatusInternalServerError, err)
		if customerID != "" {
			err = fmt.Errorf("customer %s: %w", customerID, err)
		}
		httputil.InternalError(w, err, msg)
	}
}

// safeErrorMessage maps common internal error patterns to public-safe messages.
// For 400-level errors, the original message is typically fine (user input issues).
// For 500-level errors, this returns a generic safe message.
func safeErrorMessage(code int, internalErr error) string {
	if code < 500 {
		if internalErr != nil {
			return internalErr.Error()
		}
		return "Bad request"
	}

	if internalErr == nil {
		return "An internal error occurred"
	}

	errStr := strings.ToLower(internalErr.Error())

	switch {
	case strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "dial tcp"):
		return "Service temporarily unavailable"

	case strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "context canceled"):
		return "Request timed out"

	case strings.Contains(errStr, "sql") ||
		strings.Contains(errStr, "pq:") ||
		strings.Contains(errStr, "snowflake") ||
		strings.Contains(errStr, "database"):
		return "A database error occurred"

	case strings.Contains(errStr, "permission") ||
		strings.Contains(errStr, "access denied"):
		return "Access denied"

	case strings.Contains(errStr, "csv") ||
		strings.Contains(errStr, "required columns missing"):
		return "The transaction table could not be read"

	default:
		return "An internal error occurred"
	}
}
