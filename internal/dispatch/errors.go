package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/workspaceadmin/gsuite-admin-mcp/internal/auth"
)

// Stable error codes surfaced in tool results. Callers match on these,
// so changing one is a breaking change.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeAuthFailed     = "AUTH_FAILED"
	CodeUnknownTool    = "UNKNOWN_TOOL"
	CodeCorruptRecord  = "CORRUPT_RECORD"
	CodeExchangeFailed = "EXCHANGE_FAILED"
	CodeConfig         = "CONFIG_ERROR"
	CodeReadOnly       = "READ_ONLY_MODE"
	CodeInternal       = "INTERNAL_ERROR"
	CodeGoogleAPI      = "GOOGLE_API_ERROR"
)

// Error is a classified call failure with a stable code and a
// human-readable message. The message never contains stack traces
// or raw tokens.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Error (%s): %s", e.Code, e.Message)
}

// NewError builds a classified error with a formatted message.
func NewError(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// googleAPICode maps an HTTP status from the Admin SDK to a stable code.
// Statuses without a dedicated code fall back to GOOGLE_API_ERROR.
func googleAPICode(status int) string {
	switch status {
	case 400, 403, 404, 429, 500:
		return fmt.Sprintf("GOOGLE_API_%d", status)
	default:
		return CodeGoogleAPI
	}
}

// Classify maps an arbitrary handler or credential error to a stable
// error code. Already-classified errors pass through unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var corrupt *auth.CorruptRecordError
	if errors.As(err, &corrupt) {
		return NewError(CodeCorruptRecord,
			"stored credential for %s is unreadable; re-authorize the account", corrupt.UserID)
	}

	var exchange *auth.ExchangeError
	if errors.As(err, &exchange) {
		return NewError(CodeExchangeFailed,
			"authorization code exchange for %s failed: %v", exchange.UserID, exchange.Err)
	}

	if errors.Is(err, auth.ErrNoCredential) {
		return NewError(CodeAuthFailed, "no usable credential: %v", err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = err.Error()
		}
		return NewError(googleAPICode(apiErr.Code), "Google Admin API error: %s", msg)
	}

	// Some API failures arrive as plain errors with well-known reason
	// strings rather than a typed googleapi.Error.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "rateLimitExceeded"), strings.Contains(msg, "quotaExceeded"):
		return NewError("GOOGLE_API_429", "Google Admin API error: %s", msg)
	case strings.Contains(msg, "googleapi:"):
		return NewError(CodeGoogleAPI, "Google Admin API error: %s", msg)
	}

	return NewError(CodeInternal, "internal error: %s", msg)
}
