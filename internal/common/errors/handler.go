// internal/common/errors/handler.go
package errors

import (
	"net/http"
	"time"
)

// ErrorHandler normalizes and logs errors and shapes them into HTTP responses.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// ErrorResponse is the JSON body returned to clients on failure.
// Persistence and provider details never leak into it; clients only
// see the code, a safe message, and field errors for validation.
type ErrorResponse struct {
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	FieldErrors map[string]interface{} `json:"fieldErrors,omitempty"`
}

// HandleError normalizes an error, logs it, and returns the HTTP status
// plus the response body to send.
func (h *ErrorHandler) HandleError(err error, operation string) (int, ErrorResponse) {
	stdErr := h.normalizeError(err)
	status := HTTPStatus(stdErr.Code)

	h.logError(operation, stdErr, status)

	resp := ErrorResponse{
		Code:    string(stdErr.Code),
		Message: clientMessage(stdErr),
	}
	if stdErr.Code == ErrCodeSubmissionValidationFailed && stdErr.Metadata != nil {
		if fe, ok := stdErr.Metadata["fieldErrors"].(map[string]interface{}); ok {
			resp.FieldErrors = fe
		}
	}

	return status, resp
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// HTTPStatus maps an error code to its HTTP status.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidCredentials, ErrCodeSessionExpired:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeTooManyAttempts:
		return http.StatusTooManyRequests
	case ErrCodeEmailAlreadyInUse:
		return http.StatusConflict
	case ErrCodeSubmissionValidationFailed, ErrCodeInvalidFormKind, ErrCodeInvalidStatus:
		return http.StatusBadRequest
	case ErrCodeResourceNotFound:
		return http.StatusNotFound
	case ErrCodeQueryTimeout, ErrCodeSearchTimeout, ErrCodeAITimeout:
		return http.StatusGatewayTimeout
	case ErrCodeDatabaseConnectionFailed, ErrCodeElasticsearchConnectionFailed, ErrCodeAuthProviderFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage returns the message safe to show clients. Persistence
// failures get a generic message; their details stay in the logs.
func clientMessage(stdErr *StandardError) string {
	switch GetErrorCategory(stdErr.Code) {
	case "DATABASE", "SEARCH", "OTHER":
		return "Si è verificato un errore, riprova più tardi"
	default:
		return stdErr.Message
	}
}

func (h *ErrorHandler) logError(operation string, stdErr *StandardError, status int) {
	h.logger.Error("Request failed", map[string]interface{}{
		"operation":     operation,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"httpStatus":    status,
	})
}
