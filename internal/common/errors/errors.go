// Package errors provides standardized error handling for the classification service.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Input errors, reported to the caller as 400.
	ErrCodeEmailTextMissing   ErrorCode = "EMAIL_TEXT_MISSING"
	ErrCodeInvalidRequestBody ErrorCode = "INVALID_REQUEST_BODY"

	// Upstream errors, downgraded to the fallback classification.
	ErrCodeLLMTimeout        ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMRequestFailed  ErrorCode = "LLM_REQUEST_FAILED"
	ErrCodeLLMEmptyResponse  ErrorCode = "LLM_EMPTY_RESPONSE"
	ErrCodeLLMInvalidJSON    ErrorCode = "LLM_INVALID_JSON"
	ErrCodeLLMSchemaMismatch ErrorCode = "LLM_SCHEMA_MISMATCH"

	// Startup errors.
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// MsgEmailTextMissing is the message returned to callers for every input error.
const MsgEmailTextMissing = "No email text was provided."

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewEmailTextMissingError creates a non-retryable input error.
func NewEmailTextMissingError() *StandardError {
	return newError(ErrCodeEmailTextMissing, MsgEmailTextMissing, "", false, nil)
}

// NewInvalidRequestBodyError is reported to the caller exactly like a missing field.
func NewInvalidRequestBodyError(err error) *StandardError {
	return newError(ErrCodeInvalidRequestBody, MsgEmailTextMissing, err.Error(), false, err)
}

// NewLLMTimeoutError creates a retryable timeout error.
func NewLLMTimeoutError(provider string, err error) *StandardError {
	return newError(ErrCodeLLMTimeout, fmt.Sprintf("%s call timed out", provider), err.Error(), true, err)
}

// NewLLMRequestFailedError covers transport and provider-side failures.
func NewLLMRequestFailedError(provider string, err error) *StandardError {
	return newError(ErrCodeLLMRequestFailed, fmt.Sprintf("%s API error", provider), err.Error(), true, err)
}

func NewLLMEmptyResponseError(provider string) *StandardError {
	return newError(ErrCodeLLMEmptyResponse, fmt.Sprintf("%s returned an empty response", provider), "", true, nil)
}

func NewLLMInvalidJSONError(err error) *StandardError {
	return newError(ErrCodeLLMInvalidJSON, "model output is not valid JSON", err.Error(), true, err)
}

func NewLLMSchemaMismatchError(details string) *StandardError {
	return newError(ErrCodeLLMSchemaMismatch, "model output does not match the classification contract", details, true, nil)
}

func NewConfigInvalidError(details string) *StandardError {
	return newError(ErrCodeConfigInvalid, "invalid configuration", details, false, nil)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError normalizes any error into a StandardError.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err is a StandardError carrying code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return errors.As(err, &stdErr) && stdErr.Code == code
}

// HTTPStatus maps an error code to the status the front door answers with.
// Upstream errors never reach the HTTP layer as failures; they are listed for completeness.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeEmailTextMissing, ErrCodeInvalidRequestBody:
		return http.StatusBadRequest
	case ErrCodeLLMTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeLLMRequestFailed, ErrCodeLLMEmptyResponse, ErrCodeLLMInvalidJSON, ErrCodeLLMSchemaMismatch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "LLM"):
		return "UPSTREAM"
	case strings.HasPrefix(codeStr, "CONFIG"):
		return "CONFIGURATION"
	case code == ErrCodeEmailTextMissing || code == ErrCodeInvalidRequestBody:
		return "INPUT"
	default:
		return "INTERNAL"
	}
}
