package errors

import (
	"fmt"
	"time"
)

// New constructs a new structured error.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf constructs a formatted structured error.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap constructs a structured error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return New(code, message).WithCause(cause)
}

func ErrInvalidParams(message string) *Error {
	return New(InvalidParams, message)
}

func ErrTokenNotFound(token string) *Error {
	return New(TokenNotFound, "confirmation token not found; request a new preview").
		WithData("confirmation_token", token)
}

func ErrTokenExpired(token string, expiredAt time.Time) *Error {
	return New(TokenExpired, "confirmation token has expired; request a new preview").
		WithData("confirmation_token", token).
		WithData("expired_at", expiredAt.UTC().Format(time.RFC3339))
}

func ErrTokenAlreadyConsumed(token string) *Error {
	return New(TokenAlreadyConsumed, "confirmation token was already used; each approval authorizes exactly one execution").
		WithData("confirmation_token", token)
}

func ErrDryRunMismatch(expectedHash, actualHash string) *Error {
	return New(DryRunMismatch, "dry-run result changed since the preview was issued; request a new preview").
		WithData("expected_hash", expectedHash).
		WithData("actual_hash", actualHash)
}

func ErrVaguenessRejected(operation string, score int, clarifications []string) *Error {
	return New(VaguenessRejected, "request is too vague to execute safely; restate it with exact values and identifiers").
		WithData("operation", operation).
		WithData("vagueness_score", score).
		WithData("required_clarifications", clarifications)
}

func ErrMissingCredential() *Error {
	return New(MissingCredential, "OAuth token required for Google Analytics API access")
}

func ErrExecutionFailed(operation string, cause error) *Error {
	return Wrap(ExecutionFailed, "approved operation failed during execution; the approval is spent, run a new preview to retry", cause).
		WithData("operation", operation)
}

func ErrAmbiguousOutcome(operation string, cause error) *Error {
	return Wrap(AmbiguousOutcome, "execution was interrupted after the approval was consumed; verify resource state before retrying", cause).
		WithData("operation", operation)
}

func ErrApprovalLimitExceeded(maxPending int) *Error {
	return New(ApprovalLimitExceeded, "too many pending approvals").
		WithData("max_pending", maxPending)
}

func ErrAnalyticsAPIFailed(operation string, cause error) *Error {
	return Wrap(AnalyticsAPIFailed, "Google Analytics Admin API call failed", cause).
		WithData("operation", operation)
}
