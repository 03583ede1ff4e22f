// Package errors defines the service error taxonomy shared by handlers and
// services. Every fallible collaborator call is classified so callers can
// distinguish bad input, unreachable providers, and model output that came
// back in an unexpected shape.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced in API responses.
const (
	CodeInvalidInput           = "invalid_input"
	CodeNotFound               = "not_found"
	CodeSubscriptionRequired   = "subscription_required"
	CodeProviderUnavailable    = "provider_unavailable"
	CodeMalformedOutput        = "malformed_model_output"
	CodeEntitlementCheckFailed = "entitlement_check_failed"
	CodeTimeout                = "timeout"
	CodeRateLimitExceeded      = "rate_limit_exceeded"
)

// ServiceError carries a stable code, an HTTP status, and the underlying
// cause. The cause is attached for diagnostics, never swallowed.
type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

// InvalidInput reports a missing or malformed request field.
func InvalidInput(msg string) *ServiceError {
	return &ServiceError{Code: CodeInvalidInput, Message: msg, HTTPStatus: http.StatusBadRequest}
}

// NotFound reports a missing resource.
func NotFound(resource, id string) *ServiceError {
	return &ServiceError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s %s not found", resource, id),
		HTTPStatus: http.StatusNotFound,
	}
}

// SubscriptionRequired reports a denied gate verdict.
func SubscriptionRequired(freeLimit int) *ServiceError {
	return &ServiceError{
		Code:       CodeSubscriptionRequired,
		Message:    fmt.Sprintf("free study limit of %d reached", freeLimit),
		HTTPStatus: http.StatusPaymentRequired,
	}
}

// ProviderUnavailable reports a transport or backend failure from an external
// collaborator (storage, search index, model, purchase provider).
func ProviderUnavailable(provider string, cause error) *ServiceError {
	return &ServiceError{
		Code:       CodeProviderUnavailable,
		Message:    fmt.Sprintf("%s provider unavailable", provider),
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// MalformedOutput reports model output that could not be parsed into the
// expected structured shape. Kept distinct from ProviderUnavailable so
// operators can tell "model unreachable" from "model answered wrong".
func MalformedOutput(cause error) *ServiceError {
	return &ServiceError{
		Code:       CodeMalformedOutput,
		Message:    "model output does not match the expected shape",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// EntitlementCheckFailed reports a purchase-provider failure during a gate
// check. The gate itself fails closed; this error rides along so the caller
// can offer a retry.
func EntitlementCheckFailed(cause error) *ServiceError {
	return &ServiceError{
		Code:       CodeEntitlementCheckFailed,
		Message:    "could not verify subscription state",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// Timeout reports an operation that exceeded its deadline.
func Timeout(op string, cause error) *ServiceError {
	return &ServiceError{
		Code:       CodeTimeout,
		Message:    fmt.Sprintf("%s timed out", op),
		HTTPStatus: http.StatusGatewayTimeout,
		Cause:      cause,
	}
}

// RateLimitExceeded reports a rejected request from the rate limiter.
func RateLimitExceeded(limit int, window string) *ServiceError {
	return &ServiceError{
		Code:       CodeRateLimitExceeded,
		Message:    fmt.Sprintf("rate limit of %d requests per %s exceeded", limit, window),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// HasCode reports whether err (or anything it wraps) is a ServiceError with
// the given code.
func HasCode(err error, code string) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code == code
	}
	return false
}

// StatusOf returns the HTTP status for err, defaulting to 500 for errors
// outside the taxonomy.
func StatusOf(err error) int {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
