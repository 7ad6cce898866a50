package aiengine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind identifies one category in the closed failure taxonomy. Every
// failure surfaced by the engine lands in exactly one kind.
type ErrorKind string

const (
	KindAPIError   ErrorKind = "api_error"
	KindRateLimit  ErrorKind = "rate_limit"
	KindTimeout    ErrorKind = "timeout"
	KindValidation ErrorKind = "validation"
	KindProcessing ErrorKind = "processing"
	KindNetwork    ErrorKind = "network"
)

// OperationError is a classified failure. Retryable is derived from the kind
// and the originating signal at classification time; the value is immutable
// afterward.
type OperationError struct {
	Kind      ErrorKind
	Message   string
	Retryable bool
	Cause     error
}

func (e *OperationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *OperationError) Unwrap() error {
	return e.Cause
}

// NewOperationError constructs a classified failure with an explicit kind.
func NewOperationError(kind ErrorKind, message string, retryable bool, cause error) *OperationError {
	return &OperationError{
		Kind:      kind,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// HTTPError is the tagged variant produced at the client boundary for
// status-coded provider failures. The transport layer decodes provider
// errors into this type so Classify never probes arbitrary error shapes.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d", e.Status)
}

// Classify maps an opaque failure to a member of the taxonomy. It is pure
// and idempotent: an already-classified *OperationError passes through
// unchanged. Unknown failures are classified as non-retryable api_error so
// the orchestrator never retries failures of unknown shape.
//
// Classify is the single source of truth for retry eligibility; the retry
// orchestrator never inspects raw failures directly.
func Classify(err error) *OperationError {
	if err == nil {
		return nil
	}

	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.Status == http.StatusTooManyRequests:
			return NewOperationError(KindRateLimit, "provider rate limit exceeded", true, httpErr)
		case httpErr.Status >= http.StatusInternalServerError:
			return NewOperationError(KindAPIError, fmt.Sprintf("provider returned status %d", httpErr.Status), true, httpErr)
		default:
			return NewOperationError(KindAPIError, fmt.Sprintf("provider rejected request with status %d", httpErr.Status), false, httpErr)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewOperationError(KindTimeout, "operation deadline exceeded", true, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewOperationError(KindTimeout, "network timeout", true, err)
		}
		return NewOperationError(KindNetwork, "network failure", true, err)
	}

	return NewOperationError(KindAPIError, "unexpected failure", false, err)
}
