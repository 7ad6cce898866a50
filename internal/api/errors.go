package api

import (
	"net/http"

	"github.com/emberfund/ember-api/internal/aiengine"
	"github.com/emberfund/ember-api/internal/api/shared"
)

// MapKindToStatusCode maps a classified error kind to an HTTP status code.
// Validation failures are the caller's fault, rate limits pass through as
// 429 so clients can apply their own backoff, and everything else is a
// server-side failure.
func MapKindToStatusCode(kind aiengine.ErrorKind) int {
	switch kind {
	case aiengine.KindValidation:
		return http.StatusBadRequest
	case aiengine.KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// safeMessages are the only error strings clients ever see. Raw error text
// stays in the logs.
var safeMessages = map[aiengine.ErrorKind]string{
	aiengine.KindValidation: "Invalid input",
	aiengine.KindRateLimit:  "Rate limit exceeded, try again later",
	aiengine.KindTimeout:    "Generation timed out",
	aiengine.KindProcessing: "Generated content could not be processed",
	aiengine.KindNetwork:    "Upstream service unreachable",
	aiengine.KindAPIError:   "Generation failed",
}

// RespondWithOperationError classifies err and writes the matching HTTP
// error response, echoing the error kind and retryability in the body.
func RespondWithOperationError(w http.ResponseWriter, r *http.Request, err error) {
	opErr := aiengine.Classify(err)

	message, ok := safeMessages[opErr.Kind]
	if !ok {
		message = "An unexpected error occurred"
	}
	// Validation messages describe the client's own input, so they are safe
	// to echo back.
	if opErr.Kind == aiengine.KindValidation && opErr.Message != "" {
		message = opErr.Message
	}

	shared.RespondWithErrorAndLog(w, r, MapKindToStatusCode(opErr.Kind), shared.ErrorResponse{
		Error:     message,
		Kind:      string(opErr.Kind),
		Retryable: opErr.Retryable,
	}, err)
}
