package generation

import (
	"context"

	"github.com/emberfund/ember-api/internal/aiengine"
)

// Provider bundles what a text-generation service needs from the platform
// layer: the structured remote-call primitive plus a configuration probe
// for failing fast before any retry budget is spent.
type Provider interface {
	aiengine.ContentCaller
	IsConfigured() bool
}

// ImageProvider is the image-generation counterpart.
type ImageProvider interface {
	GenerateImage(ctx context.Context, model, prompt string) (data []byte, mimeType string, err error)
	IsConfigured() bool
}

// errNotConfigured is what every service returns when its provider has no
// credentials. Routed as a validation failure so the HTTP layer answers
// 400 instead of burning retries on a guaranteed failure.
func errNotConfigured() *aiengine.OperationError {
	return aiengine.NewOperationError(aiengine.KindValidation,
		"generation service is not configured", false, nil)
}
