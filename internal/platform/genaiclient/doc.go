// Package genaiclient implements the aiengine remote-call primitive on top
// of Google's Gemini API. It owns the shared client lifecycle (one lazily
// constructed handle per process), decodes provider failures into the
// engine's tagged error variants, and offers an optional circuit-breaker
// wrapper for a degraded provider.
package genaiclient
