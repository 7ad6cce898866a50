package genaiclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/emberfund/ember-api/internal/config"
)

// ErrNotConfigured is returned when no API key is present. Callers should
// check IsConfigured and fail fast instead of spending a retry cycle on a
// guaranteed-to-fail call.
var ErrNotConfigured = errors.New("generation service is not configured: missing API key")

// Holder caches a single configured *genai.Client for the whole process.
// The client is constructed lazily on first use and is read-only afterward,
// so concurrent callers share it without further synchronization. Build a
// Holder once at the composition root and inject it; it is not a package
// global.
type Holder struct {
	cfg    config.AIConfig
	logger *slog.Logger

	mu     sync.Mutex
	client *genai.Client

	// build is swapped in tests to observe construction without the
	// network. Production holders always use newClient.
	build func(ctx context.Context) (*genai.Client, error)
}

// NewHolder creates a holder for the given AI configuration. No connection
// is made until Get is first called.
func NewHolder(cfg config.AIConfig, logger *slog.Logger) *Holder {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Holder{cfg: cfg, logger: logger}
	h.build = h.newClient
	return h
}

// Get returns the shared client, constructing it on first use. Exactly one
// construction happens even under concurrent first callers; losers of the
// race reuse the winner's client.
func (h *Holder) Get(ctx context.Context) (*genai.Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.client != nil {
		return h.client, nil
	}

	if h.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := h.build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	h.logger.InfoContext(ctx, "generation client constructed",
		"model", h.cfg.Model,
		"transport_timeout_seconds", h.cfg.TransportTimeoutSeconds)

	h.client = client
	return h.client, nil
}

// IsConfigured reports whether an API key is present, letting callers fail
// fast with a clear error before attempting an operation.
func (h *Holder) IsConfigured() bool {
	return h.cfg.APIKey != ""
}

// Reset drops the cached client so the next Get reconstructs it. It exists
// for test lifecycles; production code never calls it.
func (h *Holder) Reset() {
	h.mu.Lock()
	h.client = nil
	h.mu.Unlock()
}

func (h *Holder) newClient(ctx context.Context) (*genai.Client, error) {
	// The transport timeout is a separate resilience layer from the
	// engine's per-attempt deadline; it guards the raw HTTP exchange.
	httpClient := &http.Client{
		Timeout: time.Duration(h.cfg.TransportTimeoutSeconds) * time.Second,
	}

	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     h.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
}
