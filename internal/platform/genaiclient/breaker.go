package genaiclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/emberfund/ember-api/internal/aiengine"
)

// generationClient is the surface the breaker guards; *Client implements
// it, and tests substitute a scripted fake.
type generationClient interface {
	GenerateJSON(ctx context.Context, req aiengine.ContentRequest) (*aiengine.RawResult, error)
	GenerateImage(ctx context.Context, model, prompt string) ([]byte, string, error)
	IsConfigured() bool
}

// BreakerCaller wraps the client with circuit breaking so a provider in
// sustained failure fails fast instead of burning every caller's full
// retry budget. An open circuit surfaces as a 503-equivalent, which the
// engine classifies as a retryable api_error.
type BreakerCaller struct {
	client generationClient
	cb     *gobreaker.CircuitBreaker
}

// NewBreakerCaller builds a breaker around the client. The circuit trips
// once at least three requests in the rolling window have failed at a 60%
// ratio, and probes again after 30 seconds.
func NewBreakerCaller(client generationClient, name string, logger *slog.Logger) *BreakerCaller {
	if logger == nil {
		logger = slog.Default()
	}

	st := gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("generation circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	}

	return &BreakerCaller{
		client: client,
		cb:     gobreaker.NewCircuitBreaker(st),
	}
}

// IsConfigured reports whether the wrapped client can be constructed.
func (b *BreakerCaller) IsConfigured() bool {
	return b.client.IsConfigured()
}

// GenerateJSON implements aiengine.ContentCaller through the breaker.
func (b *BreakerCaller) GenerateJSON(ctx context.Context, req aiengine.ContentRequest) (*aiengine.RawResult, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.client.GenerateJSON(ctx, req)
	})
	if err != nil {
		return nil, decodeBreakerError(err)
	}
	return res.(*aiengine.RawResult), nil
}

// GenerateImage routes image generation through the same breaker: the
// provider behind both calls is one service.
func (b *BreakerCaller) GenerateImage(ctx context.Context, model, prompt string) ([]byte, string, error) {
	type imageResult struct {
		data     []byte
		mimeType string
	}

	res, err := b.cb.Execute(func() (interface{}, error) {
		data, mimeType, err := b.client.GenerateImage(ctx, model, prompt)
		if err != nil {
			return nil, err
		}
		return imageResult{data: data, mimeType: mimeType}, nil
	})
	if err != nil {
		return nil, "", decodeBreakerError(err)
	}

	img := res.(imageResult)
	return img.data, img.mimeType, nil
}

func decodeBreakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &aiengine.HTTPError{
			Status:  http.StatusServiceUnavailable,
			Message: "generation circuit open",
		}
	}
	return err
}
