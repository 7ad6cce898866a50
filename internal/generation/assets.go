package generation

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/emberfund/ember-api/internal/aiengine"
)

// AssetFetcher downloads remote assets (reference images, uploaded
// documents hosted elsewhere) with the same retry/timeout semantics as the
// generation calls but no schema validation: a raw-path consumer of the
// orchestrator.
type AssetFetcher struct {
	engine *aiengine.Engine
	client *http.Client
}

func NewAssetFetcher(engine *aiengine.Engine, client *http.Client) *AssetFetcher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &AssetFetcher{engine: engine, client: client}
}

// Download fetches url, retrying status-coded and network failures
// according to the engine's policy. Non-2xx statuses surface as tagged
// HTTP errors so classification decides retry eligibility (429 and 5xx
// retry, 4xx do not).
func (f *AssetFetcher) Download(ctx context.Context, url string) ([]byte, aiengine.Metadata, error) {
	return aiengine.ExecuteWithRetry(ctx, f.engine, "asset.download", true, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, aiengine.NewOperationError(aiengine.KindValidation, "invalid asset url", false, err)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &aiengine.HTTPError{Status: resp.StatusCode, Message: "asset fetch failed"}
		}

		return io.ReadAll(resp.Body)
	})
}
