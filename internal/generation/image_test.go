package generation

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberfund/ember-api/internal/aiengine"
)

type fakeImageProvider struct {
	configured bool
	calls      atomic.Int32
	respond    func(call int32) ([]byte, string, error)
}

func (f *fakeImageProvider) GenerateImage(ctx context.Context, model, prompt string) ([]byte, string, error) {
	return f.respond(f.calls.Add(1))
}

func (f *fakeImageProvider) IsConfigured() bool { return f.configured }

func TestImageServiceGeneratesImage(t *testing.T) {
	provider := &fakeImageProvider{configured: true, respond: func(int32) ([]byte, string, error) {
		return []byte{0x89, 0x50, 0x4e, 0x47}, "image/png", nil
	}}
	svc := NewImageService(quickEngine(2), provider, "imagen-3.0-generate-002", nil)

	result, meta, err := svc.GenerateImage(context.Background(), ImageInput{
		CampaignTitle: "Solar Lantern",
		Theme:         "warm light at a campsite after dusk",
		Style:         "photographic",
	})
	require.NoError(t, err)

	assert.Equal(t, "image/png", result.MIMEType)
	assert.NotEmpty(t, result.Data)
	assert.Equal(t, 0, meta.Retries)
	assert.Equal(t, int32(1), provider.calls.Load())
}

func TestImageServiceRejectsUnknownStyle(t *testing.T) {
	provider := &fakeImageProvider{configured: true, respond: func(int32) ([]byte, string, error) {
		t.Error("provider must not be called")
		return nil, "", &aiengine.HTTPError{Status: 500}
	}}
	svc := NewImageService(quickEngine(3), provider, "imagen-3.0-generate-002", nil)

	_, _, err := svc.GenerateImage(context.Background(), ImageInput{
		CampaignTitle: "Solar Lantern",
		Theme:         "warm light at a campsite",
		Style:         "vaporwave",
	})
	require.Error(t, err)

	assert.Equal(t, int32(0), provider.calls.Load())
	assert.Equal(t, aiengine.KindValidation, aiengine.Classify(err).Kind)
}

func TestImageServiceFailsFastWhenUnconfigured(t *testing.T) {
	provider := &fakeImageProvider{configured: false, respond: func(int32) ([]byte, string, error) {
		t.Error("provider must not be called")
		return nil, "", &aiengine.HTTPError{Status: 500}
	}}
	svc := NewImageService(quickEngine(3), provider, "imagen-3.0-generate-002", nil)

	_, _, err := svc.GenerateImage(context.Background(), ImageInput{
		CampaignTitle: "Solar Lantern",
		Theme:         "warm light at a campsite",
	})
	require.Error(t, err)
	assert.Equal(t, int32(0), provider.calls.Load())
	assert.False(t, aiengine.Classify(err).Retryable)
}
