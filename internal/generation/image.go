package generation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emberfund/ember-api/internal/aiengine"
)

// ImageInput describes the hero image to generate for a campaign.
type ImageInput struct {
	CampaignTitle string `json:"campaign_title" validate:"required,min=3,max=140"`
	Theme         string `json:"theme"          validate:"required,min=3,max=300"`
	Style         string `json:"style"          validate:"omitempty,oneof=photographic illustration watercolor minimal poster"`
}

// ImageResult carries the generated image bytes.
type ImageResult struct {
	Data     []byte `json:"data"`
	MIMEType string `json:"mime_type"`
}

// ImageService generates campaign imagery. Image calls have no output
// schema to enforce, so the service uses the retry orchestrator directly
// rather than the structured-call wrapper.
type ImageService struct {
	engine   *aiengine.Engine
	provider ImageProvider
	model    string
	logger   *slog.Logger
}

func NewImageService(engine *aiengine.Engine, provider ImageProvider, model string, logger *slog.Logger) *ImageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageService{engine: engine, provider: provider, model: model, logger: logger}
}

// GenerateImage produces one hero image or a classified error.
func (s *ImageService) GenerateImage(ctx context.Context, in ImageInput) (ImageResult, aiengine.Metadata, error) {
	if !s.provider.IsConfigured() {
		return ImageResult{}, aiengine.Metadata{}, errNotConfigured()
	}
	if err := s.engine.ValidateInput(in); err != nil {
		return ImageResult{}, aiengine.Metadata{}, err
	}

	prompt := imagePrompt(in)
	return aiengine.ExecuteWithRetry(ctx, s.engine, "image.generate", true, func(ctx context.Context) (ImageResult, error) {
		data, mimeType, err := s.provider.GenerateImage(ctx, s.model, prompt)
		if err != nil {
			return ImageResult{}, err
		}
		return ImageResult{Data: data, MIMEType: mimeType}, nil
	})
}

func imagePrompt(in ImageInput) string {
	style := in.Style
	if style == "" {
		style = "photographic"
	}
	return fmt.Sprintf("A %s hero image for a crowdfunding campaign titled %q. Theme: %s. No text overlay.",
		style, in.CampaignTitle, in.Theme)
}
