package api

import (
	"github.com/emberfund/ember-api/internal/aiengine"
	"github.com/emberfund/ember-api/internal/generation"
)

// MetadataResponse surfaces per-call execution details to the client.
type MetadataResponse struct {
	Model           string `json:"model,omitempty"`
	TokensUsed      int32  `json:"tokens_used,omitempty"`
	Retries         int    `json:"retries"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	Cached          bool   `json:"cached"`
}

// DocumentRef points at an uploaded reference document to attach to a
// profile generation call.
type DocumentRef struct {
	FileURI  string `json:"file_uri" validate:"required,uri"`
	MIMEType string `json:"mime_type" validate:"required"`
}

// GenerateProfileRequest wraps the profile input with optional reference
// documents.
type GenerateProfileRequest struct {
	generation.ProfileInput
	Documents []DocumentRef `json:"documents,omitempty" validate:"omitempty,max=5,dive"`
}

// GenerateCampaignResponse is the response body for campaign generation.
type GenerateCampaignResponse struct {
	Campaign generation.CampaignContent `json:"campaign"`
	Metadata MetadataResponse           `json:"metadata"`
}

// GenerateProfileResponse is the response body for profile generation.
type GenerateProfileResponse struct {
	Profile  generation.ProviderProfile `json:"profile"`
	Metadata MetadataResponse           `json:"metadata"`
}

// GenerateImageResponse is the response body for image generation. Data is
// base64-encoded by the JSON encoder.
type GenerateImageResponse struct {
	Image    generation.ImageResult `json:"image"`
	Metadata MetadataResponse       `json:"metadata"`
}

func metadataToDTO(meta aiengine.Metadata) MetadataResponse {
	return MetadataResponse{
		Model:           meta.Model,
		TokensUsed:      meta.TokensUsed,
		Retries:         meta.Retries,
		ExecutionTimeMs: meta.ExecutionTime.Milliseconds(),
		Cached:          meta.Cached,
	}
}
