package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/emberfund/ember-api/internal/aiengine"
	"github.com/emberfund/ember-api/internal/api/shared"
	"github.com/emberfund/ember-api/internal/generation"
)

// CampaignGenerator drafts campaign pages.
type CampaignGenerator interface {
	GenerateContent(ctx context.Context, in generation.CampaignInput) (generation.CampaignContent, aiengine.Metadata, error)
}

// ProfileGenerator drafts service-provider profiles, optionally grounded on
// uploaded reference documents.
type ProfileGenerator interface {
	GenerateProfile(ctx context.Context, in generation.ProfileInput) (generation.ProviderProfile, aiengine.Metadata, error)
	GenerateProfileFromDocuments(ctx context.Context, in generation.ProfileInput, docs []aiengine.ContentPart) (generation.ProviderProfile, aiengine.Metadata, error)
}

// ImageGenerator produces campaign hero images.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, in generation.ImageInput) (generation.ImageResult, aiengine.Metadata, error)
}

// GenerateHandler handles the /api/generate endpoints.
type GenerateHandler struct {
	campaigns CampaignGenerator
	profiles  ProfileGenerator
	images    ImageGenerator
	logger    *slog.Logger
}

// NewGenerateHandler creates a GenerateHandler.
func NewGenerateHandler(campaigns CampaignGenerator, profiles ProfileGenerator, images ImageGenerator, logger *slog.Logger) *GenerateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerateHandler{
		campaigns: campaigns,
		profiles:  profiles,
		images:    images,
		logger:    logger,
	}
}

// GenerateCampaign handles POST /api/generate/campaign requests.
func (h *GenerateHandler) GenerateCampaign(w http.ResponseWriter, r *http.Request) {
	var in generation.CampaignInput
	if err := shared.DecodeJSON(r, &in); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	content, meta, err := h.campaigns.GenerateContent(r.Context(), in)
	if err != nil {
		RespondWithOperationError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, GenerateCampaignResponse{
		Campaign: content,
		Metadata: metadataToDTO(meta),
	})
}

// GenerateProfile handles POST /api/generate/profile requests.
func (h *GenerateHandler) GenerateProfile(w http.ResponseWriter, r *http.Request) {
	var req GenerateProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	// The documents wrapper carries its own validate tags; check them here
	// so a bad reference never reaches the provider.
	if err := shared.ValidateRequest(req); err != nil {
		RespondWithOperationError(w, r, aiengine.NewOperationError(
			aiengine.KindValidation, "request payload failed validation", false, err))
		return
	}

	var (
		profile generation.ProviderProfile
		meta    aiengine.Metadata
		err     error
	)
	if len(req.Documents) > 0 {
		docs := make([]aiengine.ContentPart, len(req.Documents))
		for i, d := range req.Documents {
			docs[i] = aiengine.ContentPart{FileURI: d.FileURI, MIMEType: d.MIMEType}
		}
		profile, meta, err = h.profiles.GenerateProfileFromDocuments(r.Context(), req.ProfileInput, docs)
	} else {
		profile, meta, err = h.profiles.GenerateProfile(r.Context(), req.ProfileInput)
	}
	if err != nil {
		RespondWithOperationError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, GenerateProfileResponse{
		Profile:  profile,
		Metadata: metadataToDTO(meta),
	})
}

// GenerateImage handles POST /api/generate/image requests.
func (h *GenerateHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var in generation.ImageInput
	if err := shared.DecodeJSON(r, &in); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	image, meta, err := h.images.GenerateImage(r.Context(), in)
	if err != nil {
		RespondWithOperationError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, GenerateImageResponse{
		Image:    image,
		Metadata: metadataToDTO(meta),
	})
}
