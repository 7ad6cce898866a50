package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/emberfund/ember-api/internal/aiengine"
	"github.com/emberfund/ember-api/internal/api/shared"
)

// AssetDownloader fetches remote reference material (uploaded documents,
// reference images) through the same retry policy as the generation calls.
type AssetDownloader interface {
	Download(ctx context.Context, url string) ([]byte, aiengine.Metadata, error)
}

// DownloadAssetRequest names the remote asset to fetch.
type DownloadAssetRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// DownloadAssetResponse carries the fetched bytes, base64-encoded by the
// JSON encoder.
type DownloadAssetResponse struct {
	Data     []byte           `json:"data"`
	Metadata MetadataResponse `json:"metadata"`
}

// AssetHandler handles the /api/assets endpoints.
type AssetHandler struct {
	assets AssetDownloader
	logger *slog.Logger
}

// NewAssetHandler creates an AssetHandler.
func NewAssetHandler(assets AssetDownloader, logger *slog.Logger) *AssetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetHandler{assets: assets, logger: logger}
}

// DownloadAsset handles POST /api/assets/download requests.
func (h *AssetHandler) DownloadAsset(w http.ResponseWriter, r *http.Request) {
	var req DownloadAssetRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		RespondWithOperationError(w, r, aiengine.NewOperationError(
			aiengine.KindValidation, "url must be a valid http(s) URL", false, err))
		return
	}

	data, meta, err := h.assets.Download(r.Context(), req.URL)
	if err != nil {
		RespondWithOperationError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DownloadAssetResponse{
		Data:     data,
		Metadata: metadataToDTO(meta),
	})
}
