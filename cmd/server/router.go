package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/emberfund/ember-api/internal/api"
	apiMiddleware "github.com/emberfund/ember-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	generateHandler := api.NewGenerateHandler(
		app.campaignService,
		app.profileService,
		app.imageService,
		app.logger,
	)
	assetHandler := api.NewAssetHandler(app.assetFetcher, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate/campaign", generateHandler.GenerateCampaign)
		r.Post("/generate/profile", generateHandler.GenerateProfile)
		r.Post("/generate/image", generateHandler.GenerateImage)
		r.Post("/assets/download", assetHandler.DownloadAsset)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
