package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/emberfund/ember-api/internal/aiengine"
	"github.com/emberfund/ember-api/internal/config"
	"github.com/emberfund/ember-api/internal/generation"
	"github.com/emberfund/ember-api/internal/platform/genaiclient"
	"github.com/emberfund/ember-api/internal/platform/logger"
)

// application holds the composed dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	campaignService *generation.CampaignService
	profileService  *generation.ProfileService
	imageService    *generation.ImageService
	assetFetcher    *generation.AssetFetcher
}

// initializeApp loads configuration, sets up logging, and wires the
// generation services behind the shared provider client.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"model", cfg.AI.Model,
		"api_key_present", cfg.AI.APIKey != "")

	holder := genaiclient.NewHolder(cfg.AI, appLogger)
	client := genaiclient.NewClient(holder, appLogger)
	caller := genaiclient.NewBreakerCaller(client, "genai", appLogger)

	// One engine per service so retry policies can diverge later; all start
	// from the same configured defaults. The session ID groups this
	// process's calls in the logs.
	sessionID := uuid.NewString()
	newEngine := func(prefix string) *aiengine.Engine {
		return aiengine.NewEngine(aiengine.Config{
			MaxRetries:        cfg.Engine.MaxRetries,
			Timeout:           time.Duration(cfg.Engine.TimeoutMs) * time.Millisecond,
			BackoffMultiplier: cfg.Engine.BackoffMultiplier,
			BackoffJitter:     cfg.Engine.BackoffJitter,
			EnableLogging:     cfg.Engine.EnableLogging,
			LogPrefix:         prefix,
			SessionID:         sessionID,
		}, appLogger)
	}

	return &application{
		config:          cfg,
		logger:          appLogger,
		campaignService: generation.NewCampaignService(newEngine("campaign"), caller, cfg.AI.Model, appLogger),
		profileService:  generation.NewProfileService(newEngine("profile"), caller, cfg.AI.Model, appLogger),
		imageService:    generation.NewImageService(newEngine("image"), caller, cfg.AI.ImageModel, appLogger),
		assetFetcher:    generation.NewAssetFetcher(newEngine("assets"), nil),
	}, nil
}
