// Package app assembles providers, the fallback orchestrator and the collage
// runner from configuration. Both binaries share it.
package app

import (
	"context"
	"errors"
	"fmt"

	"pixshop/internal/collage"
	"pixshop/internal/infra"
	"pixshop/internal/orchestrator"
	"pixshop/internal/providers/fal"
	"pixshop/internal/providers/gemini"
)

// Services is the wired editing pipeline.
type Services struct {
	Orchestrator *orchestrator.Orchestrator
	Collage      *collage.Runner
	Primary      string
	Secondary    string
}

// Build creates the gemini primary and, when FAL_KEY is set, the fal
// secondary. Without a secondary every primary failure is final.
func Build(ctx context.Context, cfg *infra.Config, logger *infra.Logger, recorder orchestrator.Recorder) (*Services, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	if logger == nil {
		logger = infra.NopLogger()
	}

	primary, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:         cfg.GeminiAPIKey,
		BaseURL:        cfg.GeminiBaseURL,
		APIVersion:     cfg.GeminiAPIVersion,
		ImageModel:     cfg.GeminiImageModel,
		ImagenModel:    cfg.ImagenModel,
		Logger:         logger,
		RequestTimeout: cfg.ProviderTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("app: primary provider: %w", err)
	}

	svc := &Services{Primary: primary.Name()}
	var secondary orchestrator.Provider
	if cfg.FalAPIKey != "" {
		client, err := fal.NewClient(fal.Options{
			APIKey:         cfg.FalAPIKey,
			BaseURL:        cfg.FalBaseURL,
			EditApp:        cfg.FalEditApp,
			TextApp:        cfg.FalTextApp,
			Logger:         logger,
			RequestTimeout: cfg.ProviderTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("app: secondary provider: %w", err)
		}
		secondary = client
		svc.Secondary = client.Name()
	} else {
		logger.Warn().Msg("FAL_KEY not set, fallback provider disabled")
	}

	svc.Orchestrator = orchestrator.New(primary, secondary,
		orchestrator.WithLogger(logger),
		orchestrator.WithRecorder(recorder),
	)
	svc.Collage = collage.NewRunner(svc.Orchestrator, logger)
	return svc, nil
}
