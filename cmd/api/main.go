package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pixshop/internal/app"
	"pixshop/internal/http/handlers"
	httpapi "pixshop/internal/http/httpapi"
	"pixshop/internal/infra"
	"pixshop/internal/metrics"
	"pixshop/internal/presets"
)

func main() {
	// Muat .env (opsional)
	_ = godotenv.Load()

	// Konfigurasi & logger
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	collector := metrics.NewCollector("pixshop")

	ctx := context.Background()
	svc, err := app.Build(ctx, cfg, &logger, collector)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build providers")
	}

	handlerApp := handlers.NewApp(svc.Orchestrator, svc.Collage, presets.Default(), &logger)
	router := httpapi.NewRouter(handlerApp, httpapi.Options{
		Logger:          &logger,
		Metrics:         collector,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		MaxRequestBytes: cfg.MaxRequestBytes,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("primary", svc.Primary).
			Str("secondary", svc.Secondary).
			Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPWriteTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
