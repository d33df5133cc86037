package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bganalyzer/internal/adapter/repo"
	"bganalyzer/internal/http/handlers"
	httpapi "bganalyzer/internal/http/httpapi"
	"bganalyzer/internal/infra"
	"bganalyzer/internal/pipeline"
	"bganalyzer/internal/providers/gemini"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	client, err := gemini.NewClient(gemini.Options{
		APIKey:         cfg.GeminiAPIKey,
		Model:          cfg.GeminiModel,
		BaseURL:        cfg.GeminiBaseURL,
		AttemptTimeout: cfg.InferenceTimeout,
		MaxRetries:     cfg.InferenceMaxRetries,
		RetryBackoff:   cfg.InferenceBackoff,
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build inference client")
	}

	// The archive is optional: without DATABASE_URL records are only
	// returned to callers, never persisted.
	ctx := context.Background()
	var archive handlers.Archive
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()

		archiveRepo := repo.NewArchiveRepository(dbpool)
		if err := archiveRepo.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to ensure archive schema")
		}
		archive = archiveRepo
	}

	app := handlers.NewApp(pipeline.New(client, logger), archive, cfg.MaxUploadBytes, logger)
	router := httpapi.NewRouter(app, logger, httpapi.Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
