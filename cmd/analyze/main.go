package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"bganalyzer/internal/infra"
	"bganalyzer/internal/pipeline"
	"bganalyzer/internal/providers/gemini"
)

// analyze runs the full pipeline against a single local image and prints the
// resulting record as indented JSON. Useful for smoke-testing a key or a
// custom prompt template without standing up the API.
func main() {
	imagePath := flag.String("image", "", "path to the image file (required)")
	templatePath := flag.String("template", "", "optional prompt template file")
	flag.Parse()

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -image <file> [-template <file>]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	data, err := os.ReadFile(*imagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read image")
	}

	var template string
	if *templatePath != "" {
		raw, err := os.ReadFile(*templatePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to read template")
		}
		template = string(raw)
	}

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

	rec, err := pipeline.New(client, logger).Run(context.Background(), data, template)
	if err != nil {
		logger.Fatal().Err(err).Msg("analysis failed")
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to encode record")
	}
	fmt.Println(string(out))
}
