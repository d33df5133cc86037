package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"bganalyzer/internal/analysis"
	"bganalyzer/internal/imagemeta"
	"bganalyzer/internal/parse"
	"bganalyzer/internal/pipeline"
	"bganalyzer/internal/prompt"
	"bganalyzer/internal/providers/gemini"

	"github.com/rs/zerolog"
)

// Archive persists finished records keyed by file hash. Nil Archive means
// persistence is disabled and records are only returned to the caller.
// Duplicate detection rides on Save reporting repo.ErrDuplicate; a separate
// existence pre-check would only race with concurrent uploads.
type Archive interface {
	Save(ctx context.Context, fileHash string, rec *analysis.Record) (string, error)
}

type App struct {
	Pipeline       *pipeline.Pipeline
	Archive        Archive
	MaxUploadBytes int64
	Logger         zerolog.Logger
}

func NewApp(p *pipeline.Pipeline, archive Archive, maxUploadBytes int64, logger zerolog.Logger) *App {
	return &App{Pipeline: p, Archive: archive, MaxUploadBytes: maxUploadBytes, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}

// analysisError maps pipeline failures onto HTTP status codes. Client-side
// faults (bad uploads, broken templates) keep 4xx; model-side faults map to
// 5xx because the caller's request was well formed.
func (a *App) analysisError(w http.ResponseWriter, err error) {
	var unsupported *imagemeta.UnsupportedFormatError
	if errors.As(err, &unsupported) {
		a.error(w, http.StatusUnsupportedMediaType, "unsupported_format", unsupported.Error())
		return
	}
	var tmpl *prompt.TemplateError
	if errors.As(err, &tmpl) {
		a.error(w, http.StatusUnprocessableEntity, "template_error", tmpl.Error())
		return
	}
	var infer *gemini.InferenceError
	if errors.As(err, &infer) {
		switch infer.Kind {
		case gemini.KindTimeout:
			a.error(w, http.StatusGatewayTimeout, "inference_timeout", infer.Error())
		case gemini.KindRateLimited:
			a.error(w, http.StatusServiceUnavailable, "inference_rate_limited", infer.Error())
		default:
			a.error(w, http.StatusBadGateway, "inference_failed", infer.Error())
		}
		return
	}
	var parseErr *parse.ParseError
	if errors.As(err, &parseErr) {
		a.error(w, http.StatusBadGateway, "parse_error", parseErr.Error())
		return
	}
	var valErr *parse.ValidationError
	if errors.As(err, &valErr) {
		a.error(w, http.StatusBadGateway, "validation_error", valErr.Error())
		return
	}
	a.error(w, http.StatusInternalServerError, "internal", "analysis failed")
}
