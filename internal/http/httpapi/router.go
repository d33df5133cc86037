package httpapi

import (
	"net/http"
	"time"

	"bganalyzer/internal/http/handlers"
	appmw "bganalyzer/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Options struct {
	AllowedOrigins  []string
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, logger zerolog.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		appmw.RequestID,
		appmw.Logger(logger),
	)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(appmw.CORS(opts.AllowedOrigins))
	}
	if opts.RateLimitPerMin > 0 {
		r.Use(appmw.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/taxonomy", app.Taxonomy)
	r.Post("/v1/analyses", app.Analyze)

	return r
}
