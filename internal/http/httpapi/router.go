package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pixshop/internal/http/handlers"
	"pixshop/internal/infra"
	"pixshop/internal/metrics"
	"pixshop/internal/middleware"
)

// Options carries the HTTP surface settings taken from config.
type Options struct {
	Logger          *infra.Logger
	Metrics         *metrics.Collector
	AllowedOrigins  []string
	RateLimitPerMin int
	MaxRequestBytes int64
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}

	r := chi.NewRouter()

	// Middlewares dasar
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(*logger),
		middleware.CORS(opts.AllowedOrigins),
	)
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/presets", app.ListPresets)

	r.Route("/v1/images", func(r chi.Router) {
		if opts.RateLimitPerMin > 0 {
			r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		}
		r.Use(middleware.MaxBytes(opts.MaxRequestBytes))
		r.Post("/collage", app.Collage)
		r.Post("/{operation}", app.RunOperation)
	})

	return r
}
