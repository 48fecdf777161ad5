package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/binlayout/internal/logger"
	"github.com/marmos91/binlayout/pkg/api/auth"
	"github.com/marmos91/binlayout/pkg/api/handlers"
	"github.com/marmos91/binlayout/pkg/api/middleware"
	"github.com/marmos91/binlayout/pkg/codec"
	"github.com/marmos91/binlayout/pkg/metrics"
	"github.com/marmos91/binlayout/pkg/registry"
)

// Deps are the collaborators the router serves.
type Deps struct {
	Store registry.Store

	// CodecOptions apply to every codec the API builds.
	CodecOptions []codec.Option

	// Tokens enables bearer authentication when non-nil.
	Tokens *auth.TokenService
}

// NewRouter builds the chi router with middleware and routes.
//
// Routes:
//   - GET /health, GET /health/ready
//   - GET /metrics (when metrics are enabled and cfg.MetricsPath is set)
//   - GET /api/v1/schema
//   - GET /api/v1/layouts, GET|PUT|DELETE /api/v1/layouts/{name}
//   - POST /api/v1/layouts/{name}/decode, POST .../encode, GET|POST .../size
func NewRouter(cfg Config, deps Deps) http.Handler {
	cfg.applyDefaults()

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	health := handlers.NewHealthHandler(deps.Store)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", health.Liveness)
		r.Get("/ready", health.Readiness)
	})

	if cfg.MetricsPath != "" && metrics.IsEnabled() {
		r.Handle(cfg.MetricsPath, promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	}

	layouts := handlers.NewLayoutHandler(deps.Store, cfg.MaxBodySize, deps.CodecOptions...)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.JWTAuth(deps.Tokens))
		r.Get("/schema", layouts.Schema)

		r.Route("/layouts", func(r chi.Router) {
			r.With(middleware.RequireScope(auth.ScopeRead)).Get("/", layouts.List)

			r.Route("/{name}", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireScope(auth.ScopeRead))
					r.Get("/", layouts.Get)
					r.Post("/decode", layouts.Decode)
					r.Post("/encode", layouts.Encode)
					r.Get("/size", layouts.Size)
					r.Post("/size", layouts.Size)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireScope(auth.ScopeWrite))
					r.Put("/", layouts.Put)
					r.Delete("/", layouts.Delete)
				})
			})
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}

// requestLogger logs each request at DEBUG on arrival and INFO on
// completion.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := chimiddleware.GetReqID(r.Context())

		logger.Debug("API request started",
			logger.RequestID(requestID),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.ClientIP(r.RemoteAddr),
		)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info("API request completed",
			logger.RequestID(requestID),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.Status(ww.Status()),
			logger.Bytes(ww.BytesWritten()),
			logger.DurationMs(logger.Duration(start)),
		)
	})
}
