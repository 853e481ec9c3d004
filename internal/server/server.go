package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/hupe1980/dinecluster"
	"github.com/hupe1980/dinecluster/codec"
	"github.com/hupe1980/dinecluster/internal/config"
	"github.com/hupe1980/dinecluster/internal/logging"
	"github.com/hupe1980/dinecluster/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server serves one Recommender.
type Server struct {
	rec      *dinecluster.Recommender
	codec    codec.Codec
	server   config.ServerConfig
	query    config.QueryConfig
	metrics  *metrics.Collector
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
	validate *validator.Validate
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithServerConfig sets timeouts, rate limits and CORS origins.
func WithServerConfig(c config.ServerConfig) Option {
	return func(s *Server) { s.server = c }
}

// WithQueryConfig sets query defaults and bounds.
func WithQueryConfig(c config.QueryConfig) Option {
	return func(s *Server) { s.query = c }
}

// WithMetrics instruments requests with c and serves g at /metrics.
func WithMetrics(c *metrics.Collector, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = c
		s.gatherer = g
	}
}

// WithCodec sets the response codec.
func WithCodec(c codec.Codec) Option {
	return func(s *Server) { s.codec = c }
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New builds the router for rec.
func New(rec *dinecluster.Recommender, opts ...Option) *Server {
	defaults := config.Default()
	s := &Server{
		rec:      rec,
		codec:    codec.Default,
		server:   defaults.Server,
		query:    defaults.Query,
		logger:   zerolog.Nop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer returns an http.Server for the configured address and timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.server.Addr,
		Handler:           s.router,
		ReadTimeout:       s.server.ReadTimeout,
		ReadHeaderTimeout: s.server.ReadTimeout,
		WriteTimeout:      s.server.WriteTimeout,
		IdleTimeout:       2 * s.server.WriteTimeout,
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		if s.server.RateLimit > 0 {
			r.Use(httprate.Limit(
				s.server.RateLimit,
				s.server.RateWindow,
				httprate.WithKeyFuncs(httprate.KeyByRealIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					s.fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
				}),
			))
		}

		r.Get("/cities", s.handleCities)
		r.Get("/cuisines", s.handleCuisines)
		r.Get("/top", s.handleTop)
		r.Get("/filter", s.handleFilter)
		r.Get("/clusters", s.handleClusters)
		r.Get("/clusters/points", s.handlePoints)
		r.Get("/restaurants", s.handleRestaurants)
		r.Post("/predict", s.handlePredict)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.fail(w, http.StatusNotFound, "not_found", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		s.fail(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := logging.ContextWithLogger(r.Context(), s.logger)
		ctx = logging.ContextWithRequestID(ctx, middleware.GetReqID(r.Context()))
		r = r.WithContext(ctx)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logging.Ctx(ctx).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
