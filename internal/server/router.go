package server

import (
	"net/http"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/api/handlers"
	"github.com/cloo-solutions/dupefinder/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const maxBodyBytes int64 = 1 << 20

type RouterConfig struct {
	Logger             *zap.Logger
	CORSAllowedOrigins []string
	RateLimitPerMin    int

	SearchHandler      *handlers.SearchHandler
	DupesHandler       *handlers.DupesHandler
	CompareHandler     *handlers.CompareHandler
	PricesHandler      *handlers.PricesHandler
	ProductHandler     *handlers.ProductHandler
	DiagnosticsHandler *handlers.DiagnosticsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", cfg.DiagnosticsHandler.Health)
	r.Get("/test", cfg.DiagnosticsHandler.Test)
	r.Get("/test-db", cfg.DiagnosticsHandler.TestDB)
	r.Get("/test-openai", cfg.DiagnosticsHandler.TestOpenAI)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/prices", cfg.PricesHandler.Get)
	r.Route("/products", func(r chi.Router) {
		r.Get("/", cfg.ProductHandler.List)
		r.Get("/{id}", cfg.ProductHandler.Get)
		r.Get("/{id}/dupes", cfg.ProductHandler.Dupes)
	})

	// Every POST route may call the language model or a retailer site
	r.Group(func(r chi.Router) {
		if cfg.RateLimitPerMin > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute))
		}
		r.Post("/search", cfg.SearchHandler.Search)
		r.Post("/dupes", cfg.DupesHandler.Find)
		r.Post("/compare-ingredients", cfg.CompareHandler.Compare)
	})

	return r
}
