package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouteRegistrar interface {
	RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler)
}

type Options struct {
	AuthMiddleware func(http.Handler) http.Handler
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
	// RequestTimeout bounds the request/response routes only.
	RequestTimeout time.Duration
	// Streams are long-lived routes mounted outside RequestTimeout.
	Streams []RouteRegistrar
}

func New(opts Options, registrars ...RouteRegistrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}
	registerSwaggerRoutes(r)

	r.Group(func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(middleware.Timeout(opts.RequestTimeout))
		}
		for _, registrar := range registrars {
			if registrar != nil {
				registrar.RegisterRoutes(r, opts.AuthMiddleware)
			}
		}
	})
	for _, registrar := range opts.Streams {
		if registrar != nil {
			registrar.RegisterRoutes(r, opts.AuthMiddleware)
		}
	}

	return r
}
