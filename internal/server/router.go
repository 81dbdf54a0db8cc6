package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"rpn-calculator/internal/calculator"
	"rpn-calculator/internal/handlers"
	"rpn-calculator/internal/observability"
)

// Options configures the router.
type Options struct {
	MaxBatchLines int
}

func NewRouter(opts Options) http.Handler {

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	calculator.RegisterRoutes(r, calculator.NewHandler(opts.MaxBatchLines))

	return r
}
