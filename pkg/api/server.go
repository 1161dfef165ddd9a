// Package api serves Paradox tables over a read-only REST API.
//
// Routes under /api/v1 require the X-API-Key header when a key is
// configured. /metrics is left open for scraping.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

// Router builds the HTTP handler. gatherer serves /metrics.
func (s *Server) Router(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.metrics.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))

		r.Get("/health", s.metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		r.Get("/tables", s.metrics.InstrumentHandler("GET", "/api/v1/tables", s.handleListTables))
		r.Get("/tables/{name}", s.metrics.InstrumentHandler("GET", "/api/v1/tables/{name}", s.handleGetTable))
		r.Get("/tables/{name}/records", s.metrics.InstrumentHandler("GET", "/api/v1/tables/{name}/records", s.handleRecords))

		if s.mirror != nil {
			r.Get("/mirror", s.metrics.InstrumentHandler("GET", "/api/v1/mirror", s.handleMirrorTables))
			r.Post("/mirror/{name}/sync", s.metrics.InstrumentHandler("POST", "/api/v1/mirror/{name}/sync", s.handleMirrorSync))
			r.Get("/mirror/{name}/rows", s.metrics.InstrumentHandler("GET", "/api/v1/mirror/{name}/rows", s.handleMirrorRows))
		}
	})

	return r
}

// StartServer serves the API until ctx is done, then shuts down gracefully.
func StartServer(ctx context.Context, config ServerConfig, mirror Mirror, log zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	server := NewServer(config, mirror, NewMetrics(reg), log)
	srv := &http.Server{
		Addr:              config.Addr,
		Handler:           server.Router(reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", config.Addr).Str("tables", config.TablesDir).Bool("mirror", mirror != nil).Msg("starting pxdb REST API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
