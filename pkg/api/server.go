// Package api serves a case file read-only over HTTP
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ssargent/gridstore/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

// Routes builds the router with every viewer route configured
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  logger.WithPrefix("http").StandardLog(),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", s.metrics.Handler())

	m := s.metrics
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(s.config.APIKey))

		r.Get("/health", m.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		// Zones
		r.Get("/zones", m.InstrumentHandler("GET", "/api/v1/zones", s.handleListZones))
		r.Get("/zones/{id}", m.InstrumentHandler("GET", "/api/v1/zones/{id}", s.handleGetZone))
		r.Get("/zones/{id}/summary", m.InstrumentHandler("GET", "/api/v1/zones/{id}/summary", s.handleZoneSummary))
		r.Get("/zones/{id}/coordinates/{axis}",
			m.InstrumentHandler("GET", "/api/v1/zones/{id}/coordinates/{axis}", s.handleCoordinates))
		r.Get("/zones/{id}/attributes/{domain}",
			m.InstrumentHandler("GET", "/api/v1/zones/{id}/attributes/{domain}", s.handleAttributeNames))
		r.Get("/zones/{id}/attributes/{domain}/{name}",
			m.InstrumentHandler("GET", "/api/v1/zones/{id}/attributes/{domain}/{name}", s.handleAttribute))

		// Solutions
		r.Get("/solutions", m.InstrumentHandler("GET", "/api/v1/solutions", s.handleSolutions))
		r.Get("/zones/{id}/solutions/{step}/particles",
			m.InstrumentHandler("GET", "/api/v1/zones/{id}/solutions/{step}/particles", s.handleParticleGroups))
		r.Get("/zones/{id}/solutions/{step}/particles/{group}",
			m.InstrumentHandler("GET", "/api/v1/zones/{id}/solutions/{step}/particles/{group}", s.handleParticleGroup))
	})

	return r
}

// Addr is the listen address of the configured bind and port
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// StartServer serves until ctx is cancelled, then shuts down gracefully
func (s *Server) StartServer(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting viewer", "addr", srv.Addr)
		logger.Info("metrics available", "url", fmt.Sprintf("http://%s/metrics", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down viewer")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
