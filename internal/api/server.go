// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api exposes the recording scheduler over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ManuGH/recsched/internal/api/middleware"
	"github.com/ManuGH/recsched/internal/dvr"
	"github.com/ManuGH/recsched/internal/log"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Scheduler is the subset of dvr.Scheduler the API drives.
type Scheduler interface {
	AddRecord(ctx context.Context, channelID string, start time.Time, durationSeconds int64) bool
	AddProgram(ctx context.Context, p dvr.Program) bool
	RemoveRecord(ctx context.Context, channelID string, start time.Time)
	RecordsByDayOffset(offsetDays int) []dvr.Interval
	IsScheduled(channelID string, start time.Time) bool
	Records() []dvr.Interval
}

// Config configures the HTTP surface.
type Config struct {
	ServiceName string // used for tracing; empty disables tracing
	RateLimit   int    // requests per minute per IP, 0 disables
	Version     string
}

// Server serves the recording API.
type Server struct {
	sched   Scheduler
	cfg     Config
	logger  zerolog.Logger
	started time.Time
}

// NewServer creates a Server for sched.
func NewServer(sched Scheduler, cfg Config) *Server {
	return &Server{
		sched:   sched,
		cfg:     cfg,
		logger:  log.WithComponent("api"),
		started: time.Now(),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		TracingService: s.cfg.ServiceName,
		EnableMetrics:  true,
		EnableLogging:  true,
		RateLimit:      s.cfg.RateLimit,
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, "system/not_found", "Not Found", "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusMethodNotAllowed, "system/method_not_allowed", "Method Not Allowed", "METHOD_NOT_ALLOWED", "")
	})

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/recordings", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleAdd)
		r.Post("/programme", s.handleAddProgramme)
		r.Get("/{channelId}/{start}", s.handleIsScheduled)
		r.Delete("/{channelId}/{start}", s.handleRemove)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: s.cfg.Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Records: len(s.sched.Records()),
	})
}

// Run serves Handler on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("API server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	s.logger.Info().Msg("API server stopped")
	return nil
}
