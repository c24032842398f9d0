package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/dmngrid/internal/ctxlog"
	"github.com/specialistvlad/dmngrid/internal/engine"
	"github.com/specialistvlad/dmngrid/internal/engine/local"
	"github.com/specialistvlad/dmngrid/internal/engine/remote"
)

// maxBodyBytes caps the size of a protocol request.
const maxBodyBytes = 10 << 20

// shutdownTimeout bounds how long Run waits for in-flight requests.
const shutdownTimeout = 5 * time.Second

// Server answers the remote evaluation protocol with a local engine.
type Server struct {
	engine  engine.Engine
	logger  *slog.Logger
	metrics *metrics
}

// Option configures a Server.
type Option func(*Server)

// WithEngine evaluates requests with e instead of the local interpreter.
func WithEngine(e engine.Engine) Option {
	return func(s *Server) { s.engine = e }
}

// WithLogger sets the logger handed to every request.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRegistry registers the metrics in reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.metrics = newMetrics(reg) }
}

// New creates a Server.
func New(opts ...Option) *Server {
	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = local.New()
	}
	if s.logger == nil {
		s.logger = ctxlog.FromContext(context.Background())
	}
	if s.metrics == nil {
		s.metrics = newMetrics(prometheus.NewRegistry())
	}
	return s
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.withLogger)

	r.Post(remote.PathEvaluate, s.timed("evaluate", s.handleEvaluate))
	r.Post(remote.PathValidate, s.timed("validate", s.handleValidate))
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("🩺 Evaluation service starting", "address", fmt.Sprintf("http://%s", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("evaluation service failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("🩺 Shutting down evaluation service...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("evaluation service shutdown failed: %w", err)
	}
	s.logger.Debug("Evaluation service shut down gracefully.")
	return nil
}

func (s *Server) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctxlog.WithLogger(r.Context(), logger)))
	})
}

func (s *Server) timed(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timer := prometheus.NewTimer(s.metrics.duration.WithLabelValues(endpoint))
		defer timer.ObserveDuration()
		h(w, r)
	}
}
