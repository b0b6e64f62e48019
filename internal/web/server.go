// Package web serves stored experiments and their reports as JSON.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emiliopalmerini/abtest/internal/domain"
	"github.com/emiliopalmerini/abtest/internal/stats"
)

// Experiments is the part of the experiment service the server reads from.
type Experiments interface {
	List(ctx context.Context) ([]*domain.Experiment, error)
	Get(ctx context.Context, name string) (*domain.Experiment, error)
	Report(ctx context.Context, name string, alpha float64, save bool) (*domain.ReportRun, error)
	History(ctx context.Context, name string, limit int) ([]*domain.ReportRun, error)
	Latest(ctx context.Context, name string) (*domain.ReportRun, error)
}

type Options struct {
	Addr            string
	Alpha           float64
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

type Server struct {
	router      *http.ServeMux
	experiments Experiments
	metrics     *Metrics
	opts        Options
	logger      *slog.Logger
}

func NewServer(experiments Experiments, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.Alpha == 0 {
		opts.Alpha = stats.DefaultAlpha
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:      http.NewServeMux(),
		experiments: experiments,
		metrics:     NewMetrics(),
		opts:        opts,
		logger:      logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	s.router.HandleFunc("GET /api/experiments", s.metrics.instrument("experiments", s.handleListExperiments))
	s.router.HandleFunc("GET /api/experiments/{name}", s.metrics.instrument("experiment", s.handleGetExperiment))
	s.router.HandleFunc("GET /api/experiments/{name}/report", s.metrics.instrument("report", s.handleReport))
	s.router.HandleFunc("POST /api/experiments/{name}/report", s.metrics.instrument("save_report", s.handleSaveReport))
	s.router.HandleFunc("GET /api/experiments/{name}/history", s.metrics.instrument("history", s.handleHistory))
	s.router.HandleFunc("GET /api/experiments/{name}/latest", s.metrics.instrument("latest", s.handleLatest))
}

// ServeHTTP makes the server usable as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting server", "addr", s.opts.Addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		s.logger.Info("server stopped")
		return nil
	}
	return err
}
