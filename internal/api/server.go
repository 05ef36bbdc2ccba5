// Package api serves the screening results and the live run-progress
// feed consumed by the dashboard.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/orchestrator"
	"github.com/wonny/screener/pkg/config"
	"github.com/wonny/screener/pkg/logger"
)

// ResultStore is the read side of the persistence layer
type ResultStore interface {
	LatestRun(ctx context.Context) (*contracts.RunSummary, error)
	Runs(ctx context.Context, limit int) ([]*contracts.RunSummary, error)
	Results(ctx context.Context, runID string) ([]*contracts.CompanyRecord, error)
	Result(ctx context.Context, runID, ticker string) (*contracts.CompanyRecord, error)
}

// Server is the HTTP surface: REST for results, websocket for progress
// ⭐ SSOT: HTTP 라우팅은 여기서만
type Server struct {
	cfg    *config.Config
	router *mux.Router
	store  ResultStore
	runner *orchestrator.Runner
	hub    *Hub
	log    *logger.Logger

	httpServer *http.Server
	running    chan struct{} // guards against concurrent runs
}

// NewServer wires the routes. runner may be nil (read-only deployment).
func NewServer(cfg *config.Config, store ResultStore, runner *orchestrator.Runner, log *logger.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		router:  mux.NewRouter(),
		store:   store,
		runner:  runner,
		hub:     NewHub(log),
		log:     log,
		running: make(chan struct{}, 1),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/runs", s.handleRuns).Methods(http.MethodGet)
	v1.HandleFunc("/runs/latest", s.handleLatestRun).Methods(http.MethodGet)
	v1.HandleFunc("/runs/{runID}/results", s.handleResults).Methods(http.MethodGet)
	v1.HandleFunc("/runs/{runID}/results/{ticker}", s.handleResult).Methods(http.MethodGet)
	v1.HandleFunc("/screen", s.handleTriggerRun).Methods(http.MethodPost)

	s.router.HandleFunc("/ws/progress", s.handleProgressWS)

	s.router.Use(s.loggingMiddleware)
}

// Hub exposes the progress hub so the orchestrator can be wired to it
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start runs the HTTP server until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("port", s.cfg.Port).Info("API server listening")
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(started),
		}).Debug("request handled")
	})
}
