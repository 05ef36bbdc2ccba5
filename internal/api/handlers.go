package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/wonny/screener/internal/contracts"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the dashboard is served from a different origin in development
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.LatestRun(r.Context())
	if err != nil {
		writeError(w, http.StatusNotFound, "no runs found")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

const defaultRunsLimit = 20

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.store.Runs(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []*contracts.RunSummary{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["runID"]
	results, err := s.store.Results(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load results")
		return
	}
	if len(results) == 0 {
		writeError(w, http.StatusNotFound, "run not found or empty")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	result, err := s.store.Result(r.Context(), vars["runID"], vars["ticker"])
	if err != nil {
		writeError(w, http.StatusNotFound, "result not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleTriggerRun kicks off a screening run in the background.
// 409 when a run is already in flight.
func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusNotImplemented, "runner not configured")
		return
	}

	select {
	case s.running <- struct{}{}:
	default:
		writeError(w, http.StatusConflict, "a screening run is already in progress")
		return
	}

	go func() {
		defer func() { <-s.running }()
		// detached from the request: the run outlives the HTTP call
		summary, _, err := s.runner.Run(context.Background())
		if err != nil {
			s.log.WithError(err).Error("triggered run failed")
			return
		}
		s.log.WithField("run_id", summary.RunID).Info("triggered run finished")
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *Server) handleProgressWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	s.hub.Add(conn)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
