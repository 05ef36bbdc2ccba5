package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/config"
	"github.com/wonny/screener/pkg/logger"
)

type stubStore struct {
	summary *contracts.RunSummary
	results []*contracts.CompanyRecord
}

func (s stubStore) LatestRun(ctx context.Context) (*contracts.RunSummary, error) {
	if s.summary == nil {
		return nil, errors.New("no rows")
	}
	return s.summary, nil
}

func (s stubStore) Runs(ctx context.Context, limit int) ([]*contracts.RunSummary, error) {
	if s.summary == nil {
		return nil, nil
	}
	return []*contracts.RunSummary{s.summary}, nil
}

func (s stubStore) Results(ctx context.Context, runID string) ([]*contracts.CompanyRecord, error) {
	return s.results, nil
}

func (s stubStore) Result(ctx context.Context, runID, ticker string) (*contracts.CompanyRecord, error) {
	for _, c := range s.results {
		if c.Ticker == ticker {
			return c, nil
		}
	}
	return nil, errors.New("no rows")
}

func testServer(store ResultStore) *Server {
	cfg := &config.Config{Port: "0", Env: "test"}
	return NewServer(cfg, store, nil, logger.NewNop())
}

func TestHandleHealth(t *testing.T) {
	s := testServer(stubStore{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestHandleLatestRun(t *testing.T) {
	summary := &contracts.RunSummary{RunID: "run-1", StrategyID: "us_screener_v1", Buys: 12}
	s := testServer(stubStore{summary: summary})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got contracts.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 12, got.Buys)
}

func TestHandleLatestRun_NoRuns(t *testing.T) {
	s := testServer(stubStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRuns(t *testing.T) {
	summary := &contracts.RunSummary{RunID: "run-1", StrategyID: "us_screener_v1"}
	s := testServer(stubStore{summary: summary})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []*contracts.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "run-1", got[0].RunID)
}

func TestHandleRuns_EmptyIsAnArray(t *testing.T) {
	s := testServer(stubStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestHandleRuns_BadLimit(t *testing.T) {
	s := testServer(stubStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=zero", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleResults(t *testing.T) {
	s := testServer(stubStore{results: []*contracts.CompanyRecord{
		{Ticker: "AAPL", CompositeScore: 88, Decision: contracts.DecisionBuy},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-1/results", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []*contracts.CompanyRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "AAPL", got[0].Ticker)
}

func TestHandleResults_Empty(t *testing.T) {
	s := testServer(stubStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/unknown/results", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleResultByTicker(t *testing.T) {
	s := testServer(stubStore{results: []*contracts.CompanyRecord{
		{Ticker: "AAPL", CompositeScore: 88, Decision: contracts.DecisionBuy},
		{Ticker: "MSFT", CompositeScore: 81, Decision: contracts.DecisionBuy},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-1/results/MSFT", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got contracts.CompanyRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "MSFT", got.Ticker)
	assert.Equal(t, 81.0, got.CompositeScore)
}

func TestHandleResultByTicker_NotFound(t *testing.T) {
	s := testServer(stubStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-1/results/NOPE", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleTriggerRun_NoRunner(t *testing.T) {
	s := testServer(stubStore{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/screen", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestProgressWebsocket(t *testing.T) {
	s := testServer(stubStore{})
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/progress"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// give Add's goroutine a beat to register
	require.Eventually(t, func() bool { return s.hub.Count() == 1 },
		time.Second, 10*time.Millisecond)

	event := contracts.ProgressEvent{
		RunID: "run-1", Stage: contracts.StageScoring, Message: "stage started",
	}
	s.hub.Broadcast(event)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got contracts.ProgressEvent
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, contracts.StageScoring, got.Stage)
}
