package main

import (
	"context"
	"fmt"
	"os"

	"github.com/wonny/screener/internal/export"
	"github.com/wonny/screener/internal/guardrails"
	"github.com/wonny/screener/internal/ingest"
	"github.com/wonny/screener/internal/orchestrator"
	"github.com/wonny/screener/internal/scoring"
	"github.com/wonny/screener/internal/storage"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/internal/technical"
	"github.com/wonny/screener/pkg/config"
	"github.com/wonny/screener/pkg/database"
	"github.com/wonny/screener/pkg/httputil"
	"github.com/wonny/screener/pkg/logger"
	"github.com/wonny/screener/pkg/redis"
)

// app holds the wired application components
type app struct {
	cfg      *config.Config
	strategy *strategyconfig.Config
	log      *logger.Logger
	db       *database.DB // nil when --no-db
	repo     *storage.Repository
	universe orchestrator.UniverseSource
	provider *ingest.Provider
	runner   *orchestrator.Runner
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

// staticUniverse serves --tickers instead of scraping the index page
type staticUniverse struct {
	symbols []string
}

func (s staticUniverse) Symbols(ctx context.Context) ([]string, error) {
	return s.symbols, nil
}

// buildApp wires the full pipeline from environment + flags
func buildApp(withDB bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg)

	strategy, err := loadStrategy(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, strategy: strategy, log: log}

	if withDB && !flagNoDB {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		a.db = db
		a.repo = storage.NewRepository(db.Pool, log)
	}

	rc, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, continuing without cache")
		rc = redis.NewDisabled()
	}

	fmp := ingest.NewFMPClient(cfg, rc, log)

	var universe orchestrator.UniverseSource
	if len(flagTickers) > 0 {
		universe = staticUniverse{symbols: flagTickers}
	} else {
		universe = ingest.NewUniverseScraper(httputil.New(log), cfg.FMP.UniverseURL, log)
	}
	a.universe = universe
	a.provider = ingest.NewProvider(fmp, cfg, strategy, log)

	engine, err := scoring.NewEngine(strategy, log)
	if err != nil {
		return nil, err
	}

	outDir := flagOutDir
	if outDir == "" {
		outDir = "out"
	}

	var store orchestrator.Store
	if a.repo != nil {
		store = a.repo
	}

	runner, err := orchestrator.NewRunner(
		strategy,
		universe,
		a.provider,
		guardrails.NewEvaluator(strategy.Guardrails, log),
		engine,
		technical.NewOverlay(fmp, strategy.Overlay, log),
		export.NewWriter(outDir, log),
		store,
		log,
	)
	if err != nil {
		return nil, err
	}
	a.runner = runner
	return a, nil
}

// loadStrategy reads the strategy YAML, falling back to the built-in
// defaults when no file is present.
func loadStrategy(cfg *config.Config) (*strategyconfig.Config, error) {
	path := flagStrategy
	if path == "" {
		path = cfg.StrategyConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return strategyconfig.Default(), nil
	}

	strategy, _, err := strategyconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("strategy config %s: %w", path, err)
	}
	return strategy, nil
}
