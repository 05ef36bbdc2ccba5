// Package orchestrator drives one screening run through the pipeline
// stages: ingest → guardrails → scoring → overlay → export.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/export"
	"github.com/wonny/screener/internal/guardrails"
	"github.com/wonny/screener/internal/scoring"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/internal/technical"
	"github.com/wonny/screener/pkg/logger"
)

// UniverseSource yields the tickers to screen
type UniverseSource interface {
	Symbols(ctx context.Context) ([]string, error)
}

// Fetcher assembles CompanyRecords for a universe
type Fetcher interface {
	Fetch(ctx context.Context, symbols []string) ([]*contracts.CompanyRecord, error)
}

// Store persists run output. Nil-able: CLI one-shot runs can skip the DB.
type Store interface {
	SaveRun(ctx context.Context, summary contracts.RunSummary) error
	SaveResults(ctx context.Context, runID string, companies []*contracts.CompanyRecord) error
}

// ProgressFunc receives stage progress while a run executes
type ProgressFunc func(contracts.ProgressEvent)

// Runner executes the full pipeline
// ⭐ SSOT: 파이프라인 실행 순서는 여기서만
type Runner struct {
	strategy   *strategyconfig.Config
	configHash string
	universe   UniverseSource
	fetcher    Fetcher
	evaluator  *guardrails.Evaluator
	engine     *scoring.Engine
	overlay    *technical.Overlay
	writer     *export.Writer
	store      Store
	progress   ProgressFunc
	log        *logger.Logger
}

// NewRunner wires a Runner. store may be nil; progress may be nil.
func NewRunner(
	strategy *strategyconfig.Config,
	universe UniverseSource,
	fetcher Fetcher,
	evaluator *guardrails.Evaluator,
	engine *scoring.Engine,
	overlay *technical.Overlay,
	writer *export.Writer,
	store Store,
	log *logger.Logger,
) (*Runner, error) {
	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("config hash: %w", err)
	}
	return &Runner{
		strategy:   strategy,
		configHash: hash,
		universe:   universe,
		fetcher:    fetcher,
		evaluator:  evaluator,
		engine:     engine,
		overlay:    overlay,
		writer:     writer,
		store:      store,
		log:        log,
	}, nil
}

// WithProgress sets the progress hook
func (r *Runner) WithProgress(fn ProgressFunc) *Runner {
	r.progress = fn
	return r
}

// Run executes one complete screening run. Stage failures before
// scoring abort the run; persistence/export failures after scoring are
// reported but do not discard the scored batch.
func (r *Runner) Run(ctx context.Context) (*contracts.RunSummary, []*contracts.CompanyRecord, error) {
	started := time.Now()
	summary := r.newSummary(started)
	log := r.log.WithField("run_id", summary.RunID)
	log.Info("screening run started")

	// === S0: ingest ===
	var companies []*contracts.CompanyRecord
	err := r.stage(summary, contracts.StageIngest, func() (int, int, error) {
		symbols, err := r.universe.Symbols(ctx)
		if err != nil {
			return 0, 0, err
		}
		r.emit(summary.RunID, contracts.StageIngest, "universe resolved", 0, len(symbols))

		companies, err = r.fetcher.Fetch(ctx, symbols)
		if err != nil {
			return len(symbols), 0, err
		}
		return len(symbols), len(companies), nil
	})
	if err != nil {
		return summary, nil, fmt.Errorf("ingest: %w", err)
	}

	return r.score(ctx, started, summary, companies)
}

// RunBatch scores a pre-assembled batch, skipping ingest. Serves the
// offline path where records (including precomputed guardrail inputs
// and trend signals) come from a batch file instead of the live fetch.
func (r *Runner) RunBatch(ctx context.Context, companies []*contracts.CompanyRecord) (*contracts.RunSummary, []*contracts.CompanyRecord, error) {
	started := time.Now()
	summary := r.newSummary(started)
	r.log.WithFields(map[string]interface{}{
		"run_id":    summary.RunID,
		"companies": len(companies),
	}).Info("batch run started")

	return r.score(ctx, started, summary, companies)
}

func (r *Runner) newSummary(started time.Time) *contracts.RunSummary {
	return &contracts.RunSummary{
		RunID:      fmt.Sprintf("run-%s", started.UTC().Format("20060102-150405")),
		Date:       started.UTC().Truncate(24 * time.Hour),
		ConfigHash: r.configHash,
		StrategyID: r.strategy.Meta.StrategyID,
	}
}

// score drives the post-ingest stages (S1 guardrails → S4 export)
func (r *Runner) score(ctx context.Context, started time.Time, summary *contracts.RunSummary, companies []*contracts.CompanyRecord) (*contracts.RunSummary, []*contracts.CompanyRecord, error) {
	log := r.log.WithField("run_id", summary.RunID)

	// === S1: guardrails ===
	err := r.stage(summary, contracts.StageGuardrails, func() (int, int, error) {
		counts := r.evaluator.EvaluateAll(companies)
		log.WithFields(map[string]interface{}{
			"green": counts[contracts.GuardrailGreen],
			"amber": counts[contracts.GuardrailAmber],
			"red":   counts[contracts.GuardrailRed],
		}).Info("guardrails evaluated")
		return len(companies), len(companies), nil
	})
	if err != nil {
		return summary, nil, fmt.Errorf("guardrails: %w", err)
	}

	// === S2: scoring ===
	err = r.stage(summary, contracts.StageScoring, func() (int, int, error) {
		r.engine.Score(companies)
		return len(companies), len(companies), nil
	})
	if err != nil {
		return summary, nil, fmt.Errorf("scoring: %w", err)
	}

	// === S3: overlay ===
	err = r.stage(summary, contracts.StageOverlay, func() (int, int, error) {
		r.overlay.Apply(ctx, companies)
		return len(companies), len(companies), nil
	})
	if err != nil {
		return summary, nil, fmt.Errorf("overlay: %w", err)
	}

	for _, c := range companies {
		switch c.FinalDecision {
		case contracts.DecisionBuy:
			summary.Buys++
		case contracts.DecisionMonitor:
			summary.Monitors++
		case contracts.DecisionAvoid:
			summary.Avoids++
		}
	}
	summary.Companies = len(companies)

	// === S4: export & persist ===
	exportErr := r.stage(summary, contracts.StageExport, func() (int, int, error) {
		if _, err := r.writer.WriteCSV(companies, summary.Date); err != nil {
			return len(companies), 0, err
		}
		if _, err := r.writer.WriteJSON(companies, *summary); err != nil {
			return len(companies), 0, err
		}
		if r.store != nil {
			if err := r.store.SaveRun(ctx, *summary); err != nil {
				return len(companies), 0, err
			}
			if err := r.store.SaveResults(ctx, summary.RunID, companies); err != nil {
				return len(companies), 0, err
			}
		}
		return len(companies), len(companies), nil
	})

	summary.Duration = time.Since(started)
	log.WithFields(map[string]interface{}{
		"companies": summary.Companies,
		"buys":      summary.Buys,
		"monitors":  summary.Monitors,
		"avoids":    summary.Avoids,
		"duration":  summary.Duration,
	}).Info("screening run finished")

	if exportErr != nil {
		// the scored batch is still usable by the caller
		return summary, companies, fmt.Errorf("export: %w", exportErr)
	}
	return summary, companies, nil
}

// stage times one pipeline stage and records its result
func (r *Runner) stage(summary *contracts.RunSummary, s contracts.Stage, fn func() (int, int, error)) error {
	started := time.Now()
	r.emit(summary.RunID, s, "stage started", 0, 0)

	in, out, err := fn()
	result := contracts.StageResult{
		Stage:       s,
		Success:     err == nil,
		InputCount:  in,
		OutputCount: out,
		DurationMS:  time.Since(started).Milliseconds(),
	}
	if err != nil {
		result.Error = err.Error()
	}
	summary.Stages = append(summary.Stages, result)

	r.emit(summary.RunID, s, "stage finished", out, in)
	return err
}

func (r *Runner) emit(runID string, s contracts.Stage, msg string, completed, total int) {
	if r.progress == nil {
		return
	}
	r.progress(contracts.ProgressEvent{
		RunID:     runID,
		Stage:     s,
		Message:   msg,
		Completed: completed,
		Total:     total,
		Timestamp: time.Now(),
	})
}
