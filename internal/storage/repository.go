// Package storage persists screening runs and per-company results to
// Postgres. One row per run in screening_runs, one row per company per
// run in screening_results.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

// Repository wraps all screening persistence
// ⭐ SSOT: 스크리닝 결과 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewRepository creates a Repository
func NewRepository(pool *pgxpool.Pool, log *logger.Logger) *Repository {
	return &Repository{pool: pool, log: log}
}

// SaveRun persists the run summary. Stage results are stored as JSONB
// for audit without a schema per stage.
func (r *Repository) SaveRun(ctx context.Context, summary contracts.RunSummary) error {
	stages, err := json.Marshal(summary.Stages)
	if err != nil {
		return fmt.Errorf("marshal stages: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO screening_runs
			(run_id, run_date, strategy_id, config_hash, companies,
			 buys, monitors, avoids, stages, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id) DO UPDATE SET
			companies = EXCLUDED.companies,
			buys = EXCLUDED.buys,
			monitors = EXCLUDED.monitors,
			avoids = EXCLUDED.avoids,
			stages = EXCLUDED.stages,
			duration_ms = EXCLUDED.duration_ms`,
		summary.RunID, summary.Date, summary.StrategyID, summary.ConfigHash,
		summary.Companies, summary.Buys, summary.Monitors, summary.Avoids,
		stages, summary.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", summary.RunID, err)
	}

	r.log.WithField("run_id", summary.RunID).Info("run saved")
	return nil
}

// SaveResults persists the scored batch for one run in a single
// batched round trip.
func (r *Repository) SaveResults(ctx context.Context, runID string, companies []*contracts.CompanyRecord) error {
	batch := &pgx.Batch{}
	for _, c := range companies {
		metrics, err := json.Marshal(c.Metrics)
		if err != nil {
			return fmt.Errorf("marshal metrics %s: %w", c.Ticker, err)
		}
		reasons, err := json.Marshal(c.GuardrailReasons)
		if err != nil {
			return fmt.Errorf("marshal reasons %s: %w", c.Ticker, err)
		}

		batch.Queue(`
			INSERT INTO screening_results
				(run_id, ticker, name, industry, sector, company_type,
				 guardrail_status, guardrail_reasons, metrics,
				 value_score, quality_score, composite_score,
				 decision, decision_reason, momentum_score,
				 final_decision, overlay_comment)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			        $13, $14, $15, $16, $17)
			ON CONFLICT (run_id, ticker) DO NOTHING`,
			runID, c.Ticker, c.Name, c.Industry, c.Sector, string(c.Type),
			string(c.Guardrail), reasons, metrics,
			c.ValueScore, c.QualityScore, c.CompositeScore,
			string(c.Decision), c.DecisionReason, c.MomentumScore,
			string(c.FinalDecision), c.OverlayComment,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range companies {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save results %s: %w", runID, err)
		}
	}

	r.log.WithFields(map[string]interface{}{
		"run_id": runID,
		"rows":   len(companies),
	}).Info("results saved")
	return nil
}

// LatestRun returns the most recent run summary, or pgx.ErrNoRows
func (r *Repository) LatestRun(ctx context.Context) (*contracts.RunSummary, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT run_id, run_date, strategy_id, config_hash, companies,
		       buys, monitors, avoids, stages, duration_ms
		FROM screening_runs
		ORDER BY run_date DESC, created_at DESC
		LIMIT 1`)

	summary, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return summary, nil
}

// Run returns one run summary by ID, or pgx.ErrNoRows
func (r *Repository) Run(ctx context.Context, runID string) (*contracts.RunSummary, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT run_id, run_date, strategy_id, config_hash, companies,
		       buys, monitors, avoids, stages, duration_ms
		FROM screening_runs
		WHERE run_id = $1`,
		runID)

	summary, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return summary, nil
}

// Runs returns the most recent run summaries, newest first
func (r *Repository) Runs(ctx context.Context, limit int) ([]*contracts.RunSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT run_id, run_date, strategy_id, config_hash, companies,
		       buys, monitors, avoids, stages, duration_ms
		FROM screening_runs
		ORDER BY run_date DESC, created_at DESC
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*contracts.RunSummary
	for rows.Next() {
		summary, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

func scanRun(row pgx.Row) (*contracts.RunSummary, error) {
	var summary contracts.RunSummary
	var stages []byte
	var durationMS int64

	if err := row.Scan(
		&summary.RunID, &summary.Date, &summary.StrategyID, &summary.ConfigHash,
		&summary.Companies, &summary.Buys, &summary.Monitors, &summary.Avoids,
		&stages, &durationMS,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(stages, &summary.Stages); err != nil {
		return nil, fmt.Errorf("unmarshal stages: %w", err)
	}
	summary.Duration = time.Duration(durationMS) * time.Millisecond
	return &summary, nil
}

// Results returns one run's scored companies ranked by composite score
func (r *Repository) Results(ctx context.Context, runID string) ([]*contracts.CompanyRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ticker, name, industry, sector, company_type,
		       guardrail_status, guardrail_reasons, metrics,
		       value_score, quality_score, composite_score,
		       decision, decision_reason, momentum_score,
		       final_decision, overlay_comment
		FROM screening_results
		WHERE run_id = $1
		ORDER BY composite_score DESC, ticker`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("results %s: %w", runID, err)
	}
	defer rows.Close()

	var out []*contracts.CompanyRecord
	for rows.Next() {
		c, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Result returns one company's row from one run, or pgx.ErrNoRows
func (r *Repository) Result(ctx context.Context, runID, ticker string) (*contracts.CompanyRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT ticker, name, industry, sector, company_type,
		       guardrail_status, guardrail_reasons, metrics,
		       value_score, quality_score, composite_score,
		       decision, decision_reason, momentum_score,
		       final_decision, overlay_comment
		FROM screening_results
		WHERE run_id = $1 AND ticker = $2`,
		runID, ticker)

	c, err := scanResult(row)
	if err != nil {
		return nil, fmt.Errorf("result %s/%s: %w", runID, ticker, err)
	}
	return c, nil
}

func scanResult(row pgx.Row) (*contracts.CompanyRecord, error) {
	c := &contracts.CompanyRecord{Scored: true}
	var ctype, guardrail, decision, final string
	var reasons, metrics []byte

	if err := row.Scan(
		&c.Ticker, &c.Name, &c.Industry, &c.Sector, &ctype,
		&guardrail, &reasons, &metrics,
		&c.ValueScore, &c.QualityScore, &c.CompositeScore,
		&decision, &c.DecisionReason, &c.MomentumScore,
		&final, &c.OverlayComment,
	); err != nil {
		return nil, fmt.Errorf("scan result: %w", err)
	}

	c.Type = contracts.CompanyType(ctype)
	c.Guardrail = contracts.GuardrailStatus(guardrail)
	c.Decision = contracts.Decision(decision)
	c.FinalDecision = contracts.Decision(final)
	if err := json.Unmarshal(reasons, &c.GuardrailReasons); err != nil {
		return nil, fmt.Errorf("unmarshal reasons %s: %w", c.Ticker, err)
	}
	if err := json.Unmarshal(metrics, &c.Metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics %s: %w", c.Ticker, err)
	}
	return c, nil
}
