package scoring

import (
	"fmt"
	"strings"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/logger"
)

// Engine is the cross-sectional scoring pipeline: standardize →
// factor scores → trend penalties → composite → decision.
//
// Pure, synchronous, single pass. Each stage runs to completion over
// the whole batch before the next starts, records are mutated by one
// stage at a time, and input order is preserved for reproducibility.
// One company's sparse data never aborts the batch; configuration
// problems are rejected at construction, before any company is scored.
type Engine struct {
	cfg        *strategyconfig.Config
	aggregator *Aggregator
	factor     *FactorScorer
	decision   *DecisionEngine
	log        *logger.Logger
}

// NewEngine constructs an Engine from a validated strategy config
func NewEngine(cfg *strategyconfig.Config, log *logger.Logger) (*Engine, error) {
	if err := strategyconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("strategy config: %w", err)
	}

	normalizer := NewNormalizer(cfg.Normalization.ZScoreClip, cfg.Normalization.MinGroupSize)
	return &Engine{
		cfg:        cfg,
		aggregator: NewAggregator(normalizer, cfg.Metrics, cfg.Normalization.IndustryFallback),
		factor:     NewFactorScorer(cfg.Metrics),
		decision:   NewDecisionEngine(cfg.Decision),
		log:        log,
	}, nil
}

// Score runs the full pipeline over the batch in place.
// Records come back with ValueScore, QualityScore, CompositeScore,
// Decision and DecisionReason populated and Scored set.
func (e *Engine) Score(companies []*contracts.CompanyRecord) {
	if len(companies) == 0 {
		return
	}

	table := e.aggregator.Standardize(companies)

	for _, c := range companies {
		value := e.factor.Score(c, table, contracts.CategoryValue)
		quality := e.factor.Score(c, table, contracts.CategoryQuality)

		adjustedQuality, triggered := ApplyPenalties(quality.Score, c.Trend, e.cfg.Penalties)

		c.ValueScore = value.Score
		c.QualityScore = adjustedQuality
		c.CompositeScore = e.cfg.Scoring.WeightValue*c.ValueScore +
			e.cfg.Scoring.WeightQuality*c.QualityScore

		assertBounds(c)

		decision, reason := e.decision.Decide(decisionInput{
			Composite: c.CompositeScore,
			Quality:   c.QualityScore,
			Guardrail: c.Guardrail,
			Trend:     c.Trend,
		})
		c.Decision = decision
		c.DecisionReason = annotate(reason, value, quality, triggered)
		c.Scored = true

		e.log.WithFields(map[string]interface{}{
			"ticker":    c.Ticker,
			"value":     c.ValueScore,
			"quality":   c.QualityScore,
			"composite": c.CompositeScore,
			"decision":  c.Decision,
		}).Debug("scored")
	}
}

// Rescore re-runs only the composite and decision stage on records
// whose factor scores are already populated. Idempotent: the engine
// keeps no state between calls.
func (e *Engine) Rescore(companies []*contracts.CompanyRecord) {
	for _, c := range companies {
		if !c.Scored {
			panic(fmt.Sprintf("rescore before scoring: %s", c.Ticker))
		}
		c.CompositeScore = e.cfg.Scoring.WeightValue*c.ValueScore +
			e.cfg.Scoring.WeightQuality*c.QualityScore
		assertBounds(c)

		decision, reason := e.decision.Decide(decisionInput{
			Composite: c.CompositeScore,
			Quality:   c.QualityScore,
			Guardrail: c.Guardrail,
			Trend:     c.Trend,
		})
		c.Decision = decision
		c.DecisionReason = reason
	}
}

// annotate extends the decision reason with the neutral-default and
// penalty audit trail, so sparse-data outcomes stay traceable.
func annotate(reason string, value, quality FactorResult, triggered []string) string {
	var extra []string
	if value.Neutral() {
		extra = append(extra, "value neutral: no computable value metrics")
	}
	if quality.Neutral() {
		extra = append(extra, "quality neutral: no computable quality metrics")
	}
	if len(triggered) > 0 {
		extra = append(extra, "penalties: "+strings.Join(triggered, ","))
	}
	if len(extra) == 0 {
		return reason
	}
	return reason + " (" + strings.Join(extra, "; ") + ")"
}

// assertBounds panics when a score escapes [0, 100]. An out-of-range
// score is a pipeline defect, not a runtime condition to paper over.
func assertBounds(c *contracts.CompanyRecord) {
	for name, v := range map[string]float64{
		"value_score":     c.ValueScore,
		"quality_score":   c.QualityScore,
		"composite_score": c.CompositeScore,
	} {
		if v < 0 || v > 100 {
			panic(fmt.Sprintf("%s: %s out of range: %f", c.Ticker, name, v))
		}
	}
}
