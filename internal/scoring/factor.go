package scoring

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wonny/screener/internal/contracts"
)

// NeutralScore is the percentile a company gets when no metric in a
// category is computable: Φ(0) × 100.
const NeutralScore = 50.0

// stdNormal is the standard normal distribution used for the
// z → percentile mapping.
var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// FactorScorer collapses per-metric standardized scores into the two
// factor scores (Value, Quality), each on a 0–100 percentile scale.
type FactorScorer struct {
	metrics contracts.MetricTable
}

// NewFactorScorer constructs a FactorScorer
func NewFactorScorer(metrics contracts.MetricTable) *FactorScorer {
	return &FactorScorer{metrics: metrics}
}

// FactorResult carries one category's score plus the audit trail of
// which metrics actually contributed.
type FactorResult struct {
	Score      float64
	Computable int
	Total      int
}

// Neutral reports whether the score fell back to the neutral default
// because no metric was computable.
func (r FactorResult) Neutral() bool {
	return r.Computable == 0
}

// Score computes one category's percentile score for a company: the
// mean of its computable standardized scores mapped through Φ.
// Zero computable metrics → exactly 50 (neutral), never an error.
func (s *FactorScorer) Score(c *contracts.CompanyRecord, table ScoreTable, cat contracts.MetricCategory) FactorResult {
	defs := s.metrics.ForType(c.Type, cat)

	sum := 0.0
	n := 0
	for _, def := range defs {
		if sc := table.Get(c.Ticker, def.Name); sc.Valid {
			sum += sc.Value
			n++
		}
	}

	if n == 0 {
		return FactorResult{Score: NeutralScore, Computable: 0, Total: len(defs)}
	}

	avgZ := sum / float64(n)
	return FactorResult{
		Score:      stdNormal.CDF(avgZ) * 100,
		Computable: n,
		Total:      len(defs),
	}
}
