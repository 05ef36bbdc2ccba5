// Package guardrails classifies accounting risk into the traffic light
// consumed by the decision table. The classification runs before
// scoring; a RED result later vetoes any score-driven Buy.
package guardrails

import (
	"fmt"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/logger"
)

// Metric names the evaluator consults. The metric provider computes
// them; a missing value simply skips that check.
const (
	MetricAltmanZ  = "altman_z"
	MetricBeneishM = "beneish_m"
	MetricAccruals = "accruals_ratio_pct"
	MetricDilution = "share_dilution_pct"
)

// Evaluator applies the configured cutoffs to one company at a time.
// ⭐ SSOT: 가드레일 판정 기준은 여기서만
type Evaluator struct {
	cutoffs strategyconfig.GuardrailCutoffs
	log     *logger.Logger
}

// NewEvaluator constructs an Evaluator
func NewEvaluator(cutoffs strategyconfig.GuardrailCutoffs, log *logger.Logger) *Evaluator {
	return &Evaluator{cutoffs: cutoffs, log: log}
}

// Evaluate classifies a company and writes the result onto the record.
// The status is the worst individual assessment; reasons are advisory,
// ordered worst-first, and capped at the configured maximum.
//
// Altman Z and Beneish M are distress/manipulation models calibrated on
// operating companies; financials and REITs skip those two checks.
func (e *Evaluator) Evaluate(c *contracts.CompanyRecord) {
	status := contracts.GuardrailGreen
	var redReasons, amberReasons []string

	flag := func(s contracts.GuardrailStatus, reason string) {
		if s.Severity() > status.Severity() {
			status = s
		}
		if s == contracts.GuardrailRed {
			redReasons = append(redReasons, reason)
		} else {
			amberReasons = append(amberReasons, reason)
		}
	}

	if c.Type == contracts.CompanyNonFinancial {
		if z, ok := c.Metric(MetricAltmanZ); ok {
			switch {
			case z < e.cutoffs.AltmanZRed:
				flag(contracts.GuardrailRed, fmt.Sprintf("Altman Z %.2f in distress zone (< %.2f)", z, e.cutoffs.AltmanZRed))
			case z < e.cutoffs.AltmanZAmber:
				flag(contracts.GuardrailAmber, fmt.Sprintf("Altman Z %.2f in grey zone (< %.2f)", z, e.cutoffs.AltmanZAmber))
			}
		}

		if m, ok := c.Metric(MetricBeneishM); ok {
			switch {
			case m > e.cutoffs.BeneishMRed:
				flag(contracts.GuardrailRed, fmt.Sprintf("Beneish M %.2f suggests manipulation (> %.2f)", m, e.cutoffs.BeneishMRed))
			case m > e.cutoffs.BeneishMAmber:
				flag(contracts.GuardrailAmber, fmt.Sprintf("Beneish M %.2f elevated (> %.2f)", m, e.cutoffs.BeneishMAmber))
			}
		}
	}

	if a, ok := c.Metric(MetricAccruals); ok {
		if a > e.cutoffs.AccrualsAmber {
			flag(contracts.GuardrailAmber, fmt.Sprintf("accruals %.1f%% of assets (> %.1f%%)", a, e.cutoffs.AccrualsAmber))
		}
	}

	if d, ok := c.Metric(MetricDilution); ok {
		switch {
		case d > e.cutoffs.DilutionRed:
			flag(contracts.GuardrailRed, fmt.Sprintf("share dilution %.1f%%/yr (> %.1f%%)", d, e.cutoffs.DilutionRed))
		case d > e.cutoffs.DilutionAmber:
			flag(contracts.GuardrailAmber, fmt.Sprintf("share dilution %.1f%%/yr (> %.1f%%)", d, e.cutoffs.DilutionAmber))
		}
	}

	reasons := append(redReasons, amberReasons...)
	if len(reasons) > e.cutoffs.MaxReasons {
		reasons = reasons[:e.cutoffs.MaxReasons]
	}

	c.Guardrail = status
	c.GuardrailReasons = reasons

	if status != contracts.GuardrailGreen {
		e.log.WithFields(map[string]interface{}{
			"ticker":  c.Ticker,
			"status":  status,
			"reasons": reasons,
		}).Debug("guardrail flagged")
	}
}

// EvaluateAll classifies a whole batch in place, preserving input order
func (e *Evaluator) EvaluateAll(companies []*contracts.CompanyRecord) map[contracts.GuardrailStatus]int {
	counts := make(map[contracts.GuardrailStatus]int, 3)
	for _, c := range companies {
		e.Evaluate(c)
		counts[c.Guardrail]++
	}
	return counts
}
