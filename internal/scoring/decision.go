package scoring

import (
	"fmt"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
)

// decisionInput is the snapshot a decision rule is evaluated against
type decisionInput struct {
	Composite float64
	Quality   float64
	Guardrail contracts.GuardrailStatus
	Trend     contracts.TrendSignals
}

// decisionRule is one row of the decision table: a predicate, the
// outcome it produces, and a reason builder for the audit trail.
type decisionRule struct {
	Name    string
	Match   func(in decisionInput) bool
	Outcome contracts.Decision
	Reason  func(in decisionInput) string
}

// DecisionEngine evaluates the fixed-precedence decision table.
// ⭐ SSOT: 매수/관망/회피 판정은 이 테이블에서만
//
// The table is evaluated top to bottom, first match wins. The precedence
// order is a core invariant and must not be reordered: the Red veto
// always comes first, the deterioration downgrade sits directly under
// the exceptional rule it guards, and the fallthrough is always Avoid.
// Thresholds are inclusive (≥) at every boundary.
type DecisionEngine struct {
	rules []decisionRule
}

// NewDecisionEngine builds the rule table from the configured
// thresholds. Only the boundary values are tunable; the structure is
// fixed.
func NewDecisionEngine(t strategyconfig.DecisionThresholds) *DecisionEngine {
	return &DecisionEngine{rules: []decisionRule{
		{
			Name: "red_veto",
			Match: func(in decisionInput) bool {
				return in.Guardrail == contracts.GuardrailRed
			},
			Outcome: contracts.DecisionAvoid,
			Reason: func(in decisionInput) string {
				return "guardrail RED: accounting-risk veto overrides score"
			},
		},
		{
			Name: "exceptional",
			Match: func(in decisionInput) bool {
				if in.Composite < t.Exceptional {
					return false
				}
				deteriorating, _ := in.Trend.Deteriorating()
				return !deteriorating
			},
			Outcome: contracts.DecisionBuy,
			Reason: func(in decisionInput) string {
				return fmt.Sprintf("exceptional composite %.1f >= %.1f", in.Composite, t.Exceptional)
			},
		},
		{
			Name: "exceptional_deteriorating",
			Match: func(in decisionInput) bool {
				if in.Composite < t.Exceptional {
					return false
				}
				deteriorating, _ := in.Trend.Deteriorating()
				return deteriorating
			},
			Outcome: contracts.DecisionMonitor,
			Reason: func(in decisionInput) string {
				_, signal := in.Trend.Deteriorating()
				return fmt.Sprintf("composite %.1f >= %.1f but trajectory deteriorating (%s)", in.Composite, t.Exceptional, signal)
			},
		},
		{
			Name: "quality_exceptional",
			Match: func(in decisionInput) bool {
				return in.Quality >= t.QualityExceptional && in.Composite >= t.Moderate
			},
			Outcome: contracts.DecisionBuy,
			Reason: func(in decisionInput) string {
				return fmt.Sprintf("exceptional quality %.1f >= %.1f with composite %.1f >= %.1f", in.Quality, t.QualityExceptional, in.Composite, t.Moderate)
			},
		},
		{
			Name: "buy_green",
			Match: func(in decisionInput) bool {
				return in.Composite >= t.Buy && in.Guardrail == contracts.GuardrailGreen
			},
			Outcome: contracts.DecisionBuy,
			Reason: func(in decisionInput) string {
				return fmt.Sprintf("composite %.1f >= %.1f with clean guardrails", in.Composite, t.Buy)
			},
		},
		{
			Name: "buy_amber",
			Match: func(in decisionInput) bool {
				return in.Composite >= t.BuyAmber && in.Guardrail == contracts.GuardrailAmber
			},
			Outcome: contracts.DecisionBuy,
			Reason: func(in decisionInput) string {
				return fmt.Sprintf("composite %.1f >= %.1f overrides AMBER guardrail", in.Composite, t.BuyAmber)
			},
		},
		{
			Name: "monitor",
			Match: func(in decisionInput) bool {
				return in.Composite >= t.Monitor
			},
			Outcome: contracts.DecisionMonitor,
			Reason: func(in decisionInput) string {
				return fmt.Sprintf("composite %.1f >= %.1f, below buy bar", in.Composite, t.Monitor)
			},
		},
		{
			Name:    "avoid",
			Match:   func(in decisionInput) bool { return true },
			Outcome: contracts.DecisionAvoid,
			Reason: func(in decisionInput) string {
				return fmt.Sprintf("composite %.1f below monitor threshold %.1f", in.Composite, t.Monitor)
			},
		},
	}}
}

// Decide evaluates the table for one company. Always terminates: the
// last rule matches unconditionally.
func (e *DecisionEngine) Decide(in decisionInput) (contracts.Decision, string) {
	for _, rule := range e.rules {
		if rule.Match(in) {
			return rule.Outcome, rule.Reason(in)
		}
	}
	// unreachable, the fallthrough rule always matches
	panic("decision table exhausted without a match")
}
