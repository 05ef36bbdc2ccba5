package scoring

import (
	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
)

// ApplyPenalties adjusts a factor score by the configured trend
// penalties. Each rule triggers when its named signal is present and
// strictly below the rule threshold; triggered multipliers compose
// multiplicatively in rule order.
//
// Pure function: all rules are evaluated against the same input
// snapshot, so no rule sees another rule's adjustment. A missing signal
// never triggers (sparse data is expected, not exceptional).
//
// Returns the adjusted score and the names of the triggered rules.
func ApplyPenalties(base float64, trend contracts.TrendSignals, rules []strategyconfig.PenaltyRule) (float64, []string) {
	adjusted := base
	var triggered []string

	for _, rule := range rules {
		v, ok := trend.Signal(rule.Signal)
		if !ok {
			continue
		}
		if v < rule.Threshold {
			adjusted *= rule.Multiplier
			triggered = append(triggered, rule.Name)
		}
	}
	return adjusted, triggered
}
