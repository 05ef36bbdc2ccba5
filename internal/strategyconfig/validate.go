package strategyconfig

import (
	"fmt"
	"math"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// knownPenaltySignals lists the trend signals the penalty rules may
// reference. Must stay in sync with contracts.TrendSignals.Signal.
var knownPenaltySignals = map[string]bool{
	"revenue_growth_3y":         true,
	"roic_trend":                true,
	"margin_trend":              true,
	"quality_degradation_delta": true,
	"quality_degradation_score": true,
}

// Validate checks all required constraints.
// Configuration errors abort the run before any company is scored.
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Metrics ===
	if len(cfg.Metrics) == 0 {
		return ValidationError{"metrics", "at least one metric definition required"}
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return ValidationError{"metrics", err.Error()}
	}

	// === Normalization ===
	if cfg.Normalization.ZScoreClip <= 0 {
		return ValidationError{"normalization.zscore_clip", "must be > 0"}
	}
	if cfg.Normalization.MinGroupSize < 2 {
		return ValidationError{"normalization.min_group_size", "must be >= 2"}
	}

	// === Scoring weights ===
	w := cfg.Scoring
	if w.WeightValue < 0 || w.WeightQuality < 0 {
		return ValidationError{"scoring", "weights must be >= 0"}
	}
	if math.Abs(w.WeightValue+w.WeightQuality-1.0) > 1e-6 {
		return ValidationError{"scoring", fmt.Sprintf("weights must sum to 1.0, got %.4f", w.WeightValue+w.WeightQuality)}
	}

	// === Penalties ===
	seen := make(map[string]bool, len(cfg.Penalties))
	for i, rule := range cfg.Penalties {
		field := fmt.Sprintf("penalties[%d]", i)
		if rule.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if seen[rule.Name] {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate rule %q", rule.Name)}
		}
		seen[rule.Name] = true
		if !knownPenaltySignals[rule.Signal] {
			return ValidationError{field + ".signal", fmt.Sprintf("unknown trend signal %q", rule.Signal)}
		}
		if rule.Multiplier <= 0 || rule.Multiplier > 1 {
			return ValidationError{field + ".multiplier", "must be in (0, 1]"}
		}
	}

	// === Decision thresholds ===
	d := cfg.Decision
	for field, v := range map[string]float64{
		"decision.exceptional":         d.Exceptional,
		"decision.quality_exceptional": d.QualityExceptional,
		"decision.moderate":            d.Moderate,
		"decision.buy":                 d.Buy,
		"decision.buy_amber":           d.BuyAmber,
		"decision.monitor":             d.Monitor,
	} {
		if v < 0 || v > 100 {
			return ValidationError{field, "must be in [0, 100]"}
		}
	}
	if d.Monitor > d.Buy {
		return ValidationError{"decision", "monitor threshold must be <= buy threshold"}
	}
	if d.Buy > d.BuyAmber {
		return ValidationError{"decision", "buy threshold must be <= buy_amber threshold"}
	}

	// === Guardrails ===
	g := cfg.Guardrails
	if g.AltmanZRed > g.AltmanZAmber {
		return ValidationError{"guardrails", "altman_z_red must be <= altman_z_amber"}
	}
	if g.BeneishMRed < g.BeneishMAmber {
		return ValidationError{"guardrails", "beneish_m_red must be >= beneish_m_amber"}
	}
	if g.DilutionRed < g.DilutionAmber {
		return ValidationError{"guardrails", "dilution_red must be >= dilution_amber"}
	}
	if g.MaxReasons <= 0 {
		return ValidationError{"guardrails.max_reasons", "must be > 0"}
	}

	// === Overlay ===
	if cfg.Overlay.Enable {
		if cfg.Overlay.MomentumFloor < -1 || cfg.Overlay.MomentumFloor > 1 {
			return ValidationError{"overlay.momentum_floor", "must be in [-1, 1]"}
		}
		if cfg.Overlay.ValueGrowthPBCutoff <= 0 {
			return ValidationError{"overlay.value_growth_pb_cutoff", "must be > 0"}
		}
	}

	return nil
}
