package strategyconfig

import (
	"github.com/wonny/screener/internal/contracts"
)

// Config는 스크리닝 전략의 전체 설정
// 모든 점수/결정 로직은 여기서 주입된 값만 사용한다 (코드에 상수 금지)
type Config struct {
	Meta          Meta                  `yaml:"meta" json:"meta"`
	Metrics       contracts.MetricTable `yaml:"metrics" json:"metrics"`
	Normalization Normalization         `yaml:"normalization" json:"normalization"`
	Scoring       Scoring               `yaml:"scoring" json:"scoring"`
	Penalties     []PenaltyRule         `yaml:"penalties" json:"penalties"`
	Decision      DecisionThresholds    `yaml:"decision" json:"decision"`
	Guardrails    GuardrailCutoffs      `yaml:"guardrails" json:"guardrails"`
	Overlay       Overlay               `yaml:"overlay" json:"overlay"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Normalization controls the robust z-score step
type Normalization struct {
	// ZScoreClip bounds standardized scores to ±clip
	ZScoreClip float64 `yaml:"zscore_clip" json:"zscore_clip"`
	// MinGroupSize: groups with fewer valid values degrade to neutral
	MinGroupSize int `yaml:"min_group_size" json:"min_group_size"`
	// IndustryFallback re-normalizes members of degenerate industry
	// groups against the whole same-type universe instead of leaving
	// them neutral
	IndustryFallback bool `yaml:"industry_fallback" json:"industry_fallback"`
}

// Scoring holds the composite blend weights
type Scoring struct {
	WeightValue   float64 `yaml:"weight_value" json:"weight_value"`
	WeightQuality float64 `yaml:"weight_quality" json:"weight_quality"`
}

// PenaltyRule is one threshold→multiplier adjustment. The rule triggers
// when the named trend signal is present and strictly below Threshold;
// triggered multipliers compose multiplicatively in list order.
type PenaltyRule struct {
	Name       string  `yaml:"name" json:"name"`
	Signal     string  `yaml:"signal" json:"signal"`
	Threshold  float64 `yaml:"threshold" json:"threshold"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
}

// DecisionThresholds parameterize the decision table. The table
// structure is fixed; only these boundaries are tunable.
type DecisionThresholds struct {
	Exceptional        float64 `yaml:"exceptional" json:"exceptional"`
	QualityExceptional float64 `yaml:"quality_exceptional" json:"quality_exceptional"`
	Moderate           float64 `yaml:"moderate" json:"moderate"`
	Buy                float64 `yaml:"buy" json:"buy"`
	BuyAmber           float64 `yaml:"buy_amber" json:"buy_amber"`
	Monitor            float64 `yaml:"monitor" json:"monitor"`
}

// GuardrailCutoffs parameterize the Green/Amber/Red assessment
type GuardrailCutoffs struct {
	AltmanZRed    float64 `yaml:"altman_z_red" json:"altman_z_red"`
	AltmanZAmber  float64 `yaml:"altman_z_amber" json:"altman_z_amber"`
	BeneishMRed   float64 `yaml:"beneish_m_red" json:"beneish_m_red"`
	BeneishMAmber float64 `yaml:"beneish_m_amber" json:"beneish_m_amber"`
	AccrualsAmber float64 `yaml:"accruals_amber" json:"accruals_amber"`
	DilutionRed   float64 `yaml:"dilution_red" json:"dilution_red"`
	DilutionAmber float64 `yaml:"dilution_amber" json:"dilution_amber"`
	MaxReasons    int     `yaml:"max_reasons" json:"max_reasons"`
}

// Overlay configures the technical/momentum post-processing hook
type Overlay struct {
	Enable bool `yaml:"enable" json:"enable"`
	// MomentumFloor: a Buy with momentum below this is downgraded to
	// Monitor by the default combine policy
	MomentumFloor float64 `yaml:"momentum_floor" json:"momentum_floor"`
	// ValueGrowthPBCutoff classifies a company as VALUE (below) or
	// GROWTH (at/above) for degradation-score selection upstream.
	// Heuristic, empirically motivated; kept injectable.
	ValueGrowthPBCutoff float64 `yaml:"value_growth_pb_cutoff" json:"value_growth_pb_cutoff"`
}
