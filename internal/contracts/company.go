package contracts

import "fmt"

// CompanyType classifies a company for metric applicability.
// Financials and REITs are compared on different metric sets than
// operating companies.
type CompanyType string

const (
	CompanyNonFinancial CompanyType = "non_financial"
	CompanyFinancial    CompanyType = "financial"
	CompanyREIT         CompanyType = "reit"
)

// AllCompanyTypes returns every company type in a fixed order
func AllCompanyTypes() []CompanyType {
	return []CompanyType{CompanyNonFinancial, CompanyFinancial, CompanyREIT}
}

// ParseCompanyType converts a string to a CompanyType
func ParseCompanyType(s string) (CompanyType, error) {
	switch CompanyType(s) {
	case CompanyNonFinancial, CompanyFinancial, CompanyREIT:
		return CompanyType(s), nil
	default:
		return "", fmt.Errorf("unknown company type: %q", s)
	}
}

// GuardrailStatus is the accounting-risk traffic light computed upstream
// of scoring. Red vetoes any score-driven Buy.
type GuardrailStatus string

const (
	GuardrailGreen GuardrailStatus = "GREEN"
	GuardrailAmber GuardrailStatus = "AMBER"
	GuardrailRed   GuardrailStatus = "RED"
)

// Severity returns an ordering for guardrail statuses (Green < Amber < Red)
func (g GuardrailStatus) Severity() int {
	switch g {
	case GuardrailGreen:
		return 0
	case GuardrailAmber:
		return 1
	case GuardrailRed:
		return 2
	default:
		return -1
	}
}

// ParseGuardrailStatus converts a string to a GuardrailStatus
func ParseGuardrailStatus(s string) (GuardrailStatus, error) {
	switch GuardrailStatus(s) {
	case GuardrailGreen, GuardrailAmber, GuardrailRed:
		return GuardrailStatus(s), nil
	default:
		return "", fmt.Errorf("unknown guardrail status: %q", s)
	}
}

// Decision is the final categorical action for a company
type Decision string

const (
	DecisionBuy     Decision = "BUY"
	DecisionMonitor Decision = "MONITOR"
	DecisionAvoid   Decision = "AVOID"
)

// DegradationType selects which quality-degradation sub-score applies to
// a company: F-Score style for value stocks, G-Score style for growth
// stocks. The classification itself (a price-to-book cutoff in the
// default policy) happens upstream and is injected here as plain data.
type DegradationType string

const (
	DegradationValue  DegradationType = "VALUE"
	DegradationGrowth DegradationType = "GROWTH"
)

// TrendSignals carries pre-computed trend/delta numbers consumed by the
// penalty rules and the deterioration check. Nil means not available.
type TrendSignals struct {
	RevenueGrowth3Y         *float64        `json:"revenue_growth_3y,omitempty"`
	ROICTrend               *float64        `json:"roic_trend,omitempty"`
	MarginTrend             *float64        `json:"margin_trend,omitempty"`
	QualityDegradationScore *float64        `json:"quality_degradation_score,omitempty"`
	QualityDegradationDelta *float64        `json:"quality_degradation_delta,omitempty"`
	QualityDegradationType  DegradationType `json:"quality_degradation_type,omitempty"`
}

// Deteriorating reports whether the company shows a deteriorating
// trajectory: declining multi-year growth or a negative
// quality-degradation delta. Returns the triggering signal name.
func (t TrendSignals) Deteriorating() (bool, string) {
	if t.RevenueGrowth3Y != nil && *t.RevenueGrowth3Y < 0 {
		return true, "revenue_growth_3y"
	}
	if t.QualityDegradationDelta != nil && *t.QualityDegradationDelta < 0 {
		return true, "quality_degradation_delta"
	}
	return false, ""
}

// Signal returns a named trend signal value by key. Used by the penalty
// rules, which are configured by signal name.
func (t TrendSignals) Signal(name string) (float64, bool) {
	var v *float64
	switch name {
	case "revenue_growth_3y":
		v = t.RevenueGrowth3Y
	case "roic_trend":
		v = t.ROICTrend
	case "margin_trend":
		v = t.MarginTrend
	case "quality_degradation_delta":
		v = t.QualityDegradationDelta
	case "quality_degradation_score":
		v = t.QualityDegradationScore
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// CompanyRecord is one company in one scoring run
// ⭐ SSOT: 파이프라인 단계 간 데이터 전달은 이 타입으로만
type CompanyRecord struct {
	Ticker   string      `json:"ticker"`
	Name     string      `json:"name,omitempty"`
	Industry string      `json:"industry"`
	Sector   string      `json:"sector,omitempty"`
	Type     CompanyType `json:"company_type"`

	// Raw metric values keyed by metric name. A missing key means the
	// metric was not computable for this company; stages must tolerate
	// that everywhere.
	Metrics map[string]float64 `json:"metrics"`

	// Guardrail classification (advisory reasons, binding status)
	Guardrail        GuardrailStatus `json:"guardrail_status"`
	GuardrailReasons []string        `json:"guardrail_reasons,omitempty"`

	// Trend/delta signals for the penalty and deterioration checks
	Trend TrendSignals `json:"trend"`

	// Derived scores, populated by the scoring engine
	ValueScore     float64  `json:"value_score"`
	QualityScore   float64  `json:"quality_score"`
	CompositeScore float64  `json:"composite_score"`
	Decision       Decision `json:"decision,omitempty"`
	DecisionReason string   `json:"decision_reason,omitempty"`
	Scored         bool     `json:"scored"`

	// Technical overlay (optional, applied after the core decision)
	MomentumScore  *float64 `json:"momentum_score,omitempty"`
	FinalDecision  Decision `json:"final_decision,omitempty"`
	OverlayComment string   `json:"overlay_comment,omitempty"`
}

// Metric returns a raw metric value and whether it is present
func (r *CompanyRecord) Metric(name string) (float64, bool) {
	v, ok := r.Metrics[name]
	return v, ok
}

// SetMetric records a raw metric value, allocating the map on first use
func (r *CompanyRecord) SetMetric(name string, value float64) {
	if r.Metrics == nil {
		r.Metrics = make(map[string]float64)
	}
	r.Metrics[name] = value
}
