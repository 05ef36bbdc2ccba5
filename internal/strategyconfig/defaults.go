package strategyconfig

import (
	"github.com/wonny/screener/internal/contracts"
)

// Default returns the built-in US screening strategy. The YAML file
// under config/strategy/ mirrors this and takes precedence when loaded.
func Default() *Config {
	nonFin := []contracts.CompanyType{contracts.CompanyNonFinancial}
	fin := []contracts.CompanyType{contracts.CompanyFinancial}
	reit := []contracts.CompanyType{contracts.CompanyREIT}
	finOrNonFin := []contracts.CompanyType{contracts.CompanyNonFinancial, contracts.CompanyFinancial}
	finOrReit := []contracts.CompanyType{contracts.CompanyFinancial, contracts.CompanyREIT}

	return &Config{
		Meta: Meta{
			StrategyID: "us_screener_v1",
			Version:    "1.0.0",
		},
		Metrics: contracts.MetricTable{
			// Value, non-financial: valuation multiples, lower is better
			{Name: "ev_ebit_ttm", Category: contracts.CategoryValue, HigherIsBetter: false, AppliesTo: nonFin},
			{Name: "ev_fcf_ttm", Category: contracts.CategoryValue, HigherIsBetter: false, AppliesTo: nonFin},
			{Name: "pe_ttm", Category: contracts.CategoryValue, HigherIsBetter: false, AppliesTo: finOrNonFin},
			{Name: "pb_ttm", Category: contracts.CategoryValue, HigherIsBetter: false, AppliesTo: finOrNonFin},
			{Name: "shareholder_yield_pct", Category: contracts.CategoryValue, HigherIsBetter: true, AppliesTo: nonFin},

			// Value, financial
			{Name: "p_tangible_book", Category: contracts.CategoryValue, HigherIsBetter: false, AppliesTo: fin},
			{Name: "dividend_yield_pct", Category: contracts.CategoryValue, HigherIsBetter: true, AppliesTo: finOrReit},

			// Value, REIT
			{Name: "p_ffo", Category: contracts.CategoryValue, HigherIsBetter: false, AppliesTo: reit},
			{Name: "p_affo", Category: contracts.CategoryValue, HigherIsBetter: false, AppliesTo: reit},

			// Quality, non-financial
			{Name: "roic_pct", Category: contracts.CategoryQuality, HigherIsBetter: true, AppliesTo: nonFin},
			{Name: "gross_profits_to_assets", Category: contracts.CategoryQuality, HigherIsBetter: true, AppliesTo: nonFin},
			{Name: "fcf_margin_pct", Category: contracts.CategoryQuality, HigherIsBetter: true, AppliesTo: nonFin},
			{Name: "cfo_to_ni", Category: contracts.CategoryQuality, HigherIsBetter: true, AppliesTo: nonFin},
			{Name: "interest_coverage", Category: contracts.CategoryQuality, HigherIsBetter: true, AppliesTo: nonFin},
			{Name: "net_debt_ebitda", Category: contracts.CategoryQuality, HigherIsBetter: false, AppliesTo: nonFin},

			// Quality, financial
			{Name: "roa_pct", Category: contracts.CategoryQuality, HigherIsBetter: true, AppliesTo: fin},
			{Name: "roe_pct", Category: contracts.CategoryQuality, HigherIsBetter: true, AppliesTo: fin},
			{Name: "nim_pct", Category: contracts.CategoryQuality, HigherIsBetter: true, AppliesTo: fin},
			{Name: "cet1_ratio_pct", Category: contracts.CategoryQuality, HigherIsBetter: true, AppliesTo: fin},
			{Name: "efficiency_ratio", Category: contracts.CategoryQuality, HigherIsBetter: false, AppliesTo: fin},

			// Quality, REIT
			{Name: "occupancy_pct", Category: contracts.CategoryQuality, HigherIsBetter: true, AppliesTo: reit},
			{Name: "ffo_payout_pct", Category: contracts.CategoryQuality, HigherIsBetter: false, AppliesTo: reit},
			{Name: "net_debt_ebitda_re", Category: contracts.CategoryQuality, HigherIsBetter: false, AppliesTo: reit},
		},
		Normalization: Normalization{
			ZScoreClip:       3.0,
			MinGroupSize:     3,
			IndustryFallback: false,
		},
		Scoring: Scoring{
			WeightValue:   0.5,
			WeightQuality: 0.5,
		},
		Penalties: []PenaltyRule{
			// Declining multi-year revenue: erosion of the business
			{Name: "revenue_decline", Signal: "revenue_growth_3y", Threshold: 0, Multiplier: 0.80},
			// ROIC falling >10%: competitive position weakening
			{Name: "roic_erosion", Signal: "roic_trend", Threshold: -10, Multiplier: 0.85},
			// Gross margin contracting >5%: pricing power loss
			{Name: "margin_contraction", Signal: "margin_trend", Threshold: -5, Multiplier: 0.85},
		},
		Decision: DecisionThresholds{
			Exceptional:        85,
			QualityExceptional: 85,
			Moderate:           60,
			Buy:                70,
			BuyAmber:           80,
			Monitor:            45,
		},
		Guardrails: GuardrailCutoffs{
			AltmanZRed:    1.8,
			AltmanZAmber:  2.99,
			BeneishMRed:   -1.78,
			BeneishMAmber: -2.22,
			AccrualsAmber: 15,
			DilutionRed:   10,
			DilutionAmber: 5,
			MaxReasons:    3,
		},
		Overlay: Overlay{
			Enable:              true,
			MomentumFloor:       -0.3,
			ValueGrowthPBCutoff: 1.5,
		},
	}
}
