package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
)

func fptr(v float64) *float64 { return &v }

func defaultPenalties() []strategyconfig.PenaltyRule {
	return []strategyconfig.PenaltyRule{
		{Name: "revenue_decline", Signal: "revenue_growth_3y", Threshold: 0, Multiplier: 0.80},
		{Name: "roic_erosion", Signal: "roic_trend", Threshold: -10, Multiplier: 0.85},
		{Name: "margin_contraction", Signal: "margin_trend", Threshold: -5, Multiplier: 0.85},
	}
}

func TestApplyPenalties_NoSignals(t *testing.T) {
	got, triggered := ApplyPenalties(80, contracts.TrendSignals{}, defaultPenalties())
	assert.Equal(t, 80.0, got, "missing signals never trigger")
	assert.Empty(t, triggered)
}

func TestApplyPenalties_SingleRule(t *testing.T) {
	trend := contracts.TrendSignals{RevenueGrowth3Y: fptr(-5)}
	got, triggered := ApplyPenalties(80, trend, defaultPenalties())
	assert.InDelta(t, 64.0, got, 1e-9)
	assert.Equal(t, []string{"revenue_decline"}, triggered)
}

func TestApplyPenalties_MultiplicativeComposition(t *testing.T) {
	trend := contracts.TrendSignals{
		RevenueGrowth3Y: fptr(-5),
		ROICTrend:       fptr(-20),
	}
	got, triggered := ApplyPenalties(80, trend, defaultPenalties())
	// 80 × 0.80 × 0.85
	assert.InDelta(t, 54.4, got, 1e-9)
	assert.Equal(t, []string{"revenue_decline", "roic_erosion"}, triggered)
}

func TestApplyPenalties_ThresholdIsStrict(t *testing.T) {
	// a signal exactly at the threshold does not trigger
	trend := contracts.TrendSignals{RevenueGrowth3Y: fptr(0)}
	got, triggered := ApplyPenalties(80, trend, defaultPenalties())
	assert.Equal(t, 80.0, got)
	assert.Empty(t, triggered)

	trend = contracts.TrendSignals{ROICTrend: fptr(-10)}
	got, _ = ApplyPenalties(80, trend, defaultPenalties())
	assert.Equal(t, 80.0, got)
}

func TestApplyPenalties_NeverNegative(t *testing.T) {
	trend := contracts.TrendSignals{
		RevenueGrowth3Y: fptr(-50),
		ROICTrend:       fptr(-50),
		MarginTrend:     fptr(-50),
	}
	got, triggered := ApplyPenalties(10, trend, defaultPenalties())
	assert.Greater(t, got, 0.0, "multiplicative composition cannot go negative")
	assert.Len(t, triggered, 3)
}

func TestApplyPenalties_Deterministic(t *testing.T) {
	trend := contracts.TrendSignals{
		RevenueGrowth3Y: fptr(-1),
		MarginTrend:     fptr(-6),
	}
	a, _ := ApplyPenalties(73.5, trend, defaultPenalties())
	b, _ := ApplyPenalties(73.5, trend, defaultPenalties())
	assert.Equal(t, a, b)
}
