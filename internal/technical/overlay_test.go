package technical

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/logger"
)

// stubSource returns a constant-price series scaled so the 12-1 return
// comes out to the configured value.
type stubSource struct {
	momentum float64
	err      error
}

func (s stubSource) DailyCloses(ctx context.Context, symbol string, days int) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	closes := make([]float64, days)
	for i := range closes {
		closes[i] = 100
	}
	// closes are newest first: the recent price carries the return
	closes[skipDays] = 100 * (1 + s.momentum)
	return closes, nil
}

func scored(decision contracts.Decision) *contracts.CompanyRecord {
	return &contracts.CompanyRecord{
		Ticker:   "TST",
		Decision: decision,
		Scored:   true,
	}
}

func overlayCfg() strategyconfig.Overlay {
	return strategyconfig.Overlay{Enable: true, MomentumFloor: -0.3}
}

func TestMomentum(t *testing.T) {
	closes := make([]float64, windowDays+skipDays)
	for i := range closes {
		closes[i] = 50
	}
	closes[skipDays] = 60
	closes[windowDays] = 40

	m, err := Momentum(closes)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, m, 1e-9)

	_, err = Momentum(closes[:100])
	assert.Error(t, err, "short history cannot produce a 12-1 momentum")
}

func TestOverlay_DowngradesWeakBuy(t *testing.T) {
	o := NewOverlay(stubSource{momentum: -0.5}, overlayCfg(), logger.NewNop())
	c := scored(contracts.DecisionBuy)

	o.Apply(context.Background(), []*contracts.CompanyRecord{c})

	assert.Equal(t, contracts.DecisionMonitor, c.FinalDecision)
	assert.Contains(t, c.OverlayComment, "downgraded")
	require.NotNil(t, c.MomentumScore)
	assert.InDelta(t, -0.5, *c.MomentumScore, 1e-9)
}

func TestOverlay_KeepsStrongBuy(t *testing.T) {
	o := NewOverlay(stubSource{momentum: 0.2}, overlayCfg(), logger.NewNop())
	c := scored(contracts.DecisionBuy)

	o.Apply(context.Background(), []*contracts.CompanyRecord{c})
	assert.Equal(t, contracts.DecisionBuy, c.FinalDecision)
	assert.Empty(t, c.OverlayComment)
}

func TestOverlay_NeverUpgrades(t *testing.T) {
	o := NewOverlay(stubSource{momentum: 0.9}, overlayCfg(), logger.NewNop())

	monitor := scored(contracts.DecisionMonitor)
	avoid := scored(contracts.DecisionAvoid)
	o.Apply(context.Background(), []*contracts.CompanyRecord{monitor, avoid})

	assert.Equal(t, contracts.DecisionMonitor, monitor.FinalDecision)
	assert.Equal(t, contracts.DecisionAvoid, avoid.FinalDecision)
}

func TestOverlay_DisabledMirrorsDecision(t *testing.T) {
	cfg := overlayCfg()
	cfg.Enable = false
	o := NewOverlay(stubSource{momentum: -0.9}, cfg, logger.NewNop())
	c := scored(contracts.DecisionBuy)

	o.Apply(context.Background(), []*contracts.CompanyRecord{c})
	assert.Equal(t, contracts.DecisionBuy, c.FinalDecision)
	assert.Nil(t, c.MomentumScore)
}

func TestOverlay_PriceFailureFallsBack(t *testing.T) {
	o := NewOverlay(stubSource{err: errors.New("boom")}, overlayCfg(), logger.NewNop())
	c := scored(contracts.DecisionBuy)

	o.Apply(context.Background(), []*contracts.CompanyRecord{c})
	assert.Equal(t, contracts.DecisionBuy, c.FinalDecision, "fetch failure never aborts the batch")
	assert.Nil(t, c.MomentumScore)
}

func TestOverlay_UnscoredPanics(t *testing.T) {
	o := NewOverlay(stubSource{}, overlayCfg(), logger.NewNop())
	c := &contracts.CompanyRecord{Ticker: "X"}

	assert.Panics(t, func() {
		o.Apply(context.Background(), []*contracts.CompanyRecord{c})
	})
}

func TestOverlay_CustomPolicy(t *testing.T) {
	veto := func(d contracts.Decision, m float64) (contracts.Decision, string) {
		return contracts.DecisionAvoid, "vetoed"
	}
	o := NewOverlay(stubSource{momentum: 0.5}, overlayCfg(), logger.NewNop()).WithPolicy(veto)
	c := scored(contracts.DecisionBuy)

	o.Apply(context.Background(), []*contracts.CompanyRecord{c})
	assert.Equal(t, contracts.DecisionAvoid, c.FinalDecision)
}
