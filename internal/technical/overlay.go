package technical

import (
	"context"
	"fmt"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/logger"
)

// CombinePolicy merges the core decision with the momentum signal into
// the final user-facing decision. Injected so the combination rule can
// be swapped without touching the decision table.
type CombinePolicy func(decision contracts.Decision, momentum float64) (contracts.Decision, string)

// DowngradePolicy returns the default policy: a Buy whose momentum sits
// below the floor becomes Monitor ("don't catch the falling knife");
// Monitor and Avoid pass through untouched.
func DowngradePolicy(floor float64) CombinePolicy {
	return func(decision contracts.Decision, momentum float64) (contracts.Decision, string) {
		if decision == contracts.DecisionBuy && momentum < floor {
			return contracts.DecisionMonitor,
				fmt.Sprintf("momentum %.2f below floor %.2f, downgraded", momentum, floor)
		}
		return decision, ""
	}
}

// Overlay runs the momentum post-processing stage over a scored batch
type Overlay struct {
	prices PriceSource
	policy CombinePolicy
	cfg    strategyconfig.Overlay
	log    *logger.Logger
}

// NewOverlay creates an Overlay with the default downgrade policy
func NewOverlay(prices PriceSource, cfg strategyconfig.Overlay, log *logger.Logger) *Overlay {
	return &Overlay{
		prices: prices,
		policy: DowngradePolicy(cfg.MomentumFloor),
		cfg:    cfg,
		log:    log,
	}
}

// WithPolicy swaps the combine policy
func (o *Overlay) WithPolicy(p CombinePolicy) *Overlay {
	o.policy = p
	return o
}

// Apply fills MomentumScore, FinalDecision and OverlayComment for every
// scored record. When the overlay is disabled or a price fetch fails,
// the final decision simply mirrors the core decision; sparse price
// data never aborts the batch.
func (o *Overlay) Apply(ctx context.Context, companies []*contracts.CompanyRecord) {
	for _, c := range companies {
		if !c.Scored {
			panic(fmt.Sprintf("overlay before scoring: %s", c.Ticker))
		}
		c.FinalDecision = c.Decision

		if !o.cfg.Enable {
			continue
		}

		closes, err := o.prices.DailyCloses(ctx, c.Ticker, windowDays+skipDays)
		if err != nil {
			o.log.WithError(err).WithField("ticker", c.Ticker).Warn("price fetch failed, overlay skipped")
			continue
		}
		momentum, err := Momentum(closes)
		if err != nil {
			o.log.WithError(err).WithField("ticker", c.Ticker).Debug("momentum unavailable")
			continue
		}

		c.MomentumScore = &momentum
		final, comment := o.policy(c.Decision, momentum)
		c.FinalDecision = final
		c.OverlayComment = comment
	}
}
