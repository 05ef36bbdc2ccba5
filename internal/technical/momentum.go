// Package technical applies the momentum overlay to the core screening
// decision. The overlay never changes the composite score; it only
// post-processes the categorical decision through a swappable policy.
package technical

import (
	"context"
	"fmt"
)

// trading-day offsets for the 12-1 momentum window
const (
	skipDays   = 21  // most recent month, skipped for reversal noise
	windowDays = 252 // one trading year
)

// PriceSource supplies daily close prices, newest first
type PriceSource interface {
	DailyCloses(ctx context.Context, symbol string, days int) ([]float64, error)
}

// Momentum computes the classic 12-1 momentum: the return from twelve
// months ago to one month ago, skipping the latest month.
func Momentum(closes []float64) (float64, error) {
	if len(closes) <= windowDays {
		return 0, fmt.Errorf("momentum: need %d closes, got %d", windowDays+1, len(closes))
	}
	recent := closes[skipDays]
	old := closes[windowDays]
	if old <= 0 {
		return 0, fmt.Errorf("momentum: non-positive base price %f", old)
	}
	return recent/old - 1, nil
}
