package scoring

import (
	"math"
	"sort"
)

// madConsistency makes MAD a consistent estimator of the standard
// deviation under normality (1/Φ⁻¹(0.75)).
const madConsistency = 1.4826

// Score is a standardized score with an explicit not-computable marker.
// Valid=false means the underlying raw value was absent; downstream
// averaging must skip it, never treat it as zero.
type Score struct {
	Value float64
	Valid bool
}

// Missing is the not-computable marker
var Missing = Score{}

// ValidScore wraps a computed value
func ValidScore(v float64) Score {
	return Score{Value: v, Valid: true}
}

// Normalizer converts one metric's raw values within one peer group to
// robust z-like scores.
// ⭐ SSOT: 표준화 점수 계산은 이 타입에서만 수행
type Normalizer struct {
	// Clip bounds standardized scores to ±Clip
	Clip float64
	// MinGroupSize: fewer valid values than this degrades to neutral 0
	MinGroupSize int
}

// NewNormalizer constructs a Normalizer from strategy settings
func NewNormalizer(clip float64, minGroupSize int) *Normalizer {
	return &Normalizer{Clip: clip, MinGroupSize: minGroupSize}
}

// Normalize maps each input to a robust z-score: (v - median) / (1.4826
// × MAD), negated when higherIsBetter is false, clipped to ±Clip.
//
// Degenerate groups degrade to neutral, never to an error: when fewer
// than MinGroupSize valid values exist, or the MAD is exactly 0 (no
// dispersion), every valid input maps to 0. Missing inputs stay missing.
func (n *Normalizer) Normalize(values []Score, higherIsBetter bool) []Score {
	out := make([]Score, len(values))

	valid := make([]float64, 0, len(values))
	for _, s := range values {
		if s.Valid && !math.IsNaN(s.Value) {
			valid = append(valid, s.Value)
		}
	}

	med, mad := medianMAD(valid)
	degenerate := len(valid) < n.MinGroupSize || mad == 0

	for i, s := range values {
		if !s.Valid || math.IsNaN(s.Value) {
			out[i] = Missing
			continue
		}
		if degenerate {
			out[i] = ValidScore(0)
			continue
		}
		z := (s.Value - med) / (madConsistency * mad)
		if !higherIsBetter {
			z = -z
		}
		out[i] = ValidScore(clamp(z, -n.Clip, n.Clip))
	}
	return out
}

// medianMAD returns the median and the median absolute deviation of vs.
// Empty input returns (0, 0).
func medianMAD(vs []float64) (float64, float64) {
	if len(vs) == 0 {
		return 0, 0
	}
	med := median(vs)

	dev := make([]float64, len(vs))
	for i, v := range vs {
		dev[i] = math.Abs(v - med)
	}
	return med, median(dev)
}

func median(vs []float64) float64 {
	sorted := make([]float64, len(vs))
	copy(sorted, vs)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
