package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valids(vs ...float64) []Score {
	out := make([]Score, len(vs))
	for i, v := range vs {
		out[i] = ValidScore(v)
	}
	return out
}

func TestNormalize_RobustZScores(t *testing.T) {
	n := NewNormalizer(3.0, 3)

	// median=6, MAD=2, scale=2*1.4826=2.9652
	got := n.Normalize(valids(2, 4, 6, 8, 10), true)
	require.Len(t, got, 5)

	assert.InDelta(t, -1.349, got[0].Value, 0.001)
	assert.InDelta(t, 0, got[2].Value, 1e-12)
	assert.InDelta(t, 1.349, got[4].Value, 0.001)
	for _, s := range got {
		assert.True(t, s.Valid)
	}
}

func TestNormalize_LowerIsBetterNegates(t *testing.T) {
	n := NewNormalizer(3.0, 3)

	got := n.Normalize(valids(2, 4, 6, 8, 10), false)
	assert.InDelta(t, 1.349, got[0].Value, 0.001)
	assert.InDelta(t, -1.349, got[4].Value, 0.001)
}

func TestNormalize_ClipsToRange(t *testing.T) {
	n := NewNormalizer(3.0, 3)

	// extreme outlier gets clipped, not removed
	got := n.Normalize(valids(1, 2, 3, 4, 1000), true)
	assert.Equal(t, 3.0, got[4].Value)

	got = n.Normalize(valids(1, 2, 3, 4, -1000), true)
	assert.Equal(t, -3.0, got[4].Value)
}

func TestNormalize_DegenerateGroupIsNeutral(t *testing.T) {
	n := NewNormalizer(3.0, 3)

	// two companies with wildly different raw values still score 0
	got := n.Normalize(valids(1, 100000), true)
	require.Len(t, got, 2)
	assert.Equal(t, ValidScore(0), got[0])
	assert.Equal(t, ValidScore(0), got[1])

	// a single company likewise
	got = n.Normalize(valids(42), true)
	assert.Equal(t, ValidScore(0), got[0])
}

func TestNormalize_ZeroVarianceIsNeutral(t *testing.T) {
	n := NewNormalizer(3.0, 3)

	got := n.Normalize(valids(7, 7, 7, 7), true)
	for _, s := range got {
		assert.Equal(t, ValidScore(0), s)
	}
}

func TestNormalize_MissingStaysMissing(t *testing.T) {
	n := NewNormalizer(3.0, 3)

	in := []Score{ValidScore(2), Missing, ValidScore(6), ValidScore(8), ValidScore(10)}
	got := n.Normalize(in, true)
	require.Len(t, got, 5)
	assert.False(t, got[1].Valid, "missing input must not be silently defaulted")
	assert.True(t, got[0].Valid)
}

func TestNormalize_AllMissing(t *testing.T) {
	n := NewNormalizer(3.0, 3)

	got := n.Normalize([]Score{Missing, Missing, Missing}, true)
	for _, s := range got {
		assert.False(t, s.Valid)
	}
}

func TestNormalize_Monotonic(t *testing.T) {
	n := NewNormalizer(3.0, 3)

	in := valids(1, 3, 3.5, 7, 20, 150)
	got := n.Normalize(in, true)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i].Value, got[i-1].Value,
			"higher raw value must not score lower")
	}
}

func TestMedianMAD(t *testing.T) {
	med, mad := medianMAD([]float64{2, 4, 6, 8, 10})
	assert.Equal(t, 6.0, med)
	assert.Equal(t, 2.0, mad)

	// even-length median interpolates
	med, _ = medianMAD([]float64{1, 2, 3, 4})
	assert.Equal(t, 2.5, med)

	med, mad = medianMAD(nil)
	assert.Equal(t, 0.0, med)
	assert.Equal(t, 0.0, mad)
}
