package scoring

import (
	"github.com/wonny/screener/internal/contracts"
)

// UniverseKey is the fallback peer key used when industry fallback is
// enabled and an industry group is degenerate for a metric.
const UniverseKey = "ALL"

// ScoreTable maps ticker → metric name → standardized score.
// Absent (ticker, metric) entries mean not computable.
type ScoreTable map[string]map[string]Score

// Get returns the standardized score for a (ticker, metric) pair
func (t ScoreTable) Get(ticker, metric string) Score {
	row, ok := t[ticker]
	if !ok {
		return Missing
	}
	return row[metric]
}

func (t ScoreTable) set(ticker, metric string, s Score) {
	row, ok := t[ticker]
	if !ok {
		row = make(map[string]Score)
		t[ticker] = row
	}
	row[metric] = s
}

// Aggregator partitions companies by industry and drives the Normalizer
// once per (metric, group) pair.
// 그룹 키는 industry 문자열 그대로 사용 (자동 보정 없음)
type Aggregator struct {
	normalizer *Normalizer
	metrics    contracts.MetricTable
	// industryFallback re-normalizes members of degenerate industry
	// groups against the whole same-type universe
	industryFallback bool
}

// NewAggregator constructs an Aggregator
func NewAggregator(n *Normalizer, metrics contracts.MetricTable, industryFallback bool) *Aggregator {
	return &Aggregator{normalizer: n, metrics: metrics, industryFallback: industryFallback}
}

// Standardize builds the full per-company standardized-score table.
// Each metric is normalized independently per industry group; a metric
// value only participates for companies whose type the metric applies
// to. Input order is never consulted beyond grouping, so the result is
// deterministic for a fixed batch.
func (a *Aggregator) Standardize(companies []*contracts.CompanyRecord) ScoreTable {
	table := make(ScoreTable, len(companies))

	// index preserves the input positions of each industry group
	groups := make(map[string][]int)
	order := make([]string, 0)
	for i, c := range companies {
		if _, ok := groups[c.Industry]; !ok {
			order = append(order, c.Industry)
		}
		groups[c.Industry] = append(groups[c.Industry], i)
	}

	for _, def := range a.metrics {
		// universe sample for the fallback path, same-type filter applied
		var universe []Score
		if a.industryFallback {
			universe = collect(companies, indexRange(len(companies)), def)
		}

		for _, industry := range order {
			idx := groups[industry]
			sample := collect(companies, idx, def)

			scores := a.normalizer.Normalize(sample, def.HigherIsBetter)

			if a.industryFallback && degenerateGroup(sample, a.normalizer.MinGroupSize) {
				scores = a.fallbackScores(universe, idx, def)
			}

			for j, i := range idx {
				table.set(companies[i].Ticker, def.Name, scores[j])
			}
		}
	}
	return table
}

// collect extracts one metric's values for the given company positions.
// Companies the metric does not apply to contribute a missing entry.
func collect(companies []*contracts.CompanyRecord, idx []int, def contracts.MetricDefinition) []Score {
	out := make([]Score, len(idx))
	for j, i := range idx {
		c := companies[i]
		if !def.AppliesToType(c.Type) {
			out[j] = Missing
			continue
		}
		if v, ok := c.Metric(def.Name); ok {
			out[j] = ValidScore(v)
		} else {
			out[j] = Missing
		}
	}
	return out
}

// degenerateGroup reports whether the group has too few valid values
// to normalize on its own.
func degenerateGroup(sample []Score, minGroup int) bool {
	valid := 0
	for _, s := range sample {
		if s.Valid {
			valid++
		}
	}
	return valid > 0 && valid < minGroup
}

// fallbackScores re-normalizes the group members against the universe
// sample. The group members' own values are part of the universe, so
// their positions are looked up after normalizing the whole column.
func (a *Aggregator) fallbackScores(universe []Score, idx []int, def contracts.MetricDefinition) []Score {
	all := a.normalizer.Normalize(universe, def.HigherIsBetter)
	out := make([]Score, len(idx))
	for j, i := range idx {
		out[j] = all[i]
	}
	return out
}

func indexRange(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
