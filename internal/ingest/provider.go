package ingest

import (
	"context"
	"sync"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/guardrails"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/config"
	"github.com/wonny/screener/pkg/logger"
)

// Provider turns a ticker universe into scoreable CompanyRecords.
// ⭐ SSOT: CompanyRecord 조립은 여기서만
type Provider struct {
	fmp           *FMPClient
	maxConcurrent int
	// pbCutoff classifies VALUE (below) vs GROWTH (at/above) for the
	// quality-degradation type; <= 0 leaves the type unset
	pbCutoff float64
	log      *logger.Logger
}

// NewProvider creates a Provider
func NewProvider(fmp *FMPClient, cfg *config.Config, strategy *strategyconfig.Config, log *logger.Logger) *Provider {
	mc := cfg.FMP.MaxConcurrent
	if mc < 1 {
		mc = 1
	}
	return &Provider{
		fmp:           fmp,
		maxConcurrent: mc,
		pbCutoff:      strategy.Overlay.ValueGrowthPBCutoff,
		log:           log,
	}
}

// Fetch assembles records for the universe, fanning out up to
// maxConcurrent fetches. A symbol whose fetch fails is logged and
// skipped; one broken ticker never aborts the batch. Output preserves
// universe order.
func (p *Provider) Fetch(ctx context.Context, symbols []string) ([]*contracts.CompanyRecord, error) {
	results := make([]*contracts.CompanyRecord, len(symbols))

	sem := make(chan struct{}, p.maxConcurrent)
	var wg sync.WaitGroup

	for i, symbol := range symbols {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, symbol string) {
			defer wg.Done()
			defer func() { <-sem }()

			rec, err := p.fetchOne(ctx, symbol)
			if err != nil {
				p.log.WithError(err).WithField("ticker", symbol).Warn("fetch failed, skipping")
				return
			}
			results[i] = rec
		}(i, symbol)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*contracts.CompanyRecord, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}

	p.log.WithFields(map[string]interface{}{
		"universe": len(symbols),
		"fetched":  len(out),
	}).Info("ingest complete")
	return out, nil
}

// fetchOne builds a single CompanyRecord from the FMP endpoints
func (p *Provider) fetchOne(ctx context.Context, symbol string) (*contracts.CompanyRecord, error) {
	profile, err := p.fmp.GetProfile(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if !Screenable(profile) {
		return nil, nil // funds/ETFs are silently dropped upstream of scoring
	}

	rec := &contracts.CompanyRecord{
		Ticker:    profile.Symbol,
		Name:      profile.CompanyName,
		Industry:  profile.Industry,
		Sector:    profile.Sector,
		Type:      Classify(profile),
		Guardrail: contracts.GuardrailGreen,
	}

	ratios, err := p.fmp.GetRatiosTTM(ctx, symbol)
	if err != nil {
		return nil, err
	}
	metrics, err := p.fmp.GetKeyMetricsTTM(ctx, symbol)
	if err != nil {
		return nil, err
	}
	growth, err := p.fmp.GetFinancialGrowth(ctx, symbol)
	if err != nil {
		return nil, err
	}

	applyRatios(rec, profile, ratios)
	applyKeyMetrics(rec, profile, metrics)
	applyGrowth(rec, growth)
	classifyDegradation(rec, p.pbCutoff)
	return rec, nil
}

// applyRatios maps the TTM ratio endpoint onto raw metric names.
// Missing fields stay missing; the scoring engine tolerates sparse rows.
func applyRatios(rec *contracts.CompanyRecord, profile *Profile, r *RatiosTTM) {
	setOptional(rec, "pe_ttm", r.PERatioTTM)
	setOptional(rec, "pb_ttm", r.PriceToBookRatioTTM)
	setScaled(rec, "dividend_yield_pct", r.DividendYieldTTM, 100)
	setOptional(rec, "interest_coverage", r.InterestCoverageTTM)
	setScaled(rec, "roa_pct", r.ReturnOnAssetsTTM, 100)
	setScaled(rec, "roe_pct", r.ReturnOnEquityTTM, 100)

	if rec.Type == contracts.CompanyREIT {
		// payout ratio against FFO is not directly published; the
		// earnings payout is the closest TTM proxy
		setScaled(rec, "ffo_payout_pct", r.PayoutRatioTTM, 100)
	}
}

// applyKeyMetrics maps the TTM key-metrics endpoint onto raw metric names
func applyKeyMetrics(rec *contracts.CompanyRecord, profile *Profile, m *KeyMetricsTTM) {
	// EBITDA multiple stands in until EBIT is derived from statements
	setOptional(rec, "ev_ebit_ttm", m.EVToEBITDATTM)
	setOptional(rec, "ev_fcf_ttm", m.EVToFreeCashFlowTTM)
	setScaled(rec, "roic_pct", m.ROICTTM, 100)

	if rec.Type == contracts.CompanyREIT {
		setOptional(rec, "net_debt_ebitda_re", m.NetDebtToEBITDATTM)
	} else {
		setOptional(rec, "net_debt_ebitda", m.NetDebtToEBITDATTM)
	}

	if m.TangibleBookValuePerShareTTM != nil && *m.TangibleBookValuePerShareTTM > 0 && profile.Price > 0 {
		rec.SetMetric("p_tangible_book", profile.Price / *m.TangibleBookValuePerShareTTM)
	}
}

// applyGrowth maps the growth endpoint (newest record first) onto the
// trend signals and the dilution guardrail input
func applyGrowth(rec *contracts.CompanyRecord, growth []FinancialGrowth) {
	if len(growth) == 0 {
		return
	}
	g := growth[0]

	if g.ThreeYRevenueGrowthPerShare != nil {
		v := *g.ThreeYRevenueGrowthPerShare * 100
		rec.Trend.RevenueGrowth3Y = &v
	}
	if g.GrossProfitGrowth != nil && g.RevenueGrowth != nil {
		// gross profit growing slower than revenue means the margin is
		// contracting
		v := (*g.GrossProfitGrowth - *g.RevenueGrowth) * 100
		rec.Trend.MarginTrend = &v
	}

	// diluted share-count growth: positive means net issuance. Altman Z,
	// Beneish M and the accruals ratio need full-statement arithmetic
	// and stay upstream; dilution is the one guardrail input the growth
	// endpoint publishes directly.
	setScaled(rec, guardrails.MetricDilution, g.DilutedSharesGrowth, 100)

	// operating income growth is the quality-trajectory proxy; the
	// delta is its year-over-year change
	if g.OperatingIncomeGrowth != nil {
		score := *g.OperatingIncomeGrowth * 100
		rec.Trend.QualityDegradationScore = &score
		if len(growth) > 1 && growth[1].OperatingIncomeGrowth != nil {
			delta := score - *growth[1].OperatingIncomeGrowth*100
			rec.Trend.QualityDegradationDelta = &delta
		}
	}
}

// classifyDegradation tags the record VALUE or GROWTH by price-to-book
// so the right degradation flavor applies downstream. No P/B, no tag.
func classifyDegradation(rec *contracts.CompanyRecord, cutoff float64) {
	if cutoff <= 0 {
		return
	}
	pb, ok := rec.Metric("pb_ttm")
	if !ok {
		return
	}
	if pb < cutoff {
		rec.Trend.QualityDegradationType = contracts.DegradationValue
	} else {
		rec.Trend.QualityDegradationType = contracts.DegradationGrowth
	}
}

func setOptional(rec *contracts.CompanyRecord, name string, v *float64) {
	if v != nil {
		rec.SetMetric(name, *v)
	}
}

func setScaled(rec *contracts.CompanyRecord, name string, v *float64, factor float64) {
	if v != nil {
		rec.SetMetric(name, *v*factor)
	}
}
