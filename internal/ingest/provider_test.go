package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/guardrails"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/config"
	"github.com/wonny/screener/pkg/logger"
	"github.com/wonny/screener/pkg/redis"
)

// fmpStub serves canned FMP responses for one healthy ticker (AAPL),
// one bank (JPM) and one permanently failing ticker (BAD).
func fmpStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		symbol := path[strings.LastIndex(path, "/")+1:]

		if symbol == "BAD" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		switch {
		case strings.Contains(path, "/profile/"):
			industry, sector := "Consumer Electronics", "Technology"
			if symbol == "JPM" {
				industry, sector = "Banks - Diversified", "Financial Services"
			}
			fmt.Fprintf(w, `[{"symbol":%q,"companyName":"Test Co","industry":%q,"sector":%q,"price":100}]`,
				symbol, industry, sector)
		case strings.Contains(path, "/ratios-ttm/"):
			fmt.Fprint(w, `[{"peRatioTTM":25.5,"priceToBookRatioTTM":12.0,"dividendYielTTM":0.006,
				"interestCoverageTTM":30.0,"returnOnAssetsTTM":0.21,"returnOnEquityTTM":1.2}]`)
		case strings.Contains(path, "/key-metrics-ttm/"):
			fmt.Fprint(w, `[{"roicTTM":0.45,"enterpriseValueOverEBITDATTM":20.0,
				"evToFreeCashFlowTTM":26.0,"netDebtToEBITDATTM":0.5,"tangibleBookValuePerShareTTM":4.0}]`)
		case strings.Contains(path, "/financial-growth/"):
			fmt.Fprint(w, `[{"threeYRevenueGrowthPerShare":0.08,"revenueGrowth":0.05,"grossProfitGrowth":0.03,
				"operatingIncomeGrowth":0.04,"weightedAverageSharesDilutedGrowth":0.07},
				{"operatingIncomeGrowth":0.09}]`)
		default:
			http.Error(w, "unknown endpoint", http.StatusNotFound)
		}
	}))
}

func testProvider(t *testing.T, baseURL string) *Provider {
	t.Helper()
	cfg := &config.Config{
		FMP: config.FMPConfig{
			APIKey:        "test",
			BaseURL:       baseURL,
			RateLimit:     1000,
			RateWindow:    time.Minute,
			MaxConcurrent: 4,
		},
	}
	rc := redis.NewDisabled()
	fmp := NewFMPClient(cfg, rc, logger.NewNop())
	// stub returns terminal 404s, retrying only slows the test down
	fmp.http.DisableRetry()
	return NewProvider(fmp, cfg, strategyconfig.Default(), logger.NewNop())
}

func TestProvider_FetchAssemblesRecords(t *testing.T) {
	srv := fmpStub(t)
	defer srv.Close()

	p := testProvider(t, srv.URL)
	records, err := p.Fetch(context.Background(), []string{"AAPL", "JPM"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	aapl := records[0]
	assert.Equal(t, "AAPL", aapl.Ticker)
	assert.Equal(t, contracts.CompanyNonFinancial, aapl.Type)
	assert.Equal(t, "Consumer Electronics", aapl.Industry)

	pe, ok := aapl.Metric("pe_ttm")
	require.True(t, ok)
	assert.Equal(t, 25.5, pe)

	roic, ok := aapl.Metric("roic_pct")
	require.True(t, ok)
	assert.InDelta(t, 45.0, roic, 1e-9)

	dy, ok := aapl.Metric("dividend_yield_pct")
	require.True(t, ok)
	assert.InDelta(t, 0.6, dy, 1e-9)

	ptb, ok := aapl.Metric("p_tangible_book")
	require.True(t, ok)
	assert.InDelta(t, 25.0, ptb, 1e-9)

	require.NotNil(t, aapl.Trend.RevenueGrowth3Y)
	assert.InDelta(t, 8.0, *aapl.Trend.RevenueGrowth3Y, 1e-9)
	require.NotNil(t, aapl.Trend.MarginTrend)
	assert.InDelta(t, -2.0, *aapl.Trend.MarginTrend, 1e-9)

	jpm := records[1]
	assert.Equal(t, contracts.CompanyFinancial, jpm.Type)
}

func TestProvider_PopulatesDilutionGuardrailInput(t *testing.T) {
	srv := fmpStub(t)
	defer srv.Close()

	p := testProvider(t, srv.URL)
	records, err := p.Fetch(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	require.Len(t, records, 1)

	dilution, ok := records[0].Metric(guardrails.MetricDilution)
	require.True(t, ok, "diluted share growth must reach the guardrail input")
	assert.InDelta(t, 7.0, dilution, 1e-9)

	// 7%/yr issuance clears the default amber cutoff, so a fetched
	// record can trip the guardrail without any test-only setup
	ev := guardrails.NewEvaluator(strategyconfig.Default().Guardrails, logger.NewNop())
	ev.Evaluate(records[0])
	assert.Equal(t, contracts.GuardrailAmber, records[0].Guardrail)
	require.Len(t, records[0].GuardrailReasons, 1)
	assert.Contains(t, records[0].GuardrailReasons[0], "dilution")
}

func TestProvider_PopulatesDegradationSignals(t *testing.T) {
	srv := fmpStub(t)
	defer srv.Close()

	p := testProvider(t, srv.URL)
	records, err := p.Fetch(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	trend := records[0].Trend

	require.NotNil(t, trend.QualityDegradationScore)
	assert.InDelta(t, 4.0, *trend.QualityDegradationScore, 1e-9)
	require.NotNil(t, trend.QualityDegradationDelta)
	assert.InDelta(t, -5.0, *trend.QualityDegradationDelta, 1e-9)

	// the negative delta is the second deterioration trigger
	deteriorating, signal := trend.Deteriorating()
	assert.True(t, deteriorating)
	assert.Equal(t, "quality_degradation_delta", signal)

	// P/B 12.0 sits above the default 1.5 cutoff
	assert.Equal(t, contracts.DegradationGrowth, trend.QualityDegradationType)
}

func TestClassifyDegradation(t *testing.T) {
	tests := []struct {
		name   string
		pb     *float64
		cutoff float64
		want   contracts.DegradationType
	}{
		{"below cutoff is value", fptr(0.8), 1.5, contracts.DegradationValue},
		{"at cutoff is growth", fptr(1.5), 1.5, contracts.DegradationGrowth},
		{"above cutoff is growth", fptr(3.0), 1.5, contracts.DegradationGrowth},
		{"missing pb stays unset", nil, 1.5, ""},
		{"zero cutoff disables", fptr(0.8), 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &contracts.CompanyRecord{Ticker: "X"}
			if tt.pb != nil {
				rec.SetMetric("pb_ttm", *tt.pb)
			}
			classifyDegradation(rec, tt.cutoff)
			assert.Equal(t, tt.want, rec.Trend.QualityDegradationType)
		})
	}
}

func fptr(v float64) *float64 { return &v }

func TestProvider_FailedTickerIsSkipped(t *testing.T) {
	srv := fmpStub(t)
	defer srv.Close()

	p := testProvider(t, srv.URL)
	records, err := p.Fetch(context.Background(), []string{"AAPL", "BAD", "JPM"})
	require.NoError(t, err, "one broken ticker must not abort the batch")
	require.Len(t, records, 2)
	assert.Equal(t, "AAPL", records[0].Ticker)
	assert.Equal(t, "JPM", records[1].Ticker, "universe order is preserved")
}

func TestProvider_ContextCancellation(t *testing.T) {
	srv := fmpStub(t)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := testProvider(t, srv.URL)
	_, err := p.Fetch(ctx, []string{"AAPL"})
	assert.Error(t, err)
}
