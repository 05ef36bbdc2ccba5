// Package ingest builds the per-run company batch: universe discovery,
// fundamental data fetch, company-type classification, and assembly of
// the raw metric table the scoring engine consumes.
package ingest

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wonny/screener/pkg/config"
	"github.com/wonny/screener/pkg/httputil"
	"github.com/wonny/screener/pkg/logger"
	"github.com/wonny/screener/pkg/redis"
)

// FMPClient wraps the Financial Modeling Prep REST API.
// ⭐ SSOT: FMP API 호출은 이 클라이언트를 통해서만
//
// Every call goes through the shared rate limiter (Redis sliding
// window, or a local token bucket when Redis is off) and the response
// cache, so concurrent fetch workers stay inside the plan budget.
type FMPClient struct {
	http    *httputil.Client
	cache   *redis.Cache
	baseURL string
	apiKey  string
	log     *logger.Logger
}

// NewFMPClient creates an FMP client wired to the shared infrastructure
func NewFMPClient(cfg *config.Config, rc *redis.Client, log *logger.Logger) *FMPClient {
	hc := httputil.New(log)
	if rc.Enabled() {
		limiter := redis.NewRateLimiter(rc, "screener")
		hc = hc.WithRateLimiter(limiter, redis.RateLimitConfig{
			Key:    "fmp",
			Limit:  cfg.FMP.RateLimit,
			Window: cfg.FMP.RateWindow,
		})
	} else {
		hc = hc.WithLocalRateLimit(cfg.FMP.RateLimit, cfg.FMP.RateWindow)
	}

	return &FMPClient{
		http:    hc,
		cache:   redis.NewCache(rc, "screener"),
		baseURL: cfg.FMP.BaseURL,
		apiKey:  cfg.FMP.APIKey,
		log:     log,
	}
}

// Profile is the subset of /v3/profile consumed downstream
type Profile struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Industry    string  `json:"industry"`
	Sector      string  `json:"sector"`
	Price       float64 `json:"price"`
	MktCap      float64 `json:"mktCap"`
	IsETF       bool    `json:"isEtf"`
	IsFund      bool    `json:"isFund"`
}

// RatiosTTM is the subset of /v3/ratios-ttm consumed downstream
type RatiosTTM struct {
	PERatioTTM             *float64 `json:"peRatioTTM"`
	PriceToBookRatioTTM    *float64 `json:"priceToBookRatioTTM"`
	DividendYieldTTM       *float64 `json:"dividendYielTTM"` // FMP field name has the typo
	GrossProfitMarginTTM   *float64 `json:"grossProfitMarginTTM"`
	InterestCoverageTTM    *float64 `json:"interestCoverageTTM"`
	ReturnOnAssetsTTM      *float64 `json:"returnOnAssetsTTM"`
	ReturnOnEquityTTM      *float64 `json:"returnOnEquityTTM"`
	PayoutRatioTTM         *float64 `json:"payoutRatioTTM"`
	PriceToFreeCashFlowTTM *float64 `json:"priceToFreeCashFlowsRatioTTM"`
}

// KeyMetricsTTM is the subset of /v3/key-metrics-ttm consumed downstream
type KeyMetricsTTM struct {
	ROICTTM                      *float64 `json:"roicTTM"`
	EVToEBITDATTM                *float64 `json:"enterpriseValueOverEBITDATTM"`
	EVToFreeCashFlowTTM          *float64 `json:"evToFreeCashFlowTTM"`
	EVToOperatingCashFlowTTM     *float64 `json:"evToOperatingCashFlowTTM"`
	NetDebtToEBITDATTM           *float64 `json:"netDebtToEBITDATTM"`
	FreeCashFlowYieldTTM         *float64 `json:"freeCashFlowYieldTTM"`
	TangibleBookValuePerShareTTM *float64 `json:"tangibleBookValuePerShareTTM"`
	GrahamNumberTTM              *float64 `json:"grahamNumberTTM"`
}

// FinancialGrowth is the subset of /v3/financial-growth consumed for
// the trend signals and the dilution guardrail input
type FinancialGrowth struct {
	ThreeYRevenueGrowthPerShare *float64 `json:"threeYRevenueGrowthPerShare"`
	RevenueGrowth               *float64 `json:"revenueGrowth"`
	GrossProfitGrowth           *float64 `json:"grossProfitGrowth"`
	OperatingIncomeGrowth       *float64 `json:"operatingIncomeGrowth"`
	DilutedSharesGrowth         *float64 `json:"weightedAverageSharesDilutedGrowth"`
}

// PriceHistory is the /v3/historical-price-full line series
type PriceHistory struct {
	Symbol     string `json:"symbol"`
	Historical []struct {
		Date  string  `json:"date"`
		Close float64 `json:"close"`
	} `json:"historical"`
}

func (c *FMPClient) endpoint(path, symbol string, extra url.Values) string {
	q := url.Values{}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("apikey", c.apiKey)
	return fmt.Sprintf("%s/%s/%s?%s", c.baseURL, path, url.PathEscape(symbol), q.Encode())
}

// GetProfile fetches the company profile, cached for the short TTL
func (c *FMPClient) GetProfile(ctx context.Context, symbol string) (*Profile, error) {
	var profiles []Profile
	err := c.cache.GetOrSet(ctx, redis.ProfileKey(symbol), &profiles, redis.TTLShort, func() (interface{}, error) {
		var fresh []Profile
		if err := c.http.GetJSON(ctx, c.endpoint("profile", symbol, nil), &fresh); err != nil {
			return nil, fmt.Errorf("fmp profile %s: %w", symbol, err)
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("fmp profile %s: empty response", symbol)
	}
	return &profiles[0], nil
}

// GetRatiosTTM fetches trailing-twelve-month ratios, cached daily
func (c *FMPClient) GetRatiosTTM(ctx context.Context, symbol string) (*RatiosTTM, error) {
	var ratios []RatiosTTM
	err := c.cache.GetOrSet(ctx, redis.RatiosKey(symbol), &ratios, redis.TTLDaily, func() (interface{}, error) {
		var fresh []RatiosTTM
		if err := c.http.GetJSON(ctx, c.endpoint("ratios-ttm", symbol, nil), &fresh); err != nil {
			return nil, fmt.Errorf("fmp ratios-ttm %s: %w", symbol, err)
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	if len(ratios) == 0 {
		return nil, fmt.Errorf("fmp ratios-ttm %s: empty response", symbol)
	}
	return &ratios[0], nil
}

// GetKeyMetricsTTM fetches trailing-twelve-month key metrics, cached daily
func (c *FMPClient) GetKeyMetricsTTM(ctx context.Context, symbol string) (*KeyMetricsTTM, error) {
	var metrics []KeyMetricsTTM
	err := c.cache.GetOrSet(ctx, redis.KeyMetricsKey(symbol), &metrics, redis.TTLDaily, func() (interface{}, error) {
		var fresh []KeyMetricsTTM
		if err := c.http.GetJSON(ctx, c.endpoint("key-metrics-ttm", symbol, nil), &fresh); err != nil {
			return nil, fmt.Errorf("fmp key-metrics-ttm %s: %w", symbol, err)
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		return nil, fmt.Errorf("fmp key-metrics-ttm %s: empty response", symbol)
	}
	return &metrics[0], nil
}

// GetFinancialGrowth fetches the two most recent annual growth
// records, newest first. Two years are needed for the year-over-year
// quality-degradation delta.
func (c *FMPClient) GetFinancialGrowth(ctx context.Context, symbol string) ([]FinancialGrowth, error) {
	var growth []FinancialGrowth
	key := fmt.Sprintf("fmp:growth:%s", symbol)
	err := c.cache.GetOrSet(ctx, key, &growth, redis.TTLDaily, func() (interface{}, error) {
		var fresh []FinancialGrowth
		u := c.endpoint("financial-growth", symbol, url.Values{"limit": {"2"}})
		if err := c.http.GetJSON(ctx, u, &fresh); err != nil {
			return nil, fmt.Errorf("fmp financial-growth %s: %w", symbol, err)
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	// young companies have no growth history, not an error
	return growth, nil
}

// GetPriceHistory fetches the daily close series for the momentum overlay
func (c *FMPClient) GetPriceHistory(ctx context.Context, symbol string, days int) (*PriceHistory, error) {
	var history PriceHistory
	err := c.cache.GetOrSet(ctx, redis.PricesKey(symbol), &history, redis.TTLShort, func() (interface{}, error) {
		var fresh PriceHistory
		u := c.endpoint("historical-price-full", symbol, url.Values{
			"serietype":  {"line"},
			"timeseries": {fmt.Sprintf("%d", days)},
		})
		if err := c.http.GetJSON(ctx, u, &fresh); err != nil {
			return nil, fmt.Errorf("fmp prices %s: %w", symbol, err)
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return &history, nil
}

// DailyCloses returns the close series newest-first, satisfying the
// technical overlay's price source.
func (c *FMPClient) DailyCloses(ctx context.Context, symbol string, days int) ([]float64, error) {
	history, err := c.GetPriceHistory(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	closes := make([]float64, len(history.Historical))
	for i, bar := range history.Historical {
		closes[i] = bar.Close
	}
	return closes, nil
}
