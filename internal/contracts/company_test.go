package contracts

import (
	"encoding/json"
	"testing"
)

func TestParseCompanyType(t *testing.T) {
	tests := []struct {
		input   string
		want    CompanyType
		wantErr bool
	}{
		{"non_financial", CompanyNonFinancial, false},
		{"financial", CompanyFinancial, false},
		{"reit", CompanyREIT, false},
		{"bank", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseCompanyType(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCompanyType(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCompanyType(%q) unexpected error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseCompanyType(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestGuardrailStatus_Severity(t *testing.T) {
	if GuardrailGreen.Severity() >= GuardrailAmber.Severity() {
		t.Error("Green should be less severe than Amber")
	}
	if GuardrailAmber.Severity() >= GuardrailRed.Severity() {
		t.Error("Amber should be less severe than Red")
	}
	if GuardrailStatus("PURPLE").Severity() != -1 {
		t.Error("unknown status should have severity -1")
	}
}

func TestTrendSignals_Deteriorating(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name       string
		trend      TrendSignals
		want       bool
		wantSignal string
	}{
		{
			name:  "no signals present",
			trend: TrendSignals{},
			want:  false,
		},
		{
			name:       "declining revenue",
			trend:      TrendSignals{RevenueGrowth3Y: f(-2.5)},
			want:       true,
			wantSignal: "revenue_growth_3y",
		},
		{
			name:       "negative degradation delta",
			trend:      TrendSignals{QualityDegradationDelta: f(-1)},
			want:       true,
			wantSignal: "quality_degradation_delta",
		},
		{
			name:  "growing and improving",
			trend: TrendSignals{RevenueGrowth3Y: f(8.1), QualityDegradationDelta: f(2)},
			want:  false,
		},
		{
			name:  "zero growth is not deterioration",
			trend: TrendSignals{RevenueGrowth3Y: f(0)},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, signal := tt.trend.Deteriorating()
			if got != tt.want {
				t.Errorf("Deteriorating() = %v, want %v", got, tt.want)
			}
			if got && signal != tt.wantSignal {
				t.Errorf("signal = %q, want %q", signal, tt.wantSignal)
			}
		})
	}
}

func TestTrendSignals_Signal(t *testing.T) {
	v := 12.5
	trend := TrendSignals{ROICTrend: &v}

	got, ok := trend.Signal("roic_trend")
	if !ok || got != 12.5 {
		t.Errorf("Signal(roic_trend) = %v, %v; want 12.5, true", got, ok)
	}

	if _, ok := trend.Signal("margin_trend"); ok {
		t.Error("Signal(margin_trend) should not be present")
	}

	if _, ok := trend.Signal("unknown_signal"); ok {
		t.Error("Signal(unknown_signal) should not be present")
	}
}

func TestCompanyRecord_Metric(t *testing.T) {
	rec := &CompanyRecord{Ticker: "AAPL"}

	if _, ok := rec.Metric("pe_ttm"); ok {
		t.Error("metric should be absent before SetMetric")
	}

	rec.SetMetric("pe_ttm", 28.4)
	v, ok := rec.Metric("pe_ttm")
	if !ok || v != 28.4 {
		t.Errorf("Metric(pe_ttm) = %v, %v; want 28.4, true", v, ok)
	}
}

func TestCompanyRecord_JSONRoundTrip(t *testing.T) {
	rec := &CompanyRecord{
		Ticker:    "MSFT",
		Industry:  "Software",
		Type:      CompanyNonFinancial,
		Guardrail: GuardrailGreen,
		Metrics:   map[string]float64{"roic_pct": 31.2},
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var back CompanyRecord
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back.Ticker != "MSFT" || back.Guardrail != GuardrailGreen {
		t.Errorf("round trip mismatch: %+v", back)
	}
}
