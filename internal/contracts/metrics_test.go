package contracts

import "testing"

func testTable() MetricTable {
	return MetricTable{
		{Name: "pe_ttm", Category: CategoryValue, HigherIsBetter: false},
		{Name: "ev_ebit_ttm", Category: CategoryValue, HigherIsBetter: false, AppliesTo: []CompanyType{CompanyNonFinancial}},
		{Name: "roic_pct", Category: CategoryQuality, HigherIsBetter: true, AppliesTo: []CompanyType{CompanyNonFinancial}},
		{Name: "roe_pct", Category: CategoryQuality, HigherIsBetter: true, AppliesTo: []CompanyType{CompanyFinancial}},
		{Name: "p_ffo", Category: CategoryValue, HigherIsBetter: false, AppliesTo: []CompanyType{CompanyREIT}},
	}
}

func TestMetricTable_ForType(t *testing.T) {
	table := testTable()

	nonFinValue := table.ForType(CompanyNonFinancial, CategoryValue)
	if len(nonFinValue) != 2 {
		t.Errorf("non-financial value metrics = %d, want 2", len(nonFinValue))
	}

	finValue := table.ForType(CompanyFinancial, CategoryValue)
	if len(finValue) != 1 || finValue[0].Name != "pe_ttm" {
		t.Errorf("financial value metrics = %v, want [pe_ttm]", finValue)
	}

	reitQuality := table.ForType(CompanyREIT, CategoryQuality)
	if len(reitQuality) != 0 {
		t.Errorf("reit quality metrics = %d, want 0", len(reitQuality))
	}
}

func TestMetricTable_Validate(t *testing.T) {
	if err := testTable().Validate(); err != nil {
		t.Errorf("valid table rejected: %v", err)
	}

	dup := MetricTable{
		{Name: "pe_ttm", Category: CategoryValue},
		{Name: "pe_ttm", Category: CategoryQuality},
	}
	if err := dup.Validate(); err == nil {
		t.Error("duplicate names should be rejected")
	}

	badCat := MetricTable{{Name: "x", Category: "growth"}}
	if err := badCat.Validate(); err == nil {
		t.Error("unknown category should be rejected")
	}

	noName := MetricTable{{Category: CategoryValue}}
	if err := noName.Validate(); err == nil {
		t.Error("empty name should be rejected")
	}
}

func TestStage_ShortName(t *testing.T) {
	for _, s := range AllStages() {
		if s.ShortName() == "UNKNOWN" {
			t.Errorf("stage %s has no short name", s)
		}
	}
	if !IsValidStage("S2_SCORING") {
		t.Error("S2_SCORING should be valid")
	}
	if IsValidStage("S9_NOPE") {
		t.Error("S9_NOPE should be invalid")
	}
}
