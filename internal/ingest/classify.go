package ingest

import (
	"strings"

	"github.com/wonny/screener/internal/contracts"
)

// financialIndustries marks profile industries compared on the
// financial metric set. Matching is case-insensitive substring, since
// FMP's industry strings drift across revisions.
var financialIndustries = []string{
	"bank",
	"insurance",
	"capital markets",
	"financial services",
	"asset management",
	"credit services",
	"mortgage",
}

// Classify derives the company type from the FMP profile.
// REITs are identified by industry/sector naming; financials by the
// industry list above; everything else is an operating company.
func Classify(p *Profile) contracts.CompanyType {
	industry := strings.ToLower(p.Industry)
	sector := strings.ToLower(p.Sector)

	if strings.Contains(industry, "reit") || strings.Contains(sector, "real estate") {
		return contracts.CompanyREIT
	}
	for _, fin := range financialIndustries {
		if strings.Contains(industry, fin) {
			return contracts.CompanyFinancial
		}
	}
	if sector == "financial services" || sector == "financials" {
		return contracts.CompanyFinancial
	}
	return contracts.CompanyNonFinancial
}

// Screenable filters out instruments the screener cannot score:
// funds and ETFs have no comparable fundamentals.
func Screenable(p *Profile) bool {
	return !p.IsETF && !p.IsFund && p.Industry != ""
}
