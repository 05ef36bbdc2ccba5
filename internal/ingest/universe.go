package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/screener/pkg/httputil"
	"github.com/wonny/screener/pkg/logger"
)

// UniverseScraper pulls the screening universe from the configured
// constituents page (S&P 500 by default).
type UniverseScraper struct {
	http *httputil.Client
	url  string
	log  *logger.Logger
}

// NewUniverseScraper creates a UniverseScraper
func NewUniverseScraper(hc *httputil.Client, url string, log *logger.Logger) *UniverseScraper {
	return &UniverseScraper{http: hc, url: url, log: log}
}

// Symbols scrapes the constituents table and returns normalized
// tickers, deduplicated and sorted for run reproducibility.
func (s *UniverseScraper) Symbols(ctx context.Context) ([]string, error) {
	resp, err := s.http.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("universe fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("universe fetch: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("universe parse: %w", err)
	}

	seen := make(map[string]bool)
	doc.Find("table#constituents tbody tr").Each(func(_ int, row *goquery.Selection) {
		cell := row.Find("td").First()
		sym := normalizeSymbol(cell.Text())
		if sym != "" {
			seen[sym] = true
		}
	})

	// some mirrors render the table without the id attribute
	if len(seen) == 0 {
		doc.Find("table.wikitable tbody tr").Each(func(_ int, row *goquery.Selection) {
			cell := row.Find("td").First()
			sym := normalizeSymbol(cell.Text())
			if sym != "" {
				seen[sym] = true
			}
		})
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("universe parse: no constituents found at %s", s.url)
	}

	symbols := make([]string, 0, len(seen))
	for sym := range seen {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	s.log.WithField("count", len(symbols)).Info("universe scraped")
	return symbols, nil
}

// normalizeSymbol maps exchange-style class tickers (BRK.B) to the
// dash form FMP expects (BRK-B) and rejects non-ticker cell content.
func normalizeSymbol(raw string) string {
	sym := strings.TrimSpace(raw)
	sym = strings.ReplaceAll(sym, ".", "-")
	if sym == "" || len(sym) > 6 {
		return ""
	}
	for _, r := range sym {
		if (r < 'A' || r > 'Z') && r != '-' {
			return ""
		}
	}
	return sym
}
