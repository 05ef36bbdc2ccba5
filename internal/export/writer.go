// Package export renders a scored batch to CSV and JSON for dashboards
// and spreadsheet review.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

// csvColumns is the fixed column order. Consumers key on position, so
// new columns go at the end.
var csvColumns = []string{
	"ticker",
	"name",
	"industry",
	"sector",
	"company_type",
	"guardrail_status",
	"guardrail_reasons",
	"value_score",
	"quality_score",
	"composite_score",
	"decision",
	"momentum_score",
	"final_decision",
	"decision_reason",
}

// Writer exports scored batches
type Writer struct {
	outDir string
	log    *logger.Logger
}

// NewWriter creates a Writer rooted at outDir
func NewWriter(outDir string, log *logger.Logger) *Writer {
	return &Writer{outDir: outDir, log: log}
}

// Ranked returns a copy of the batch sorted by composite score
// descending, ties broken by ticker for output stability.
func Ranked(companies []*contracts.CompanyRecord) []*contracts.CompanyRecord {
	out := make([]*contracts.CompanyRecord, len(companies))
	copy(out, companies)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CompositeScore != out[j].CompositeScore {
			return out[i].CompositeScore > out[j].CompositeScore
		}
		return out[i].Ticker < out[j].Ticker
	})
	return out
}

// WriteCSV writes the ranked batch as CSV and returns the file path
func (w *Writer) WriteCSV(companies []*contracts.CompanyRecord, date time.Time) (string, error) {
	path := filepath.Join(w.outDir, fmt.Sprintf("screen_%s.csv", date.Format("2006-01-02")))
	f, err := create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := w.writeCSVTo(f, companies); err != nil {
		return "", err
	}
	w.log.WithFields(map[string]interface{}{"path": path, "rows": len(companies)}).Info("CSV exported")
	return path, nil
}

func (w *Writer) writeCSVTo(out io.Writer, companies []*contracts.CompanyRecord) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(csvColumns); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}

	for _, c := range Ranked(companies) {
		momentum := ""
		if c.MomentumScore != nil {
			momentum = strconv.FormatFloat(*c.MomentumScore, 'f', 4, 64)
		}
		row := []string{
			c.Ticker,
			c.Name,
			c.Industry,
			c.Sector,
			string(c.Type),
			string(c.Guardrail),
			strings.Join(c.GuardrailReasons, " | "),
			strconv.FormatFloat(c.ValueScore, 'f', 2, 64),
			strconv.FormatFloat(c.QualityScore, 'f', 2, 64),
			strconv.FormatFloat(c.CompositeScore, 'f', 2, 64),
			string(c.Decision),
			momentum,
			string(c.FinalDecision),
			c.DecisionReason,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv row %s: %w", c.Ticker, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// JSONReport is the document shape of the JSON export
type JSONReport struct {
	Date       string                     `json:"date"`
	RunID      string                     `json:"run_id"`
	StrategyID string                     `json:"strategy_id"`
	ConfigHash string                     `json:"config_hash"`
	Companies  []*contracts.CompanyRecord `json:"companies"`
}

// WriteJSON writes the ranked batch plus run metadata as JSON
func (w *Writer) WriteJSON(companies []*contracts.CompanyRecord, summary contracts.RunSummary) (string, error) {
	path := filepath.Join(w.outDir, fmt.Sprintf("screen_%s.json", summary.Date.Format("2006-01-02")))
	f, err := create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	report := JSONReport{
		Date:       summary.Date.Format("2006-01-02"),
		RunID:      summary.RunID,
		StrategyID: summary.StrategyID,
		ConfigHash: summary.ConfigHash,
		Companies:  Ranked(companies),
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return "", fmt.Errorf("json export: %w", err)
	}
	w.log.WithFields(map[string]interface{}{"path": path, "rows": len(companies)}).Info("JSON exported")
	return path, nil
}

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("export file: %w", err)
	}
	return f, nil
}
