package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wonny/screener/internal/contracts"
)

// WriteBatch saves a raw (pre-scoring) company batch as JSON. The file
// is the interchange between a fetch pass and a later offline scoring
// pass; it carries whatever the records hold, including precomputed
// guardrail inputs and trend signals.
func WriteBatch(path string, companies []*contracts.CompanyRecord) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(companies); err != nil {
		return fmt.Errorf("batch export: %w", err)
	}
	return nil
}

// ReadBatch loads a company batch written by WriteBatch
func ReadBatch(path string) ([]*contracts.CompanyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("batch read: %w", err)
	}
	var companies []*contracts.CompanyRecord
	if err := json.Unmarshal(data, &companies); err != nil {
		return nil, fmt.Errorf("batch parse %s: %w", path, err)
	}
	if len(companies) == 0 {
		return nil, fmt.Errorf("batch %s is empty", path)
	}
	return companies, nil
}
