package contracts

import "fmt"

// MetricCategory splits metrics into the two factor buckets
type MetricCategory string

const (
	CategoryValue   MetricCategory = "value"
	CategoryQuality MetricCategory = "quality"
)

// MetricDefinition describes one raw metric consumed by the scoring
// engine: which factor it belongs to, its direction, and which company
// types it is comparable for.
type MetricDefinition struct {
	Name           string         `yaml:"name" json:"name"`
	Category       MetricCategory `yaml:"category" json:"category"`
	HigherIsBetter bool           `yaml:"higher_is_better" json:"higher_is_better"`
	// AppliesTo limits the metric to specific company types.
	// Empty means all types.
	AppliesTo []CompanyType `yaml:"applies_to,omitempty" json:"applies_to,omitempty"`
}

// AppliesToType reports whether the metric is comparable for the given
// company type
func (d MetricDefinition) AppliesToType(t CompanyType) bool {
	if len(d.AppliesTo) == 0 {
		return true
	}
	for _, ct := range d.AppliesTo {
		if ct == t {
			return true
		}
	}
	return false
}

// Validate checks the definition for configuration errors
func (d MetricDefinition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("metric name is required")
	}
	if d.Category != CategoryValue && d.Category != CategoryQuality {
		return fmt.Errorf("metric %q: category must be value or quality, got %q", d.Name, d.Category)
	}
	for _, ct := range d.AppliesTo {
		if _, err := ParseCompanyType(string(ct)); err != nil {
			return fmt.Errorf("metric %q: %w", d.Name, err)
		}
	}
	return nil
}

// MetricTable is the full static metric configuration for a strategy
type MetricTable []MetricDefinition

// ForType returns the metrics of one category applicable to a company
// type, in table order
func (t MetricTable) ForType(ct CompanyType, cat MetricCategory) []MetricDefinition {
	out := make([]MetricDefinition, 0, len(t))
	for _, d := range t {
		if d.Category == cat && d.AppliesToType(ct) {
			out = append(out, d)
		}
	}
	return out
}

// Names returns all metric names in table order
func (t MetricTable) Names() []string {
	names := make([]string, 0, len(t))
	for _, d := range t {
		names = append(names, d.Name)
	}
	return names
}

// Validate checks every definition and rejects duplicate names
func (t MetricTable) Validate() error {
	seen := make(map[string]bool, len(t))
	for _, d := range t {
		if err := d.Validate(); err != nil {
			return err
		}
		if seen[d.Name] {
			return fmt.Errorf("duplicate metric definition: %q", d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}
