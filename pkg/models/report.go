package models

// EventFinding holds the validation outcome for a single invalid event.
type EventFinding struct {
	Name       string   `json:"name" yaml:"name"`
	SourcePath string   `json:"source_path,omitempty" yaml:"source_path,omitempty"`
	Violations []string `json:"violations" yaml:"violations"`
}

// Report aggregates all findings of a completed check run. Each duplicate
// group counts as one violation toward the total.
type Report struct {
	Events     []EventFinding `json:"events,omitempty" yaml:"events,omitempty"`
	Duplicates [][]string     `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Scanned    int            `json:"scanned_events" yaml:"scanned_events"`
	Total      int            `json:"total_violations" yaml:"total_violations"`
}

// Valid reports whether the run found no violations.
func (r *Report) Valid() bool {
	return r.Total == 0
}
