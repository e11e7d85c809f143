package dataset

import (
	"fmt"
	"strings"
	"time"

	"anastat/domain/core"
)

// Dataset is a named numeric series stored in the library. Values may carry
// optional per-point standard uncertainties of equal length.
type Dataset struct {
	ID            core.DatasetID `json:"id" db:"id"`
	Name          string         `json:"name" db:"name"`
	Values        []float64      `json:"values" db:"values"`
	Uncertainties []float64      `json:"uncertainties,omitempty" db:"uncertainties"`
	Unit          string         `json:"unit,omitempty" db:"unit"`
	Source        string         `json:"source,omitempty" db:"source"`
	Tags          []string       `json:"tags,omitempty" db:"tags"`
	Pinned        bool           `json:"pinned" db:"pinned"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	ModifiedAt    time.Time      `json:"modified_at" db:"modified_at"`
}

// New builds a dataset with a fresh ID and timestamps.
func New(name string, values []float64) *Dataset {
	now := time.Now().UTC()
	return &Dataset{
		ID:         core.DatasetID(core.NewID()),
		Name:       name,
		Values:     values,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// Validate checks the invariants a dataset must satisfy before persistence.
func (d *Dataset) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("dataset name cannot be empty")
	}
	if len(d.Values) == 0 {
		return fmt.Errorf("dataset %q has no values", d.Name)
	}
	if len(d.Uncertainties) > 0 && len(d.Uncertainties) != len(d.Values) {
		return fmt.Errorf("dataset %q: %d uncertainties for %d values",
			d.Name, len(d.Uncertainties), len(d.Values))
	}
	for i, u := range d.Uncertainties {
		if u < 0 {
			return fmt.Errorf("dataset %q: uncertainty[%d] is negative", d.Name, i)
		}
	}
	return nil
}

// Touch updates the modification timestamp.
func (d *Dataset) Touch() {
	d.ModifiedAt = time.Now().UTC()
}

// SearchFilter narrows library listings.
type SearchFilter struct {
	Query      string   // matches name, source and description-like fields
	Tags       []string // all must be present
	PinnedOnly bool
	Limit      int
	Offset     int
}
