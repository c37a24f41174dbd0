package harness

import (
	"github.com/roach88/provq/internal/engine"
	"github.com/roach88/provq/internal/provenance"
)

// QueryResult records what one scenario query returned.
type QueryResult struct {
	Name     string   `json:"name"`
	IDs      []int    `json:"ids"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	Warnings []string `json:"warnings,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every query and assertion held.
	Pass bool `json:"pass"`

	// Errors contains one message per failed check.
	Errors []string `json:"errors,omitempty"`

	// Payload is the snapshot the scenario ran against, after the JSON
	// round trip.
	Payload *provenance.Payload `json:"-"`

	// Timelines holds the replay of every mapping.
	Timelines map[provenance.MappingID]engine.Timeline `json:"-"`

	Queries []QueryResult `json:"queries"`
}

// NewResult creates a new passing result for p.
func NewResult(p *provenance.Payload) *Result {
	return &Result{
		Pass:      true,
		Errors:    []string{},
		Payload:   p,
		Timelines: make(map[provenance.MappingID]engine.Timeline, len(p.Mappings)),
		Queries:   []QueryResult{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
