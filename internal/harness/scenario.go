package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/provq/internal/query"
)

// Scenario defines one provenance test case.
type Scenario struct {
	// Name uniquely identifies this scenario and prefixes its golden files.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Meta becomes the payload's $meta object.
	Meta map[string]any `yaml:"meta,omitempty"`

	// Mappings are appended in order; a mapping's id is its position.
	Mappings []MappingSpec `yaml:"mappings"`

	// Queries run through the list pipeline.
	Queries []QueryCase `yaml:"queries,omitempty"`

	// Assertions check timelines, counts and lookups.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Golden lists mapping ids whose rendered timeline is compared with a
	// golden file.
	Golden []int `yaml:"golden,omitempty"`
}

// MappingSpec is one mapping in readable form.
type MappingSpec struct {
	Source  string      `yaml:"source"`
	Target  string      `yaml:"target"`
	Present bool        `yaml:"present"`
	Events  []EventSpec `yaml:"events,omitempty"`
}

// EventSpec is one event in readable form. Empty labels become absent
// dictionary references.
type EventSpec struct {
	Action      string         `yaml:"action"`
	Stage       string         `yaml:"stage,omitempty"`
	Actor       string         `yaml:"actor,omitempty"`
	Reason      string         `yaml:"reason,omitempty"`
	SourceRange string         `yaml:"source_range,omitempty"`
	TargetRange string         `yaml:"target_range,omitempty"`
	Effective   *bool          `yaml:"effective,omitempty"`
	Details     map[string]any `yaml:"details,omitempty"`
}

// IsEffective reports the effective flag, true when unset.
func (e EventSpec) IsEffective() bool {
	return e.Effective == nil || *e.Effective
}

// QueryCase is one list query and its expected result.
type QueryCase struct {
	Name  string    `yaml:"name"`
	Query query.Raw `yaml:"query"`

	// IDs are the expected mapping ids on the returned page, in order.
	IDs []int `yaml:"ids"`

	// Total optionally checks the match count before paging.
	Total *int `yaml:"total,omitempty"`

	// Page optionally checks the clamped page number.
	Page *int `yaml:"page,omitempty"`
}

// Assertion checks one property of the scenario's dataset.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Mapping is the mapping id (final_active, effects, empty_timeline).
	Mapping int `yaml:"mapping,omitempty"`

	// Active lists "source: targets" entries (final_active).
	Active []string `yaml:"active,omitempty"`

	// Effects lists step effects in chronological order (effects).
	Effects []string `yaml:"effects,omitempty"`

	// Counts for summary.
	Mappings *int `yaml:"mappings,omitempty"`
	Present  *int `yaml:"present,omitempty"`
	Missing  *int `yaml:"missing,omitempty"`

	// ID and Code for lookup_error.
	ID   string `yaml:"id,omitempty"`
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalActive        = "final_active"
	AssertEffects            = "effects"
	AssertEmptyTimeline      = "empty_timeline"
	AssertSummary            = "summary"
	AssertPresenceConsistent = "presence_consistent"
	AssertLookupError        = "lookup_error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Queries) == 0 && len(s.Assertions) == 0 && len(s.Golden) == 0 {
		return fmt.Errorf("scenario checks nothing: add queries, assertions or golden")
	}

	for i, m := range s.Mappings {
		if m.Source == "" || m.Target == "" {
			return fmt.Errorf("mappings[%d]: source and target are required", i)
		}
		for j, ev := range m.Events {
			if ev.Action == "" {
				return fmt.Errorf("mappings[%d].events[%d]: action is required", i, j)
			}
		}
	}

	for i, q := range s.Queries {
		if q.Name == "" {
			return fmt.Errorf("queries[%d]: name is required", i)
		}
		if q.IDs == nil {
			return fmt.Errorf("queries[%d]: ids is required (use [] for no matches)", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a, len(s.Mappings)); err != nil {
			return err
		}
	}

	for i, id := range s.Golden {
		if id < 0 || id >= len(s.Mappings) {
			return fmt.Errorf("golden[%d]: mapping %d does not exist", i, id)
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, mappings int) error {
	needsMapping := func() error {
		if a.Mapping < 0 || a.Mapping >= mappings {
			return fmt.Errorf("assertions[%d]: mapping %d does not exist", index, a.Mapping)
		}
		return nil
	}

	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertFinalActive, AssertEmptyTimeline:
		return needsMapping()
	case AssertEffects:
		if a.Effects == nil {
			return fmt.Errorf("assertions[%d]: effects list is required for effects", index)
		}
		return needsMapping()
	case AssertSummary:
		if a.Mappings == nil && a.Present == nil && a.Missing == nil {
			return fmt.Errorf("assertions[%d]: summary needs at least one count", index)
		}
	case AssertPresenceConsistent:
	case AssertLookupError:
		if a.ID == "" || a.Code == "" {
			return fmt.Errorf("assertions[%d]: id and code are required for lookup_error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
