package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/provq/internal/engine"
	"github.com/roach88/provq/internal/provenance"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions runs every assertion against result and returns one
// message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertFinalActive:
		return assertFinalActive(result, a)
	case AssertEffects:
		return assertEffects(result, a)
	case AssertEmptyTimeline:
		return assertEmptyTimeline(result, a)
	case AssertSummary:
		return assertSummary(result, a)
	case AssertPresenceConsistent:
		return assertPresenceConsistent(result)
	case AssertLookupError:
		return assertLookupError(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func timelineOf(result *Result, id int) (engine.Timeline, error) {
	t, ok := result.Timelines[provenance.MappingID(id)]
	if !ok {
		return engine.Timeline{}, fmt.Errorf("mapping %d does not exist", id)
	}
	return t, nil
}

// formatEntries renders entries as "source: targets".
func formatEntries(entries []provenance.SnapshotEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.SourceRange+": "+e.TargetRanges)
	}
	return out
}

func assertFinalActive(result *Result, a Assertion) error {
	t, err := timelineOf(result, a.Mapping)
	if err != nil {
		return err
	}
	got := formatEntries(t.Final())
	want := a.Active
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(got, want) {
		return &AssertionError{
			Type:     AssertFinalActive,
			Expected: fmt.Sprintf("mapping %d active %q", a.Mapping, want),
			Actual:   fmt.Sprintf("%q", got),
		}
	}
	return nil
}

func assertEffects(result *Result, a Assertion) error {
	t, err := timelineOf(result, a.Mapping)
	if err != nil {
		return err
	}
	got := make([]string, 0, len(t.Steps))
	for _, s := range t.Steps {
		got = append(got, string(s.Effect))
	}
	if !slices.Equal(got, a.Effects) {
		return &AssertionError{
			Type:     AssertEffects,
			Expected: fmt.Sprintf("mapping %d effects [%s]", a.Mapping, strings.Join(a.Effects, " ")),
			Actual:   "[" + strings.Join(got, " ") + "]",
		}
	}
	return nil
}

func assertEmptyTimeline(result *Result, a Assertion) error {
	t, err := timelineOf(result, a.Mapping)
	if err != nil {
		return err
	}
	if !t.Empty || len(t.Steps) != 0 {
		return &AssertionError{
			Type:     AssertEmptyTimeline,
			Expected: fmt.Sprintf("mapping %d has no events", a.Mapping),
			Actual:   fmt.Sprintf("%d step(s)", len(t.Steps)),
		}
	}
	return nil
}

func assertSummary(result *Result, a Assertion) error {
	s := engine.Summarize(result.Payload)
	check := func(name string, want *int, got int) error {
		if want != nil && *want != got {
			return &AssertionError{
				Type:     AssertSummary,
				Expected: fmt.Sprintf("%s=%d", name, *want),
				Actual:   fmt.Sprintf("%s=%d", name, got),
			}
		}
		return nil
	}
	if err := check("mappings", a.Mappings, s.Mappings); err != nil {
		return err
	}
	if err := check("present", a.Present, s.PresentMappings); err != nil {
		return err
	}
	return check("missing", a.Missing, s.MissingMappings)
}

func assertPresenceConsistent(result *Result) error {
	mismatches := engine.VerifyPresence(result.Payload)
	if len(mismatches) == 0 {
		return nil
	}
	ids := make([]string, 0, len(mismatches))
	for _, m := range mismatches {
		ids = append(ids, fmt.Sprintf("%d", m.ID))
	}
	return &AssertionError{
		Type:     AssertPresenceConsistent,
		Expected: "every present flag matches its replay",
		Actual:   "mismatched mappings " + strings.Join(ids, ", "),
	}
}

func assertLookupError(result *Result, a Assertion) error {
	_, err := engine.LookupString(result.Payload, a.ID)
	if err == nil {
		return &AssertionError{
			Type:     AssertLookupError,
			Expected: fmt.Sprintf("lookup %q fails with %s", a.ID, a.Code),
			Actual:   "lookup succeeded",
		}
	}
	var got string
	switch {
	case engine.IsInvalidID(err):
		got = string(engine.ErrCodeInvalidMappingID)
	case engine.IsNotFound(err):
		got = string(engine.ErrCodeMappingNotFound)
	default:
		got = err.Error()
	}
	if got != a.Code {
		return &AssertionError{
			Type:     AssertLookupError,
			Expected: a.Code,
			Actual:   got,
		}
	}
	return nil
}
