package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/provq/internal/engine"
	"github.com/roach88/provq/internal/provenance"
)

// RenderTimeline renders a timeline as stable plain text, oldest step
// first. Digests are left out so the rendering only changes when the
// replayed content does.
func RenderTimeline(id provenance.MappingID, t engine.Timeline) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "mapping %d: %s → %s\n", id, t.Source, t.Target)
	if t.Empty {
		b.WriteString("(no events)\n")
		return []byte(b.String())
	}

	for _, s := range t.Steps {
		fmt.Fprintf(&b, "\nstep %d: %s [%s] %s\n", s.Step, s.Action, s.Effect, s.Range)
		fmt.Fprintf(&b, "  stage=%s actor=%s reason=%s\n", s.Stage, s.Actor, s.Reason)
		for _, line := range s.Diff {
			b.WriteString("  ")
			switch line.Op {
			case engine.DiffAdded:
				b.WriteString("+ ")
			case engine.DiffRemoved:
				b.WriteString("- ")
			default:
				b.WriteString("  ")
			}
			b.WriteString(line.Text)
			b.WriteByte('\n')
		}
	}
	return []byte(b.String())
}

// GoldenName is the golden file name (without extension) for one mapping
// of a scenario.
func GoldenName(scenario string, id provenance.MappingID) string {
	return fmt.Sprintf("%s_%d", scenario, id)
}

// RunWithGolden executes a scenario and compares every timeline listed in
// scenario.Golden against testdata/golden/{scenario}_{id}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	ids := make([]provenance.MappingID, 0, len(scenario.Golden))
	for _, id := range scenario.Golden {
		ids = append(ids, provenance.MappingID(id))
	}
	AssertGolden(t, scenario.Name, result, ids...)
	return result, nil
}

// AssertGolden compares the rendered timelines of ids against their golden
// files without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result, ids ...provenance.MappingID) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, id := range ids {
		timeline, ok := result.Timelines[id]
		if !ok {
			t.Errorf("golden: mapping %d does not exist", id)
			continue
		}
		g.Assert(t, GoldenName(scenarioName, id), RenderTimeline(id, timeline))
	}
}
