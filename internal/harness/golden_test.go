package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/provq/internal/engine"
	"github.com/roach88/provq/internal/testutil"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	for _, name := range []string{"add_then_remove", "unicode_folding"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRenderTimeline_Empty(t *testing.T) {
	b := testutil.NewPayload()
	id := b.Mapping("mal:9", "tvdb:1", false)
	p := b.Build()

	got := RenderTimeline(id, engine.Replay(&p.Mappings[id], &p.Dict))
	assert.Equal(t, "mapping 0: mal:9 → tvdb:1\n(no events)\n", string(got))
}

func TestRenderTimeline_IsDeterministic(t *testing.T) {
	b := testutil.NewPayload()
	id := b.Mapping("anidb:1", "tvdb:1", true,
		testutil.Add("2", "2"), testutil.Add("1", "1"), testutil.Remove("2", "2"))
	p := b.Build()

	first := RenderTimeline(id, engine.Replay(&p.Mappings[id], &p.Dict))
	second := RenderTimeline(id, engine.Replay(&p.Mappings[id], &p.Dict))
	assert.Equal(t, first, second)
	assert.Contains(t, string(first), "step 3: remove [inactive] 2 → 2\n")
}

func TestGoldenName(t *testing.T) {
	assert.Equal(t, "add_then_remove_3", GoldenName("add_then_remove", 3))
}
