package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/provq/internal/testutil"
)

func TestSummarize_Counts(t *testing.T) {
	p := testutil.NewPayload().
		Meta("generated_on", "2025-01-02T03:04:05Z").
		Presence(true, false, true, true, false, true, false, true, true, false).
		Build()

	s := Summarize(p)

	assert.Equal(t, 10, s.Mappings)
	assert.Equal(t, 6, s.PresentMappings)
	assert.Equal(t, 4, s.MissingMappings)
	require.NotNil(t, s.GeneratedOn)
	assert.Equal(t, "2025-01-02T03:04:05Z", *s.GeneratedOn)
}

func TestSummarize_GeneratedOnMustBeString(t *testing.T) {
	for _, v := range []any{float64(1700000000), true, nil, map[string]any{"at": "x"}} {
		p := testutil.NewPayload().Meta("generated_on", v).Build()
		assert.Nil(t, Summarize(p).GeneratedOn)
	}

	assert.Nil(t, Summarize(testutil.NewPayload().Build()).GeneratedOn)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(testutil.NewPayload().Build())
	assert.Equal(t, Summary{}, s)
}

func TestSummarizeProviders(t *testing.T) {
	b := testutil.NewPayload()
	b.Mapping("anidb:1", "tvdb:1:s1", true)
	b.Mapping("anidb:2", "tmdb:9", false)
	b.Mapping("anilist:3", "tvdb:2", true)
	b.Mapping("garbage", "tvdb:3", false)
	p := b.Build()

	got := SummarizeProviders(p)

	assert.Equal(t, []ProviderCount{
		{Provider: "anidb", Mappings: 2, Present: 1, Missing: 1},
		{Provider: UnknownProvider, Mappings: 1, Present: 0, Missing: 1},
		{Provider: "anilist", Mappings: 1, Present: 1, Missing: 0},
	}, got.Source)
	assert.Equal(t, []ProviderCount{
		{Provider: "tvdb", Mappings: 3, Present: 2, Missing: 1},
		{Provider: "tmdb", Mappings: 1, Present: 0, Missing: 1},
	}, got.Target)
}
