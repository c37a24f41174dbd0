package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRangeTokens_PlainAndPair(t *testing.T) {
	tokens := ParseRangeTokens("1-12,5|2")

	require.Len(t, tokens, 2)
	assert.Equal(t, RangeToken{Raw: "1-12"}, tokens[0])
	assert.Equal(t, RangeToken{Raw: "5|2", Source: "5", Target: "2", Pair: true}, tokens[1])
}

func TestParseRangeTokens_TrimsAndDropsEmpty(t *testing.T) {
	tokens := ParseRangeTokens(" 1-12 , ,  s1 | e3 ,")

	require.Len(t, tokens, 2)
	assert.Equal(t, "1-12", tokens[0].Raw)
	assert.False(t, tokens[0].Pair)
	assert.Equal(t, "s1 | e3", tokens[1].Raw)
	assert.Equal(t, "s1", tokens[1].Source)
	assert.Equal(t, "e3", tokens[1].Target)
}

func TestParseRangeTokens_Empty(t *testing.T) {
	assert.Empty(t, ParseRangeTokens(""))
	assert.Empty(t, ParseRangeTokens(",,,"))
}

func TestParseRangeTokens_SplitsAtFirstPipe(t *testing.T) {
	tokens := ParseRangeTokens("1|2|3")

	require.Len(t, tokens, 1)
	assert.True(t, tokens[0].Pair)
	assert.Equal(t, "1", tokens[0].Source)
	assert.Equal(t, "2|3", tokens[0].Target)
}

func TestParseRangeTokens_EmptyHalves(t *testing.T) {
	tokens := ParseRangeTokens("|5")

	require.Len(t, tokens, 1)
	assert.True(t, tokens[0].Pair)
	assert.Equal(t, "", tokens[0].Source)
	assert.Equal(t, "5", tokens[0].Target)
}
