package provenance

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generatorPayload = `{
  "$meta": {"schema_version": "3.1.0", "generated_on": "2025-06-01T12:00:00+00:00", "mappings": 2, "present_mappings": 1},
  "dict": {
    "descriptors": ["anidb:1", "tvdb:2:s1", "tmdb:3"],
    "actions": ["add", "remove"],
    "stages": ["source", "edits"],
    "actors": ["anime_lists"],
    "reasons": ["manual override"],
    "ranges": [{"s": "1-12", "t": "1-12"}, {"s": "1", "t": null}]
  },
  "mappings": [
    {"s": 0, "t": 1, "p": 1, "n": 2, "ev": [
      {"seq": 4, "a": 0, "s": 0, "e": 1, "r": 0, "ac": 0, "rs": -1},
      {"seq": 9, "a": 1, "s": 1, "e": 0, "r": 1, "ac": -1, "rs": 0, "d": {"note": "dup"}}
    ]},
    {"s": 0, "t": 2, "p": false}
  ]
}`

func TestDecode_GeneratorPayload(t *testing.T) {
	p, err := DecodeBytes([]byte(generatorPayload))
	require.NoError(t, err)

	gen, ok := p.Meta.GeneratedOn()
	require.True(t, ok)
	assert.Equal(t, "2025-06-01T12:00:00+00:00", gen)

	require.Len(t, p.Mappings, 2)
	m := p.Mappings[0]
	assert.Equal(t, DescriptorIndex(0), m.Source)
	assert.Equal(t, DescriptorIndex(1), m.Target)
	assert.True(t, m.Present)
	require.NotNil(t, m.EventCount)
	assert.Equal(t, 2, *m.EventCount)
	require.Len(t, m.Events, 2)

	first := m.Events[0]
	assert.Equal(t, ActionIndex(0), first.Action)
	assert.True(t, first.Effective)
	assert.Equal(t, int64(4), first.Seq)
	assert.Equal(t, ReasonIndex(NoIndex), first.Reason)

	second := m.Events[1]
	assert.False(t, second.Effective)
	assert.JSONEq(t, `{"note": "dup"}`, string(second.Details))

	r := p.Dict.Range(1)
	assert.Equal(t, Known("1"), r.Source)
	assert.False(t, r.Target.Valid)

	bare := p.Mappings[1]
	assert.False(t, bare.Present)
	assert.Nil(t, bare.EventCount)
	assert.Empty(t, bare.Events)
}

func TestDecode_MissingIndicesBecomeNoIndex(t *testing.T) {
	p, err := DecodeBytes([]byte(`{"dict": {}, "mappings": [{"ev": [{"e": true}]}]}`))
	require.NoError(t, err)

	m := p.Mappings[0]
	assert.Equal(t, DescriptorIndex(NoIndex), m.Source)
	assert.Equal(t, DescriptorIndex(NoIndex), m.Target)
	assert.Equal(t, RangeIndex(NoIndex), m.Events[0].Range)
	assert.True(t, m.Events[0].Effective)
	assert.Equal(t, "", p.Dict.Descriptor(m.Source))
}

func TestDecode_RejectsMalformedFlag(t *testing.T) {
	_, err := DecodeBytes([]byte(`{"dict": {}, "mappings": [{"p": "yes"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode payload")
}

func TestEncode_ProducesDecodablePayload(t *testing.T) {
	p, err := DecodeBytes([]byte(generatorPayload))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, p))

	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, p.Dict, again.Dict)
	require.Len(t, again.Mappings[0].Events, 2)
	for i, ev := range p.Mappings[0].Events {
		got := again.Mappings[0].Events[i]
		assert.Equal(t, ev.Action, got.Action)
		assert.Equal(t, ev.Range, got.Range)
		assert.Equal(t, ev.Effective, got.Effective)
		assert.Equal(t, ev.Seq, got.Seq)
	}
	assert.JSONEq(t, `{"note":"dup"}`, string(again.Mappings[0].Events[1].Details))
	assert.True(t, again.Mappings[0].Present)
}
