package provenance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testDictionary() Dictionary {
	return Dictionary{
		Descriptors: []string{"anidb:1", "tvdb:2:s1"},
		Actions:     []string{"add", "remove"},
		Stages:      []string{"source", "edits"},
		Actors:      []string{"anime_lists"},
		Reasons:     []string{"manual override"},
		Ranges: []RangePair{
			{Source: Known("1-12"), Target: Known("1-12")},
			{Source: Known("13"), Target: Label{}},
		},
	}
}

func TestDictionary_ResolvesValidIndices(t *testing.T) {
	d := testDictionary()

	assert.Equal(t, "tvdb:2:s1", d.Descriptor(1))
	assert.Equal(t, "remove", d.Action(1))
	assert.Equal(t, "edits", d.Stage(1))
	assert.Equal(t, "anime_lists", d.Actor(0))
	assert.Equal(t, "manual override", d.Reason(0))
	assert.Equal(t, RangePair{Source: Known("1-12"), Target: Known("1-12")}, d.Range(0))
}

func TestDictionary_InvalidIndicesResolveEmpty(t *testing.T) {
	d := testDictionary()

	for _, idx := range []int{NoIndex, -7, 2, 99} {
		assert.Equal(t, "", d.Descriptor(DescriptorIndex(idx)), "descriptor %d", idx)
		assert.Equal(t, "", d.Action(ActionIndex(idx)), "action %d", idx)
		assert.Equal(t, "", d.Stage(StageIndex(idx)), "stage %d", idx)
		assert.Equal(t, "", d.Actor(ActorIndex(idx)), "actor %d", idx)
		assert.Equal(t, "", d.Reason(ReasonIndex(idx)), "reason %d", idx)
		assert.False(t, d.ActionLabel(ActionIndex(idx)).Valid)
	}

	r := d.Range(5)
	assert.False(t, r.Source.Valid)
	assert.False(t, r.Target.Valid)
}

func TestDictionary_EmptyDictionaryNeverPanics(t *testing.T) {
	var d Dictionary

	assert.NotPanics(t, func() {
		_ = d.Descriptor(0)
		_ = d.Range(0)
		_ = d.Resolve(TableStages, 3)
	})
}

func TestDictionary_Resolve(t *testing.T) {
	d := testDictionary()

	assert.Equal(t, "anidb:1", d.Resolve(TableDescriptors, 0))
	assert.Equal(t, "add", d.Resolve(TableActions, 0))
	assert.Equal(t, "1-12 1-12", d.Resolve(TableRanges, 0))
	assert.Equal(t, "13 ", d.Resolve(TableRanges, 1))
	assert.Equal(t, "", d.Resolve(TableRanges, 9))
	assert.Equal(t, "", d.Resolve(Table("bogus"), 0))
}

func TestDictionary_ResolveIsNotInvertible(t *testing.T) {
	// Two indices may carry the same string; looking a resolved value back
	// up finds the first one, not necessarily the one it came from.
	d := Dictionary{Reasons: []string{"dup", "dup"}}

	resolved := d.Reason(1)
	first := -1
	for i, v := range d.Reasons {
		if v == resolved {
			first = i
			break
		}
	}
	assert.Equal(t, 0, first)
}

func TestLabel_Or(t *testing.T) {
	assert.Equal(t, "-", Label{}.Or("-"))
	assert.Equal(t, "-", Known("").Or("-"))
	assert.Equal(t, "add", Known("add").Or("-"))
}

func TestMapping_Count(t *testing.T) {
	m := Mapping{Events: make([]Event, 3)}
	assert.Equal(t, 3, m.Count())

	n := 10
	m.EventCount = &n
	assert.Equal(t, 10, m.Count())
}

func TestMeta_GeneratedOn(t *testing.T) {
	v, ok := Meta{"generated_on": "2025-01-01T00:00:00+00:00"}.GeneratedOn()
	assert.True(t, ok)
	assert.Equal(t, "2025-01-01T00:00:00+00:00", v)

	_, ok = Meta{"generated_on": 12345.0}.GeneratedOn()
	assert.False(t, ok)

	_, ok = Meta(nil).GeneratedOn()
	assert.False(t, ok)
}
