package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/provq/internal/provenance"
	"github.com/roach88/provq/internal/query"
	"github.com/roach88/provq/internal/testutil"
)

// filterFixture builds one mapping with two distinct events and one mapping
// with none.
func filterFixture(t *testing.T) (*provenance.Payload, *provenance.Mapping, *provenance.Mapping) {
	t.Helper()
	b := testutil.NewPayload()
	full := b.Mapping("AniDB:1", "TVDB:100:s1", true,
		testutil.Add("1-12", "1-12").By("mapper-bot").Because("Upstream import"),
		testutil.Remove("13-24", "S2E1-S2E12").At("Override").By("editor").Because("manual fix"),
	)
	empty := b.Mapping("anidb:2", "tvdb:200", false)
	p := b.Build()

	m, ok := p.Mapping(full)
	require.True(t, ok)
	e, ok := p.Mapping(empty)
	require.True(t, ok)
	return p, m, e
}

func with(mod func(*query.Query)) query.Query {
	q := query.Default()
	mod(&q)
	return q
}

func TestMatches_DefaultQueryMatchesEverything(t *testing.T) {
	p, full, empty := filterFixture(t)

	assert.True(t, Matches(full, query.Default(), &p.Dict))
	assert.True(t, Matches(empty, query.Default(), &p.Dict))
}

func TestMatches_Presence(t *testing.T) {
	p, full, empty := filterFixture(t)

	present := with(func(q *query.Query) { q.Present = query.PresencePresent })
	missing := with(func(q *query.Query) { q.Present = query.PresenceMissing })

	assert.True(t, Matches(full, present, &p.Dict))
	assert.False(t, Matches(full, missing, &p.Dict))
	assert.False(t, Matches(empty, present, &p.Dict))
	assert.True(t, Matches(empty, missing, &p.Dict))
}

func TestMatches_StageIsExactAndCaseSensitive(t *testing.T) {
	p, full, _ := filterFixture(t)

	tests := []struct {
		stage string
		want  bool
	}{
		{"upstream", true},
		{"Override", true},
		{"all", true},
		{"Upstream", false},
		{"override", false},
		{"up", false},
	}

	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			q := with(func(q *query.Query) { q.Stage = tt.stage })
			assert.Equal(t, tt.want, Matches(full, q, &p.Dict))
		})
	}
}

func TestMatches_DescriptorsAreCaseInsensitiveSubstrings(t *testing.T) {
	p, full, _ := filterFixture(t)

	tests := []struct {
		name   string
		source string
		target string
		want   bool
	}{
		{"source lower", "anidb", "", true},
		{"source upper", "ANIDB:1", "", true},
		{"source miss", "mal", "", false},
		{"target scope", "", "S1", true},
		{"target miss", "", "tvdb:200", false},
		{"both", "anidb:1", "tvdb:100", true},
		{"source hit target miss", "anidb:1", "imdb", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := with(func(q *query.Query) {
				q.Source = tt.source
				q.Target = tt.target
			})
			assert.Equal(t, tt.want, Matches(full, q, &p.Dict))
		})
	}
}

func TestMatches_RangeTokens(t *testing.T) {
	p, full, _ := filterFixture(t)

	tests := []struct {
		name string
		rng  string
		want bool
	}{
		{"plain", "1-12", true},
		{"plain spans source and target", "12 1", true},
		{"plain case insensitive", "s2e1", true},
		{"all tokens satisfied", "1-12, 13-24", true},
		{"one token unsatisfied", "1-12,99", false},
		{"pair on one event", "13-24|s2e1", true},
		{"pair halves on different events", "1-12|s2e1", false},
		{"pair empty source half", "|1-12", true},
		{"pair and plain", "1-12|1-12,S2E12", true},
		{"only separators", " , ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := with(func(q *query.Query) { q.Range = tt.rng })
			assert.Equal(t, tt.want, Matches(full, q, &p.Dict))
		})
	}
}

func TestMatches_ActorAndReason(t *testing.T) {
	p, full, _ := filterFixture(t)

	assert.True(t, Matches(full, with(func(q *query.Query) { q.Actor = "BOT" }), &p.Dict))
	assert.True(t, Matches(full, with(func(q *query.Query) { q.Actor = "edit" }), &p.Dict))
	assert.False(t, Matches(full, with(func(q *query.Query) { q.Actor = "nobody" }), &p.Dict))

	assert.True(t, Matches(full, with(func(q *query.Query) { q.Reason = "MANUAL" }), &p.Dict))
	assert.True(t, Matches(full, with(func(q *query.Query) { q.Reason = "import" }), &p.Dict))
	assert.False(t, Matches(full, with(func(q *query.Query) { q.Reason = "typo" }), &p.Dict))
}

func TestMatches_ConjunctionLaw(t *testing.T) {
	p, full, _ := filterFixture(t)

	// Each constraint holds on its own.
	parts := []func(*query.Query){
		func(q *query.Query) { q.Present = query.PresencePresent },
		func(q *query.Query) { q.Stage = "upstream" },
		func(q *query.Query) { q.Source = "anidb" },
		func(q *query.Query) { q.Target = "tvdb" },
		func(q *query.Query) { q.Range = "1-12" },
		func(q *query.Query) { q.Actor = "bot" },
		func(q *query.Query) { q.Reason = "fix" },
	}
	combined := query.Default()
	for _, mod := range parts {
		require.True(t, Matches(full, with(mod), &p.Dict))
		mod(&combined)
	}
	assert.True(t, Matches(full, combined, &p.Dict))

	// Breaking any single constraint breaks the conjunction.
	breakers := []func(*query.Query){
		func(q *query.Query) { q.Present = query.PresenceMissing },
		func(q *query.Query) { q.Stage = "nightly" },
		func(q *query.Query) { q.Source = "mal" },
		func(q *query.Query) { q.Target = "imdb" },
		func(q *query.Query) { q.Range = "99" },
		func(q *query.Query) { q.Actor = "nobody" },
		func(q *query.Query) { q.Reason = "typo" },
	}
	for i, brk := range breakers {
		q := combined
		brk(&q)
		assert.False(t, Matches(full, q, &p.Dict), "breaker %d", i)
	}
}

func TestMatches_EmptyEventsFailEventConstraints(t *testing.T) {
	p, _, empty := filterFixture(t)

	constraints := map[string]func(*query.Query){
		"stage":  func(q *query.Query) { q.Stage = "upstream" },
		"actor":  func(q *query.Query) { q.Actor = "a" },
		"reason": func(q *query.Query) { q.Reason = "r" },
		"range":  func(q *query.Query) { q.Range = "1" },
	}
	for name, mod := range constraints {
		t.Run(name, func(t *testing.T) {
			assert.False(t, Matches(empty, with(mod), &p.Dict))
		})
	}

	assert.True(t, Matches(empty, with(func(q *query.Query) { q.Source = "anidb:2" }), &p.Dict))
}

func TestMatches_MalformedIndicesNeverPanic(t *testing.T) {
	b := testutil.NewPayload()
	b.Mapping("anidb:1", "tvdb:1", true)
	id := b.Raw(provenance.Mapping{
		Source:  99,
		Target:  provenance.NoIndex,
		Present: true,
		Events: []provenance.Event{
			{Action: 42, Stage: -7, Actor: 3, Reason: 8, Range: 77, Effective: true},
		},
	})
	p := b.Build()
	m, _ := p.Mapping(id)

	assert.True(t, Matches(m, query.Default(), &p.Dict))
	assert.False(t, Matches(m, with(func(q *query.Query) { q.Source = "anidb" }), &p.Dict))
	assert.False(t, Matches(m, with(func(q *query.Query) { q.Actor = "x" }), &p.Dict))
	assert.False(t, Matches(m, with(func(q *query.Query) { q.Range = "1" }), &p.Dict))
	assert.False(t, Matches(m, with(func(q *query.Query) { q.Stage = "upstream" }), &p.Dict))
}

func TestMatches_UnicodeNormalisation(t *testing.T) {
	b := testutil.NewPayload()
	id := b.Mapping("anilist:Pokémon", "tvdb:1", true)
	p := b.Build()
	m, _ := p.Mapping(id)

	q := with(func(q *query.Query) { q.Source = "POKÉMON" })
	assert.True(t, Matches(m, q, &p.Dict))
}
