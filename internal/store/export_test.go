package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/provq/internal/engine"
	"github.com/roach88/provq/internal/provenance"
	"github.com/roach88/provq/internal/query"
)

func TestExport_WritesRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run, err := s.Export(ctx, createTestPayload(), "mappings.json")
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 5, run.Mappings)
	assert.Equal(t, 9, run.Events)
	assert.Equal(t, 9, run.Steps)
	require.NotNil(t, run.GeneratedOn)
	assert.Equal(t, "2025-02-28T00:00:00Z", *run.GeneratedOn)

	got, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "mappings.json", got.Source)
	assert.Equal(t, 9, got.Steps)
	assert.True(t, got.ExportedAt.Equal(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)))
}

func TestExport_ReplacesPreviousExport(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.Export(ctx, createTestPayload(), "a.json")
	require.NoError(t, err)
	second, err := s.Export(ctx, createTestPayload(), "b.json")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	var runs, mappings int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM export_runs").Scan(&runs))
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM mappings").Scan(&mappings))
	assert.Equal(t, 1, runs)
	assert.Equal(t, 5, mappings)
}

func TestLatestRun_Empty(t *testing.T) {
	_, err := createTestStore(t).LatestRun(context.Background())
	assert.ErrorIs(t, err, ErrNoExport)
}

func TestTimelineSteps_MatchReplay(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	p := createTestPayload()
	_, err := s.Export(ctx, p, "mappings.json")
	require.NoError(t, err)

	steps, err := s.TimelineSteps(ctx, 1)
	require.NoError(t, err)

	want := engine.Replay(&p.Mappings[1], &p.Dict)
	require.Len(t, steps, len(want.Steps))
	for i, rec := range steps {
		assert.Equal(t, want.Steps[i].Step, rec.Step)
		assert.Equal(t, want.Steps[i].Digest, rec.Digest)
		assert.Equal(t, want.Steps[i].Effect, rec.Effect)
		assert.Equal(t, want.Steps[i].Snapshot, rec.Snapshot)
	}
	assert.Equal(t, engine.EffectInactive, steps[1].Effect)
	assert.Equal(t, 1, steps[1].Removed)
	assert.Equal(t, 0, steps[1].Added)

	none, err := s.TimelineSteps(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

// TestListMappings_AgreesWithEngine runs the same queries through SQL and
// through the in-memory pipeline.
func TestListMappings_AgreesWithEngine(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	p := createTestPayload()
	_, err := s.Export(ctx, p, "mappings.json")
	require.NoError(t, err)

	raws := []query.Raw{
		{},
		{Present: "present"},
		{Present: "missing", Sort: "timeline"},
		{Sort: "present"},
		{Sort: "missing"},
		{Sort: "timeline"},
		{Source: "ANIDB"},
		{Source: "pokémon"},
		{Target: "s1"},
		{Stage: "override"},
		{Stage: "Override"},
		{Actor: "BOT"},
		{Reason: "manual"},
		{Range: "1-12"},
		{Range: "1|1"},
		{Range: "s1e1, 13"},
		{Range: "1-50|s1e1-s1e50"},
		{Range: "99"},
		{Actor: "bot", Present: "missing"},
		{PerPage: "2", Page: "2"},
		{PerPage: "2", Page: "99", Sort: "timeline"},
		{PerPage: "0"},
	}

	for _, raw := range raws {
		q, _ := query.Normalize(raw)
		t.Run(describe(raw), func(t *testing.T) {
			want := engine.ViewPage(engine.Run(p, q), &p.Dict, false)
			got, err := s.ListMappings(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func describe(raw query.Raw) string {
	s := ""
	for _, kv := range [][2]string{
		{"source", raw.Source}, {"target", raw.Target}, {"stage", raw.Stage},
		{"actor", raw.Actor}, {"reason", raw.Reason}, {"range", raw.Range},
		{"present", raw.Present}, {"sort", raw.Sort}, {"page", raw.Page}, {"per_page", raw.PerPage},
	} {
		if kv[1] != "" {
			s += kv[0] + "=" + kv[1] + ";"
		}
	}
	if s == "" {
		return "default"
	}
	return s
}

func TestVerifyAgainst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	p := createTestPayload()
	_, err := s.Export(ctx, p, "mappings.json")
	require.NoError(t, err)

	clean, err := s.VerifyAgainst(ctx, p)
	require.NoError(t, err)
	assert.Empty(t, clean)

	// Drop the last event of mapping 0 from the payload.
	changed := createTestPayload()
	changed.Mappings[0].Events = changed.Mappings[0].Events[:1]
	// And give mapping 3 a new event.
	changed.Mappings[3].Events = []provenance.Event{{Action: 0, Stage: 0, Range: 0, Effective: true}}

	got, err := s.VerifyAgainst(ctx, changed)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, provenance.MappingID(3), got[0].MappingID)
	assert.Empty(t, got[0].Stored)
	assert.NotEmpty(t, got[0].Replayed)

	assert.Equal(t, provenance.MappingID(0), got[1].MappingID)
	assert.Equal(t, 2, got[1].Step)
	assert.NotEmpty(t, got[1].Stored)
	assert.Empty(t, got[1].Replayed)
}
