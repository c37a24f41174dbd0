package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/provq/internal/query"
)

func TestCompileCount_Unconstrained(t *testing.T) {
	sql, params, err := NewSQLCompiler().CompileCount(query.Default())
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM mappings m", sql)
	assert.Empty(t, params)
}

func TestCompilePage_Default(t *testing.T) {
	sql, params, err := NewSQLCompiler().CompilePage(query.Default(), 3, 50)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT m.id, m.source, m.target, m.label, m.present, m.event_count FROM mappings m ORDER BY m.id ASC LIMIT ? OFFSET ?",
		sql)
	assert.Equal(t, []any{50, 100}, params)
}

func TestCompilePage_AllConstraintsParameterized(t *testing.T) {
	q := query.Default()
	q.Present = query.PresenceMissing
	q.Stage = "Upstream"
	q.Source = "AniDB"
	q.Target = "TVDB"
	q.Range = "1-12, S1|E2"
	q.Actor = "Bot"
	q.Reason = "Manual"

	sql, params, err := NewSQLCompiler().CompilePage(q, 1, 10)
	require.NoError(t, err)

	assert.Contains(t, sql, "m.present = 0")
	assert.Contains(t, sql, "e.stage = ?")
	assert.Contains(t, sql, "instr(m.source_folded, ?) > 0")
	assert.Contains(t, sql, "instr(m.target_folded, ?) > 0")
	assert.Contains(t, sql, "instr(e.range_folded, ?) > 0")
	assert.Contains(t, sql, "instr(e.source_range_folded, ?) > 0 AND instr(e.target_range_folded, ?) > 0")
	assert.Contains(t, sql, "instr(e.actor_folded, ?) > 0")
	assert.Contains(t, sql, "instr(e.reason_folded, ?) > 0")
	assert.Contains(t, sql, "ORDER BY m.id ASC")

	// Values are never interpolated.
	assert.NotContains(t, sql, "anidb")
	assert.NotContains(t, sql, "Upstream")

	// Stage stays case-sensitive, text filters are folded.
	assert.Equal(t, []any{"Upstream", "anidb", "tvdb", "1-12", "s1", "e2", "bot", "manual", 10, 0}, params)
}

func TestCompilePage_SortOrders(t *testing.T) {
	tests := []struct {
		sort query.SortOrder
		want string
	}{
		{query.SortDefault, "ORDER BY m.id ASC"},
		{query.SortPresent, "ORDER BY m.present DESC, m.id ASC"},
		{query.SortMissing, "ORDER BY m.present ASC, m.id ASC"},
		{query.SortTimeline, "ORDER BY m.event_count DESC, m.label COLLATE BINARY ASC, m.id ASC"},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			q := query.Default()
			q.Sort = tt.sort
			sql, _, err := NewSQLCompiler().CompilePage(q, 1, 1)
			require.NoError(t, err)
			assert.Contains(t, sql, tt.want)
		})
	}
}

func TestCompile_RejectsUnnormalisedValues(t *testing.T) {
	c := NewSQLCompiler()

	q := query.Default()
	q.Sort = "newest"
	_, _, err := c.CompilePage(q, 1, 1)
	assert.Error(t, err)

	q = query.Default()
	q.Present = "sometimes"
	_, _, err = c.CompileCount(q)
	assert.Error(t, err)

	_, _, err = c.CompilePage(query.Default(), 0, 10)
	assert.Error(t, err)
}

func TestCompileCount_StageAllAddsNoClause(t *testing.T) {
	q := query.Default()
	q.Stage = query.StageAll

	sql, params, err := NewSQLCompiler().CompileCount(q)
	require.NoError(t, err)
	assert.NotContains(t, sql, "WHERE")
	assert.Empty(t, params)
}
