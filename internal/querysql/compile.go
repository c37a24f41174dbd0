package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/provq/internal/provenance"
	"github.com/roach88/provq/internal/query"
)

// SQLCompiler compiles a normalised query.Query to parameterized SQL over
// the export schema (see internal/store/schema.sql).
//
// CRITICAL: every query includes an ORDER BY ending in the mapping id, so
// results are deterministic and ties keep payload order.
// CRITICAL: all values are parameterized, never interpolated.
//
// Text constraints compare against the *_folded columns, which the exporter
// fills with provenance.Fold; parameters are folded the same way here, so
// case-insensitive matching agrees with the in-memory engine.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Select is the column list every compiled page query returns, in order.
var Select = []string{"m.id", "m.source", "m.target", "m.label", "m.present", "m.event_count"}

// CompileCount returns SQL counting the mappings that match q.
func (c *SQLCompiler) CompileCount(q query.Query) (string, []any, error) {
	where, params, err := c.compileWhere(q)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM mappings m" + where, params, nil
}

// CompilePage returns SQL selecting one page of matching mappings in
// q.Sort order. page and perPage must already be clamped.
func (c *SQLCompiler) CompilePage(q query.Query, page, perPage int) (string, []any, error) {
	if page < 1 || perPage < 1 {
		return "", nil, fmt.Errorf("invalid page window: page=%d per_page=%d", page, perPage)
	}

	where, params, err := c.compileWhere(q)
	if err != nil {
		return "", nil, err
	}
	order, err := c.orderBy(q.Sort)
	if err != nil {
		return "", nil, err
	}

	sql := fmt.Sprintf("SELECT %s FROM mappings m%s ORDER BY %s LIMIT ? OFFSET ?",
		strings.Join(Select, ", "), where, order)
	params = append(params, perPage, (page-1)*perPage)
	return sql, params, nil
}

// compileWhere builds the WHERE clause in the engine's evaluation order.
// An unconstrained query yields an empty clause.
func (c *SQLCompiler) compileWhere(q query.Query) (string, []any, error) {
	var parts []string
	var params []any

	switch q.Present {
	case "", query.PresenceAll:
	case query.PresencePresent:
		parts = append(parts, "m.present = 1")
	case query.PresenceMissing:
		parts = append(parts, "m.present = 0")
	default:
		return "", nil, fmt.Errorf("unsupported presence filter: %q", q.Present)
	}

	if q.StageConstrained() {
		parts = append(parts, existsEvent("e.stage = ?"))
		params = append(params, q.Stage)
	}

	if q.Source != "" {
		parts = append(parts, "instr(m.source_folded, ?) > 0")
		params = append(params, provenance.Fold(q.Source))
	}
	if q.Target != "" {
		parts = append(parts, "instr(m.target_folded, ?) > 0")
		params = append(params, provenance.Fold(q.Target))
	}

	for _, tok := range query.ParseRangeTokens(q.Range) {
		if tok.Pair {
			parts = append(parts, existsEvent("instr(e.source_range_folded, ?) > 0 AND instr(e.target_range_folded, ?) > 0"))
			params = append(params, provenance.Fold(tok.Source), provenance.Fold(tok.Target))
			continue
		}
		parts = append(parts, existsEvent("instr(e.range_folded, ?) > 0"))
		params = append(params, provenance.Fold(tok.Raw))
	}

	if q.Actor != "" {
		parts = append(parts, existsEvent("instr(e.actor_folded, ?) > 0"))
		params = append(params, provenance.Fold(q.Actor))
	}
	if q.Reason != "" {
		parts = append(parts, existsEvent("instr(e.reason_folded, ?) > 0"))
		params = append(params, provenance.Fold(q.Reason))
	}

	if len(parts) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(parts, " AND "), params, nil
}

// existsEvent wraps an event predicate. A mapping without events never
// satisfies it.
func existsEvent(pred string) string {
	return "EXISTS (SELECT 1 FROM events e WHERE e.mapping_id = m.id AND " + pred + ")"
}

// orderBy mirrors engine.FilterAndSort. Uses COLLATE BINARY so label order
// matches Go string comparison.
func (c *SQLCompiler) orderBy(sort query.SortOrder) (string, error) {
	switch sort {
	case "", query.SortDefault:
		return "m.id ASC", nil
	case query.SortPresent:
		return "m.present DESC, m.id ASC", nil
	case query.SortMissing:
		return "m.present ASC, m.id ASC", nil
	case query.SortTimeline:
		return "m.event_count DESC, m.label COLLATE BINARY ASC, m.id ASC", nil
	default:
		return "", fmt.Errorf("unsupported sort order: %q", sort)
	}
}
