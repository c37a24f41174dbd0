package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/provq/internal/engine"
	"github.com/roach88/provq/internal/provenance"
	"github.com/roach88/provq/internal/query"
	"github.com/roach88/provq/internal/querysql"
)

// ErrNoExport is returned when the database holds no export.
var ErrNoExport = errors.New("database holds no export")

// LatestRun returns the export currently held by the database.
func (s *Store) LatestRun(ctx context.Context) (ExportRun, error) {
	var (
		run         ExportRun
		generatedOn sql.NullString
		exportedAt  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source, generated_on, mappings, events, exported_at
		FROM export_runs
		ORDER BY exported_at DESC, id DESC
		LIMIT 1
	`).Scan(&run.ID, &run.Source, &generatedOn, &run.Mappings, &run.Events, &exportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ExportRun{}, ErrNoExport
	}
	if err != nil {
		return ExportRun{}, fmt.Errorf("read export run: %w", err)
	}

	if generatedOn.Valid {
		run.GeneratedOn = &generatedOn.String
	}
	run.ExportedAt, err = time.Parse(time.RFC3339Nano, exportedAt)
	if err != nil {
		return ExportRun{}, fmt.Errorf("read export run: exported_at: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM timeline_steps").Scan(&run.Steps); err != nil {
		return ExportRun{}, fmt.Errorf("read export run: count steps: %w", err)
	}
	return run, nil
}

// ListMappings answers q from the export with the same filtering, ordering
// and page clamping as engine.Run.
func (s *Store) ListMappings(ctx context.Context, q query.Query) (engine.PageView, error) {
	compiler := querysql.NewSQLCompiler()

	countSQL, countParams, err := compiler.CompileCount(q)
	if err != nil {
		return engine.PageView{}, fmt.Errorf("list mappings: %w", err)
	}
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countParams...).Scan(&total); err != nil {
		return engine.PageView{}, fmt.Errorf("list mappings: count: %w", err)
	}

	perPage := query.ClampPerPage(q.PerPage)
	pages := max(1, (total+perPage-1)/perPage)
	page := min(max(q.Page, 1), pages)

	pageSQL, pageParams, err := compiler.CompilePage(q, page, perPage)
	if err != nil {
		return engine.PageView{}, fmt.Errorf("list mappings: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, pageSQL, pageParams...)
	if err != nil {
		return engine.PageView{}, fmt.Errorf("list mappings: query: %w", err)
	}
	defer rows.Close()

	items := []engine.MappingView{}
	for rows.Next() {
		var (
			v       engine.MappingView
			id      int
			present int
		)
		if err := rows.Scan(&id, &v.Source, &v.Target, &v.Label, &present, &v.EventCount); err != nil {
			return engine.PageView{}, fmt.Errorf("list mappings: scan: %w", err)
		}
		v.ID = provenance.MappingID(id)
		v.Present = present == 1
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return engine.PageView{}, fmt.Errorf("list mappings: %w", err)
	}

	return engine.PageView{
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
		Total:   total,
		Items:   items,
	}, nil
}

// StepRecord is one stored timeline step.
type StepRecord struct {
	MappingID provenance.MappingID `json:"mapping_id"`
	Step      int                  `json:"step"`
	Effect    engine.Effect        `json:"effect"`
	Range     string               `json:"range"`
	Snapshot  string               `json:"snapshot"`
	Digest    string               `json:"digest"`
	Added     int                  `json:"added"`
	Removed   int                  `json:"removed"`
}

// TimelineSteps returns the stored steps of one mapping in step order.
func (s *Store) TimelineSteps(ctx context.Context, id provenance.MappingID) ([]StepRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT mapping_id, step, effect, range_label, snapshot, digest, added, removed
		FROM timeline_steps
		WHERE mapping_id = ?
		ORDER BY step ASC
	`, int(id))
	if err != nil {
		return nil, fmt.Errorf("read timeline steps: %w", err)
	}
	defer rows.Close()
	return scanSteps(rows)
}

// allSteps returns every stored step ordered by mapping and step.
func (s *Store) allSteps(ctx context.Context) ([]StepRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT mapping_id, step, effect, range_label, snapshot, digest, added, removed
		FROM timeline_steps
		ORDER BY mapping_id ASC, step ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read timeline steps: %w", err)
	}
	defer rows.Close()
	return scanSteps(rows)
}

func scanSteps(rows *sql.Rows) ([]StepRecord, error) {
	steps := []StepRecord{}
	for rows.Next() {
		var (
			rec    StepRecord
			id     int
			effect string
		)
		if err := rows.Scan(&id, &rec.Step, &effect, &rec.Range, &rec.Snapshot, &rec.Digest, &rec.Added, &rec.Removed); err != nil {
			return nil, fmt.Errorf("scan timeline step: %w", err)
		}
		rec.MappingID = provenance.MappingID(id)
		rec.Effect = engine.Effect(effect)
		steps = append(steps, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read timeline steps: %w", err)
	}
	return steps, nil
}
