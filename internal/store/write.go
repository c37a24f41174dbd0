package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/provq/internal/engine"
	"github.com/roach88/provq/internal/provenance"
)

// ExportRun describes one export written to the database.
type ExportRun struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	GeneratedOn *string   `json:"generated_on"`
	Mappings    int       `json:"mappings"`
	Events      int       `json:"events"`
	Steps       int       `json:"steps"`
	ExportedAt  time.Time `json:"exported_at"`
}

// Export replaces the database contents with p: resolved mappings, their
// events, and every replayed timeline step with its snapshot digest.
// The whole export is one transaction; on error nothing changes.
func (s *Store) Export(ctx context.Context, p *provenance.Payload, sourceName string) (ExportRun, error) {
	run := ExportRun{
		ID:         uuid.Must(uuid.NewV7()).String(),
		Source:     sourceName,
		Mappings:   len(p.Mappings),
		ExportedAt: s.now().UTC(),
	}
	if on, ok := p.Meta.GeneratedOn(); ok {
		run.GeneratedOn = &on
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ExportRun{}, fmt.Errorf("export: begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"timeline_steps", "events", "mappings", "export_runs"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return ExportRun{}, fmt.Errorf("export: clear %s: %w", table, err)
		}
	}

	w, err := newExportWriter(ctx, tx)
	if err != nil {
		return ExportRun{}, err
	}
	defer w.close()

	for i := range p.Mappings {
		events, steps, err := w.writeMapping(ctx, provenance.MappingID(i), &p.Mappings[i], &p.Dict)
		if err != nil {
			return ExportRun{}, err
		}
		run.Events += events
		run.Steps += steps
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO export_runs (id, source, generated_on, mappings, events, exported_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Source, run.GeneratedOn, run.Mappings, run.Events, run.ExportedAt.Format(time.RFC3339Nano))
	if err != nil {
		return ExportRun{}, fmt.Errorf("export: write run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ExportRun{}, fmt.Errorf("export: commit: %w", err)
	}
	return run, nil
}

// exportWriter holds the prepared statements of one export transaction.
type exportWriter struct {
	mapping *sql.Stmt
	event   *sql.Stmt
	step    *sql.Stmt
}

func newExportWriter(ctx context.Context, tx *sql.Tx) (*exportWriter, error) {
	w := &exportWriter{}
	var err error

	w.mapping, err = tx.PrepareContext(ctx, `
		INSERT INTO mappings (id, source, target, source_folded, target_folded, label, present, event_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("export: prepare mappings: %w", err)
	}

	w.event, err = tx.PrepareContext(ctx, `
		INSERT INTO events (mapping_id, position, seq, action, stage, actor, reason,
			source_range, target_range, actor_folded, reason_folded,
			source_range_folded, target_range_folded, range_folded, effective, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.close()
		return nil, fmt.Errorf("export: prepare events: %w", err)
	}

	w.step, err = tx.PrepareContext(ctx, `
		INSERT INTO timeline_steps (mapping_id, step, effect, range_label, snapshot, digest, added, removed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.close()
		return nil, fmt.Errorf("export: prepare timeline_steps: %w", err)
	}

	return w, nil
}

func (w *exportWriter) close() {
	for _, stmt := range []*sql.Stmt{w.mapping, w.event, w.step} {
		if stmt != nil {
			stmt.Close()
		}
	}
}

func (w *exportWriter) writeMapping(ctx context.Context, id provenance.MappingID, m *provenance.Mapping, dict *provenance.Dictionary) (int, int, error) {
	source := dict.Descriptor(m.Source)
	target := dict.Descriptor(m.Target)

	_, err := w.mapping.ExecContext(ctx,
		int(id), source, target,
		provenance.Fold(source), provenance.Fold(target),
		engine.MappingLabel(m, dict),
		boolInt(m.Present), m.Count(),
	)
	if err != nil {
		return 0, 0, fmt.Errorf("export: mapping %d: %w", id, err)
	}

	for pos, ev := range m.Events {
		pair := dict.Range(ev.Range)
		actor := dict.Actor(ev.Actor)
		reason := dict.Reason(ev.Reason)

		var details any
		if len(ev.Details) > 0 {
			details = string(ev.Details)
		}

		_, err := w.event.ExecContext(ctx,
			int(id), pos, ev.Seq,
			dict.Action(ev.Action), dict.Stage(ev.Stage), actor, reason,
			pair.Source.Value, pair.Target.Value,
			provenance.Fold(actor), provenance.Fold(reason),
			provenance.Fold(pair.Source.Value), provenance.Fold(pair.Target.Value),
			provenance.Fold(pair.Source.Value+" "+pair.Target.Value),
			boolInt(ev.Effective), details,
		)
		if err != nil {
			return 0, 0, fmt.Errorf("export: mapping %d event %d: %w", id, pos, err)
		}
	}

	timeline := engine.Replay(m, dict)
	for _, step := range timeline.Steps {
		added, removed := engine.CountChanges(step.Diff)
		_, err := w.step.ExecContext(ctx,
			int(id), step.Step, string(step.Effect), step.Range,
			step.Snapshot, step.Digest, added, removed,
		)
		if err != nil {
			return 0, 0, fmt.Errorf("export: mapping %d step %d: %w", id, step.Step, err)
		}
	}

	return len(m.Events), len(timeline.Steps), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
