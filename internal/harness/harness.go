package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/provq/internal/engine"
	"github.com/roach88/provq/internal/logging"
	"github.com/roach88/provq/internal/provenance"
	"github.com/roach88/provq/internal/query"
	"github.com/roach88/provq/internal/schema"
	"github.com/roach88/provq/internal/source"
	"github.com/roach88/provq/internal/testutil"
)

// Harness executes scenarios.
type Harness struct {
	validator *schema.Validator
	logger    *slog.Logger
}

// New creates a harness. A nil logger discards output.
func New(logger *slog.Logger) (*Harness, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	validator, err := schema.New()
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}
	return &Harness{validator: validator, logger: logger}, nil
}

// Run executes a scenario with a fresh harness.
func Run(scenario *Scenario) (*Result, error) {
	h, err := New(nil)
	if err != nil {
		return nil, err
	}
	return h.Run(context.Background(), scenario)
}

// Run builds the scenario's payload, serves it through a loader, and
// evaluates every query and assertion against the loaded snapshot.
//
// Execution flow:
//  1. Build the payload and encode it as JSON
//  2. Validate the JSON against the payload schema
//  3. Load it through source.Loader (decoding the JSON)
//  4. Run queries, replay timelines, evaluate assertions
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	data, err := encodeScenario(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	if issues := h.validator.Validate(data); len(issues) > 0 {
		return nil, fmt.Errorf("payload does not match schema: %s", issues[0])
	}

	loader := source.NewLoader(source.Func(func(context.Context) (*provenance.Payload, error) {
		return provenance.DecodeBytes(data)
	}), h.logger)
	snap, err := loader.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payload: %w", err)
	}

	result := NewResult(snap.Payload)
	for i := range snap.Payload.Mappings {
		id := provenance.MappingID(i)
		result.Timelines[id] = engine.Replay(&snap.Payload.Mappings[i], &snap.Payload.Dict)
	}

	for _, qc := range scenario.Queries {
		h.runQuery(snap.Payload, qc, result)
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	h.logger.Debug("scenario finished",
		"scenario", scenario.Name,
		"mappings", len(snap.Payload.Mappings),
		"queries", len(scenario.Queries),
		"pass", result.Pass)

	return result, nil
}

func (h *Harness) runQuery(p *provenance.Payload, qc QueryCase, result *Result) {
	q, warnings := query.Normalize(qc.Query)
	page := engine.Run(p, q)

	ids := make([]int, 0, len(page.Items))
	for _, e := range page.Items {
		ids = append(ids, int(e.ID))
	}
	result.Queries = append(result.Queries, QueryResult{
		Name:     qc.Name,
		IDs:      ids,
		Total:    page.Total,
		Page:     page.Page,
		Warnings: warnings,
	})

	if !slices.Equal(ids, qc.IDs) {
		result.AddError(fmt.Sprintf("query %q: expected ids %v, got %v", qc.Name, qc.IDs, ids))
	}
	if qc.Total != nil && *qc.Total != page.Total {
		result.AddError(fmt.Sprintf("query %q: expected total %d, got %d", qc.Name, *qc.Total, page.Total))
	}
	if qc.Page != nil && *qc.Page != page.Page {
		result.AddError(fmt.Sprintf("query %q: expected page %d, got %d", qc.Name, *qc.Page, page.Page))
	}
}

// encodeScenario builds the dictionary-compressed payload and encodes it.
func encodeScenario(s *Scenario) ([]byte, error) {
	b := testutil.NewPayload()
	for k, v := range s.Meta {
		b.Meta(k, v)
	}

	for _, m := range s.Mappings {
		events := make([]testutil.Ev, 0, len(m.Events))
		for _, ev := range m.Events {
			e := testutil.Ev{
				Action:    ev.Action,
				Stage:     ev.Stage,
				Actor:     ev.Actor,
				Reason:    ev.Reason,
				Source:    ev.SourceRange,
				Target:    ev.TargetRange,
				Effective: ev.IsEffective(),
			}
			if len(ev.Details) > 0 {
				raw, err := json.Marshal(ev.Details)
				if err != nil {
					return nil, fmt.Errorf("mapping %s: details: %w", m.Source, err)
				}
				e.Details = string(raw)
			}
			events = append(events, e)
		}
		b.Mapping(m.Source, m.Target, m.Present, events...)
	}

	var buf bytes.Buffer
	if err := provenance.Encode(&buf, b.Build()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
