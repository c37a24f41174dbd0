package engine

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/roach88/provq/internal/provenance"
)

// Placeholder stands in for any label that does not resolve.
const Placeholder = "-"

// Effect classifies what one event did to the active ranges.
type Effect string

// Effects.
const (
	// EffectSkipped marks an event recorded as not effective.
	EffectSkipped Effect = "skipped"
	// EffectInactive marks an effective remove.
	EffectInactive Effect = "inactive"
	// EffectActive marks any other effective event.
	EffectActive Effect = "active"
)

// Step is one replayed event.
type Step struct {
	// Step is 1-based and counts in chronological order.
	Step        int    `json:"step"`
	Action      string `json:"action"`
	Stage       string `json:"stage"`
	Actor       string `json:"actor"`
	Reason      string `json:"reason"`
	SourceRange string `json:"source_range"`
	TargetRange string `json:"target_range"`
	// Range is "<source range> → <target range>".
	Range  string `json:"range"`
	Effect Effect `json:"effect"`

	// Active is the active-range state after this event, sorted.
	Active   []provenance.SnapshotEntry `json:"active"`
	Snapshot string                     `json:"snapshot"`
	Digest   string                     `json:"digest"`
	Diff     []DiffLine                 `json:"diff"`

	Seq     int64           `json:"seq,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

// Timeline is the chronological replay of one mapping.
type Timeline struct {
	Source string `json:"source"`
	Target string `json:"target"`
	// Empty is set when the mapping has no events. Callers show a
	// placeholder rather than an empty step list.
	Empty bool `json:"empty"`
	// Initial is the canonical snapshot before the first event.
	Initial string `json:"initial"`
	Steps   []Step `json:"steps"`
}

// Reversed returns the steps most recent first. Diffs are not recomputed.
func (t Timeline) Reversed() []Step {
	out := slices.Clone(t.Steps)
	slices.Reverse(out)
	return out
}

// Final returns the active ranges after the last event.
func (t Timeline) Final() []provenance.SnapshotEntry {
	if len(t.Steps) == 0 {
		return nil
	}
	return t.Steps[len(t.Steps)-1].Active
}

// Digest identifies the whole replay: equal timelines have equal digests.
func (t Timeline) Digest() string {
	digests := make([]string, 0, len(t.Steps)+1)
	digests = append(digests, provenance.SnapshotDigest(t.Initial))
	for _, s := range t.Steps {
		digests = append(digests, s.Digest+" "+string(s.Effect))
	}
	return provenance.TimelineDigest(digests)
}

// Replay walks the events of m in array order, applying effective add and
// remove events to the active-range set, and records a snapshot and a diff
// against the previous snapshot for every event. Events that are not
// effective, and actions other than add and remove, leave the set unchanged.
//
// Replay is a pure function of m and dict.
func Replay(m *provenance.Mapping, dict *provenance.Dictionary) Timeline {
	source := dict.DescriptorLabel(m.Source).Or(Placeholder)
	target := dict.DescriptorLabel(m.Target).Or(Placeholder)

	active := newActiveSet()
	previous := provenance.CanonicalSnapshot(source, target, nil)

	t := Timeline{
		Source:  source,
		Target:  target,
		Empty:   len(m.Events) == 0,
		Initial: previous,
		Steps:   make([]Step, 0, len(m.Events)),
	}

	for i, ev := range m.Events {
		action := dict.ActionLabel(ev.Action)
		pair := dict.Range(ev.Range)
		srcRange := pair.Source.Or(Placeholder)
		tgtRange := pair.Target.Or(Placeholder)

		if ev.Effective {
			active.apply(action.Value, srcRange, tgtRange)
		}

		entries := active.entries()
		snapshot := provenance.CanonicalSnapshot(source, target, entries)

		t.Steps = append(t.Steps, Step{
			Step:        i + 1,
			Action:      action.Or(Placeholder),
			Stage:       dict.StageLabel(ev.Stage).Or(Placeholder),
			Actor:       dict.ActorLabel(ev.Actor).Or(Placeholder),
			Reason:      dict.ReasonLabel(ev.Reason).Or(Placeholder),
			SourceRange: srcRange,
			TargetRange: tgtRange,
			Range:       srcRange + " → " + tgtRange,
			Effect:      effectOf(ev, action.Value),
			Active:      entries,
			Snapshot:    snapshot,
			Digest:      provenance.SnapshotDigest(snapshot),
			Diff:        DiffLines(previous, snapshot),
			Seq:         ev.Seq,
			Details:     ev.Details,
		})

		previous = snapshot
	}

	return t
}

func effectOf(ev provenance.Event, action string) Effect {
	switch {
	case !ev.Effective:
		return EffectSkipped
	case action == provenance.ActionRemove:
		return EffectInactive
	default:
		return EffectActive
	}
}

// activeSet maps a source-range label to its set of target-range labels.
type activeSet map[string]map[string]struct{}

func newActiveSet() activeSet {
	return activeSet{}
}

// apply performs one effective event. Removing the last target of a source
// range drops the source range.
func (a activeSet) apply(action, source, target string) {
	switch action {
	case provenance.ActionAdd:
		targets, ok := a[source]
		if !ok {
			targets = map[string]struct{}{}
			a[source] = targets
		}
		targets[target] = struct{}{}
	case provenance.ActionRemove:
		targets, ok := a[source]
		if !ok {
			return
		}
		delete(targets, target)
		if len(targets) == 0 {
			delete(a, source)
		}
	}
}

// entries renders the set sorted by source range, with each entry's target
// ranges sorted and joined by ", ".
func (a activeSet) entries() []provenance.SnapshotEntry {
	sources := make([]string, 0, len(a))
	for s := range a {
		sources = append(sources, s)
	}
	slices.Sort(sources)

	out := make([]provenance.SnapshotEntry, 0, len(sources))
	for _, s := range sources {
		targets := make([]string, 0, len(a[s]))
		for t := range a[s] {
			targets = append(targets, t)
		}
		slices.Sort(targets)
		out = append(out, provenance.SnapshotEntry{
			SourceRange:  s,
			TargetRanges: strings.Join(targets, ", "),
		})
	}
	return out
}
