package engine

import "github.com/roach88/provq/internal/provenance"

// PresenceMismatch is a mapping whose stored present flag disagrees with
// the active ranges its own events replay to.
type PresenceMismatch struct {
	ID       provenance.MappingID `json:"id"`
	Label    string               `json:"label"`
	Stored   bool                 `json:"stored"`
	Replayed bool                 `json:"replayed"`
}

// ReplayedPresence reports whether any range is active after applying the
// effective add and remove events of m in order.
func ReplayedPresence(m *provenance.Mapping, dict *provenance.Dictionary) bool {
	active := newActiveSet()
	for _, ev := range m.Events {
		if !ev.Effective {
			continue
		}
		pair := dict.Range(ev.Range)
		active.apply(dict.Action(ev.Action), pair.Source.Or(Placeholder), pair.Target.Or(Placeholder))
	}
	return len(active) > 0
}

// VerifyPresence checks every mapping's present flag against its replayed
// active ranges and returns the disagreements in payload order.
func VerifyPresence(p *provenance.Payload) []PresenceMismatch {
	mismatches := []PresenceMismatch{}
	for i := range p.Mappings {
		m := &p.Mappings[i]
		replayed := ReplayedPresence(m, &p.Dict)
		if replayed != m.Present {
			mismatches = append(mismatches, PresenceMismatch{
				ID:       provenance.MappingID(i),
				Label:    MappingLabel(m, &p.Dict),
				Stored:   m.Present,
				Replayed: replayed,
			})
		}
	}
	return mismatches
}

// DeterminismFailure is a mapping whose two replays disagreed.
type DeterminismFailure struct {
	ID     provenance.MappingID `json:"id"`
	First  string               `json:"first"`
	Second string               `json:"second"`
}

// VerifyDeterminism replays every mapping twice and compares timeline
// digests.
func VerifyDeterminism(p *provenance.Payload) []DeterminismFailure {
	failures := []DeterminismFailure{}
	for i := range p.Mappings {
		m := &p.Mappings[i]
		first := Replay(m, &p.Dict).Digest()
		second := Replay(m, &p.Dict).Digest()
		if first != second {
			failures = append(failures, DeterminismFailure{
				ID:     provenance.MappingID(i),
				First:  first,
				Second: second,
			})
		}
	}
	return failures
}
