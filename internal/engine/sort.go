package engine

import (
	"cmp"
	"slices"

	"github.com/roach88/provq/internal/provenance"
	"github.com/roach88/provq/internal/query"
)

// UntitledMapping labels a mapping whose descriptors both resolve empty.
const UntitledMapping = "(untitled mapping)"

// Entry is a mapping together with its original position in the payload.
type Entry struct {
	ID      provenance.MappingID
	Mapping *provenance.Mapping
}

// FilterAndSort selects the mappings matching q and orders them by q.Sort.
// Every ordering is stable; the default ordering is payload order.
func FilterAndSort(p *provenance.Payload, q query.Query) []Entry {
	matcher := NewMatcher(q)
	entries := make([]Entry, 0, len(p.Mappings))
	for i := range p.Mappings {
		m := &p.Mappings[i]
		if matcher.Match(m, &p.Dict) {
			entries = append(entries, Entry{ID: provenance.MappingID(i), Mapping: m})
		}
	}

	switch q.Sort {
	case query.SortPresent:
		slices.SortStableFunc(entries, func(a, b Entry) int {
			return comparePresence(b.Mapping.Present, a.Mapping.Present)
		})
	case query.SortMissing:
		slices.SortStableFunc(entries, func(a, b Entry) int {
			return comparePresence(a.Mapping.Present, b.Mapping.Present)
		})
	case query.SortTimeline:
		labels := make(map[provenance.MappingID]string, len(entries))
		for _, e := range entries {
			labels[e.ID] = MappingLabel(e.Mapping, &p.Dict)
		}
		slices.SortStableFunc(entries, func(a, b Entry) int {
			if c := cmp.Compare(b.Mapping.Count(), a.Mapping.Count()); c != 0 {
				return c
			}
			return cmp.Compare(labels[a.ID], labels[b.ID])
		})
	}

	return entries
}

// comparePresence orders false before true.
func comparePresence(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// MappingLabel renders "<source> → <target>", falling back to whichever
// descriptor resolves, or UntitledMapping when neither does.
func MappingLabel(m *provenance.Mapping, dict *provenance.Dictionary) string {
	src := dict.Descriptor(m.Source)
	tgt := dict.Descriptor(m.Target)
	switch {
	case src != "" && tgt != "":
		return src + " → " + tgt
	case src != "":
		return src
	case tgt != "":
		return tgt
	default:
		return UntitledMapping
	}
}
