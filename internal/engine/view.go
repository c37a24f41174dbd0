package engine

import (
	"encoding/json"

	"github.com/roach88/provq/internal/provenance"
)

// MappingView is the resolved, serialisable form of an Entry.
type MappingView struct {
	ID         provenance.MappingID `json:"id"`
	Source     string               `json:"source"`
	Target     string               `json:"target"`
	Label      string               `json:"label"`
	Present    bool                 `json:"present"`
	EventCount int                  `json:"event_count"`
	Events     []EventView          `json:"events,omitempty"`
}

// EventView is one resolved event. Unresolved references are empty strings.
type EventView struct {
	Seq         int64           `json:"seq,omitempty"`
	Action      string          `json:"action"`
	Stage       string          `json:"stage"`
	Actor       string          `json:"actor"`
	Reason      string          `json:"reason"`
	SourceRange string          `json:"source_range"`
	TargetRange string          `json:"target_range"`
	Effective   bool            `json:"effective"`
	Details     json.RawMessage `json:"details,omitempty"`
}

// PageView is the serialisable form of a Page.
type PageView struct {
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	Pages   int           `json:"pages"`
	Total   int           `json:"total"`
	Items   []MappingView `json:"items"`
}

// ViewEntry resolves e against dict. Events are included when withEvents
// is set.
func ViewEntry(e Entry, dict *provenance.Dictionary, withEvents bool) MappingView {
	v := MappingView{
		ID:         e.ID,
		Source:     dict.Descriptor(e.Mapping.Source),
		Target:     dict.Descriptor(e.Mapping.Target),
		Label:      MappingLabel(e.Mapping, dict),
		Present:    e.Mapping.Present,
		EventCount: e.Mapping.Count(),
	}
	if withEvents {
		v.Events = make([]EventView, 0, len(e.Mapping.Events))
		for _, ev := range e.Mapping.Events {
			pair := dict.Range(ev.Range)
			v.Events = append(v.Events, EventView{
				Seq:         ev.Seq,
				Action:      dict.Action(ev.Action),
				Stage:       dict.Stage(ev.Stage),
				Actor:       dict.Actor(ev.Actor),
				Reason:      dict.Reason(ev.Reason),
				SourceRange: pair.Source.Value,
				TargetRange: pair.Target.Value,
				Effective:   ev.Effective,
				Details:     ev.Details,
			})
		}
	}
	return v
}

// ViewPage resolves every item of pg.
func ViewPage(pg Page, dict *provenance.Dictionary, withEvents bool) PageView {
	items := make([]MappingView, 0, len(pg.Items))
	for _, e := range pg.Items {
		items = append(items, ViewEntry(e, dict, withEvents))
	}
	return PageView{
		Page:    pg.Page,
		PerPage: pg.PerPage,
		Pages:   pg.Pages,
		Total:   pg.Total,
		Items:   items,
	}
}
