package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/provq/internal/provenance"
)

// Ev describes one event for PayloadBuilder. Empty strings become absent
// (NoIndex) references, matching how the generator writes empty values.
type Ev struct {
	Action    string
	Stage     string
	Actor     string
	Reason    string
	Source    string
	Target    string
	Effective bool
	Details   string
}

// Add returns an effective add event for the given ranges at stage "upstream".
func Add(source, target string) Ev {
	return Ev{Action: provenance.ActionAdd, Stage: "upstream", Source: source, Target: target, Effective: true}
}

// Remove returns an effective remove event for the given ranges at stage "upstream".
func Remove(source, target string) Ev {
	return Ev{Action: provenance.ActionRemove, Stage: "upstream", Source: source, Target: target, Effective: true}
}

// At sets the stage.
func (e Ev) At(stage string) Ev { e.Stage = stage; return e }

// By sets the actor.
func (e Ev) By(actor string) Ev { e.Actor = actor; return e }

// Because sets the reason.
func (e Ev) Because(reason string) Ev { e.Reason = reason; return e }

// Ineffective marks the event as recorded but not applied.
func (e Ev) Ineffective() Ev { e.Effective = false; return e }

// WithDetails attaches a raw JSON details object.
func (e Ev) WithDetails(raw string) Ev { e.Details = raw; return e }

// PayloadBuilder assembles a dictionary-compressed payload from readable
// values, interning strings the way the generator does.
//
// Thread-safety: not safe for concurrent use.
type PayloadBuilder struct {
	meta     provenance.Meta
	dict     provenance.Dictionary
	mappings []provenance.Mapping
	seq      int64

	descriptors map[string]int
	actions     map[string]int
	stages      map[string]int
	actors      map[string]int
	reasons     map[string]int
	ranges      map[[2]string]int
}

// NewPayload creates an empty builder.
func NewPayload() *PayloadBuilder {
	return &PayloadBuilder{
		descriptors: map[string]int{},
		actions:     map[string]int{},
		stages:      map[string]int{},
		actors:      map[string]int{},
		reasons:     map[string]int{},
		ranges:      map[[2]string]int{},
	}
}

// Meta sets a $meta key.
func (b *PayloadBuilder) Meta(key string, value any) *PayloadBuilder {
	if b.meta == nil {
		b.meta = provenance.Meta{}
	}
	b.meta[key] = value
	return b
}

// Mapping appends a mapping and returns its id.
func (b *PayloadBuilder) Mapping(source, target string, present bool, events ...Ev) provenance.MappingID {
	m := provenance.Mapping{
		Source:  provenance.DescriptorIndex(intern(&b.dict.Descriptors, b.descriptors, source)),
		Target:  provenance.DescriptorIndex(intern(&b.dict.Descriptors, b.descriptors, target)),
		Present: present,
	}
	for _, e := range events {
		b.seq++
		ev := provenance.Event{
			Action:    provenance.ActionIndex(intern(&b.dict.Actions, b.actions, e.Action)),
			Stage:     provenance.StageIndex(intern(&b.dict.Stages, b.stages, e.Stage)),
			Actor:     provenance.ActorIndex(intern(&b.dict.Actors, b.actors, e.Actor)),
			Reason:    provenance.ReasonIndex(intern(&b.dict.Reasons, b.reasons, e.Reason)),
			Range:     provenance.RangeIndex(b.internRange(e.Source, e.Target)),
			Effective: e.Effective,
			Seq:       b.seq,
		}
		if e.Details != "" {
			ev.Details = json.RawMessage(e.Details)
		}
		m.Events = append(m.Events, ev)
	}
	b.mappings = append(b.mappings, m)
	return provenance.MappingID(len(b.mappings) - 1)
}

// Raw appends a mapping exactly as given, for malformed-index cases.
func (b *PayloadBuilder) Raw(m provenance.Mapping) provenance.MappingID {
	b.mappings = append(b.mappings, m)
	return provenance.MappingID(len(b.mappings) - 1)
}

// Presence appends n mappings "src:i" → "tgt:i" with the given present flag
// and no events.
func (b *PayloadBuilder) Presence(present ...bool) *PayloadBuilder {
	for _, p := range present {
		n := len(b.mappings)
		b.Mapping(fmt.Sprintf("anidb:%d", n), fmt.Sprintf("tvdb:%d", n), p)
	}
	return b
}

// Build returns the payload. The builder must not be used afterwards.
func (b *PayloadBuilder) Build() *provenance.Payload {
	return &provenance.Payload{
		Meta:     b.meta,
		Dict:     b.dict,
		Mappings: b.mappings,
	}
}

func intern(table *[]string, index map[string]int, value string) int {
	if value == "" {
		return provenance.NoIndex
	}
	if i, ok := index[value]; ok {
		return i
	}
	*table = append(*table, value)
	i := len(*table) - 1
	index[value] = i
	return i
}

func (b *PayloadBuilder) internRange(source, target string) int {
	if source == "" && target == "" {
		return provenance.NoIndex
	}
	key := [2]string{source, target}
	if i, ok := b.ranges[key]; ok {
		return i
	}
	var pair provenance.RangePair
	if source != "" {
		pair.Source = provenance.Known(source)
	}
	if target != "" {
		pair.Target = provenance.Known(target)
	}
	b.dict.Ranges = append(b.dict.Ranges, pair)
	i := len(b.dict.Ranges) - 1
	b.ranges[key] = i
	return i
}
