package provenance

import "encoding/json"

// NoIndex marks an absent dictionary reference.
const NoIndex = -1

// Index types, one per dictionary table.
type (
	DescriptorIndex int
	ActionIndex     int
	StageIndex      int
	ActorIndex      int
	ReasonIndex     int
	RangeIndex      int
)

// MappingID is the positional index of a mapping within a payload.
// It is stable for a given payload and is the external reference id.
type MappingID int

// Well-known action values.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// Label is a resolved dictionary value that may be absent.
type Label struct {
	Value string
	Valid bool
}

// Known wraps a resolved value.
func Known(v string) Label {
	return Label{Value: v, Valid: true}
}

// Or returns the label text, or placeholder when the label is absent or empty.
func (l Label) Or(placeholder string) string {
	if !l.Valid || l.Value == "" {
		return placeholder
	}
	return l.Value
}

// String returns the label text, empty when absent.
func (l Label) String() string {
	return l.Value
}

// RangePair is one entry of the ranges table: an episode/season span in the
// source catalog's numbering and the matching span in the target's.
type RangePair struct {
	Source Label
	Target Label
}

// Dictionary holds the interned lookup tables referenced by mappings and events.
type Dictionary struct {
	Descriptors []string
	Actions     []string
	Stages      []string
	Actors      []string
	Reasons     []string
	Ranges      []RangePair
}

// Event is one recorded change to a mapping.
type Event struct {
	Action    ActionIndex
	Stage     StageIndex
	Actor     ActorIndex
	Reason    ReasonIndex
	Range     RangeIndex
	Effective bool

	// Seq is the generator's logical sequence number, zero when absent.
	Seq int64
	// Details is the optional free-form details object, passed through verbatim.
	Details json.RawMessage
}

// Mapping is one source-descriptor to target-descriptor correspondence.
type Mapping struct {
	Source     DescriptorIndex
	Target     DescriptorIndex
	Present    bool
	EventCount *int
	Events     []Event
}

// Count returns the cached event count when set, else the number of events.
func (m *Mapping) Count() int {
	if m.EventCount != nil {
		return *m.EventCount
	}
	return len(m.Events)
}

// Meta is the free-form metadata bag of a payload ("$meta").
type Meta map[string]any

// GeneratedOn returns the "generated_on" value if and only if it is a string.
func (m Meta) GeneratedOn() (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m["generated_on"].(string)
	return v, ok
}

// Payload is an immutable snapshot of the provenance dataset.
type Payload struct {
	Meta     Meta
	Dict     Dictionary
	Mappings []Mapping
}

// Mapping returns the mapping with the given id and whether it exists.
func (p *Payload) Mapping(id MappingID) (*Mapping, bool) {
	if id < 0 || int(id) >= len(p.Mappings) {
		return nil, false
	}
	return &p.Mappings[id], true
}
