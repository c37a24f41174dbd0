package provenance

import "fmt"

// Table names a dictionary table.
type Table string

// Dictionary tables.
const (
	TableDescriptors Table = "descriptors"
	TableActions     Table = "actions"
	TableStages      Table = "stages"
	TableActors      Table = "actors"
	TableReasons     Table = "reasons"
	TableRanges      Table = "ranges"
)

// lookup resolves i against table; invalid indices yield an absent label.
func lookup[I ~int](table []string, i I) Label {
	if i < 0 || int(i) >= len(table) {
		return Label{}
	}
	return Known(table[i])
}

// DescriptorLabel resolves a descriptor index.
func (d *Dictionary) DescriptorLabel(i DescriptorIndex) Label { return lookup(d.Descriptors, i) }

// ActionLabel resolves an action index.
func (d *Dictionary) ActionLabel(i ActionIndex) Label { return lookup(d.Actions, i) }

// StageLabel resolves a stage index.
func (d *Dictionary) StageLabel(i StageIndex) Label { return lookup(d.Stages, i) }

// ActorLabel resolves an actor index.
func (d *Dictionary) ActorLabel(i ActorIndex) Label { return lookup(d.Actors, i) }

// ReasonLabel resolves a reason index.
func (d *Dictionary) ReasonLabel(i ReasonIndex) Label { return lookup(d.Reasons, i) }

// Descriptor returns the descriptor at i, or "" when i is invalid.
func (d *Dictionary) Descriptor(i DescriptorIndex) string { return d.DescriptorLabel(i).Value }

// Action returns the action at i, or "" when i is invalid.
func (d *Dictionary) Action(i ActionIndex) string { return d.ActionLabel(i).Value }

// Stage returns the stage at i, or "" when i is invalid.
func (d *Dictionary) Stage(i StageIndex) string { return d.StageLabel(i).Value }

// Actor returns the actor at i, or "" when i is invalid.
func (d *Dictionary) Actor(i ActorIndex) string { return d.ActorLabel(i).Value }

// Reason returns the reason at i, or "" when i is invalid.
func (d *Dictionary) Reason(i ReasonIndex) string { return d.ReasonLabel(i).Value }

// Range returns the range pair at i. Both halves are absent when i is invalid.
func (d *Dictionary) Range(i RangeIndex) RangePair {
	if i < 0 || int(i) >= len(d.Ranges) {
		return RangePair{}
	}
	return d.Ranges[i]
}

// Resolve returns the value at index in the named table, or "" when the
// index is absent, negative or out of bounds. For the ranges table the
// value is "<source> <target>", the text a plain range token matches against.
func (d *Dictionary) Resolve(table Table, index int) string {
	switch table {
	case TableDescriptors:
		return d.Descriptor(DescriptorIndex(index))
	case TableActions:
		return d.Action(ActionIndex(index))
	case TableStages:
		return d.Stage(StageIndex(index))
	case TableActors:
		return d.Actor(ActorIndex(index))
	case TableReasons:
		return d.Reason(ReasonIndex(index))
	case TableRanges:
		r := d.Range(RangeIndex(index))
		if !r.Source.Valid && !r.Target.Valid {
			return ""
		}
		return r.Source.Value + " " + r.Target.Value
	default:
		return ""
	}
}

// Len returns the number of entries in the named table.
func (d *Dictionary) Len(table Table) int {
	switch table {
	case TableDescriptors:
		return len(d.Descriptors)
	case TableActions:
		return len(d.Actions)
	case TableStages:
		return len(d.Stages)
	case TableActors:
		return len(d.Actors)
	case TableReasons:
		return len(d.Reasons)
	case TableRanges:
		return len(d.Ranges)
	default:
		return 0
	}
}

// String summarises table sizes.
func (d *Dictionary) String() string {
	return fmt.Sprintf("descriptors=%d actions=%d stages=%d actors=%d reasons=%d ranges=%d",
		len(d.Descriptors), len(d.Actions), len(d.Stages), len(d.Actors), len(d.Reasons), len(d.Ranges))
}
