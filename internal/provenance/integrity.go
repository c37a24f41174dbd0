package provenance

import "fmt"

// IntegrityIssue is one dangling or absent dictionary reference.
type IntegrityIssue struct {
	Mapping MappingID `json:"mapping"`
	// Event is the event position within the mapping, -1 for mapping fields.
	Event int    `json:"event"`
	Field string `json:"field"`
	Table Table  `json:"table"`
	Index int    `json:"index"`
}

func (i IntegrityIssue) String() string {
	if i.Event < 0 {
		return fmt.Sprintf("mapping %d: %s index %d not in %s", i.Mapping, i.Field, i.Index, i.Table)
	}
	return fmt.Sprintf("mapping %d event %d: %s index %d not in %s", i.Mapping, i.Event, i.Field, i.Index, i.Table)
}

// IntegrityReport lists the references that will resolve to empty values.
type IntegrityReport struct {
	Mappings int              `json:"mappings"`
	Events   int              `json:"events"`
	Issues   []IntegrityIssue `json:"issues"`
}

// OK reports whether every reference resolves.
func (r IntegrityReport) OK() bool {
	return len(r.Issues) == 0
}

// CheckIntegrity walks every mapping and event and reports indices that fall
// outside their table. Absent actor and reason references (NoIndex) are
// legitimate and are not reported; every other absent reference is.
// Resolution stays total regardless: this is a diagnostic, not a gate.
func CheckIntegrity(p *Payload) IntegrityReport {
	report := IntegrityReport{
		Mappings: len(p.Mappings),
		Issues:   []IntegrityIssue{},
	}

	check := func(id MappingID, event int, field string, table Table, index int, optional bool) {
		if optional && index == NoIndex {
			return
		}
		if index < 0 || index >= p.Dict.Len(table) {
			report.Issues = append(report.Issues, IntegrityIssue{
				Mapping: id,
				Event:   event,
				Field:   field,
				Table:   table,
				Index:   index,
			})
		}
	}

	for i := range p.Mappings {
		m := &p.Mappings[i]
		id := MappingID(i)
		check(id, -1, "source", TableDescriptors, int(m.Source), false)
		check(id, -1, "target", TableDescriptors, int(m.Target), false)
		for j, ev := range m.Events {
			report.Events++
			check(id, j, "action", TableActions, int(ev.Action), false)
			check(id, j, "stage", TableStages, int(ev.Stage), false)
			check(id, j, "actor", TableActors, int(ev.Actor), true)
			check(id, j, "reason", TableReasons, int(ev.Reason), true)
			check(id, j, "range", TableRanges, int(ev.Range), false)
		}
	}

	return report
}
