package provenance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Wire shapes. Field names follow the generator's compact format.
type wirePayload struct {
	Meta     Meta          `json:"$meta,omitempty"`
	Dict     wireDict      `json:"dict"`
	Mappings []wireMapping `json:"mappings"`
}

type wireDict struct {
	Descriptors []string    `json:"descriptors"`
	Actions     []string    `json:"actions"`
	Stages      []string    `json:"stages"`
	Actors      []string    `json:"actors"`
	Reasons     []string    `json:"reasons"`
	Ranges      []wireRange `json:"ranges"`
}

type wireRange struct {
	S *string `json:"s"`
	T *string `json:"t"`
}

type wireMapping struct {
	S  *int        `json:"s"`
	T  *int        `json:"t"`
	P  *flag       `json:"p,omitempty"`
	N  *int        `json:"n,omitempty"`
	Ev []wireEvent `json:"ev,omitempty"`
}

type wireEvent struct {
	Seq *int64          `json:"seq,omitempty"`
	A   *int            `json:"a"`
	S   *int            `json:"s"`
	Ac  *int            `json:"ac"`
	Rs  *int            `json:"rs"`
	R   *int            `json:"r"`
	E   *flag           `json:"e"`
	D   json.RawMessage `json:"d,omitempty"`
}

// flag accepts a JSON boolean or a 0/1 number. The generator writes numbers.
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "false":
		*f = false
		return nil
	case "true":
		*f = true
		return nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("flag: expected boolean or number, got %s", data)
	}
	*f = n != 0
	return nil
}

func (f *flag) MarshalJSON() ([]byte, error) {
	if *f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func indexOrNone(p *int) int {
	if p == nil {
		return NoIndex
	}
	return *p
}

func flagValue(p *flag) bool {
	return p != nil && bool(*p)
}

// Decode reads a compact provenance payload from r.
func Decode(r io.Reader) (*Payload, error) {
	var wire wirePayload
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return fromWire(&wire), nil
}

// DecodeBytes decodes a compact provenance payload held in memory.
func DecodeBytes(data []byte) (*Payload, error) {
	return Decode(bytes.NewReader(data))
}

func fromWire(w *wirePayload) *Payload {
	p := &Payload{
		Meta: w.Meta,
		Dict: Dictionary{
			Descriptors: w.Dict.Descriptors,
			Actions:     w.Dict.Actions,
			Stages:      w.Dict.Stages,
			Actors:      w.Dict.Actors,
			Reasons:     w.Dict.Reasons,
			Ranges:      make([]RangePair, len(w.Dict.Ranges)),
		},
		Mappings: make([]Mapping, len(w.Mappings)),
	}

	for i, r := range w.Dict.Ranges {
		var pair RangePair
		if r.S != nil {
			pair.Source = Known(*r.S)
		}
		if r.T != nil {
			pair.Target = Known(*r.T)
		}
		p.Dict.Ranges[i] = pair
	}

	for i, wm := range w.Mappings {
		m := Mapping{
			Source:  DescriptorIndex(indexOrNone(wm.S)),
			Target:  DescriptorIndex(indexOrNone(wm.T)),
			Present: flagValue(wm.P),
		}
		if wm.N != nil {
			n := *wm.N
			m.EventCount = &n
		}
		if len(wm.Ev) > 0 {
			m.Events = make([]Event, len(wm.Ev))
			for j, we := range wm.Ev {
				ev := Event{
					Action:    ActionIndex(indexOrNone(we.A)),
					Stage:     StageIndex(indexOrNone(we.S)),
					Actor:     ActorIndex(indexOrNone(we.Ac)),
					Reason:    ReasonIndex(indexOrNone(we.Rs)),
					Range:     RangeIndex(indexOrNone(we.R)),
					Effective: flagValue(we.E),
					Details:   we.D,
				}
				if we.Seq != nil {
					ev.Seq = *we.Seq
				}
				m.Events[j] = ev
			}
		}
		p.Mappings[i] = m
	}

	return p
}

func intPtr(v int) *int { return &v }

func toWire(p *Payload) *wirePayload {
	w := &wirePayload{
		Meta: p.Meta,
		Dict: wireDict{
			Descriptors: nonNil(p.Dict.Descriptors),
			Actions:     nonNil(p.Dict.Actions),
			Stages:      nonNil(p.Dict.Stages),
			Actors:      nonNil(p.Dict.Actors),
			Reasons:     nonNil(p.Dict.Reasons),
			Ranges:      make([]wireRange, len(p.Dict.Ranges)),
		},
		Mappings: make([]wireMapping, len(p.Mappings)),
	}

	for i, r := range p.Dict.Ranges {
		var wr wireRange
		if r.Source.Valid {
			s := r.Source.Value
			wr.S = &s
		}
		if r.Target.Valid {
			t := r.Target.Value
			wr.T = &t
		}
		w.Dict.Ranges[i] = wr
	}

	for i, m := range p.Mappings {
		present := flag(m.Present)
		wm := wireMapping{
			S: intPtr(int(m.Source)),
			T: intPtr(int(m.Target)),
			P: &present,
			N: intPtr(m.Count()),
		}
		for _, ev := range m.Events {
			effective := flag(ev.Effective)
			we := wireEvent{
				A:  intPtr(int(ev.Action)),
				S:  intPtr(int(ev.Stage)),
				Ac: intPtr(int(ev.Actor)),
				Rs: intPtr(int(ev.Reason)),
				R:  intPtr(int(ev.Range)),
				E:  &effective,
				D:  ev.Details,
			}
			if ev.Seq != 0 {
				seq := ev.Seq
				we.Seq = &seq
			}
			wm.Ev = append(wm.Ev, we)
		}
		w.Mappings[i] = wm
	}

	return w
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// MarshalJSON encodes the payload in the generator's compact format.
func (p *Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(p))
}

// Encode writes the payload to w in the compact format.
func Encode(w io.Writer, p *Payload) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(toWire(p)); err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return nil
}
