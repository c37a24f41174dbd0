package engine

import (
	"strings"

	"github.com/roach88/provq/internal/provenance"
	"github.com/roach88/provq/internal/query"
)

// Matcher is a query compiled for evaluation against many mappings.
// Text constraints are case folded once at construction.
type Matcher struct {
	present query.Presence
	stage   string
	source  string
	target  string
	actor   string
	reason  string
	ranges  []query.RangeToken
}

// NewMatcher compiles q.
func NewMatcher(q query.Query) *Matcher {
	m := &Matcher{
		present: q.Present,
		source:  provenance.Fold(q.Source),
		target:  provenance.Fold(q.Target),
		actor:   provenance.Fold(q.Actor),
		reason:  provenance.Fold(q.Reason),
	}
	if q.StageConstrained() {
		m.stage = q.Stage
	}
	for _, tok := range query.ParseRangeTokens(q.Range) {
		m.ranges = append(m.ranges, query.RangeToken{
			Raw:    provenance.Fold(tok.Raw),
			Source: provenance.Fold(tok.Source),
			Target: provenance.Fold(tok.Target),
			Pair:   tok.Pair,
		})
	}
	return m
}

// Matches reports whether mapping satisfies every non-empty constraint of q.
func Matches(mapping *provenance.Mapping, q query.Query, dict *provenance.Dictionary) bool {
	return NewMatcher(q).Match(mapping, dict)
}

// Match evaluates the compiled query against one mapping, stopping at the
// first failed constraint. A mapping without events fails every stage,
// range, actor and reason constraint.
func (m *Matcher) Match(mapping *provenance.Mapping, dict *provenance.Dictionary) bool {
	switch m.present {
	case query.PresencePresent:
		if !mapping.Present {
			return false
		}
	case query.PresenceMissing:
		if mapping.Present {
			return false
		}
	}

	if m.stage != "" && !m.anyEvent(mapping, func(ev provenance.Event) bool {
		return dict.Stage(ev.Stage) == m.stage
	}) {
		return false
	}

	if m.source != "" && !contains(dict.Descriptor(mapping.Source), m.source) {
		return false
	}
	if m.target != "" && !contains(dict.Descriptor(mapping.Target), m.target) {
		return false
	}

	for _, tok := range m.ranges {
		if !m.anyEvent(mapping, func(ev provenance.Event) bool {
			return rangeMatches(dict.Range(ev.Range), tok)
		}) {
			return false
		}
	}

	if m.actor != "" && !m.anyEvent(mapping, func(ev provenance.Event) bool {
		return contains(dict.Actor(ev.Actor), m.actor)
	}) {
		return false
	}
	if m.reason != "" && !m.anyEvent(mapping, func(ev provenance.Event) bool {
		return contains(dict.Reason(ev.Reason), m.reason)
	}) {
		return false
	}

	return true
}

func (m *Matcher) anyEvent(mapping *provenance.Mapping, pred func(provenance.Event) bool) bool {
	for _, ev := range mapping.Events {
		if pred(ev) {
			return true
		}
	}
	return false
}

// rangeMatches applies one folded token to a resolved range pair.
func rangeMatches(r provenance.RangePair, tok query.RangeToken) bool {
	if tok.Pair {
		return contains(r.Source.Value, tok.Source) && contains(r.Target.Value, tok.Target)
	}
	return contains(r.Source.Value+" "+r.Target.Value, tok.Raw)
}

// contains is a case-insensitive substring test; needle is already folded.
func contains(haystack, needle string) bool {
	return strings.Contains(provenance.Fold(haystack), needle)
}
