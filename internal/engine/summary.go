package engine

import (
	"cmp"
	"slices"

	"github.com/roach88/provq/internal/provenance"
)

// UnknownProvider groups descriptors that do not parse as provider:id[:scope].
const UnknownProvider = "(unknown)"

// Summary holds dataset-wide counts.
type Summary struct {
	// GeneratedOn is $meta.generated_on when it is a string, else nil.
	GeneratedOn     *string `json:"generated_on"`
	Mappings        int     `json:"mappings"`
	PresentMappings int     `json:"present_mappings"`
	MissingMappings int     `json:"missing_mappings"`
}

// Summarize counts present and missing mappings in a single pass.
func Summarize(p *provenance.Payload) Summary {
	s := Summary{Mappings: len(p.Mappings)}
	if v, ok := p.Meta.GeneratedOn(); ok {
		s.GeneratedOn = &v
	}
	for i := range p.Mappings {
		if p.Mappings[i].Present {
			s.PresentMappings++
		} else {
			s.MissingMappings++
		}
	}
	return s
}

// ProviderCount is the per-provider share of a dataset.
type ProviderCount struct {
	Provider string `json:"provider"`
	Mappings int    `json:"mappings"`
	Present  int    `json:"present"`
	Missing  int    `json:"missing"`
}

// ProviderBreakdown splits mapping counts by source and by target provider.
type ProviderBreakdown struct {
	Source []ProviderCount `json:"source"`
	Target []ProviderCount `json:"target"`
}

// SummarizeProviders groups mappings by the provider part of their source
// and target descriptors. Groups are ordered by mapping count descending,
// then provider name.
func SummarizeProviders(p *provenance.Payload) ProviderBreakdown {
	source := map[string]*ProviderCount{}
	target := map[string]*ProviderCount{}

	for i := range p.Mappings {
		m := &p.Mappings[i]
		tally(source, providerOf(p.Dict.Descriptor(m.Source)), m.Present)
		tally(target, providerOf(p.Dict.Descriptor(m.Target)), m.Present)
	}

	return ProviderBreakdown{
		Source: sortedCounts(source),
		Target: sortedCounts(target),
	}
}

func providerOf(descriptor string) string {
	parts, err := provenance.ParseDescriptor(descriptor)
	if err != nil {
		return UnknownProvider
	}
	return parts.Provider
}

func tally(groups map[string]*ProviderCount, provider string, present bool) {
	c, ok := groups[provider]
	if !ok {
		c = &ProviderCount{Provider: provider}
		groups[provider] = c
	}
	c.Mappings++
	if present {
		c.Present++
	} else {
		c.Missing++
	}
}

func sortedCounts(groups map[string]*ProviderCount) []ProviderCount {
	out := make([]ProviderCount, 0, len(groups))
	for _, c := range groups {
		out = append(out, *c)
	}
	slices.SortFunc(out, func(a, b ProviderCount) int {
		if c := cmp.Compare(b.Mappings, a.Mappings); c != 0 {
			return c
		}
		return cmp.Compare(a.Provider, b.Provider)
	})
	return out
}
