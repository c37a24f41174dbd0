package provenance

import (
	"fmt"
	"strings"
)

// DescriptorParts is a parsed descriptor "provider:id[:scope]".
type DescriptorParts struct {
	Provider string
	ID       string
	Scope    string
}

// String renders the descriptor, omitting an empty scope.
func (d DescriptorParts) String() string {
	if d.Scope == "" {
		return d.Provider + ":" + d.ID
	}
	return d.Provider + ":" + d.ID + ":" + d.Scope
}

// ParseDescriptor splits a descriptor into provider, id and optional scope.
// Provider and id must be non-empty and at most one scope segment may follow.
func ParseDescriptor(s string) (DescriptorParts, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return DescriptorParts{}, fmt.Errorf("invalid descriptor %q: expected provider:id[:scope]", s)
	}
	d := DescriptorParts{Provider: parts[0], ID: parts[1]}
	if len(parts) == 3 {
		d.Scope = parts[2]
	}
	return d, nil
}
