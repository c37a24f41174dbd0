package engine

import (
	"strconv"
	"strings"

	"github.com/roach88/provq/internal/provenance"
)

// ParseMappingID parses a caller-supplied mapping id. Non-numeric and
// negative ids fail with ErrInvalidMappingID.
func ParseMappingID(s string) (provenance.MappingID, error) {
	trimmed := strings.TrimSpace(s)
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 0 {
		return 0, &LookupError{Code: ErrCodeInvalidMappingID, Input: s}
	}
	return provenance.MappingID(n), nil
}

// Lookup returns the mapping at id. An id outside the payload fails with
// ErrMappingNotFound.
func Lookup(p *provenance.Payload, id provenance.MappingID) (Entry, error) {
	m, ok := p.Mapping(id)
	if !ok {
		return Entry{}, &LookupError{
			Code:  ErrCodeMappingNotFound,
			Input: strconv.Itoa(int(id)),
			Total: len(p.Mappings),
		}
	}
	return Entry{ID: id, Mapping: m}, nil
}

// LookupString parses s and looks the mapping up. The two failure modes stay
// distinguishable through IsInvalidID and IsNotFound.
func LookupString(p *provenance.Payload, s string) (Entry, error) {
	id, err := ParseMappingID(s)
	if err != nil {
		return Entry{}, err
	}
	return Lookup(p, id)
}
