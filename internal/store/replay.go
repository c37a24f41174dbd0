package store

import (
	"context"
	"fmt"

	"github.com/roach88/provq/internal/engine"
	"github.com/roach88/provq/internal/provenance"
)

// DigestMismatch is a timeline step whose stored digest differs from a
// fresh replay of the payload. Missing steps on either side have an empty
// digest on that side.
type DigestMismatch struct {
	MappingID provenance.MappingID `json:"mapping_id"`
	Step      int                  `json:"step"`
	Stored    string               `json:"stored"`
	Replayed  string               `json:"replayed"`
}

// VerifyAgainst replays every mapping of p and compares each step digest
// with the exported one. An export of the same payload always verifies
// clean because replay is deterministic.
func (s *Store) VerifyAgainst(ctx context.Context, p *provenance.Payload) ([]DigestMismatch, error) {
	stored, err := s.allSteps(ctx)
	if err != nil {
		return nil, fmt.Errorf("verify export: %w", err)
	}

	type key struct {
		id   provenance.MappingID
		step int
	}
	storedDigests := make(map[key]string, len(stored))
	for _, rec := range stored {
		storedDigests[key{rec.MappingID, rec.Step}] = rec.Digest
	}

	mismatches := []DigestMismatch{}
	for i := range p.Mappings {
		id := provenance.MappingID(i)
		for _, step := range engine.Replay(&p.Mappings[i], &p.Dict).Steps {
			k := key{id, step.Step}
			got, ok := storedDigests[k]
			delete(storedDigests, k)
			if ok && got == step.Digest {
				continue
			}
			mismatches = append(mismatches, DigestMismatch{
				MappingID: id,
				Step:      step.Step,
				Stored:    got,
				Replayed:  step.Digest,
			})
		}
	}

	// Steps stored for mappings or positions the payload no longer has.
	for _, rec := range stored {
		if digest, ok := storedDigests[key{rec.MappingID, rec.Step}]; ok {
			mismatches = append(mismatches, DigestMismatch{
				MappingID: rec.MappingID,
				Step:      rec.Step,
				Stored:    digest,
			})
		}
	}

	return mismatches, nil
}
