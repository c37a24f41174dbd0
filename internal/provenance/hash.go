package provenance

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DomainSnapshot prefixes snapshot digests. The version suffix allows the
// rendering to change without colliding with older digests.
const DomainSnapshot = "provq/snapshot/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotDigest identifies a canonical snapshot rendering.
// Equal renderings always produce equal digests.
func SnapshotDigest(canonical string) string {
	return hashWithDomain(DomainSnapshot, []byte(canonical))
}

// DomainTimeline prefixes whole-timeline digests.
const DomainTimeline = "provq/timeline/v1"

// TimelineDigest folds the ordered step digests of one replay into a single
// value. Two replays agree exactly when their digests agree.
func TimelineDigest(stepDigests []string) string {
	return hashWithDomain(DomainTimeline, []byte(strings.Join(stepDigests, "\n")))
}
