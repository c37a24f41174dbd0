package provenance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotDigest_Stable(t *testing.T) {
	text := CanonicalSnapshot("anidb:1", "tvdb:1", []SnapshotEntry{{SourceRange: "1-12", TargetRanges: "S1E1-S1E12"}})

	assert.Equal(t, SnapshotDigest(text), SnapshotDigest(text))
	assert.Len(t, SnapshotDigest(text), 64)
	assert.NotEqual(t, SnapshotDigest(text), SnapshotDigest(text+" "))
}

func TestDigests_DomainSeparated(t *testing.T) {
	assert.NotEqual(t, SnapshotDigest("x"), TimelineDigest([]string{"x"}))
}

func TestTimelineDigest_OrderMatters(t *testing.T) {
	a := SnapshotDigest("a")
	b := SnapshotDigest("b")
	assert.NotEqual(t, TimelineDigest([]string{a, b}), TimelineDigest([]string{b, a}))
	assert.Equal(t, TimelineDigest([]string{a, b}), TimelineDigest([]string{a, b}))
}
