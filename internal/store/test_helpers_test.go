package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/provq/internal/provenance"
	"github.com/roach88/provq/internal/testutil"
)

// createTestStore creates a new temporary store for testing with a fixed clock.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestPayload builds a small payload covering presence, stages,
// actors, reasons, pair ranges, ineffective events and an empty mapping.
func createTestPayload() *provenance.Payload {
	b := testutil.NewPayload().Meta("generated_on", "2025-02-28T00:00:00Z")
	b.Mapping("anidb:1", "tvdb:100:s1", true,
		testutil.Add("1-12", "S1E1-S1E12").By("mapper-bot").Because("upstream import"),
		testutil.Add("13", "S1E13").At("override").By("Editor").Because("Manual fix"),
	)
	b.Mapping("anidb:2", "tvdb:200", false,
		testutil.Add("1", "1"),
		testutil.Remove("1", "1").By("mapper-bot"),
	)
	b.Mapping("anilist:Pokémon", "tmdb:7", true,
		testutil.Add("1-50", "1-50").Ineffective(),
		testutil.Add("1-50", "S1E1-S1E50").Because("Manual fix"),
	)
	b.Mapping("mal:9", "tvdb:100:s2", false)
	b.Mapping("anidb:3", "tvdb:300", true,
		testutil.Add("1", "1"), testutil.Add("2", "2"), testutil.Add("3", "3"),
	)
	return b.Build()
}
