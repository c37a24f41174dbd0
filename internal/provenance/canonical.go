package provenance

import (
	"bytes"
	"encoding/json"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SnapshotEntry is one active source range and its comma-joined target ranges.
type SnapshotEntry struct {
	SourceRange  string `json:"source_range"`
	TargetRanges string `json:"target_ranges"`
}

// CanonicalSnapshot renders the active ranges of one mapping as nested,
// line-oriented text:
//
//	"anidb:1":
//	  "tvdb:2:s1":
//	    "1-12": "1-12"
//	    "13-24": "13-24, 14"
//
// Every range entry occupies exactly one line, so adding or removing an
// entry changes exactly one line of the rendering. Entries are written in
// the order given; callers pass them sorted. Strings are NFC normalised and
// quoted as JSON without HTML escaping. The output ends with a newline.
func CanonicalSnapshot(source, target string, entries []SnapshotEntry) string {
	var b strings.Builder
	b.WriteString(quoteCanonical(source))
	b.WriteString(":\n  ")
	b.WriteString(quoteCanonical(target))
	b.WriteString(":\n")
	for _, e := range entries {
		b.WriteString("    ")
		b.WriteString(quoteCanonical(e.SourceRange))
		b.WriteString(": ")
		b.WriteString(quoteCanonical(e.TargetRanges))
		b.WriteByte('\n')
	}
	return b.String()
}

// quoteCanonical produces a JSON string literal with NFC normalisation and
// no HTML escaping.
func quoteCanonical(s string) string {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		// Encoding a string cannot fail.
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// Fold lowers and NFC normalises s for case-insensitive comparison.
func Fold(s string) string {
	return norm.NFC.String(strings.ToLower(s))
}
