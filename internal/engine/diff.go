package engine

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffOp classifies one diff line.
type DiffOp string

// Diff operations.
const (
	DiffAdded     DiffOp = "added"
	DiffRemoved   DiffOp = "removed"
	DiffUnchanged DiffOp = "unchanged"
)

// DiffLine is one line of a line-level diff.
type DiffLine struct {
	Op   DiffOp `json:"op"`
	Text string `json:"text"`
}

// DiffLines compares two texts line by line and returns every line of both,
// tagged, in order. Lines come from splitting on "\n"; a single trailing
// empty line from a final newline is dropped.
//
// Matching uses difflib's SequenceMatcher. For replaced blocks the removed
// lines precede the added ones.
func DiffLines(prev, next string) []DiffLine {
	a := splitLines(prev)
	b := splitLines(next)

	matcher := difflib.NewMatcher(a, b)
	out := make([]DiffLine, 0, max(len(a), len(b)))
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for _, line := range a[op.I1:op.I2] {
				out = append(out, DiffLine{Op: DiffUnchanged, Text: line})
			}
		case 'd':
			for _, line := range a[op.I1:op.I2] {
				out = append(out, DiffLine{Op: DiffRemoved, Text: line})
			}
		case 'i':
			for _, line := range b[op.J1:op.J2] {
				out = append(out, DiffLine{Op: DiffAdded, Text: line})
			}
		case 'r':
			for _, line := range a[op.I1:op.I2] {
				out = append(out, DiffLine{Op: DiffRemoved, Text: line})
			}
			for _, line := range b[op.J1:op.J2] {
				out = append(out, DiffLine{Op: DiffAdded, Text: line})
			}
		}
	}
	return out
}

// CountChanges returns the number of added and removed lines.
func CountChanges(diff []DiffLine) (added, removed int) {
	for _, l := range diff {
		switch l.Op {
		case DiffAdded:
			added++
		case DiffRemoved:
			removed++
		}
	}
	return added, removed
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
