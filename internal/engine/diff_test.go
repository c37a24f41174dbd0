package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffLines_Identical(t *testing.T) {
	got := DiffLines("a\nb\n", "a\nb\n")
	assert.Equal(t, []DiffLine{
		{Op: DiffUnchanged, Text: "a"},
		{Op: DiffUnchanged, Text: "b"},
	}, got)
}

func TestDiffLines_DropsSingleTrailingEmptyLine(t *testing.T) {
	got := DiffLines("", "a\n")
	assert.Equal(t, []DiffLine{{Op: DiffAdded, Text: "a"}}, got)
}

func TestDiffLines_KeepsInteriorEmptyLines(t *testing.T) {
	got := DiffLines("", "a\n\nb")
	assert.Equal(t, []DiffLine{
		{Op: DiffAdded, Text: "a"},
		{Op: DiffAdded, Text: ""},
		{Op: DiffAdded, Text: "b"},
	}, got)
}

func TestDiffLines_InsertInMiddle(t *testing.T) {
	got := DiffLines("a\nc\n", "a\nb\nc\n")
	assert.Equal(t, []DiffLine{
		{Op: DiffUnchanged, Text: "a"},
		{Op: DiffAdded, Text: "b"},
		{Op: DiffUnchanged, Text: "c"},
	}, got)
}

func TestDiffLines_ReplaceListsRemovedFirst(t *testing.T) {
	got := DiffLines("a\nb\nc\n", "a\nx\nc\n")
	assert.Equal(t, []DiffLine{
		{Op: DiffUnchanged, Text: "a"},
		{Op: DiffRemoved, Text: "b"},
		{Op: DiffAdded, Text: "x"},
		{Op: DiffUnchanged, Text: "c"},
	}, got)
}

func TestDiffLines_BothEmpty(t *testing.T) {
	assert.Empty(t, DiffLines("", ""))
}

func TestCountChanges(t *testing.T) {
	added, removed := CountChanges([]DiffLine{
		{Op: DiffUnchanged}, {Op: DiffAdded}, {Op: DiffAdded}, {Op: DiffRemoved},
	})
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, removed)
}
