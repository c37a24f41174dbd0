package cli

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/roach88/provq/internal/engine"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiDim   = "\x1b[2m"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// diffPrefix marks a diff line the way unified diffs do.
func diffPrefix(op engine.DiffOp) string {
	switch op {
	case engine.DiffAdded:
		return "+ "
	case engine.DiffRemoved:
		return "- "
	default:
		return "  "
	}
}

func diffColor(op engine.DiffOp) string {
	switch op {
	case engine.DiffAdded:
		return ansiGreen
	case engine.DiffRemoved:
		return ansiRed
	default:
		return ansiDim
	}
}

// renderDiff writes one line per diff entry, indented by indent.
func renderDiff(w io.Writer, diff []engine.DiffLine, indent string, colorize bool) {
	for _, line := range diff {
		out := diffPrefix(line.Op) + line.Text
		if colorize {
			out = diffColor(line.Op) + out + ansiReset
		}
		io.WriteString(w, indent+out+"\n")
	}
}
