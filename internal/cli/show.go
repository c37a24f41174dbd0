package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/provq/internal/engine"
	"github.com/roach88/provq/internal/source"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Descriptor string
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <id> | --descriptor <descriptor>",
		Short: "Show one mapping and its events",
		Long: `Show a mapping by id, or every mapping that references a descriptor.

Ids are positions in the dataset's mapping list. A non-numeric or negative
id and an id past the end of the list are reported as different errors.

Exit codes:
  0 - Mapping found
  1 - Invalid id or no such mapping
  2 - Command error (dataset unreadable, bad flags)

Examples:
  provq show 42
  provq show --descriptor anidb:1234`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Descriptor, "descriptor", "", "show every mapping referencing this descriptor")

	return cmd
}

func runShow(opts *ShowOptions, cmd *cobra.Command, args []string) error {
	if (len(args) == 1) == (opts.Descriptor != "") {
		return NewExitError(ExitCommandError, "provide either a mapping id or --descriptor")
	}

	snap, err := opts.snapshot(cmd.Context())
	if err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	if opts.Descriptor != "" {
		ids := snap.MappingsFor(opts.Descriptor)
		if len(ids) == 0 {
			return fail(formatter, ExitFailure, CodeMappingNotFound,
				fmt.Sprintf("no mapping references %q", opts.Descriptor), nil)
		}
		views := make([]engine.MappingView, 0, len(ids))
		for _, id := range ids {
			entry, err := engine.Lookup(snap.Payload, id)
			if err != nil {
				return WrapExitError(ExitCommandError, "reverse index out of sync", err)
			}
			views = append(views, engine.ViewEntry(entry, &snap.Payload.Dict, true))
		}
		return formatter.Emit(views, func(w io.Writer) error {
			for i, v := range views {
				if i > 0 {
					fmt.Fprintln(w)
				}
				writeMappingText(w, v)
			}
			return nil
		})
	}

	entry, err := lookupMapping(formatter, snap, args[0])
	if err != nil {
		return err
	}
	view := engine.ViewEntry(entry, &snap.Payload.Dict, true)
	return formatter.Emit(view, func(w io.Writer) error {
		writeMappingText(w, view)
		return nil
	})
}

// lookupMapping resolves a caller-supplied id, reporting the two lookup
// failures under distinct codes.
func lookupMapping(f *OutputFormatter, snap *source.Snapshot, id string) (engine.Entry, error) {
	entry, err := engine.LookupString(snap.Payload, id)
	if err == nil {
		return entry, nil
	}
	var le *engine.LookupError
	if !errors.As(err, &le) {
		return engine.Entry{}, WrapExitError(ExitCommandError, "lookup failed", err)
	}
	switch le.Code {
	case engine.ErrCodeInvalidMappingID:
		return engine.Entry{}, fail(f, ExitFailure, CodeInvalidMappingID, le.Message(), map[string]string{"id": id})
	default:
		return engine.Entry{}, fail(f, ExitFailure, CodeMappingNotFound, le.Message(),
			map[string]any{"id": id, "mappings": len(snap.Payload.Mappings)})
	}
}

func writeMappingText(w io.Writer, v engine.MappingView) {
	fmt.Fprintf(w, "Mapping %d: %s\n", v.ID, v.Label)
	fmt.Fprintf(w, "Status: %s, %d event(s)\n", presenceLabel(v.Present), v.EventCount)
	if len(v.Events) == 0 {
		fmt.Fprintln(w, "No events recorded.")
		return
	}

	rows := make([][]string, 0, len(v.Events))
	for i, ev := range v.Events {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			orPlaceholder(ev.Action),
			orPlaceholder(ev.Stage),
			orPlaceholder(ev.Actor),
			orPlaceholder(ev.Reason),
			orPlaceholder(ev.SourceRange) + " → " + orPlaceholder(ev.TargetRange),
			strconv.FormatBool(ev.Effective),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"#", "Action", "Stage", "Actor", "Reason", "Range", "Effective"},
		rows,
		[]columnAlignment{alignRight},
	))
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return engine.Placeholder
	}
	return s
}
