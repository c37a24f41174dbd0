package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/provq/internal/engine"
	"github.com/roach88/provq/internal/provenance"
)

// TimelineOptions holds flags for the timeline command.
type TimelineOptions struct {
	*RootOptions
	Chronological bool
}

// Timeline orders.
const (
	OrderNewestFirst   = "newest_first"
	OrderChronological = "chronological"
)

// TimelineResult is the timeline command output.
type TimelineResult struct {
	ID     provenance.MappingID `json:"id"`
	Source string               `json:"source"`
	Target string               `json:"target"`
	Empty  bool                 `json:"empty"`
	Order  string               `json:"order"`
	Digest string               `json:"digest"`
	Steps  []engine.Step        `json:"steps"`
}

// NewTimelineCommand creates the timeline command.
func NewTimelineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TimelineOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "timeline <id>",
		Short: "Replay a mapping's history step by step",
		Long: `Replay every event of a mapping in recorded order and show the active
ranges after each step, with a line diff against the step before.

Steps are listed most recent first unless --chronological is given. Diffs
always compare a step with its chronological predecessor.

Exit codes:
  0 - Timeline replayed
  1 - Invalid id or no such mapping
  2 - Command error (dataset unreadable)

Examples:
  provq timeline 42
  provq timeline 42 --chronological
  provq timeline 42 --verbose --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeline(opts, cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Chronological, "chronological", false, "list steps oldest first")

	return cmd
}

func runTimeline(opts *TimelineOptions, cmd *cobra.Command, id string) error {
	snap, err := opts.snapshot(cmd.Context())
	if err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	entry, err := lookupMapping(formatter, snap, id)
	if err != nil {
		return err
	}

	timeline := engine.Replay(entry.Mapping, &snap.Payload.Dict)
	result := TimelineResult{
		ID:     entry.ID,
		Source: timeline.Source,
		Target: timeline.Target,
		Empty:  timeline.Empty,
		Order:  OrderNewestFirst,
		Digest: timeline.Digest(),
		Steps:  timeline.Reversed(),
	}
	if opts.Chronological {
		result.Order = OrderChronological
		result.Steps = timeline.Steps
	}

	colorize := shouldColorize(cmd.OutOrStdout())
	return formatter.Emit(result, func(w io.Writer) error {
		return writeTimelineText(w, result, opts.Verbose, colorize)
	})
}

func writeTimelineText(w io.Writer, result TimelineResult, verbose, colorize bool) error {
	fmt.Fprintf(w, "Mapping %d: %s → %s\n", result.ID, result.Source, result.Target)
	if result.Empty {
		fmt.Fprintln(w, "No events recorded for this mapping.")
		return nil
	}
	if verbose {
		fmt.Fprintf(w, "Timeline digest: %s\n", result.Digest)
	}

	for _, step := range result.Steps {
		fmt.Fprintf(w, "\nStep %d  %s  [%s]  %s\n", step.Step, step.Action, step.Effect, step.Range)
		fmt.Fprintf(w, "  stage: %s  actor: %s  reason: %s\n", step.Stage, step.Actor, step.Reason)
		if verbose {
			if step.Seq != 0 {
				fmt.Fprintf(w, "  seq: %d\n", step.Seq)
			}
			if len(step.Details) > 0 {
				fmt.Fprintf(w, "  details: %s\n", step.Details)
			}
			fmt.Fprintf(w, "  digest: %s\n", step.Digest)
		}
		renderDiff(w, step.Diff, "    ", colorize)
	}
	return nil
}
