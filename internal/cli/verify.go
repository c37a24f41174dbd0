package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/provq/internal/engine"
	"github.com/roach88/provq/internal/store"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Database string
}

// VerifyResult holds the outcome of every check.
type VerifyResult struct {
	Mappings      int                         `json:"mappings"`
	Presence      []engine.PresenceMismatch   `json:"presence_mismatches"`
	Determinism   []engine.DeterminismFailure `json:"determinism_failures"`
	Export        []store.DigestMismatch      `json:"export_mismatches,omitempty"`
	ExportChecked bool                        `json:"export_checked"`
	OK            bool                        `json:"ok"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check presence flags and replay determinism",
		Long: `Replay every mapping and check that:
  - each stored present flag agrees with the replayed active ranges
  - replaying twice yields identical step digests
  - with --db, the export's stored step digests match a fresh replay

Exit codes:
  0 - All checks passed
  1 - At least one check failed
  2 - Command error (dataset or database unreadable)

Examples:
  provq verify
  provq verify --db provq.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "also compare against a SQLite export")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	snap, err := opts.snapshot(ctx)
	if err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	result := VerifyResult{
		Mappings:    len(snap.Payload.Mappings),
		Presence:    engine.VerifyPresence(snap.Payload),
		Determinism: engine.VerifyDeterminism(snap.Payload),
	}
	formatter.VerboseLog("Replayed %d mapping(s)", result.Mappings)

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()

		result.Export, err = st.VerifyAgainst(ctx, snap.Payload)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to verify export", err)
		}
		result.ExportChecked = true
	}

	result.OK = len(result.Presence) == 0 && len(result.Determinism) == 0 && len(result.Export) == 0

	if err := formatter.Emit(result, func(w io.Writer) error {
		return writeVerifyText(w, result)
	}); err != nil {
		return err
	}
	if !result.OK {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: verification failed", CodeVerifyFailed))
	}
	return nil
}

func writeVerifyText(w io.Writer, result VerifyResult) error {
	fmt.Fprintf(w, "Verified %d mapping(s)\n", result.Mappings)

	for _, m := range result.Presence {
		fmt.Fprintf(w, "  ✗ mapping %d (%s): present=%t but replay gives %t\n", m.ID, m.Label, m.Stored, m.Replayed)
	}
	for _, d := range result.Determinism {
		fmt.Fprintf(w, "  ✗ mapping %d: replay not deterministic (%s != %s)\n", d.ID, d.First, d.Second)
	}
	for _, e := range result.Export {
		fmt.Fprintf(w, "  ✗ mapping %d step %d: export digest %q, replay digest %q\n", e.MappingID, e.Step, e.Stored, e.Replayed)
	}

	if result.OK {
		fmt.Fprintln(w, "✓ Presence flags match replay")
		fmt.Fprintln(w, "✓ Replay is deterministic")
		if result.ExportChecked {
			fmt.Fprintln(w, "✓ Export matches replay")
		}
		return nil
	}
	fmt.Fprintf(w, "%d presence mismatch(es), %d determinism failure(s), %d export mismatch(es)\n",
		len(result.Presence), len(result.Determinism), len(result.Export))
	return nil
}
