package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/provq/internal/config"
	"github.com/roach88/provq/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// ExportResult is the export command output.
type ExportResult struct {
	Path string          `json:"path"`
	Run  store.ExportRun `json:"run"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dataset and its replayed timelines to SQLite",
		Long: `Export the loaded dataset to a SQLite database: mappings, events and
every replayed timeline step with its snapshot digest. A previous export in
the same database is replaced.

The export answers "provq list --db" and "provq verify --db".

Examples:
  provq export --out provq.db
  provq export --dataset mappings.json.zst --out /tmp/provq.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "database path (default: export.path from config)")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	snap, err := opts.snapshot(ctx)
	if err != nil {
		return err
	}

	path := opts.Config.Export.Path
	if opts.Output != "" {
		if path, err = config.ExpandPath(opts.Output); err != nil {
			return WrapExitError(ExitCommandError, "invalid --out", err)
		}
	}

	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	src, err := opts.dataSource()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid dataset", err)
	}
	run, err := st.Export(ctx, snap.Payload, src.Name())
	if err != nil {
		return WrapExitError(ExitCommandError, "export failed", err)
	}
	opts.logger().Info("export written", "path", path, "run", run.ID, "mappings", run.Mappings, "steps", run.Steps)

	result := ExportResult{Path: path, Run: run}
	return opts.formatter(cmd).Emit(result, func(w io.Writer) error {
		fmt.Fprintf(w, "✓ Exported %d mapping(s), %d event(s), %d step(s) to %s\n",
			run.Mappings, run.Events, run.Steps, path)
		fmt.Fprintf(w, "Run: %s\n", run.ID)
		return nil
	})
}
