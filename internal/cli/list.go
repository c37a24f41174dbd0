package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/provq/internal/engine"
	"github.com/roach88/provq/internal/query"
	"github.com/roach88/provq/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Raw      query.Raw
	Database string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Filter, sort and page mappings",
		Long: `List mappings matching every given filter.

Text filters (--source, --target, --actor, --reason) are case-insensitive
substring matches. --stage matches a stage label exactly; "all" disables it.
--range takes comma-separated tokens; a token "a|b" matches the source and
target range of one event, a bare token matches either side.

Invalid --present, --sort, --page and --per-page values fall back to their
defaults with a warning instead of failing.

With --db the query runs against a SQLite export written by "provq export"
and returns the same page the in-memory engine would.

Examples:
  provq list --source anidb --present missing
  provq list --actor bot --sort timeline --per-page 20
  provq list --range "1-12|S1E1-S1E12"
  provq list --db provq.db --stage override`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Raw.Source, "source", "", "source descriptor substring")
	f.StringVar(&opts.Raw.Target, "target", "", "target descriptor substring")
	f.StringVar(&opts.Raw.Actor, "actor", "", "event actor substring")
	f.StringVar(&opts.Raw.Reason, "reason", "", "event reason substring")
	f.StringVar(&opts.Raw.Range, "range", "", "range tokens, comma separated (a|b pairs source and target)")
	f.StringVar(&opts.Raw.Stage, "stage", "", "exact stage label (or all)")
	f.StringVar(&opts.Raw.Present, "present", "", "presence filter (all|present|missing)")
	f.StringVar(&opts.Raw.Sort, "sort", "", "sort order (default|present|missing|timeline)")
	f.StringVar(&opts.Raw.Page, "page", "", "1-based page number")
	f.StringVar(&opts.Raw.PerPage, "per-page", "", "mappings per page (1-1000)")
	f.StringVar(&opts.Database, "db", "", "answer from a SQLite export instead of the dataset")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	raw := opts.Raw
	if raw.PerPage == "" && opts.Config != nil {
		raw.PerPage = strconv.Itoa(opts.Config.Query.PerPage)
	}
	q, warnings := query.Normalize(raw)
	for _, w := range warnings {
		opts.logger().Warn("query parameter ignored", "reason", w)
	}

	var page engine.PageView
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()

		if page, err = st.ListMappings(ctx, q); err != nil {
			return WrapExitError(ExitCommandError, "failed to query database", err)
		}
	} else {
		snap, err := opts.snapshot(ctx)
		if err != nil {
			return err
		}
		page = engine.ViewPage(engine.Run(snap.Payload, q), &snap.Payload.Dict, false)
	}

	return opts.formatter(cmd).Emit(page, func(w io.Writer) error {
		return writeListText(w, page)
	})
}

func writeListText(w io.Writer, page engine.PageView) error {
	if page.Total == 0 {
		fmt.Fprintln(w, "No mappings match.")
		return nil
	}

	rows := make([][]string, 0, len(page.Items))
	for _, item := range page.Items {
		rows = append(rows, []string{
			strconv.Itoa(int(item.ID)),
			item.Source,
			item.Target,
			presenceLabel(item.Present),
			strconv.Itoa(item.EventCount),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"ID", "Source", "Target", "Status", "Events"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	))
	fmt.Fprintf(w, "Page %d of %d (%d mappings, %d per page)\n", page.Page, page.Pages, page.Total, page.PerPage)
	return nil
}

func presenceLabel(present bool) string {
	if present {
		return "present"
	}
	return "missing"
}
