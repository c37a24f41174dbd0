package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/provq/internal/engine"
)

// SummaryOptions holds flags for the summary command.
type SummaryOptions struct {
	*RootOptions
	Providers bool
}

// SummaryResult is the summary command output.
type SummaryResult struct {
	engine.Summary
	Providers *engine.ProviderBreakdown `json:"providers,omitempty"`
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SummaryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show dataset-wide mapping counts",
		Long: `Show how many mappings the dataset holds and how many are present
or missing, plus the generator's generated_on stamp when it has one.

Examples:
  provq summary
  provq summary --providers
  provq summary --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Providers, "providers", false, "break counts down by descriptor provider")

	return cmd
}

func runSummary(opts *SummaryOptions, cmd *cobra.Command) error {
	snap, err := opts.snapshot(cmd.Context())
	if err != nil {
		return err
	}

	result := SummaryResult{Summary: engine.Summarize(snap.Payload)}
	if opts.Providers {
		breakdown := engine.SummarizeProviders(snap.Payload)
		result.Providers = &breakdown
	}

	return opts.formatter(cmd).Emit(result, func(w io.Writer) error {
		return writeSummaryText(w, result)
	})
}

func writeSummaryText(w io.Writer, result SummaryResult) error {
	generated := "-"
	if result.GeneratedOn != nil {
		generated = *result.GeneratedOn
	}
	fmt.Fprintf(w, "Generated on: %s\n", generated)
	fmt.Fprintf(w, "Mappings:     %d\n", result.Mappings)
	fmt.Fprintf(w, "Present:      %d\n", result.PresentMappings)
	fmt.Fprintf(w, "Missing:      %d\n", result.MissingMappings)

	if result.Providers == nil {
		return nil
	}
	for _, side := range []struct {
		title  string
		counts []engine.ProviderCount
	}{
		{"Source providers", result.Providers.Source},
		{"Target providers", result.Providers.Target},
	} {
		rows := make([][]string, 0, len(side.counts))
		for _, c := range side.counts {
			rows = append(rows, []string{
				c.Provider,
				strconv.Itoa(c.Mappings),
				strconv.Itoa(c.Present),
				strconv.Itoa(c.Missing),
			})
		}
		fmt.Fprintf(w, "\n%s\n", side.title)
		fmt.Fprintln(w, renderTable(
			[]string{"Provider", "Mappings", "Present", "Missing"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
		))
	}
	return nil
}
