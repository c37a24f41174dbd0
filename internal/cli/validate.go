package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/provq/internal/provenance"
	"github.com/roach88/provq/internal/schema"
)

// ValidationResult holds the result of validating the dataset.
type ValidationResult struct {
	Valid     bool                        `json:"valid"`
	Issues    []schema.Issue              `json:"issues,omitempty"`
	Integrity *provenance.IntegrityReport `json:"integrity,omitempty"`
}

// rawReader is implemented by sources that can hand back the payload bytes.
type rawReader interface {
	ReadAll(ctx context.Context) ([]byte, error)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the dataset's structure and dictionary references",
		Long: `Validate the dataset against the payload schema, then list every
dictionary reference that does not resolve.

Unresolved references never fail a query (they display as "-"), so they
are reported here without failing validation.

Exit codes:
  0 - Payload matches the schema
  1 - Schema violations found
  2 - Command error (dataset unreadable)

Examples:
  provq validate
  provq validate --dataset mappings.json.zst --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	data, err := readPayloadBytes(ctx, opts)
	if err != nil {
		return fail(formatter, ExitCommandError, CodeLoadFailed, err.Error(), nil)
	}
	formatter.VerboseLog("Read %d byte(s) from %s", len(data), opts.sourceName())

	validator, err := schema.New()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build schema", err)
	}

	if issues := validator.Validate(data); len(issues) > 0 {
		result := ValidationResult{Valid: false, Issues: issues}
		if err := formatter.Emit(result, func(w io.Writer) error {
			return writeValidationText(w, result)
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d schema issue(s)", CodeValidateFailed, len(issues)))
	}

	payload, err := provenance.DecodeBytes(data)
	if err != nil {
		return fail(formatter, ExitCommandError, CodeLoadFailed, err.Error(), nil)
	}
	report := provenance.CheckIntegrity(payload)
	result := ValidationResult{Valid: true, Integrity: &report}

	return formatter.Emit(result, func(w io.Writer) error {
		return writeValidationText(w, result)
	})
}

func readPayloadBytes(ctx context.Context, opts *RootOptions) ([]byte, error) {
	src, err := opts.dataSource()
	if err != nil {
		return nil, err
	}
	if r, ok := src.(rawReader); ok {
		return r.ReadAll(ctx)
	}

	p, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := provenance.Encode(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *RootOptions) sourceName() string {
	src, err := o.dataSource()
	if err != nil {
		return "dataset"
	}
	return src.Name()
}

func writeValidationText(w io.Writer, result ValidationResult) error {
	if !result.Valid {
		fmt.Fprintf(w, "✗ Payload does not match the schema (%d issue(s))\n", len(result.Issues))
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "  %s\n", issue)
		}
		return nil
	}

	fmt.Fprintln(w, "✓ Payload matches the schema")
	if result.Integrity == nil {
		return nil
	}
	fmt.Fprintf(w, "%d mapping(s), %d event(s)\n", result.Integrity.Mappings, result.Integrity.Events)
	if result.Integrity.OK() {
		fmt.Fprintln(w, "✓ Every dictionary reference resolves")
		return nil
	}
	fmt.Fprintf(w, "%d unresolved reference(s):\n", len(result.Integrity.Issues))
	for _, issue := range result.Integrity.Issues {
		fmt.Fprintf(w, "  %s\n", issue)
	}
	return nil
}
