package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/provq/internal/config"
	"github.com/roach88/provq/internal/logging"
	"github.com/roach88/provq/internal/source"
)

// RootOptions holds global flags for all commands, plus the configuration
// and dataset loader resolved before any subcommand runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Dataset    string
	LogLevel   string

	// Source overrides the configured dataset file when set. Tests use it
	// to serve an in-memory payload.
	Source source.Source

	Config *config.Config
	Logger *slog.Logger

	loader *source.Loader
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the provq CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provq",
		Short: "provq - mapping provenance query and replay",
		Long: `Query the provenance log of cross-catalog id mappings.

provq filters, sorts and pages mappings, and replays a mapping's event
history to show how its active episode ranges changed at every step.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default: ./provq.yaml or ~/.config/provq/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Dataset, "dataset", "", "path to the provenance payload (.json or .json.zst)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewTimelineCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// setup loads configuration, applies flag overrides and builds the logger
// and dataset loader.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, _, _, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Dataset != "" {
		if cfg.Dataset.Path, err = config.ExpandPath(o.Dataset); err != nil {
			return WrapExitError(ExitCommandError, "invalid --dataset", err)
		}
	}
	if o.LogLevel != "" {
		if !logging.ValidLevel(o.LogLevel) {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid log level %q", o.LogLevel))
		}
		cfg.Logging.Level = o.LogLevel
	}
	o.Config = cfg

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build logger", err)
	}
	o.Logger = logger
	o.loader = nil
	return nil
}

// dataSource returns the configured dataset source.
func (o *RootOptions) dataSource() (source.Source, error) {
	if o.Source != nil {
		return o.Source, nil
	}
	format, err := source.ParseFormat(o.Config.Dataset.Format)
	if err != nil {
		return nil, err
	}
	return source.NewFileSource(o.Config.Dataset.Path, format), nil
}

// snapshot returns the loaded dataset, loading it on first use.
func (o *RootOptions) snapshot(ctx context.Context) (*source.Snapshot, error) {
	if o.loader == nil {
		src, err := o.dataSource()
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid dataset", err)
		}
		o.loader = source.NewLoader(src, o.logger())
	}
	snap, err := o.loader.Get(ctx)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load dataset", err)
	}
	return snap, nil
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.Discard()
	}
	return o.Logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
