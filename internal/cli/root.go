// Package cli implements the fextract command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/roach88/fextract/internal/config"
	"github.com/roach88/fextract/internal/logging"
)

// RootOptions holds global flags and the resolved configuration.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	LogLevel   string

	// Config and Logger are filled in before a subcommand runs.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the fextract CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fextract",
		Short: "fextract - extract fields from structured files",
		Long: `Extract named fields from CSV and JSON files.

Files are dispatched to a parser by extension, read into a column store
(field -> values) and projected to the requested fields. Results can be
written to CSV, JSON or a SQLite history database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(usageError)

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error), overrides config")

	cmd.AddCommand(NewExtractCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewFormatsCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// prepare validates global flags, resolves configuration and sets up logging.
// Subcommands call it first so they work the same when constructed directly.
func (o *RootOptions) prepare(cmd *cobra.Command) (*OutputFormatter, error) {
	if o.Format == "" {
		o.Format = "text"
	}
	formatter := &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}

	if !isValidFormat(o.Format) {
		// Report in text: the requested format is the thing that is wrong.
		formatter.Format = "text"
		return nil, configError(formatter, "invalid format %q: must be one of %v", o.Format, ValidFormats)
	}

	if o.Config == nil {
		cfg, err := config.Load(o.ConfigPath)
		if err != nil {
			return nil, failWith(formatter, ErrCodeConfig, ExitCommandError, err, nil)
		}
		o.Config = cfg
	}

	if o.LogLevel != "" {
		if !logging.ValidLevel(o.LogLevel) {
			return nil, configError(formatter, "invalid log level %q", o.LogLevel)
		}
		o.Config.Log.Level = o.LogLevel
	}

	if o.Logger == nil {
		o.Logger = logging.Setup(o.Config.Log.Level, o.Config.Log.Format, cmd.ErrOrStderr())
	}

	formatter.VerboseLog("Config: delimiter=%q log.level=%s", o.Config.CSV.Delimiter, o.Config.Log.Level)
	return formatter, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// usageError marks argument and flag errors as command errors (exit 2).
func usageError(cmd *cobra.Command, err error) error {
	return WrapExitError(ExitCommandError, ErrCodeConfig, fmt.Errorf("%s: %w", cmd.CommandPath(), err))
}

// args wraps a cobra argument validator so its failures exit with ExitCommandError.
func args(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := validate(cmd, a); err != nil {
			return usageError(cmd, err)
		}
		return nil
	}
}

// resolveDelimiter returns the --delimiter flag when given, else the configured one.
func resolveDelimiter(o *RootOptions, flag string) (rune, error) {
	if flag == "" {
		return o.Config.DelimiterRune(), nil
	}
	if err := config.ValidateDelimiter(flag); err != nil {
		return 0, err
	}
	r, _ := utf8.DecodeRuneInString(flag)
	return r, nil
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("'%s'", item)
	}
	return strings.Join(quoted, ", ")
}
