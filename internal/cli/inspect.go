package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fextract/internal/parser"
)

// InspectResult describes a parsed file without extracting from it.
type InspectResult struct {
	File    string        `json:"file"`
	Format  parser.Format `json:"format"`
	Fields  []string      `json:"fields"`
	Records int           `json:"records"`
	Digest  string        `json:"digest"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	var delimiter string

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the fields and record count of a file",
		Long: `Parse a CSV or JSON file and report its format, fields (in canonical
order), record count and content digest.`,
		Args:          args(cobra.ExactArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], delimiter, cmd)
		},
	}

	cmd.Flags().StringVar(&delimiter, "delimiter", "", "CSV field delimiter (default from config, ';')")

	return cmd
}

func runInspect(rootOpts *RootOptions, file, delimiterFlag string, cmd *cobra.Command) error {
	formatter, err := rootOpts.prepare(cmd)
	if err != nil {
		return err
	}

	delimiter, err := resolveDelimiter(rootOpts, delimiterFlag)
	if err != nil {
		return configError(formatter, "--delimiter: %v", err)
	}

	p, err := parser.For(file, parser.Options{Delimiter: delimiter, Logger: rootOpts.Logger})
	if err != nil {
		return fail(formatter, err, nil)
	}
	pf, err := p.Parse()
	if err != nil {
		return fail(formatter, err, nil)
	}

	result := InspectResult{
		File:    file,
		Format:  p.Format(),
		Fields:  pf.Fields(),
		Records: pf.Len(),
		Digest:  pf.Digest(),
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	formatter.Printf("File:    %s\n", result.File)
	formatter.Printf("Format:  %s\n", result.Format)
	formatter.Printf("Fields:  %s\n", strings.Join(result.Fields, ", "))
	formatter.Printf("Records: %d\n", result.Records)
	formatter.Printf("Digest:  %s\n", result.Digest)
	return nil
}
