package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/fextract/internal/parser"
	"github.com/roach88/fextract/internal/sink"
)

// FormatsResult lists the supported input formats and output extensions.
type FormatsResult struct {
	Inputs  []parser.Format `json:"inputs"`
	Outputs []string        `json:"outputs"`
}

// NewFormatsCommand creates the formats command.
func NewFormatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "formats",
		Short:         "List supported input and output formats",
		Args:          args(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			formatter, err := rootOpts.prepare(cmd)
			if err != nil {
				return err
			}

			result := FormatsResult{
				Inputs:  parser.SupportedFormats(),
				Outputs: sink.SupportedExtensions(),
			}
			if formatter.JSON() {
				return formatter.Success(result)
			}

			formatter.Printf("Input:  %s\n", parser.SupportedList())
			formatter.Printf("Output: %s\n", quoteAll(result.Outputs))
			return nil
		},
	}
}
