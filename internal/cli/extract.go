package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fextract/internal/colstore"
	"github.com/roach88/fextract/internal/logging"
	"github.com/roach88/fextract/internal/parser"
	"github.com/roach88/fextract/internal/schema"
	"github.com/roach88/fextract/internal/sink"
)

// ExtractOptions holds flags for the extract command.
type ExtractOptions struct {
	Output    string
	Schema    string
	Delimiter string
}

// ExtractResult is the JSON payload of a successful extract.
type ExtractResult struct {
	File    string               `json:"file"`
	Format  parser.Format        `json:"format"`
	Fields  []string             `json:"fields"`
	Records int                  `json:"records"`
	Columns *colstore.ParsedFile `json:"columns"`
	Output  *sink.Result         `json:"output,omitempty"`
}

// NewExtractCommand creates the extract command.
func NewExtractCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExtractOptions{}

	cmd := &cobra.Command{
		Use:   "extract <file> <field>...",
		Short: "Extract fields from a CSV or JSON file",
		Long: `Parse a CSV or JSON file and extract one or more fields.

The parser is chosen by the file extension. Every requested field must
exist in the file. With --output the extracted fields are written to a
.csv, .json or SQLite (.db, .sqlite, .sqlite3) file.`,
		Args:          args(cobra.MinimumNArgs(2)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(rootOpts, opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write extracted fields to this file")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "CUE schema every extracted record must satisfy")
	cmd.Flags().StringVar(&opts.Delimiter, "delimiter", "", "CSV field delimiter (default from config, ';')")

	return cmd
}

func runExtract(rootOpts *RootOptions, opts *ExtractOptions, file string, fields []string, cmd *cobra.Command) error {
	formatter, err := rootOpts.prepare(cmd)
	if err != nil {
		return err
	}
	cfg := rootOpts.Config
	logger := logging.WithFields(rootOpts.Logger, "file", file)

	delimiter, err := resolveDelimiter(rootOpts, opts.Delimiter)
	if err != nil {
		return configError(formatter, "--delimiter: %v", err)
	}

	schemaPath := opts.Schema
	if schemaPath == "" {
		schemaPath = cfg.Schema.Path
	}
	var sch *schema.Schema
	if schemaPath != "" {
		if sch, err = schema.Load(schemaPath); err != nil {
			return fail(formatter, err, nil)
		}
		formatter.VerboseLog("Loaded schema %s", schemaPath)
	}

	var out sink.Sink
	if opts.Output != "" {
		if out, err = sink.ForPath(opts.Output, sink.Options{Delimiter: delimiter, Logger: logger}); err != nil {
			return fail(formatter, err, nil)
		}
	}

	formatter.Printf("Processing file %s\n", file)

	p, err := parser.For(file, parser.Options{Delimiter: delimiter, Logger: logger})
	if err != nil {
		return fail(formatter, err, map[string]any{"supported": parser.SupportedFormats()})
	}
	formatter.VerboseLog("Using %s parser", p.Format())

	parsed, err := p.Parse()
	if err != nil {
		return fail(formatter, err, nil)
	}
	formatter.Println(parsed)

	extracted, err := parsed.ExtractFields(fields...)
	if err != nil {
		return fail(formatter, err, map[string]any{"available": parsed.Fields()})
	}

	for _, field := range fields {
		formatter.Printf("Processing field: %s\n", field)
	}
	formatter.Printf("Total fields processed: %d\n", len(fields))

	if sch != nil {
		if violations := sch.Validate(extracted); len(violations) > 0 {
			for _, v := range violations {
				formatter.Printf("  %s\n", v)
			}
			err := fmt.Errorf("%d record(s) violate schema %s", len(violations), sch.Name)
			return failWith(formatter, ErrCodeSchemaViolation, ExitFailure, err, violations)
		}
		formatter.VerboseLog("All %d record(s) satisfy schema", extracted.Len())
	}

	result := ExtractResult{
		File:    file,
		Format:  p.Format(),
		Fields:  extracted.Fields(),
		Records: extracted.Len(),
		Columns: extracted,
	}

	if out != nil {
		res, err := out.Write(cmd.Context(), sink.Source{Path: file, Format: p.Format()}, extracted)
		if err != nil {
			return failWith(formatter, ErrCodeWriteFailed, ExitCommandError, err, nil)
		}
		result.Output = &res
		switch {
		case res.ID != "" && !res.Inserted:
			formatter.Printf("Already recorded as %s in %s\n", res.ID, res.Path)
		case res.ID != "":
			formatter.Printf("Recorded %d record(s) as %s in %s\n", res.Records, res.ID, res.Path)
		default:
			formatter.Printf("Wrote %d record(s) to %s\n", res.Records, res.Path)
		}
	}

	logger.Info("extracted fields", "fields", len(fields), "records", extracted.Len())

	if formatter.JSON() {
		return formatter.Success(result)
	}
	return nil
}
