package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/fextract/internal/store"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [db]",
		Short: "List extractions recorded in a SQLite store",
		Long: `List the extractions recorded by "extract --output <file>.db".

The database defaults to store.path from the configuration. With
--id the stored columns of a single extraction are printed.`,
		Args:          args(cobra.MaximumNArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var id string
	cmd.Flags().StringVar(&id, "id", "", "show the columns of one extraction")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		return runHistory(rootOpts, path, id, cmd)
	}

	return cmd
}

func runHistory(rootOpts *RootOptions, path, id string, cmd *cobra.Command) error {
	formatter, err := rootOpts.prepare(cmd)
	if err != nil {
		return err
	}

	if path == "" {
		path = rootOpts.Config.Store.Path
	}
	if path == "" {
		return configError(formatter, "no database given and store.path is not configured")
	}

	// Opening creates the file, so check first to report a typo as not found.
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return failWith(formatter, ErrCodeNotFound, ExitFailure, fmt.Errorf("database %s not found", path), nil)
		}
		return fail(formatter, err, nil)
	}

	st, err := store.Open(path)
	if err != nil {
		return fail(formatter, err, nil)
	}
	defer st.Close()

	ctx := cmd.Context()

	if id != "" {
		e, pf, err := st.ReadExtraction(ctx, id)
		if err != nil {
			return fail(formatter, err, nil)
		}
		if formatter.JSON() {
			return formatter.Success(map[string]any{"extraction": e, "columns": pf})
		}
		formatter.Printf("%s (%s, %s)\n", e.ID, e.SourcePath, e.Format)
		formatter.Println(pf)
		return nil
	}

	extractions, err := st.ListExtractions(ctx)
	if err != nil {
		return fail(formatter, err, nil)
	}
	formatter.VerboseLog("Read %d extraction(s) from %s", len(extractions), path)

	if formatter.JSON() {
		return formatter.Success(extractions)
	}

	if len(extractions) == 0 {
		formatter.Println("No extractions recorded")
		return nil
	}

	w := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tID\tSOURCE\tFORMAT\tRECORDS\tFIELDS")
	for _, e := range extractions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
			e.Seq, e.ID, e.SourcePath, e.Format, e.RecordCount, strings.Join(e.Fields, ","))
	}
	return w.Flush()
}
