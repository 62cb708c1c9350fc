// Command fextract extracts named fields from CSV and JSON files.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/fextract/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "fextract:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
