package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/example/go-matcha-text/internal/symbols"
	"github.com/spf13/cobra"
)

func newSymbolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "Dump the symbol vocabulary as id/symbol pairs",
		RunE: func(_ *cobra.Command, _ []string) error {
			vocab := symbols.New()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for id, sym := range vocab.Symbols() {
				display := sym
				if sym == " " {
					display = "<space>"
				}
				fmt.Fprintf(w, "%d\t%s\n", id, display)
			}

			return w.Flush()
		},
	}

	return cmd
}
