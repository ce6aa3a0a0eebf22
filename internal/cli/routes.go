package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zeusln/swapspec/internal/loader"
)

func RoutesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes [file]",
		Short: "List the operations of a generated OpenAPI document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := documentPath(cmd, args)
			if err != nil {
				return err
			}

			result, err := loader.LoadFile(path)
			if err != nil {
				return fmt.Errorf("loading %s: %w", path, err)
			}
			spec := loader.Transform(result)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tPATH\tOPERATION\tTAGS\tSUMMARY")
			for _, op := range spec.Operations {
				id := op.ID
				if id == "" {
					id = "-"
				}
				summary := op.Summary
				if op.Deprecated {
					summary = "(deprecated) " + summary
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", op.Method, op.Path, id, strings.Join(op.Tags, ","), summary)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			cmd.PrintErrf("%d operations in %d paths\n", len(spec.Operations), len(spec.Paths))
			return nil
		},
	}
}
