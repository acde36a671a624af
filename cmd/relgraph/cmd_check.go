package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/relgraph/dialect/sql/schema"
	"github.com/syssam/relgraph/schema/load"
)

// checkCmd validates a declaration file and reports its tables.
func checkCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check <schema.yaml>",
		Short: "Validate declarations and foreign keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := load.LoadFile(args[0])
			if err != nil {
				return err
			}
			tables, err := schema.Tables(reg)
			if err != nil {
				return err
			}
			for _, t := range tables {
				if _, err := schema.Statements(opts.dialect, []*schema.Table{t}); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d entities, %d foreign keys, %d links\n", len(reg.Entities()), len(reg.ForeignKeys()), len(reg.Links()))
			fmt.Fprintln(out, schema.Validate(tables).String())
			return nil
		},
	}
}
