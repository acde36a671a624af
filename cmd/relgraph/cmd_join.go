package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syssam/relgraph/dialect/sql"
	"github.com/syssam/relgraph/dialect/sql/sqlgraph"
	"github.com/syssam/relgraph/schema/load"
)

// joinCmd prints the query selecting the targets of a relation or link.
func joinCmd(opts *options) *cobra.Command {
	var (
		joinType string
		inline   bool
	)

	cmd := &cobra.Command{
		Use:   "join <schema.yaml> <Entity.relation | link>",
		Short: "Print the query of a relation or link",
		Long: "Print the SELECT statement returning the targets of a relation (Entity.relation) " +
			"or a link (link name), joined back to their source.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jt, err := sql.ParseJoinType(joinType)
			if err != nil {
				return err
			}
			reg, err := load.LoadFile(args[0])
			if err != nil {
				return err
			}
			var t *sqlgraph.Traversal
			if entity, name, ok := strings.Cut(args[1], "."); ok {
				rel, err := reg.Relation(entity, name)
				if err != nil {
					return err
				}
				t = sqlgraph.FindRelated(rel, jt)
			} else {
				l, err := reg.Link(args[1])
				if err != nil {
					return err
				}
				t = sqlgraph.FindLinked(l, jt)
			}
			t.SetDialect(opts.dialect)
			out := cmd.OutOrStdout()
			if inline {
				fmt.Fprintln(out, t.String())
				return nil
			}
			query, qargs := t.Query()
			fmt.Fprintln(out, query)
			if len(qargs) > 0 {
				fmt.Fprintf(out, "-- args: %v\n", qargs)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&joinType, "type", "t", "inner", "Join type (inner, left, right, full)")
	cmd.Flags().BoolVar(&inline, "inline", false, "Inline arguments into the statement")
	return cmd
}
