package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/relgraph/dialect"
	"github.com/syssam/relgraph/dialect/sql"
	"github.com/syssam/relgraph/dialect/sql/schema"
	"github.com/syssam/relgraph/schema/load"
)

// applyCmd migrates a database to the tables of a declaration file.
func applyCmd(opts *options) *cobra.Command {
	var (
		dsn         string
		schemaName  string
		dryRun      bool
		noFKs       bool
		dropColumns bool
		dropIndexes bool
	)

	cmd := &cobra.Command{
		Use:   "apply <schema.yaml>",
		Short: "Migrate a database to the declarations",
		Long: "Compute the changes between the database and the declared tables and apply them. " +
			"Columns and indexes missing from the declarations are kept unless --drop-columns or --drop-indexes is set.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (rerr error) {
			if dsn == "" {
				return errors.New("--dsn is required")
			}
			reg, err := load.LoadFile(args[0])
			if err != nil {
				return err
			}
			tables, err := schema.Tables(reg)
			if err != nil {
				return err
			}
			drv, err := sql.Open(opts.dialect, dsn)
			if err != nil {
				return err
			}
			defer func() {
				if err := drv.Close(); err != nil && rerr == nil {
					rerr = err
				}
			}()

			stats := sql.NewStatsDriver(dialect.Debug(drv, opts.logger))
			mopts := []schema.MigrateOption{
				schema.WithLogger(opts.logger),
				schema.WithExecDriver(stats),
				schema.WithForeignKeys(!noFKs),
				schema.WithDropColumn(dropColumns),
				schema.WithDropIndex(dropIndexes),
			}
			if schemaName != "" {
				mopts = append(mopts, schema.WithSchemaName(schemaName))
			}
			m, err := schema.NewMigrate(drv, mopts...)
			if err != nil {
				return err
			}

			ctx, out := cmd.Context(), cmd.OutOrStdout()
			plan, err := m.Plan(ctx, tables...)
			if err != nil {
				return err
			}
			if len(plan.Changes) == 0 {
				fmt.Fprintln(out, "Schema is up to date")
				return nil
			}
			for _, c := range plan.Changes {
				fmt.Fprintln(out, c.Cmd+";")
			}
			if dryRun {
				return nil
			}
			if err := m.Create(ctx, tables...); err != nil {
				return err
			}
			fmt.Fprintf(out, "Applied %d changes (%s)\n", len(plan.Changes), stats.QueryStats().Stats())
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "Database connection string")
	cmd.Flags().StringVar(&schemaName, "schema", "", "Schema for tables that do not name one")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the planned statements without applying them")
	cmd.Flags().BoolVar(&noFKs, "no-foreign-keys", false, "Do not create foreign key constraints")
	cmd.Flags().BoolVar(&dropColumns, "drop-columns", false, "Drop columns missing from the declarations")
	cmd.Flags().BoolVar(&dropIndexes, "drop-indexes", false, "Drop indexes missing from the declarations")
	return cmd
}
