// Package main provides the relgraph CLI. It loads entity and relation
// declarations from a YAML file and renders or applies them.
//
// Usage:
//
//	relgraph check <schema.yaml>                 # Validate declarations and foreign keys
//	relgraph ddl <schema.yaml> [--watch]         # Print CREATE TABLE statements
//	relgraph join <schema.yaml> <Entity.rel>     # Print the query of a relation
//	relgraph join <schema.yaml> <link>           # Print the query of a link
//	relgraph apply <schema.yaml> --dsn <dsn>     # Migrate a database to the declarations
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/syssam/relgraph/dialect"

	// Database drivers
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

// options are the global flags shared by all commands.
type options struct {
	dialect string
	verbose bool
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "relgraph",
		Short:         "Entity relation graphs and join conditions",
		Long:          "relgraph loads entity and relation declarations from YAML, renders their join queries and DDL, and migrates databases to them.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !dialect.IsValid(opts.dialect) {
				return fmt.Errorf("unsupported dialect %q (want %s, %s or %s)", opts.dialect, dialect.SQLite, dialect.Postgres, dialect.MySQL)
			}
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	rootCmd.SetGlobalNormalizationFunc(wordSepNormalize)
	rootCmd.PersistentFlags().StringVarP(&opts.dialect, "dialect", "d", dialect.SQLite, "SQL dialect (sqlite, postgres, mysql)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log executed statements")

	rootCmd.AddCommand(
		checkCmd(opts),
		ddlCmd(opts),
		joinCmd(opts),
		applyCmd(opts),
	)
	return rootCmd
}

// wordSepNormalize accepts "_" in place of "-" in flag names.
func wordSepNormalize(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
