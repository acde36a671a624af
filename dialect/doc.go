// Package dialect provides the database dialect abstraction used by relgraph.
//
// # Supported Dialects
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
//	type Driver interface {
//	    ExecQuerier
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// The Tx interface extends ExecQuerier with Commit and Rollback. Both Driver
// and Tx implement ExecQuerier:
//
//	type ExecQuerier interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	}
//
// # Sub-packages
//
//   - dialect/sql: SQL builders and the database/sql driver implementation
//   - dialect/sql/schema: schema assembly and migration
//   - dialect/sql/sqlgraph: join traversal over relation paths
//   - dialect/sqlschema: referential actions and table annotations
package dialect
