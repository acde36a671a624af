package relation

import (
	"strings"

	"github.com/syssam/relgraph/dialect/sql"
	"github.com/syssam/relgraph/dialect/sqlschema"
)

// ForeignKey is the DDL projection of a relation.
type ForeignKey struct {
	Name        string
	FromTable   sql.TableRef
	FromColumns []string
	ToTable     sql.TableRef
	ToColumns   []string
	OnDelete    sqlschema.CascadeAction
	OnUpdate    sqlschema.CascadeAction
}

// ForeignKeyName returns the derived constraint name "fk-<table>-<col>[-<col>...]".
func ForeignKeyName(table string, cols []string) string {
	return "fk-" + table + "-" + strings.Join(cols, "-")
}

// ForeignKey projects d into a foreign key constraint from its source
// columns to its target columns. Aliases are dropped. The name is the
// explicit FKName, or ForeignKeyName of the source table and columns.
func (d Def) ForeignKey() ForeignKey {
	if err := d.Validate(); err != nil {
		panic(err)
	}
	name := d.FKName
	if name == "" {
		name = ForeignKeyName(d.FromTable.Name(), d.FromCol.cols)
	}
	return ForeignKey{
		Name:        name,
		FromTable:   d.FromTable.Unaliased(),
		FromColumns: d.FromCol.Columns(),
		ToTable:     d.ToTable.Unaliased(),
		ToColumns:   d.ToCol.Columns(),
		OnDelete:    d.OnDelete,
		OnUpdate:    d.OnUpdate,
	}
}

// Builder returns the constraint clause builder of the foreign key.
func (fk ForeignKey) Builder() *sql.ForeignKeyBuilder {
	return sql.ForeignKey(fk.Name).
		Columns(fk.FromColumns...).
		References(fk.ToTable, fk.ToColumns...).
		OnDelete(fk.OnDelete.String()).
		OnUpdate(fk.OnUpdate.String())
}

// AlterTable returns the statement adding the foreign key to its table.
func (fk ForeignKey) AlterTable() *sql.AlterTableBuilder {
	return sql.AlterTable(fk.FromTable).AddForeignKey(fk.Builder())
}
