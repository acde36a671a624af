package schema

import (
	"github.com/syssam/relgraph/dialect"
	"github.com/syssam/relgraph/dialect/sql"
)

// Ref returns the table reference of t.
func (t *Table) Ref() sql.TableRef {
	ref := sql.Table(t.Name)
	if t.Schema != "" {
		ref = ref.WithSchema(t.Schema)
	}
	return ref
}

// Builder returns the constraint clause of the foreign key.
func (fk *ForeignKey) Builder() *sql.ForeignKeyBuilder {
	return sql.ForeignKey(fk.Symbol).
		Columns(columnNames(fk.Columns)...).
		References(fk.RefTable.Ref(), columnNames(fk.RefColumns)...).
		OnDelete(fk.OnDelete.String()).
		OnUpdate(fk.OnUpdate.String())
}

// Statements renders the CREATE TABLE statements of tables without
// connecting to a database. Tables should be in dependency order (see
// Sort). A foreign key is declared inline when its referenced table was
// created before it, and added with an ALTER TABLE statement after every
// table otherwise. SQLite cannot add constraints to existing tables and
// always declares them inline.
func Statements(dialectName string, tables []*Table) ([]string, error) {
	var (
		stmts   []string
		alters  []string
		created = make(map[*Table]bool, len(tables))
	)
	for _, t := range tables {
		ct := sql.CreateTable(t.Ref()).SetDialect(dialectName)
		for _, c := range t.Columns {
			typ, err := SQLType(dialectName, c)
			if err != nil {
				return nil, err
			}
			col := sql.ColumnDef(c.Name, typ)
			if c.Nullable {
				col.Nullable()
			}
			ct.Columns(col)
		}
		ct.PrimaryKey(columnNames(t.PrimaryKey)...)
		created[t] = true
		for _, fk := range t.ForeignKeys {
			if created[fk.RefTable] || dialectName == dialect.SQLite {
				ct.ForeignKeys(fk.Builder())
				continue
			}
			query, _ := sql.AlterTable(t.Ref()).SetDialect(dialectName).AddForeignKey(fk.Builder()).Query()
			alters = append(alters, query)
		}
		query, _ := ct.Query()
		stmts = append(stmts, query)
	}
	return append(stmts, alters...), nil
}
