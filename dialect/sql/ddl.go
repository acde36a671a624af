package sql

// ForeignKeyBuilder is the builder for the foreign-key constraint clause.
type ForeignKeyBuilder struct {
	symbol     string
	columns    []string
	ref        TableRef
	refColumns []string
	onDelete   string
	onUpdate   string
}

// ForeignKey returns a builder for the foreign-key constraint clause in create/alter table statements.
//
//	ForeignKey().
//		Symbol("fk-fruit-cake_id").
//		Columns("cake_id").
//		References(Table("cake"), "id").
//		OnDelete("CASCADE")
func ForeignKey(symbol ...string) *ForeignKeyBuilder {
	fk := &ForeignKeyBuilder{}
	if len(symbol) != 0 {
		fk.symbol = symbol[0]
	}
	return fk
}

// Symbol sets the symbol of the foreign key.
func (fk *ForeignKeyBuilder) Symbol(s string) *ForeignKeyBuilder {
	fk.symbol = s
	return fk
}

// Columns sets the columns of the foreign key in the source table.
func (fk *ForeignKeyBuilder) Columns(s ...string) *ForeignKeyBuilder {
	fk.columns = append(fk.columns, s...)
	return fk
}

// References sets the referenced table and its columns. An alias on t is ignored.
func (fk *ForeignKeyBuilder) References(t TableRef, columns ...string) *ForeignKeyBuilder {
	fk.ref = t.Unaliased()
	fk.refColumns = append(fk.refColumns, columns...)
	return fk
}

// OnDelete sets the on delete action for this constraint.
// An empty action is omitted from the clause.
func (fk *ForeignKeyBuilder) OnDelete(action string) *ForeignKeyBuilder {
	fk.onDelete = action
	return fk
}

// OnUpdate sets the on update action for this constraint.
func (fk *ForeignKeyBuilder) OnUpdate(action string) *ForeignKeyBuilder {
	fk.onUpdate = action
	return fk
}

// Build implements the Expr interface.
func (fk *ForeignKeyBuilder) Build(b *Builder) {
	if fk.symbol != "" {
		b.WriteString("CONSTRAINT ").Ident(fk.symbol).Pad()
	}
	b.WriteString("FOREIGN KEY ")
	b.Nested(func(b *Builder) { b.IdentComma(fk.columns...) })
	b.WriteString(" REFERENCES ")
	fk.ref.buildName(b)
	b.Pad().Nested(func(b *Builder) { b.IdentComma(fk.refColumns...) })
	if fk.onDelete != "" {
		b.WriteString(" ON DELETE ").WriteString(fk.onDelete)
	}
	if fk.onUpdate != "" {
		b.WriteString(" ON UPDATE ").WriteString(fk.onUpdate)
	}
}

// Query returns query representation of a foreign key constraint.
func (fk *ForeignKeyBuilder) Query() (string, []any) {
	return Render("", fk)
}

// ColumnBuilder is a builder for column definition in table creation.
type ColumnBuilder struct {
	name string
	typ  string
	null bool
}

// ColumnDef returns a new ColumnBuilder with the given name and SQL type.
// Columns are NOT NULL unless Nullable is called.
func ColumnDef(name, typ string) *ColumnBuilder {
	return &ColumnBuilder{name: name, typ: typ}
}

// Nullable marks the column as nullable.
func (c *ColumnBuilder) Nullable() *ColumnBuilder {
	c.null = true
	return c
}

// Build implements the Expr interface.
func (c *ColumnBuilder) Build(b *Builder) {
	b.Ident(c.name).Pad().WriteString(c.typ)
	if c.null {
		b.WriteString(" NULL")
	} else {
		b.WriteString(" NOT NULL")
	}
}

// TableBuilder is a query builder for `CREATE TABLE` statement.
type TableBuilder struct {
	dialect     string
	table       TableRef
	exists      bool
	columns     []*ColumnBuilder
	primary     []string
	foreignKeys []*ForeignKeyBuilder
}

// CreateTable returns a query builder for the `CREATE TABLE` statement.
func CreateTable(t TableRef) *TableBuilder {
	return &TableBuilder{table: t.Unaliased()}
}

// SetDialect sets the dialect used to render the statement.
func (t *TableBuilder) SetDialect(dialect string) *TableBuilder {
	t.dialect = dialect
	return t
}

// IfNotExists appends the `IF NOT EXISTS` clause to the `CREATE TABLE` statement.
func (t *TableBuilder) IfNotExists() *TableBuilder {
	t.exists = true
	return t
}

// Columns appends a list of columns to the builder.
func (t *TableBuilder) Columns(columns ...*ColumnBuilder) *TableBuilder {
	t.columns = append(t.columns, columns...)
	return t
}

// PrimaryKey adds a column to the primary-key constraint in the statement.
func (t *TableBuilder) PrimaryKey(column ...string) *TableBuilder {
	t.primary = append(t.primary, column...)
	return t
}

// ForeignKeys adds a list of foreign-keys to the statement (without constraints).
func (t *TableBuilder) ForeignKeys(fks ...*ForeignKeyBuilder) *TableBuilder {
	t.foreignKeys = append(t.foreignKeys, fks...)
	return t
}

// Query returns query representation of a `CREATE TABLE` statement.
//
// CREATE TABLE [IF NOT EXISTS] name
//
//	(table definition)
func (t *TableBuilder) Query() (string, []any) {
	b := NewBuilder(t.dialect)
	b.WriteString("CREATE TABLE ")
	if t.exists {
		b.WriteString("IF NOT EXISTS ")
	}
	t.table.buildName(b)
	b.Nested(func(b *Builder) {
		n := 0
		sep := func() {
			if n > 0 {
				b.WriteString(", ")
			}
			n++
		}
		for _, c := range t.columns {
			sep()
			c.Build(b)
		}
		if len(t.primary) > 0 {
			sep()
			b.WriteString("PRIMARY KEY").Nested(func(b *Builder) { b.IdentComma(t.primary...) })
		}
		for _, fk := range t.foreignKeys {
			sep()
			fk.Build(b)
		}
	})
	return b.Query()
}

// AlterTableBuilder is a query builder for `ALTER TABLE` statement.
type AlterTableBuilder struct {
	dialect string
	table   TableRef
	fks     []*ForeignKeyBuilder
}

// AlterTable returns a query builder for the `ALTER TABLE` statement.
func AlterTable(t TableRef) *AlterTableBuilder {
	return &AlterTableBuilder{table: t.Unaliased()}
}

// SetDialect sets the dialect used to render the statement.
func (t *AlterTableBuilder) SetDialect(dialect string) *AlterTableBuilder {
	t.dialect = dialect
	return t
}

// AddForeignKey adds a foreign key constraint to the `ALTER TABLE` statement.
func (t *AlterTableBuilder) AddForeignKey(fk *ForeignKeyBuilder) *AlterTableBuilder {
	t.fks = append(t.fks, fk)
	return t
}

// Query returns query representation of the `ALTER TABLE` statement.
func (t *AlterTableBuilder) Query() (string, []any) {
	b := NewBuilder(t.dialect)
	b.WriteString("ALTER TABLE ")
	t.table.buildName(b)
	for i, fk := range t.fks {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(" ADD ")
		fk.Build(b)
	}
	return b.Query()
}
