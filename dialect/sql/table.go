package sql

// TableRef identifies a table in a query: its name, an optional schema
// and an optional alias. TableRef is an immutable value; the modifiers
// return copies.
type TableRef struct {
	name   string
	schema string
	alias  string
}

// Table returns a reference to the named table.
func Table(name string) TableRef {
	return TableRef{name: name}
}

// As returns a copy of the reference aliased as alias.
func (t TableRef) As(alias string) TableRef {
	t.alias = alias
	return t
}

// WithSchema returns a copy of the reference qualified by schema.
func (t TableRef) WithSchema(schema string) TableRef {
	t.schema = schema
	return t
}

// Unaliased returns a copy of the reference without its alias.
func (t TableRef) Unaliased() TableRef {
	t.alias = ""
	return t
}

// Name returns the table name.
func (t TableRef) Name() string { return t.name }

// Schema returns the schema qualifier, if any.
func (t TableRef) Schema() string { return t.schema }

// Alias returns the alias, if any.
func (t TableRef) Alias() string { return t.alias }

// IsZero reports whether the reference names no table.
func (t TableRef) IsZero() bool { return t.name == "" }

// Ref returns the identity columns of this table are qualified by in a
// query: the alias when set, otherwise the table name.
func (t TableRef) Ref() string {
	if t.alias != "" {
		return t.alias
	}
	return t.name
}

// C returns a column of the table, qualified by Ref.
func (t TableRef) C(column string) Column {
	return C(t.Ref(), column)
}

// Build writes the table as it appears in a FROM or JOIN clause.
func (t TableRef) Build(b *Builder) {
	t.buildName(b)
	if t.alias != "" {
		b.WriteString(" AS ").Ident(t.alias)
	}
}

func (t TableRef) buildName(b *Builder) {
	if t.schema != "" {
		b.Ident(t.schema).WriteByte('.')
	}
	b.Ident(t.name)
}

// String returns a debug representation of the reference.
func (t TableRef) String() string {
	s := t.name
	if t.schema != "" {
		s = t.schema + "." + s
	}
	if t.alias != "" {
		s += " AS " + t.alias
	}
	return s
}
