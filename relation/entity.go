package relation

import (
	"github.com/go-openapi/inflect"

	"github.com/syssam/relgraph"
	"github.com/syssam/relgraph/dialect/sql"
	"github.com/syssam/relgraph/dialect/sqlschema"
)

// ColumnType is the logical type of a column. It is mapped to a concrete
// database type when the schema is assembled.
type ColumnType string

// Column types.
const (
	TypeInt    ColumnType = "int"
	TypeInt64  ColumnType = "int64"
	TypeFloat  ColumnType = "float"
	TypeString ColumnType = "string"
	TypeBool   ColumnType = "bool"
	TypeTime   ColumnType = "time"
	TypeUUID   ColumnType = "uuid"
)

// Valid reports whether t is a known column type.
func (t ColumnType) Valid() bool {
	switch t {
	case TypeInt, TypeInt64, TypeFloat, TypeString, TypeBool, TypeTime, TypeUUID:
		return true
	}
	return false
}

// Column describes a column of an entity table.
type Column struct {
	Name       string
	Type       ColumnType
	Nullable   bool
	Annotation sqlschema.Annotation
}

// Int returns an int column.
func Int(name string) Column { return Column{Name: name, Type: TypeInt} }

// Int64 returns an int64 column.
func Int64(name string) Column { return Column{Name: name, Type: TypeInt64} }

// Float returns a float column.
func Float(name string) Column { return Column{Name: name, Type: TypeFloat} }

// String returns a string column.
func String(name string) Column { return Column{Name: name, Type: TypeString} }

// Bool returns a bool column.
func Bool(name string) Column { return Column{Name: name, Type: TypeBool} }

// Time returns a timestamp column.
func Time(name string) Column { return Column{Name: name, Type: TypeTime} }

// UUID returns a UUID column.
func UUID(name string) Column { return Column{Name: name, Type: TypeUUID} }

// Optional returns a nullable copy of the column.
func (c Column) Optional() Column {
	c.Nullable = true
	return c
}

// Annotations returns a copy of the column with the annotations merged in.
func (c Column) Annotations(annotations ...sqlschema.Annotation) Column {
	c.Annotation = sqlschema.Merge(append([]sqlschema.Annotation{c.Annotation}, annotations...)...)
	return c
}

// Entity describes a table taking part in relations: its name, its table
// and, optionally, its columns and primary key. Relations declared on an
// entity that lists columns are checked against them.
type Entity struct {
	name       string
	table      string
	plural     bool
	columns    []Column
	index      map[string]int
	primary    []string
	annotation sqlschema.Annotation
}

// EntityOption configures an Entity.
type EntityOption func(*Entity)

// Columns appends columns to the entity.
func Columns(cols ...Column) EntityOption {
	return func(e *Entity) {
		e.columns = append(e.columns, cols...)
	}
}

// PrimaryKey sets the primary key columns. It defaults to "id" when the
// entity declares such a column.
func PrimaryKey(cols ...string) EntityOption {
	return func(e *Entity) {
		e.primary = append([]string(nil), cols...)
	}
}

// TableName overrides the table name.
func TableName(name string) EntityOption {
	return func(e *Entity) {
		e.table = name
	}
}

// PluralTable derives the table name with inflect.Tableize
// ("CakeFilling" becomes "cake_fillings").
func PluralTable() EntityOption {
	return func(e *Entity) {
		e.plural = true
	}
}

// Annotations attaches SQL annotations to the entity. Table and Schema
// annotations override the table name and schema.
func Annotations(annotations ...sqlschema.Annotation) EntityOption {
	return func(e *Entity) {
		e.annotation = sqlschema.Merge(append([]sqlschema.Annotation{e.annotation}, annotations...)...)
	}
}

// NewEntity returns a new entity. The table name defaults to the snake-cased
// name ("CakeFilling" becomes "cake_filling"). It panics with a
// *relgraph.DeclarationError on duplicate columns or an unknown primary key column.
func NewEntity(name string, opts ...EntityOption) *Entity {
	if name == "" {
		panic(relgraph.NewDeclarationError("", "entity name is empty"))
	}
	e := &Entity{name: name}
	for _, opt := range opts {
		opt(e)
	}
	switch {
	case e.annotation.Table != "":
		e.table = e.annotation.Table
	case e.table != "":
	case e.plural:
		e.table = inflect.Tableize(name)
	default:
		e.table = inflect.Underscore(name)
	}
	e.index = make(map[string]int, len(e.columns))
	for i, c := range e.columns {
		if c.Name == "" {
			panic(relgraph.NewDeclarationError(name, "column %d has no name", i))
		}
		if !c.Type.Valid() {
			panic(relgraph.NewDeclarationError(name, "column %q has unknown type %q", c.Name, c.Type))
		}
		if _, ok := e.index[c.Name]; ok {
			panic(relgraph.NewDeclarationError(name, "duplicate column %q", c.Name))
		}
		e.index[c.Name] = i
	}
	if len(e.primary) == 0 {
		if _, ok := e.index["id"]; ok {
			e.primary = []string{"id"}
		}
	}
	for _, p := range e.primary {
		if !e.HasColumn(p) {
			panic(relgraph.NewDeclarationError(name, "primary key column %q is not declared", p))
		}
	}
	return e
}

// Name returns the entity name.
func (e *Entity) Name() string { return e.name }

// Table returns an unaliased reference to the entity table.
func (e *Entity) Table() sql.TableRef {
	return sql.Table(e.table).WithSchema(e.annotation.Schema)
}

// Annotation returns the merged SQL annotation of the entity.
func (e *Entity) Annotation() sqlschema.Annotation { return e.annotation }

// Columns returns a copy of the declared columns.
func (e *Entity) Columns() []Column {
	return append([]Column(nil), e.columns...)
}

// ColumnNames returns the declared column names in order.
func (e *Entity) ColumnNames() []string {
	names := make([]string, len(e.columns))
	for i, c := range e.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (e *Entity) Column(name string) (Column, bool) {
	i, ok := e.index[name]
	if !ok {
		return Column{}, false
	}
	return e.columns[i], true
}

// HasColumns reports whether the entity declares its columns.
func (e *Entity) HasColumns() bool { return len(e.columns) > 0 }

// HasColumn reports whether the entity declares the named column.
// Entities without declared columns accept every name.
func (e *Entity) HasColumn(name string) bool {
	if !e.HasColumns() {
		return true
	}
	_, ok := e.index[name]
	return ok
}

// PrimaryKey returns the primary key identity. It is zero when the entity
// declares none.
func (e *Entity) PrimaryKey() Identity {
	return Many(e.primary...)
}

// String returns the entity name.
func (e *Entity) String() string { return e.name }
