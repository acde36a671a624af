// Package schema assembles the tables and foreign keys of a relation
// registry and migrates databases to them with Atlas.
package schema

import (
	"fmt"
	"slices"

	"github.com/syssam/relgraph"
	"github.com/syssam/relgraph/dialect/sqlschema"
	"github.com/syssam/relgraph/relation"
)

// Table is the SQL table of an entity.
type Table struct {
	Name        string
	Schema      string
	Columns     []*Column
	PrimaryKey  []*Column
	ForeignKeys []*ForeignKey

	columns map[string]*Column
}

// NewTable returns a new table with the given name.
func NewTable(name string) *Table {
	return &Table{Name: name, columns: make(map[string]*Column)}
}

// SetSchema sets the database schema of the table.
func (t *Table) SetSchema(name string) *Table {
	t.Schema = name
	return t
}

// AddColumn adds a column to the table.
func (t *Table) AddColumn(c *Column) *Table {
	if t.columns == nil {
		t.columns = make(map[string]*Column)
	}
	t.columns[c.Name] = c
	t.Columns = append(t.Columns, c)
	return t
}

// AddPrimary adds a column to the primary key.
func (t *Table) AddPrimary(c *Column) *Table {
	if _, ok := t.Column(c.Name); !ok {
		t.AddColumn(c)
	}
	t.PrimaryKey = append(t.PrimaryKey, c)
	return t
}

// AddForeignKey adds a foreign key to the table.
func (t *Table) AddForeignKey(fk *ForeignKey) *Table {
	t.ForeignKeys = append(t.ForeignKeys, fk)
	return t
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	if t.columns == nil {
		for _, c := range t.Columns {
			if c.Name == name {
				return c, true
			}
		}
		return nil, false
	}
	c, ok := t.columns[name]
	return c, ok
}

// IsPrimary reports whether cols are exactly the primary key columns.
func (t *Table) IsPrimary(cols []*Column) bool {
	return slices.Equal(columnNames(t.PrimaryKey), columnNames(cols))
}

// Column is a table column.
type Column struct {
	Name       string
	Type       relation.ColumnType
	Nullable   bool
	SchemaType string // overrides the dialect type
	Size       int64
}

// ForeignKey is a foreign key constraint of a table.
type ForeignKey struct {
	Symbol     string
	Columns    []*Column
	RefTable   *Table
	RefColumns []*Column
	OnDelete   sqlschema.CascadeAction
	OnUpdate   sqlschema.CascadeAction
}

func columnNames(cols []*Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// NewColumn converts an entity column.
func NewColumn(c relation.Column) *Column {
	return &Column{
		Name:       c.Name,
		Type:       c.Type,
		Nullable:   c.Nullable,
		SchemaType: c.Annotation.ColumnType,
		Size:       c.Annotation.Size,
	}
}

// Tables assembles the tables of every entity in reg and attaches the
// foreign keys of its owner-side relations. The tables are returned in
// dependency order (see Sort). Unresolvable references and failed checks
// of Validate are returned as a single error.
func Tables(reg *relation.Registry) ([]*Table, error) {
	var (
		tables []*Table
		byName = make(map[string]*Table)
		errs   []error
	)
	for _, e := range reg.Entities() {
		if !e.HasColumns() {
			errs = append(errs, relgraph.NewValidationError(e.Table().Name(), fmt.Errorf("entity %s declares no columns", e.Name())))
			continue
		}
		t := NewTable(e.Table().Name()).SetSchema(e.Table().Schema())
		for _, c := range e.Columns() {
			t.AddColumn(NewColumn(c))
		}
		for _, name := range e.PrimaryKey().Columns() {
			c, _ := t.Column(name)
			t.PrimaryKey = append(t.PrimaryKey, c)
		}
		tables = append(tables, t)
		byName[t.Name] = t
	}
	for _, fk := range reg.ForeignKeys() {
		t, ok := byName[fk.FromTable.Name()]
		if !ok {
			errs = append(errs, relgraph.NewValidationError(fk.Name, fmt.Errorf("table %q is not declared", fk.FromTable.Name())))
			continue
		}
		ref, ok := byName[fk.ToTable.Name()]
		if !ok {
			errs = append(errs, relgraph.NewValidationError(fk.Name, fmt.Errorf("referenced table %q is not declared", fk.ToTable.Name())))
			continue
		}
		cols, err := lookup(t, fk.FromColumns)
		if err != nil {
			errs = append(errs, relgraph.NewValidationError(fk.Name, err))
			continue
		}
		refCols, err := lookup(ref, fk.ToColumns)
		if err != nil {
			errs = append(errs, relgraph.NewValidationError(fk.Name, err))
			continue
		}
		t.AddForeignKey(&ForeignKey{
			Symbol:     fk.Name,
			Columns:    cols,
			RefTable:   ref,
			RefColumns: refCols,
			OnDelete:   fk.OnDelete,
			OnUpdate:   fk.OnUpdate,
		})
	}
	if err := relgraph.NewAggregateError(errs...); err != nil {
		return nil, err
	}
	if err := Validate(tables).Err(); err != nil {
		return nil, err
	}
	return Sort(tables), nil
}

func lookup(t *Table, names []string) ([]*Column, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, fmt.Errorf("column %q is not declared in table %q", n, t.Name)
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// Sort orders tables so that referenced tables come before the tables
// referencing them. Self references are ignored, and tables on a cycle
// keep their relative order after every acyclic table.
func Sort(tables []*Table) []*Table {
	var (
		sorted  = make([]*Table, 0, len(tables))
		visited = make(map[*Table]bool, len(tables))
		deps    = make(map[*Table]int, len(tables))
		in      = make(map[*Table]bool, len(tables))
	)
	for _, t := range tables {
		in[t] = true
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			if fk.RefTable != t && in[fk.RefTable] {
				deps[t]++
			}
		}
	}
	for len(sorted) < len(tables) {
		progress := false
		for _, t := range tables {
			if visited[t] || deps[t] > 0 {
				continue
			}
			visited[t] = true
			sorted = append(sorted, t)
			progress = true
			for _, u := range tables {
				for _, fk := range u.ForeignKeys {
					if fk.RefTable == t && u != t {
						deps[u]--
					}
				}
			}
		}
		if !progress {
			for _, t := range tables {
				if !visited[t] {
					visited[t] = true
					sorted = append(sorted, t)
				}
			}
		}
	}
	return sorted
}
