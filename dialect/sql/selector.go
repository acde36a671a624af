package sql

import (
	"fmt"
	"strconv"
	"strings"
)

// JoinType is the SQL join operator.
type JoinType string

// Join types.
const (
	InnerJoin JoinType = "INNER JOIN"
	LeftJoin  JoinType = "LEFT JOIN"
	RightJoin JoinType = "RIGHT JOIN"
	FullJoin  JoinType = "FULL JOIN"
)

// String returns the SQL keyword of the join.
func (j JoinType) String() string { return string(j) }

// ParseJoinType parses "inner", "left", "right" or "full" (case-insensitive).
func ParseJoinType(s string) (JoinType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inner":
		return InnerJoin, nil
	case "left":
		return LeftJoin, nil
	case "right":
		return RightJoin, nil
	case "full":
		return FullJoin, nil
	default:
		return "", fmt.Errorf("dialect/sql: unknown join type %q", s)
	}
}

// JoinClause is a single join of a Selector.
type JoinClause struct {
	Type  JoinType
	Table TableRef
	On    Expr
}

// Selector is a builder for the `SELECT` statement.
type Selector struct {
	dialect string
	columns []Expr
	from    TableRef
	joins   []JoinClause
	where   *Condition
	order   []Expr
	limit   *int
}

// Select returns a new selector for the `SELECT` statement.
// No columns selects every column.
func Select(columns ...Expr) *Selector {
	return &Selector{columns: columns}
}

// Star selects every column of the given table (or alias).
func Star(table string) Expr {
	return P(func(b *Builder) {
		if table != "" {
			b.Ident(table).WriteByte('.')
		}
		b.WriteByte('*')
	})
}

// Columns returns the named columns qualified by table.
func Columns(table string, names ...string) []Expr {
	cols := make([]Expr, len(names))
	for i, n := range names {
		cols[i] = C(table, n)
	}
	return cols
}

// SetDialect sets the dialect used to render the statement.
func (s *Selector) SetDialect(dialect string) *Selector {
	s.dialect = dialect
	return s
}

// Dialect returns the dialect of the selector.
func (s *Selector) Dialect() string { return s.dialect }

// Select replaces the selected columns.
func (s *Selector) Select(columns ...Expr) *Selector {
	s.columns = columns
	return s
}

// AppendSelect appends columns to the selection.
func (s *Selector) AppendSelect(columns ...Expr) *Selector {
	s.columns = append(s.columns, columns...)
	return s
}

// From sets the source table of the selector.
func (s *Selector) From(t TableRef) *Selector {
	s.from = t
	return s
}

// Table returns the source table of the selector.
func (s *Selector) Table() TableRef { return s.from }

// Join appends a join of table t on the given condition.
func (s *Selector) Join(typ JoinType, t TableRef, on Expr) *Selector {
	s.joins = append(s.joins, JoinClause{Type: typ, Table: t, On: on})
	return s
}

// Joins returns a copy of the join clauses.
func (s *Selector) Joins() []JoinClause {
	return append([]JoinClause(nil), s.joins...)
}

// Where appends a predicate to the WHERE clause. Multiple calls are ANDed.
func (s *Selector) Where(e Expr) *Selector {
	if s.where == nil {
		s.where = And()
	}
	s.where.Add(e)
	return s
}

// OrderBy appends ordering expressions.
func (s *Selector) OrderBy(exprs ...Expr) *Selector {
	s.order = append(s.order, exprs...)
	return s
}

// Desc returns a descending ordering expression for c.
func Desc(c Column) Expr {
	return P(func(b *Builder) {
		b.Build(c).WriteString(" DESC")
	})
}

// Limit adds the `LIMIT` clause to the `SELECT` statement.
func (s *Selector) Limit(limit int) *Selector {
	s.limit = &limit
	return s
}

// Query returns query representation of a `SELECT` statement.
func (s *Selector) Query() (string, []any) {
	b := NewBuilder(s.dialect)
	s.Build(b)
	return b.Query()
}

// Build implements the Expr interface, so a selector can be used as a sub-query.
func (s *Selector) Build(b *Builder) {
	b.WriteString("SELECT ")
	if len(s.columns) == 0 {
		b.WriteByte('*')
	}
	for i, c := range s.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		c.Build(b)
	}
	b.WriteString(" FROM ")
	s.from.Build(b)
	for _, j := range s.joins {
		b.Pad().WriteString(j.Type.String()).Pad()
		j.Table.Build(b)
		if j.On != nil {
			b.WriteString(" ON ")
			j.On.Build(b)
		}
	}
	if s.where != nil && s.where.Len() > 0 {
		b.WriteString(" WHERE ")
		s.where.Build(b)
	}
	for i, o := range s.order {
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}
		o.Build(b)
	}
	if s.limit != nil {
		b.WriteString(" LIMIT ").WriteString(strconv.Itoa(*s.limit))
	}
}

// String returns the statement with inlined arguments. It is meant for debug output only.
func (s *Selector) String() string {
	return Inline(s.dialect, s)
}
