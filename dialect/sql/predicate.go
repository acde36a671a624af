package sql

// Column is a column reference optionally qualified by a table name or alias.
// It is an Expr and the left-hand side of the column predicates below.
//
// Usage:
//
//	sql.C("cake", "name").Like("%cheese%")      // "cake"."name" LIKE ?
//	sql.C("r0", "id").EQ(sql.C("fruit", "cake_id")) // "r0"."id" = "fruit"."cake_id"
type Column struct {
	table string
	name  string
}

// C returns a column reference. An empty table leaves the column unqualified.
func C(table, name string) Column {
	return Column{table: table, name: name}
}

// Table returns the qualifier of the column.
func (c Column) Table() string { return c.table }

// Name returns the column name.
func (c Column) Name() string { return c.name }

// Build implements the Expr interface.
func (c Column) Build(b *Builder) {
	b.QualifiedIdent(c.table, c.name)
}

// EQ returns a predicate that checks if the column equals v.
// v is either an Expr (another column) or a value bound as an argument.
func (c Column) EQ(v any) Expr { return c.cmp("=", v) }

// NEQ returns a predicate that checks if the column does not equal v.
func (c Column) NEQ(v any) Expr { return c.cmp("<>", v) }

// GT returns a predicate that checks if the column is greater than v.
func (c Column) GT(v any) Expr { return c.cmp(">", v) }

// GTE returns a predicate that checks if the column is greater than or equal to v.
func (c Column) GTE(v any) Expr { return c.cmp(">=", v) }

// LT returns a predicate that checks if the column is less than v.
func (c Column) LT(v any) Expr { return c.cmp("<", v) }

// LTE returns a predicate that checks if the column is less than or equal to v.
func (c Column) LTE(v any) Expr { return c.cmp("<=", v) }

// Like returns a predicate that matches the column against pattern.
func (c Column) Like(pattern string) Expr { return c.cmp("LIKE", pattern) }

// In returns a predicate that checks if the column value is in vs.
// An empty list never matches.
func (c Column) In(vs ...any) Expr { return c.in("IN", vs) }

// NotIn returns a predicate that checks if the column value is not in vs.
// An empty list always matches.
func (c Column) NotIn(vs ...any) Expr { return c.in("NOT IN", vs) }

// IsNull returns a predicate that checks if the column is NULL.
func (c Column) IsNull() Expr {
	return P(func(b *Builder) {
		b.Build(c).WriteString(" IS NULL")
	})
}

// NotNull returns a predicate that checks if the column is not NULL.
func (c Column) NotNull() Expr {
	return P(func(b *Builder) {
		b.Build(c).WriteString(" IS NOT NULL")
	})
}

func (c Column) cmp(op string, v any) Expr {
	return P(func(b *Builder) {
		b.Build(c).Pad().WriteString(op).Pad()
		operand(b, v)
	})
}

func (c Column) in(op string, vs []any) Expr {
	return P(func(b *Builder) {
		if len(vs) == 0 {
			if op == "IN" {
				b.WriteString("1 = 0")
			} else {
				b.WriteString("1 = 1")
			}
			return
		}
		b.Build(c).Pad().WriteString(op).Pad()
		b.Nested(func(b *Builder) {
			for i, v := range vs {
				if i > 0 {
					b.WriteString(", ")
				}
				operand(b, v)
			}
		})
	})
}

// operand writes v as an expression when it is one, or as a bound argument.
func operand(b *Builder, v any) {
	if e, ok := v.(Expr); ok {
		e.Build(b)
		return
	}
	b.Arg(v)
}

// ColumnsEQ returns a predicate that checks two columns for equality.
func ColumnsEQ(left, right Column) Expr {
	return left.EQ(right)
}

// Predicate is an Expr backed by a build function.
type Predicate func(*Builder)

// P returns an Expr backed by the given build function.
func P(fn func(*Builder)) Predicate {
	return Predicate(fn)
}

// Build implements the Expr interface.
func (p Predicate) Build(b *Builder) {
	if p != nil {
		p(b)
	}
}

// raw is a verbatim SQL fragment.
type raw struct {
	sql  string
	args []any
}

// Raw returns a verbatim SQL fragment. Each '?' in s is replaced by the
// dialect placeholder of the matching argument.
func Raw(s string, args ...any) Expr {
	return &raw{sql: s, args: args}
}

// Build implements the Expr interface.
func (r *raw) Build(b *Builder) {
	i := 0
	for j := 0; j < len(r.sql); j++ {
		if r.sql[j] == '?' && i < len(r.args) {
			b.Arg(r.args[i])
			i++
			continue
		}
		b.WriteByte(r.sql[j])
	}
}

// Not returns the negation of e.
func Not(e Expr) Expr {
	if c, ok := e.(*Condition); ok {
		return c.Not()
	}
	return P(func(b *Builder) {
		b.WriteString("NOT ")
		b.Nested(e.Build)
	})
}
