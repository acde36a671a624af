package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/relgraph/dialect"
)

// ConditionType selects how the expressions of a Condition are combined.
type ConditionType int

const (
	// All combines expressions with AND.
	All ConditionType = iota
	// Any combines expressions with OR.
	Any
)

// String returns the lower-case name of the condition type.
func (t ConditionType) String() string {
	switch t {
	case All:
		return "all"
	case Any:
		return "any"
	default:
		return fmt.Sprintf("ConditionType(%d)", int(t))
	}
}

// Op returns the SQL operator joining the expressions.
func (t ConditionType) Op() string {
	if t == Any {
		return " OR "
	}
	return " AND "
}

// ParseConditionType parses "all"/"and" and "any"/"or" (case-insensitive).
// The empty string parses as All.
func ParseConditionType(s string) (ConditionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "and":
		return All, nil
	case "any", "or":
		return Any, nil
	default:
		return All, fmt.Errorf("dialect/sql: unknown condition type %q", s)
	}
}

// Condition is a list of expressions combined with AND (All) or OR (Any).
// Conditions nest: a Condition is itself an Expr.
type Condition struct {
	typ    ConditionType
	exprs  []Expr
	negate bool
}

// NewCondition returns an empty condition of the given type.
func NewCondition(t ConditionType, exprs ...Expr) *Condition {
	c := &Condition{typ: t}
	for _, e := range exprs {
		c.Add(e)
	}
	return c
}

// And returns an All condition holding exprs.
func And(exprs ...Expr) *Condition {
	return NewCondition(All, exprs...)
}

// Or returns an Any condition holding exprs.
func Or(exprs ...Expr) *Condition {
	return NewCondition(Any, exprs...)
}

// Add appends e to the condition. Nil expressions and empty,
// non-negated conditions are skipped.
func (c *Condition) Add(e Expr) *Condition {
	if e == nil {
		return c
	}
	if sub, ok := e.(*Condition); ok {
		if sub == nil || (len(sub.exprs) == 0 && !sub.negate) {
			return c
		}
	}
	c.exprs = append(c.exprs, e)
	return c
}

// Not returns a negated copy of the condition.
func (c *Condition) Not() *Condition {
	return &Condition{typ: c.typ, exprs: c.Exprs(), negate: !c.negate}
}

// Type returns the condition type.
func (c *Condition) Type() ConditionType { return c.typ }

// Len returns the number of direct expressions.
func (c *Condition) Len() int { return len(c.exprs) }

// IsNegated reports whether the condition renders as NOT (...).
func (c *Condition) IsNegated() bool { return c.negate }

// Exprs returns a copy of the direct expressions.
func (c *Condition) Exprs() []Expr {
	return append([]Expr(nil), c.exprs...)
}

// Build implements the Expr interface.
//
// An empty All renders as 1 = 1 and an empty Any as 1 = 0. Nested
// conditions with more than one expression are parenthesized when their
// parent combines more than one expression.
func (c *Condition) Build(b *Builder) {
	if c.negate {
		b.WriteString("NOT ")
		b.Nested(c.build)
		return
	}
	c.build(b)
}

func (c *Condition) build(b *Builder) {
	switch {
	case len(c.exprs) == 0 && c.typ == Any:
		b.WriteString("1 = 0")
		return
	case len(c.exprs) == 0:
		b.WriteString("1 = 1")
		return
	}
	for i, e := range c.exprs {
		if i > 0 {
			b.WriteString(c.typ.Op())
		}
		if len(c.exprs) > 1 && compound(e) {
			b.Nested(e.Build)
		} else {
			e.Build(b)
		}
	}
}

// compound reports whether e must be parenthesized inside a list.
func compound(e Expr) bool {
	switch e := e.(type) {
	case *Condition:
		return !e.negate && len(e.exprs) > 1
	case *raw:
		return true
	}
	return false
}

// Query renders the condition with the default dialect.
func (c *Condition) Query() (string, []any) {
	return Render("", c)
}

// String renders the condition with arguments shown in place of placeholders.
func (c *Condition) String() string {
	return Inline("", c)
}

// Inline renders e and substitutes each placeholder ('?', or '$n' for
// Postgres) by its formatted argument. Quoted identifiers are left as is.
// It is meant for debug output only.
func Inline(dialectName string, e Expr) string {
	query, args := Render(dialectName, e)
	if len(args) == 0 {
		return query
	}
	var (
		sb    strings.Builder
		next  int
		quote byte
	)
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '`' || c == '\'':
			quote = c
		case c == '?' && dialectName != dialect.Postgres && next < len(args):
			writeArg(&sb, args[next])
			next++
			continue
		case c == '$' && dialectName == dialect.Postgres:
			j := i + 1
			for j < len(query) && query[j] >= '0' && query[j] <= '9' {
				j++
			}
			if n, err := strconv.Atoi(query[i+1 : j]); err == nil && n >= 1 && n <= len(args) {
				writeArg(&sb, args[n-1])
				i = j - 1
				continue
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func writeArg(sb *strings.Builder, arg any) {
	if s, ok := arg.(string); ok {
		sb.WriteString("'" + strings.ReplaceAll(s, "'", "''") + "'")
		return
	}
	fmt.Fprintf(sb, "%v", arg)
}
