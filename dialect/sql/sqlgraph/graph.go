// Package sqlgraph compiles relation traversals into SQL queries.
//
// A Traversal is rooted at one entity table and grows by joining along
// relation definitions. FindRelated and FindLinked root the traversal at
// the target entity and join back to the source, so the rows selected are
// the related ones:
//
//	// SELECT "fruit"."id", "fruit"."name", "fruit"."cake_id" FROM "fruit"
//	//   INNER JOIN "cake" ON "cake"."id" = "fruit"."cake_id" WHERE "cake"."id" = ?
//	sqlgraph.FindRelated(cakeToFruit, sql.InnerJoin).Filter(cake.PrimaryKey(), 1)
package sqlgraph

import (
	"context"
	"fmt"
	"strconv"

	"github.com/syssam/relgraph"
	"github.com/syssam/relgraph/dialect"
	"github.com/syssam/relgraph/dialect/sql"
	"github.com/syssam/relgraph/relation"
)

// Traversal is a SELECT statement over a root table and the tables joined to it.
type Traversal struct {
	sel     *sql.Selector
	tail    sql.TableRef
	refs    map[string]string // table name to the reference of its last occurrence
	aliases map[string]bool   // aliases in use
	n       int
}

// From starts a traversal selecting the columns of e.
func From(e *relation.Entity) *Traversal {
	t := e.Table()
	var cols []sql.Expr
	if e.HasColumns() {
		cols = sql.Columns(t.Ref(), e.ColumnNames()...)
	} else {
		cols = []sql.Expr{sql.Star(t.Ref())}
	}
	tr := &Traversal{sel: sql.Select(cols...).From(t), refs: make(map[string]string), aliases: make(map[string]bool)}
	tr.add(t)
	return tr
}

// SetDialect sets the dialect the traversal is rendered with.
func (t *Traversal) SetDialect(dialect string) *Traversal {
	t.sel.SetDialect(dialect)
	return t
}

// Dialect returns the dialect of the traversal.
func (t *Traversal) Dialect() string { return t.sel.Dialect() }

// Tail returns the table joined last, or the root table.
func (t *Traversal) Tail() sql.TableRef { return t.tail }

// Selector returns the underlying selector.
func (t *Traversal) Selector() *sql.Selector { return t.sel }

// Join joins the target table of d. The source table of d must already
// be part of the traversal; the target is aliased (r0, r1, ...) when its
// table is already joined. It panics with a *relgraph.DeclarationError
// otherwise.
func (t *Traversal) Join(jt sql.JoinType, d relation.Def) *Traversal {
	left := t.resolve(d, d.FromTable)
	to := t.fresh(d.ToTable)
	t.sel.Join(jt, to, d.JoinCondition(left, to.Ref()))
	t.add(to)
	return t
}

// JoinAs joins the target table of d under alias.
func (t *Traversal) JoinAs(jt sql.JoinType, d relation.Def, alias string) *Traversal {
	return t.Join(jt, d.ToAlias(alias))
}

// JoinRev joins the source table of d, walking d backwards from its
// target, which must already be part of the traversal. The join condition
// is the same as the one of Join.
func (t *Traversal) JoinRev(jt sql.JoinType, d relation.Def) *Traversal {
	right := t.resolve(d, d.ToTable)
	from := t.fresh(d.FromTable)
	t.sel.Join(jt, from, d.JoinCondition(from.Ref(), right))
	t.add(from)
	return t
}

// Related joins the tables on the path of r, from its source to its target.
func (t *Traversal) Related(jt sql.JoinType, r relation.Related) *Traversal {
	for _, d := range r.Path() {
		t.Join(jt, d)
	}
	return t
}

// Linked joins every hop of l under a fresh alias (r0, r1, ...). The
// source table of l must already be part of the traversal.
func (t *Traversal) Linked(jt sql.JoinType, l relation.Linked) *Traversal {
	for i, hop := range l.Path() {
		left := t.tail.Ref()
		if i == 0 {
			left = t.resolve(hop, hop.FromTable)
		}
		to := hop.ToTable.As(t.nextAlias())
		t.sel.Join(jt, to, hop.JoinCondition(left, to.Ref()))
		t.add(to)
	}
	return t
}

// resolve returns the reference tbl is joined under. The tail wins over
// earlier occurrences of the same table.
func (t *Traversal) resolve(d relation.Def, tbl sql.TableRef) string {
	subject := d.FromTable.Name() + " -> " + d.ToTable.Name()
	if alias := tbl.Alias(); alias != "" {
		if !t.aliases[alias] {
			panic(relgraph.NewDeclarationError(subject, "alias %q is not part of the traversal", alias))
		}
		return alias
	}
	if t.tail.Name() == tbl.Name() {
		return t.tail.Ref()
	}
	ref, ok := t.refs[tbl.Name()]
	if !ok {
		panic(relgraph.NewDeclarationError(subject, "table %q is not part of the traversal", tbl.Name()))
	}
	return ref
}

// fresh aliases tbl when its table is already part of the traversal.
func (t *Traversal) fresh(tbl sql.TableRef) sql.TableRef {
	if _, ok := t.refs[tbl.Name()]; ok && tbl.Alias() == "" {
		return tbl.As(t.nextAlias())
	}
	return tbl
}

func (t *Traversal) add(tbl sql.TableRef) {
	t.refs[tbl.Name()] = tbl.Ref()
	if tbl.Alias() != "" {
		t.aliases[tbl.Alias()] = true
	}
	t.tail = tbl
}

func (t *Traversal) nextAlias() string {
	alias := "r" + strconv.Itoa(t.n)
	t.n++
	return alias
}

// Where adds a predicate to the WHERE clause.
func (t *Traversal) Where(e sql.Expr) *Traversal {
	t.sel.Where(e)
	return t
}

// Filter restricts the tail table to the rows whose key columns equal
// values. It panics with a *relgraph.DeclarationError if the number of
// values does not match the key.
func (t *Traversal) Filter(key relation.Identity, values ...any) *Traversal {
	cols := key.Columns()
	if len(cols) == 0 || len(cols) != len(values) {
		panic(relgraph.NewDeclarationError(t.tail.Name(), "cannot filter %d key columns by %d values", len(cols), len(values)))
	}
	ref := t.tail.Ref()
	for i, c := range cols {
		t.sel.Where(sql.C(ref, c).EQ(values[i]))
	}
	return t
}

// Query renders the traversal.
func (t *Traversal) Query() (string, []any) { return t.sel.Query() }

// String renders the traversal with inlined arguments.
func (t *Traversal) String() string { return t.sel.String() }

// All runs the traversal on drv and returns the selected rows. The
// traversal is rendered with the dialect of drv when it implements
// dialect.Driver.
func (t *Traversal) All(ctx context.Context, drv dialect.ExecQuerier) ([]map[string]any, error) {
	if d, ok := drv.(dialect.Driver); ok {
		t.SetDialect(d.Dialect())
	}
	rows, err := sql.QuerySelector(ctx, drv, t.sel)
	if err != nil {
		return nil, fmt.Errorf("sqlgraph: query %s: %w", t.sel.Table().Name(), err)
	}
	return rows, nil
}

// FindRelated returns a traversal selecting the target rows of r, joined
// back to its source. The source table (or junction and source tables) are
// joined with their plain names unless the table is already part of the
// query, as for self references; the tail is the source table.
func FindRelated(r relation.Related, jt sql.JoinType) *Traversal {
	t := From(r.To())
	path := r.Path()
	for i := len(path) - 1; i >= 0; i-- {
		t.JoinRev(jt, path[i])
	}
	return t
}

// FindLinked returns a traversal selecting the target rows of l, joined
// back along its hops in reverse. Hop tables are aliased r0, r1, ... in
// join order, so the same table may appear on the path more than once;
// the tail is the aliased source table.
func FindLinked(l relation.Linked, jt sql.JoinType) *Traversal {
	t := From(l.To())
	path := l.Path()
	for i := len(path) - 1; i >= 0; i-- {
		hop := path[i]
		right := hop.ToTable.Ref()
		if i < len(path)-1 {
			right = t.tail.Ref()
		}
		from := hop.FromTable.As(t.nextAlias())
		t.sel.Join(jt, from, hop.JoinCondition(from.Ref(), right))
		t.add(from)
	}
	return t
}
