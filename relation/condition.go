package relation

import (
	"github.com/syssam/relgraph"
	"github.com/syssam/relgraph/dialect/sql"
)

// JoinCondition compiles the relation into the predicate joining the
// source and target tables. left and right are the identities the columns
// are qualified by; an empty string falls back to the table reference of
// the relation (its alias, or its name).
//
// The result is a condition of the relation's ConditionType holding the
// column equalities (always ANDed together) followed by the custom
// predicate, if any:
//
//	All: "cake"."id" = "fruit"."cake_id" AND <custom>
//	Any: "cake"."id" = "fruit"."cake_id" OR <custom>
//
// It panics with a *relgraph.DeclarationError if d is malformed.
func (d Def) JoinCondition(left, right string) *sql.Condition {
	if err := d.Validate(); err != nil {
		panic(err)
	}
	if left == "" {
		left = d.FromTable.Ref()
	}
	if right == "" {
		right = d.ToTable.Ref()
	}
	cond := sql.NewCondition(d.ConditionType)
	cond.Add(EqualityCondition(left, d.FromCol, right, d.ToCol))
	if d.OnCondition != nil {
		cond.Add(d.OnCondition(left, right))
	}
	return cond
}

// EqualityCondition pairs the columns of both identities positionally and
// ANDs the equalities in declared order. It panics with a
// *relgraph.DeclarationError when the arities differ or are zero.
func EqualityCondition(left string, leftCols Identity, right string, rightCols Identity) *sql.Condition {
	if leftCols.Arity() != rightCols.Arity() || leftCols.IsZero() {
		panic(relgraph.NewDeclarationError(left+" -> "+right, "cannot pair %d columns with %d columns", leftCols.Arity(), rightCols.Arity()))
	}
	cond := sql.And()
	for i, lc := range leftCols.cols {
		cond.Add(sql.ColumnsEQ(sql.C(left, lc), sql.C(right, rightCols.cols[i])))
	}
	return cond
}
