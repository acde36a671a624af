package relation

import (
	"fmt"
	"strings"

	"github.com/syssam/relgraph"
	"github.com/syssam/relgraph/dialect/sql"
	"github.com/syssam/relgraph/dialect/sqlschema"
)

// Type is the cardinality of a relation. It is descriptive: both types
// compile to the same join.
type Type int

// Relation types.
const (
	HasOne Type = iota
	HasMany
)

// String returns the snake-cased name of the type.
func (t Type) String() string {
	switch t {
	case HasOne:
		return "has_one"
	case HasMany:
		return "has_many"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType parses "has_one"/"one" and "has_many"/"many".
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "has_one", "one":
		return HasOne, nil
	case "has_many", "many":
		return HasMany, nil
	default:
		return HasOne, fmt.Errorf("relation: unknown relation type %q", s)
	}
}

// OnConditionFunc builds an additional join predicate given the resolved
// left (from) and right (to) table identities. It is shared by every copy
// of a Def and may be invoked any number of times, concurrently.
type OnConditionFunc func(left, right string) sql.Expr

// Def is a directed relation from one table to another: the columns of
// FromTable that match the columns of ToTable, and how the join and the
// foreign key derived from it behave.
type Def struct {
	Type          Type
	FromTable     sql.TableRef
	ToTable       sql.TableRef
	FromCol       Identity
	ToCol         Identity
	IsOwner       bool // FromTable holds the foreign key.
	OnDelete      sqlschema.CascadeAction
	OnUpdate      sqlschema.CascadeAction
	OnCondition   OnConditionFunc
	FKName        string
	ConditionType sql.ConditionType
}

// Rev returns the relation seen from the other side: tables and columns
// swapped and ownership flipped. Actions, the custom predicate and the
// condition type are kept; an explicit FK name is dropped.
func (d Def) Rev() Def {
	return Def{
		Type:          d.Type,
		FromTable:     d.ToTable,
		ToTable:       d.FromTable,
		FromCol:       d.ToCol,
		ToCol:         d.FromCol,
		IsOwner:       !d.IsOwner,
		OnDelete:      d.OnDelete,
		OnUpdate:      d.OnUpdate,
		OnCondition:   d.OnCondition,
		ConditionType: d.ConditionType,
	}
}

// FromAlias returns a copy of d with its source table aliased.
func (d Def) FromAlias(alias string) Def {
	d.FromTable = d.FromTable.As(alias)
	return d
}

// ToAlias returns a copy of d with its target table aliased.
func (d Def) ToAlias(alias string) Def {
	d.ToTable = d.ToTable.As(alias)
	return d
}

// WithCondition returns a copy of d using f as its custom predicate.
func (d Def) WithCondition(f OnConditionFunc) Def {
	d.OnCondition = f
	return d
}

// WithConditionType returns a copy of d combining its predicates with t.
func (d Def) WithConditionType(t sql.ConditionType) Def {
	d.ConditionType = t
	return d
}

// Validate returns a *relgraph.DeclarationError if d cannot be compiled.
func (d Def) Validate() error {
	switch {
	case d.FromTable.IsZero():
		return relgraph.NewDeclarationError(d.subject(), "source table is not set")
	case d.ToTable.IsZero():
		return relgraph.NewDeclarationError(d.subject(), "target table is not set")
	case d.FromCol.IsZero():
		return relgraph.NewDeclarationError(d.subject(), "owner column is not set")
	case d.ToCol.IsZero():
		return relgraph.NewDeclarationError(d.subject(), "reference column is not set")
	case d.FromCol.Arity() != d.ToCol.Arity():
		return relgraph.NewDeclarationError(d.subject(), "column arity mismatch: %d != %d", d.FromCol.Arity(), d.ToCol.Arity())
	case d.OnDelete != "" && !d.OnDelete.Valid():
		return relgraph.NewDeclarationError(d.subject(), "invalid on delete action %q", d.OnDelete)
	case d.OnUpdate != "" && !d.OnUpdate.Valid():
		return relgraph.NewDeclarationError(d.subject(), "invalid on update action %q", d.OnUpdate)
	}
	return nil
}

func (d Def) subject() string {
	return d.FromTable.Name() + " -> " + d.ToTable.Name()
}

// String returns a debug representation of the relation. The custom
// predicate is rendered against the placeholder tables "left" and "right".
func (d Def) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s(%s) -> %s(%s)", d.Type,
		d.FromTable, strings.Join(d.FromCol.cols, ", "),
		d.ToTable, strings.Join(d.ToCol.cols, ", "))
	if d.IsOwner {
		sb.WriteString(" owner")
	}
	if d.OnDelete != "" {
		fmt.Fprintf(&sb, " on delete %s", d.OnDelete)
	}
	if d.OnUpdate != "" {
		fmt.Fprintf(&sb, " on update %s", d.OnUpdate)
	}
	if d.FKName != "" {
		fmt.Fprintf(&sb, " fk %s", d.FKName)
	}
	if d.ConditionType != sql.All {
		fmt.Fprintf(&sb, " %s", d.ConditionType)
	}
	if d.OnCondition != nil {
		fmt.Fprintf(&sb, " on %s", sql.Inline("", d.OnCondition("left", "right")))
	}
	return sb.String()
}
