package relation

import (
	"fmt"

	"github.com/syssam/relgraph"
)

// Related states that one entity is related to another. It can only be
// obtained from Direct or Through, which validate the declaration, so
// traversal never runs on an undeclared or broken pair.
type Related struct {
	from, to *Entity
	def      Def
	via      *Def
}

// Direct declares that from is related to to through def, a relation
// whose source is from and whose target is to.
func Direct(from, to *Entity, def Def) Related {
	subject := relSubject(from, to)
	mustValid(subject, def)
	mustConnect(subject, def, from, to)
	return Related{from: from, to: to, def: def}
}

// Through declares that from is related to to through an intermediate
// (junction) table: via goes from the source to the junction, and def
// from the junction to the target.
//
//	// cake <-> filling through cake_filling
//	relation.Through(cake, filling, cakeFillingCake.Rev(), cakeFillingFilling)
func Through(from, to *Entity, via, def Def) Related {
	subject := relSubject(from, to)
	mustValid(subject, via)
	mustValid(subject, def)
	if via.FromTable.Name() != from.Table().Name() {
		panic(relgraph.NewDeclarationError(subject, "via relation starts at %q, not %q", via.FromTable.Name(), from.Table().Name()))
	}
	if via.ToTable.Name() != def.FromTable.Name() {
		panic(relgraph.NewDeclarationError(subject, "via relation ends at %q but the relation starts at %q", via.ToTable.Name(), def.FromTable.Name()))
	}
	if def.ToTable.Name() != to.Table().Name() {
		panic(relgraph.NewDeclarationError(subject, "relation ends at %q, not %q", def.ToTable.Name(), to.Table().Name()))
	}
	return Related{from: from, to: to, def: def, via: &via}
}

func relSubject(from, to *Entity) string {
	if from == nil || to == nil {
		panic(relgraph.NewDeclarationError("", "related entities must not be nil"))
	}
	return fmt.Sprintf("%s -> %s", from.Name(), to.Name())
}

func mustValid(subject string, d Def) {
	if err := d.Validate(); err != nil {
		if de, ok := err.(*relgraph.DeclarationError); ok {
			panic(relgraph.NewDeclarationError(subject, "%s", de.Msg))
		}
		panic(err)
	}
}

func mustConnect(subject string, d Def, from, to *Entity) {
	if d.FromTable.Name() != from.Table().Name() || d.ToTable.Name() != to.Table().Name() {
		panic(relgraph.NewDeclarationError(subject, "relation connects %q to %q", d.FromTable.Name(), d.ToTable.Name()))
	}
}

// From returns the source entity.
func (r Related) From() *Entity { return r.from }

// To returns the target entity.
func (r Related) To() *Entity { return r.to }

// Def returns the relation reaching the target.
func (r Related) Def() Def { return r.def }

// Via returns the relation from the source to the junction table, if any.
func (r Related) Via() (Def, bool) {
	if r.via == nil {
		return Def{}, false
	}
	return *r.via, true
}

// IsZero reports whether r was not obtained from Direct or Through.
func (r Related) IsZero() bool { return r.from == nil }

// Path returns the relations in traversal order from source to target.
func (r Related) Path() []Def {
	if r.via != nil {
		return []Def{*r.via, r.def}
	}
	return []Def{r.def}
}

// Linked is a named multi-hop path between two entities.
type Linked struct {
	name     string
	from, to *Entity
	path     []Def
}

// Link declares a named path from one entity to another. Every hop must
// start at the table the previous hop ended at.
func Link(name string, from, to *Entity, path ...Def) Linked {
	subject := relSubject(from, to)
	if name != "" {
		subject = name
	}
	if len(path) == 0 {
		panic(relgraph.NewDeclarationError(subject, "linked path is empty"))
	}
	at := from.Table().Name()
	for i, d := range path {
		mustValid(subject, d)
		if d.FromTable.Name() != at {
			panic(relgraph.NewDeclarationError(subject, "hop %d starts at %q, expected %q", i, d.FromTable.Name(), at))
		}
		at = d.ToTable.Name()
	}
	if at != to.Table().Name() {
		panic(relgraph.NewDeclarationError(subject, "path ends at %q, not %q", at, to.Table().Name()))
	}
	return Linked{name: name, from: from, to: to, path: append([]Def(nil), path...)}
}

// Name returns the name of the link.
func (l Linked) Name() string { return l.name }

// From returns the source entity.
func (l Linked) From() *Entity { return l.from }

// To returns the target entity.
func (l Linked) To() *Entity { return l.to }

// Path returns a copy of the hops.
func (l Linked) Path() []Def { return append([]Def(nil), l.path...) }

// Len returns the number of hops.
func (l Linked) Len() int { return len(l.path) }

// IsZero reports whether l was not obtained from Link.
func (l Linked) IsZero() bool { return l.from == nil }
