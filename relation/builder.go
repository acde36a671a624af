package relation

import (
	"github.com/syssam/relgraph"
	"github.com/syssam/relgraph/dialect/sql"
	"github.com/syssam/relgraph/dialect/sqlschema"
)

// Builder declares a relation step by step and finalizes it with Def.
//
//	relation.NewBelongsTo(fruit, cake).
//	    From("cake_id").
//	    To("id").
//	    OnDelete(sqlschema.Cascade).
//	    Def()
type Builder struct {
	def      Def
	from, to *Entity
}

// NewBuilder returns a builder for a relation of the given type from one
// entity to another. isOwner marks the source entity as holding the foreign key.
func NewBuilder(typ Type, from, to *Entity, isOwner bool) *Builder {
	if from == nil || to == nil {
		panic(relgraph.NewDeclarationError("", "relation endpoints must not be nil"))
	}
	return &Builder{
		def: Def{
			Type:          typ,
			FromTable:     from.Table(),
			ToTable:       to.Table(),
			IsOwner:       isOwner,
			ConditionType: sql.All,
		},
		from: from,
		to:   to,
	}
}

// NewHasOne starts a one-to-one relation. The target holds the foreign key.
func NewHasOne(from, to *Entity) *Builder {
	return NewBuilder(HasOne, from, to, false)
}

// NewHasMany starts a one-to-many relation. The target holds the foreign key.
func NewHasMany(from, to *Entity) *Builder {
	return NewBuilder(HasMany, from, to, false)
}

// NewBelongsTo starts a relation whose source holds the foreign key.
func NewBelongsTo(from, to *Entity) *Builder {
	return NewBuilder(HasOne, from, to, true)
}

// FromDef starts a builder seeded with the tables and columns of d.
// Actions, the custom predicate and the FK name are not carried over.
func FromDef(typ Type, d Def, isOwner bool) *Builder {
	return &Builder{
		def: Def{
			Type:          typ,
			FromTable:     d.FromTable,
			ToTable:       d.ToTable,
			FromCol:       d.FromCol,
			ToCol:         d.ToCol,
			IsOwner:       isOwner,
			ConditionType: sql.All,
		},
	}
}

// From sets the columns of the source entity.
func (b *Builder) From(cols ...string) *Builder {
	b.check(b.from, cols)
	b.def.FromCol = Many(cols...)
	return b
}

// To sets the columns of the target entity.
func (b *Builder) To(cols ...string) *Builder {
	b.check(b.to, cols)
	b.def.ToCol = Many(cols...)
	return b
}

func (b *Builder) check(e *Entity, cols []string) {
	if len(cols) == 0 {
		panic(relgraph.NewDeclarationError(b.def.subject(), "empty column list"))
	}
	if e == nil {
		return
	}
	for _, c := range cols {
		if !e.HasColumn(c) {
			panic(relgraph.NewDeclarationError(b.def.subject(), "entity %s has no column %q", e.Name(), c))
		}
	}
}

// OnDelete sets the ON DELETE action of the foreign key.
func (b *Builder) OnDelete(action sqlschema.CascadeAction) *Builder {
	b.def.OnDelete = action
	return b
}

// OnUpdate sets the ON UPDATE action of the foreign key.
func (b *Builder) OnUpdate(action sqlschema.CascadeAction) *Builder {
	b.def.OnUpdate = action
	return b
}

// OnCondition sets the custom join predicate, replacing any earlier one.
func (b *Builder) OnCondition(f OnConditionFunc) *Builder {
	b.def.OnCondition = f
	return b
}

// ConditionType sets how the custom predicate is combined with the
// column equalities.
func (b *Builder) ConditionType(t sql.ConditionType) *Builder {
	b.def.ConditionType = t
	return b
}

// FKName sets an explicit foreign key name.
func (b *Builder) FKName(name string) *Builder {
	b.def.FKName = name
	return b
}

// Annotations applies the OnDelete and OnUpdate settings of the annotations.
func (b *Builder) Annotations(annotations ...sqlschema.Annotation) *Builder {
	a := sqlschema.Merge(annotations...)
	if a.OnDelete != "" {
		b.def.OnDelete = a.OnDelete
	}
	if a.OnUpdate != "" {
		b.def.OnUpdate = a.OnUpdate
	}
	return b
}

// Def finalizes the relation. It panics with a *relgraph.DeclarationError
// if a side has no columns or the sides differ in arity.
func (b *Builder) Def() Def {
	if err := b.def.Validate(); err != nil {
		panic(err)
	}
	return b.def
}
