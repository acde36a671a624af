// Package relation declares relations between entity tables and compiles
// them into join conditions and foreign key constraints.
//
// A relation is declared with a Builder and finalized into a Def:
//
//	fruitCake := relation.NewBelongsTo(fruit, cake).
//		From("cake_id").
//		To("id").
//		OnDelete(sqlschema.Cascade).
//		Def()
//
//	fruitCake.JoinCondition("", "")  // "fruit"."cake_id" = "cake"."id"
//	fruitCake.ForeignKey().Name      // fk-fruit-cake_id
//
// Related and Linked describe which entity reaches which, directly, through
// a junction table, or along a named multi-hop path. Package sqlgraph
// turns them into queries.
package relation
