// Package relgraph models relations between database entities and compiles
// them into join conditions and foreign key constraints.
//
// A relation is declared once with the relation builder and can then be
// compiled any number of times:
//
//	cake := relation.NewEntity("Cake", relation.Columns(relation.Int("id"), relation.String("name")))
//	fruit := relation.NewEntity("Fruit", relation.Columns(relation.Int("id"), relation.Int("cake_id")))
//
//	def := relation.NewBelongsTo(fruit, cake).
//	    From("cake_id").
//	    To("id").
//	    OnDelete(sqlschema.Cascade).
//	    Def()
//
//	cond := def.JoinCondition("", "")   // "fruit"."cake_id" = "cake"."id"
//	fk := def.ForeignKey()              // fk-fruit-cake_id
//
// # Packages
//
//   - relation: entities, relation definitions, the relation builder, related and linked paths
//   - dialect/sql: statement builders, conditions and the database/sql driver
//   - dialect/sql/sqlgraph: join traversal over related and linked paths
//   - dialect/sql/schema: schema assembly, foreign key validation and migration
//   - dialect/sqlschema: referential actions and table annotations
//   - schema/load: YAML schema loading
package relgraph
