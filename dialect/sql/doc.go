// Package sql provides the SQL building blocks relgraph compiles relations into,
// and the database/sql backed driver used to run them.
//
// # Builders
//
//   - Builder: low-level string builder with dialect-aware identifier quoting
//     and placeholders ($n for PostgreSQL, ? otherwise)
//   - Condition: expressions combined with AND (All) or OR (Any)
//   - Selector: SELECT statement with joins, predicates, ordering and limit
//   - TableBuilder, AlterTableBuilder, ForeignKeyBuilder: DDL statements
//
// # Conditions
//
//	sql.And(
//	    sql.ColumnsEQ(sql.C("cake", "id"), sql.C("fruit", "cake_id")),
//	    sql.C("fruit", "name").Like("%tropical%"),
//	)
//	// "cake"."id" = "fruit"."cake_id" AND "fruit"."name" LIKE ?
//
// Nested conditions holding more than one expression are parenthesized
// when their parent holds more than one expression. An empty All renders
// as 1 = 1 and an empty Any as 1 = 0.
//
// # Tables and aliases
//
// TableRef is an immutable table reference. Columns are qualified by the
// alias when one is set:
//
//	cake := sql.Table("cake").As("r0")
//	cake.C("id") // "r0"."id"
//
// # Joins
//
//	fruit, cake := sql.Table("fruit"), sql.Table("cake")
//	sql.Select(sql.Star("fruit")).
//	    From(fruit).
//	    Join(sql.InnerJoin, cake, sql.ColumnsEQ(fruit.C("cake_id"), cake.C("id")))
package sql
