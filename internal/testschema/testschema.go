// Package testschema declares the bakery schema shared by the tests:
//
//	cake 1──* fruit
//	cake *──* filling (through cake_filling)
//	filling *──1 vendor
package testschema

import (
	"github.com/syssam/relgraph/dialect/sql"
	"github.com/syssam/relgraph/dialect/sqlschema"
	"github.com/syssam/relgraph/relation"
)

// Entities.
var (
	Cake = relation.NewEntity("Cake", relation.Columns(
		relation.Int("id"),
		relation.String("name"),
	))
	Fruit = relation.NewEntity("Fruit", relation.Columns(
		relation.Int("id"),
		relation.String("name"),
		relation.Int("cake_id").Optional(),
	))
	Filling = relation.NewEntity("Filling", relation.Columns(
		relation.Int("id"),
		relation.String("name"),
		relation.Int("vendor_id").Optional(),
	))
	Vendor = relation.NewEntity("Vendor", relation.Columns(
		relation.Int("id"),
		relation.String("name"),
	))
	CakeFilling = relation.NewEntity("CakeFilling",
		relation.Columns(relation.Int("cake_id"), relation.Int("filling_id")),
		relation.PrimaryKey("cake_id", "filling_id"),
	)
)

// FruitCake is the owner side of cake 1──* fruit.
func FruitCake() relation.Def {
	return relation.NewBelongsTo(Fruit, Cake).
		From("cake_id").
		To("id").
		OnDelete(sqlschema.SetNull).
		Def()
}

// CakeFruit is cake 1──* fruit seen from the cake.
func CakeFruit() relation.Def {
	return relation.FromDef(relation.HasMany, FruitCake().Rev(), false).Def()
}

// CakeTropicalFruit restricts CakeFruit to fruits named like "%tropical%".
func CakeTropicalFruit() relation.Def {
	return relation.NewHasMany(Cake, Fruit).
		From("id").
		To("cake_id").
		OnCondition(func(_, right string) sql.Expr {
			return sql.C(right, "name").Like("%tropical%")
		}).
		Def()
}

// CakeFillingCake is the owner side of cake_filling *──1 cake.
func CakeFillingCake() relation.Def {
	return relation.NewBelongsTo(CakeFilling, Cake).
		From("cake_id").
		To("id").
		OnDelete(sqlschema.Cascade).
		OnUpdate(sqlschema.Cascade).
		Def()
}

// CakeFillingFilling is the owner side of cake_filling *──1 filling.
func CakeFillingFilling() relation.Def {
	return relation.NewBelongsTo(CakeFilling, Filling).
		From("filling_id").
		To("id").
		OnDelete(sqlschema.Cascade).
		Def()
}

// FillingVendor is the owner side of filling *──1 vendor.
func FillingVendor() relation.Def {
	return relation.NewBelongsTo(Filling, Vendor).
		From("vendor_id").
		To("id").
		Def()
}

// Related pairs.
var (
	CakeToFruit   = relation.Direct(Cake, Fruit, CakeFruit())
	FruitToCake   = relation.Direct(Fruit, Cake, FruitCake())
	CakeToFilling = relation.Through(Cake, Filling, CakeFillingCake().Rev(), CakeFillingFilling())
	FillingToCake = relation.Through(Filling, Cake, CakeFillingFilling().Rev(), CakeFillingCake())
)

// CakeToFillingVendor links a cake to the vendors of its fillings.
var CakeToFillingVendor = relation.Link("cake_to_filling_vendor", Cake, Vendor,
	CakeFillingCake().Rev(),
	CakeFillingFilling(),
	FillingVendor(),
)

// CheeseCakeToFillingVendor is CakeToFillingVendor restricted to cakes
// named like "%cheese%".
var CheeseCakeToFillingVendor = relation.Link("cheese_cake_to_filling_vendor", Cake, Vendor,
	CakeFillingCake().Rev().WithCondition(func(left, _ string) sql.Expr {
		return sql.C(left, "name").Like("%cheese%")
	}),
	CakeFillingFilling(),
	FillingVendor(),
)

// Registry returns a registry holding the whole schema.
func Registry() *relation.Registry {
	r := relation.NewRegistry()
	for _, e := range []*relation.Entity{Cake, Fruit, Filling, Vendor, CakeFilling} {
		must(r.AddEntity(e))
	}
	must(r.AddRelation("fruits", CakeToFruit))
	must(r.AddRelation("cake", FruitToCake))
	must(r.AddRelation("fillings", CakeToFilling))
	must(r.AddRelation("cakes", FillingToCake))
	must(r.AddRelation("vendor", relation.Direct(Filling, Vendor, FillingVendor())))
	must(r.AddLink(CakeToFillingVendor))
	must(r.AddLink(CheeseCakeToFillingVendor))
	return r
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
