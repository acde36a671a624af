package relation_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relgraph"
	"github.com/syssam/relgraph/internal/testschema"
	"github.com/syssam/relgraph/relation"
)

func TestRelated(t *testing.T) {
	t.Parallel()

	t.Run("Direct", func(t *testing.T) {
		t.Parallel()
		r := testschema.CakeToFruit
		assert.False(t, r.IsZero())
		assert.Same(t, testschema.Cake, r.From())
		assert.Same(t, testschema.Fruit, r.To())
		_, ok := r.Via()
		assert.False(t, ok)
		require.Len(t, r.Path(), 1)
		assert.Equal(t, "cake", r.Path()[0].FromTable.Name())
	})

	t.Run("Through", func(t *testing.T) {
		t.Parallel()
		r := testschema.CakeToFilling
		via, ok := r.Via()
		require.True(t, ok)
		assert.Equal(t, "cake", via.FromTable.Name())
		assert.Equal(t, "cake_filling", via.ToTable.Name())
		assert.Equal(t, "cake_filling", r.Def().FromTable.Name())
		assert.Equal(t, "filling", r.Def().ToTable.Name())
		path := r.Path()
		require.Len(t, path, 2)
		assert.Equal(t, via.FromTable, path[0].FromTable)
		assert.Equal(t, r.Def().ToTable, path[1].ToTable)
	})

	assert.True(t, relation.Related{}.IsZero())

	invalid := []struct {
		name    string
		declare func()
		msg     string
	}{
		{
			name: "WrongDirection",
			declare: func() {
				relation.Direct(testschema.Cake, testschema.Fruit, testschema.FruitCake())
			},
			msg: `relation connects "fruit" to "cake"`,
		},
		{
			name: "Malformed",
			declare: func() {
				relation.Direct(testschema.Cake, testschema.Fruit, relation.Def{})
			},
			msg: "source table is not set",
		},
		{
			name: "ViaWrongStart",
			declare: func() {
				relation.Through(testschema.Fruit, testschema.Filling, testschema.CakeFillingCake().Rev(), testschema.CakeFillingFilling())
			},
			msg: `via relation starts at "cake", not "fruit"`,
		},
		{
			name: "ViaDisconnected",
			declare: func() {
				relation.Through(testschema.Cake, testschema.Vendor, testschema.CakeFillingCake().Rev(), testschema.FillingVendor())
			},
			msg: `via relation ends at "cake_filling" but the relation starts at "filling"`,
		},
		{
			name: "ThroughWrongEnd",
			declare: func() {
				relation.Through(testschema.Cake, testschema.Vendor, testschema.CakeFillingCake().Rev(), testschema.CakeFillingFilling())
			},
			msg: `relation ends at "filling", not "vendor"`,
		},
		{
			name: "NilEntity",
			declare: func() {
				relation.Direct(nil, testschema.Fruit, testschema.CakeFruit())
			},
			msg: "related entities must not be nil",
		},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			de := declPanic(t, tt.declare)
			assert.Equal(t, tt.msg, de.Msg)
		})
	}
}

func TestLink(t *testing.T) {
	t.Parallel()

	l := testschema.CakeToFillingVendor
	assert.Equal(t, "cake_to_filling_vendor", l.Name())
	assert.Same(t, testschema.Cake, l.From())
	assert.Same(t, testschema.Vendor, l.To())
	assert.Equal(t, 3, l.Len())
	path := l.Path()
	path[0] = relation.Def{}
	assert.Equal(t, "cake", l.Path()[0].FromTable.Name())
	assert.True(t, relation.Linked{}.IsZero())

	invalid := []struct {
		name string
		link func()
		msg  string
	}{
		{
			name: "Empty",
			link: func() { relation.Link("none", testschema.Cake, testschema.Vendor) },
			msg:  "linked path is empty",
		},
		{
			name: "Discontinuous",
			link: func() {
				relation.Link("gap", testschema.Cake, testschema.Vendor, testschema.CakeFillingCake().Rev(), testschema.FillingVendor())
			},
			msg: `hop 1 starts at "filling", expected "cake_filling"`,
		},
		{
			name: "WrongStart",
			link: func() {
				relation.Link("start", testschema.Fruit, testschema.Filling, testschema.CakeFillingCake().Rev(), testschema.CakeFillingFilling())
			},
			msg: `hop 0 starts at "cake", expected "fruit"`,
		},
		{
			name: "WrongEnd",
			link: func() {
				relation.Link("end", testschema.Cake, testschema.Vendor, testschema.CakeFillingCake().Rev(), testschema.CakeFillingFilling())
			},
			msg: `path ends at "filling", not "vendor"`,
		},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			de := declPanic(t, tt.link)
			assert.Equal(t, tt.msg, de.Msg)
			assert.NotContains(t, de.Subject, "->")
		})
	}

	t.Run("UnnamedSubject", func(t *testing.T) {
		t.Parallel()
		de := declPanic(t, func() { relation.Link("", testschema.Cake, testschema.Vendor) })
		assert.Equal(t, "Cake -> Vendor", de.Subject)
	})
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("Entities", func(t *testing.T) {
		t.Parallel()
		r := testschema.Registry()
		names := make([]string, 0, 5)
		for _, e := range r.Entities() {
			names = append(names, e.Name())
		}
		assert.Equal(t, []string{"Cake", "Fruit", "Filling", "Vendor", "CakeFilling"}, names)

		e, err := r.Entity("Fruit")
		require.NoError(t, err)
		assert.Same(t, testschema.Fruit, e)
		e, err = r.EntityByTable("cake_filling")
		require.NoError(t, err)
		assert.Same(t, testschema.CakeFilling, e)

		_, err = r.Entity("Pie")
		assert.True(t, relgraph.IsNotFound(err))
		assert.EqualError(t, err, `relgraph: entity "Pie" not found`)
		_, err = r.EntityByTable("pie")
		assert.ErrorIs(t, err, relgraph.ErrNotFound)
	})

	t.Run("Duplicates", func(t *testing.T) {
		t.Parallel()
		r := testschema.Registry()
		err := r.AddEntity(testschema.Cake)
		assert.ErrorIs(t, err, relgraph.ErrDuplicate)
		assert.EqualError(t, err, `relgraph: entity "Cake" already declared`)

		err = r.AddEntity(relation.NewEntity("Torte", relation.TableName("cake")))
		assert.EqualError(t, err, `relgraph: table "cake" already declared`)

		err = r.AddRelation("fruits", testschema.CakeToFruit)
		assert.EqualError(t, err, `relgraph: relation "Cake.fruits" already declared`)

		err = r.AddLink(testschema.CakeToFillingVendor)
		assert.ErrorIs(t, err, relgraph.ErrDuplicate)
	})

	t.Run("Relations", func(t *testing.T) {
		t.Parallel()
		r := testschema.Registry()
		rel, err := r.Relation("Cake", "fillings")
		require.NoError(t, err)
		assert.Same(t, testschema.Filling, rel.To())

		rel, err = r.RelationTo("Fruit", "Cake")
		require.NoError(t, err)
		assert.Equal(t, "fruit", rel.Def().FromTable.Name())

		_, err = r.Relation("Cake", "vendors")
		assert.EqualError(t, err, `relgraph: relation "Cake.vendors" not found`)
		_, err = r.RelationTo("Vendor", "Cake")
		assert.True(t, relgraph.IsNotFound(err))

		names := make([]string, 0, 2)
		for _, nr := range r.Relations("Cake") {
			names = append(names, nr.Name)
		}
		assert.Equal(t, []string{"fruits", "fillings"}, names)
		assert.Empty(t, r.Relations("Vendor"))
	})

	t.Run("UnregisteredEndpoint", func(t *testing.T) {
		t.Parallel()
		r := relation.NewRegistry()
		require.NoError(t, r.AddEntity(testschema.Cake))
		err := r.AddRelation("fruits", testschema.CakeToFruit)
		assert.EqualError(t, err, `relgraph: entity "Fruit" not found`)
		err = r.AddLink(testschema.CakeToFillingVendor)
		assert.True(t, relgraph.IsNotFound(err))

		err = r.AddRelation("zero", relation.Related{})
		assert.True(t, relgraph.IsDeclarationError(err))
		err = r.AddLink(relation.Linked{})
		assert.True(t, relgraph.IsDeclarationError(err))
	})

	t.Run("Links", func(t *testing.T) {
		t.Parallel()
		r := testschema.Registry()
		l, err := r.Link("cheese_cake_to_filling_vendor")
		require.NoError(t, err)
		assert.Equal(t, 3, l.Len())
		_, err = r.Link("pie_to_vendor")
		assert.EqualError(t, err, `relgraph: link "pie_to_vendor" not found`)
		require.Len(t, r.Links(), 2)
		assert.Equal(t, "cake_to_filling_vendor", r.Links()[0].Name())
	})

	t.Run("ForeignKeys", func(t *testing.T) {
		t.Parallel()
		r := testschema.Registry()
		names := func() []string {
			var names []string
			for _, fk := range r.ForeignKeys() {
				names = append(names, fk.Name)
			}
			return names
		}
		want := []string{
			"fk-fruit-cake_id",
			"fk-cake_filling-filling_id",
			"fk-cake_filling-cake_id",
			"fk-filling-vendor_id",
		}
		assert.Equal(t, want, names())

		// Declaring the same owner relation again does not add a key.
		require.NoError(t, r.AddRelation("cake_again", relation.Direct(testschema.Fruit, testschema.Cake, testschema.FruitCake())))
		assert.Equal(t, want, names())
	})

	t.Run("Concurrent", func(t *testing.T) {
		t.Parallel()
		r := relation.NewRegistry()
		var wg sync.WaitGroup
		for _, e := range []*relation.Entity{testschema.Cake, testschema.Fruit, testschema.Filling, testschema.Vendor, testschema.CakeFilling} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, r.AddEntity(e))
				_ = r.Entities()
				_ = r.ForeignKeys()
			}()
		}
		wg.Wait()
		assert.Len(t, r.Entities(), 5)
	})
}
