package load_test

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relgraph"
	"github.com/syssam/relgraph/dialect/sql"
	"github.com/syssam/relgraph/dialect/sql/sqlgraph"
	"github.com/syssam/relgraph/dialect/sqlschema"
	"github.com/syssam/relgraph/internal/testschema"
	"github.com/syssam/relgraph/relation"
	"github.com/syssam/relgraph/schema/load"
)

func TestLoadFile(t *testing.T) {
	t.Parallel()
	reg, err := load.LoadFile("testdata/bakery.yaml")
	require.NoError(t, err)

	var names []string
	for _, e := range reg.Entities() {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"Cake", "Fruit", "Filling", "Vendor", "CakeFilling"}, names)

	cake, err := reg.Entity("Cake")
	require.NoError(t, err)
	col, ok := cake.Column("name")
	require.True(t, ok)
	assert.Equal(t, int64(64), col.Annotation.Size)
	filling, err := reg.Entity("CakeFilling")
	require.NoError(t, err)
	assert.Equal(t, "cake_filling", filling.Table().Name())
	assert.Equal(t, []string{"cake_id", "filling_id"}, filling.PrimaryKey().Columns())

	var fks []string
	for _, fk := range reg.ForeignKeys() {
		fks = append(fks, fk.Name)
	}
	assert.Equal(t, []string{"fk-fruit-cake_id", "fk-cake_filling-cake_id", "fk-cake_filling-filling_id", "fk-filling-vendor_id"}, fks)
	assert.Equal(t, sqlschema.SetNull, reg.ForeignKeys()[0].OnDelete)
	assert.Equal(t, sqlschema.Cascade, reg.ForeignKeys()[1].OnUpdate)

	t.Run("DefaultColumns", func(t *testing.T) {
		fruits, err := reg.Relation("Cake", "fruits")
		require.NoError(t, err)
		query, args := fruits.Def().JoinCondition("", "").Query()
		assert.Equal(t, `"cake"."id" = "fruit"."cake_id"`, query)
		assert.Empty(t, args)
		assert.False(t, fruits.Def().IsOwner)
	})

	t.Run("Where", func(t *testing.T) {
		tropical, err := reg.Relation("Cake", "tropical_fruits")
		require.NoError(t, err)
		query, args := tropical.Def().JoinCondition("", "").Query()
		assert.Equal(t, `"cake"."id" = "fruit"."cake_id" AND "fruit"."name" LIKE ?`, query)
		assert.Equal(t, []any{"%tropical%"}, args)
	})

	t.Run("Through", func(t *testing.T) {
		fillings, err := reg.Relation("Cake", "fillings")
		require.NoError(t, err)
		got := sqlgraph.FindRelated(fillings, sql.InnerJoin).String()
		want := sqlgraph.FindRelated(testschema.CakeToFilling, sql.InnerJoin).String()
		assert.Equal(t, want, got)
	})

	t.Run("Links", func(t *testing.T) {
		for name, want := range map[string]relation.Linked{
			"cake_to_filling_vendor":        testschema.CakeToFillingVendor,
			"cheese_cake_to_filling_vendor": testschema.CheeseCakeToFillingVendor,
		} {
			l, err := reg.Link(name)
			require.NoError(t, err)
			assert.Equal(t, 3, l.Len())
			assert.Equal(t,
				sqlgraph.FindLinked(want, sql.InnerJoin).String(),
				sqlgraph.FindLinked(l, sql.InnerJoin).String(),
				name,
			)
		}
	})
}

func TestLoad_Empty(t *testing.T) {
	t.Parallel()
	reg, err := load.Load(nil)
	require.NoError(t, err)
	assert.Empty(t, reg.Entities())
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()
	_, err := load.LoadFile("testdata/missing.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

const entities = `
entities:
  - name: Cake
    columns: [{name: id, type: int}, {name: name, type: string}]
  - name: Fruit
    columns: [{name: id, type: int}, {name: cake_id, type: int}]
  - name: Tag
    columns: [{name: id, type: int}]
`

func TestLoad_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		doc   string
		msg   string
		check func(error) bool
	}{
		{
			name: "UnknownField",
			doc:  "entities: [{name: Cake, colour: red}]",
			msg:  "field colour not found",
		},
		{
			name:  "UnknownColumnType",
			doc:   "entities: [{name: Cake, columns: [{name: id, type: bytes}]}]",
			msg:   `load: entity Cake: relgraph: invalid declaration of Cake: column "id" has unknown type "bytes"`,
			check: relgraph.IsDeclarationError,
		},
		{
			name:  "DuplicateEntity",
			doc:   "entities: [{name: Cake}, {name: Cake}]",
			msg:   `relgraph: entity "Cake" already declared`,
			check: func(err error) bool { return errors.Is(err, relgraph.ErrDuplicate) },
		},
		{
			name:  "UnknownEntity",
			doc:   entities + "relations: [{entity: Fruit, name: cake, type: belongs_to, to: Cupcake}]",
			msg:   `load: relation Fruit.cake: relgraph: entity "Cupcake" not found`,
			check: relgraph.IsNotFound,
		},
		{
			name: "MissingTarget",
			doc:  entities + "relations: [{entity: Fruit, name: cake, type: belongs_to}]",
			msg:  "load: relation Fruit.cake: missing target entity",
		},
		{
			name: "UnknownType",
			doc:  entities + "relations: [{entity: Cake, name: fruits, type: many_to_many, to: Fruit}]",
			msg:  `unknown relation type "many_to_many"`,
		},
		{
			name: "UnknownAction",
			doc:  entities + "relations: [{entity: Fruit, name: cake, type: belongs_to, to: Cake, on_delete: explode}]",
			msg:  `unknown cascade action "explode"`,
		},
		{
			name: "UnknownConditionType",
			doc:  entities + "relations: [{entity: Cake, name: fruits, type: has_many, to: Fruit, condition_type: xor}]",
			msg:  `unknown condition type "xor"`,
		},
		{
			name:  "DefaultColumnMissing",
			doc:   entities + "relations: [{entity: Fruit, name: tag, type: belongs_to, to: Tag}]",
			msg:   `entity Fruit has no column "tag_id"`,
			check: relgraph.IsDeclarationError,
		},
		{
			name:  "DuplicateRelation",
			doc:   entities + "relations: [{entity: Fruit, name: cake, type: belongs_to, to: Cake}, {entity: Fruit, name: cake, type: belongs_to, to: Cake}]",
			msg:   `relgraph: relation "Fruit.cake" already declared`,
			check: func(err error) bool { return errors.Is(err, relgraph.ErrDuplicate) },
		},
		{
			name: "UnknownOperator",
			doc:  entities + "relations: [{entity: Cake, name: fruits, type: has_many, to: Fruit, where: [{column: id, op: between}]}]",
			msg:  `predicate on "id": unknown operator "between"`,
		},
		{
			name: "UnknownSide",
			doc:  entities + "relations: [{entity: Cake, name: fruits, type: has_many, to: Fruit, where: [{side: middle, column: id, op: eq, value: 1}]}]",
			msg:  `predicate on "id": unknown side "middle"`,
		},
		{
			name: "LikeWithoutPattern",
			doc:  entities + "relations: [{entity: Cake, name: fruits, type: has_many, to: Fruit, where: [{column: id, op: like, value: 1}]}]",
			msg:  `predicate on "id": like expects a string pattern, got int`,
		},
		{
			name: "ThroughArity",
			doc:  entities + "relations: [{entity: Cake, name: tags, to: Tag, through: [{relation: Fruit.cake}]}]",
			msg:  "through expects 2 hops, got 1",
		},
		{
			name: "MalformedHop",
			doc:  entities + "relations: [{entity: Fruit, name: cake, type: belongs_to, to: Cake}]\nlinks: [{name: l, from: Fruit, to: Cake, path: [{relation: cake}]}]",
			msg:  `load: link l: hop "cake" is not of the form Entity.relation`,
		},
		{
			name:  "UnknownHop",
			doc:   entities + "links: [{name: l, from: Fruit, to: Cake, path: [{relation: Fruit.cake}]}]",
			msg:   `relgraph: relation "Fruit.cake" not found`,
			check: relgraph.IsNotFound,
		},
		{
			name:  "DiscontinuousLink",
			doc:   entities + "relations: [{entity: Fruit, name: cake, type: belongs_to, to: Cake}]\nlinks: [{name: l, from: Cake, to: Fruit, path: [{relation: Fruit.cake}]}]",
			msg:   "load: link l: relgraph: invalid declaration of l",
			check: relgraph.IsDeclarationError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := load.Load([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
			if tt.check != nil {
				assert.True(t, tt.check(err), err.Error())
			}
		})
	}
}

func TestLoad_ThroughNotDirect(t *testing.T) {
	t.Parallel()
	doc := strings.Join([]string{
		entities,
		"  - name: FruitTag",
		"    columns: [{name: fruit_id, type: int}, {name: tag_id, type: int}]",
		"    primary_key: [fruit_id, tag_id]",
		"relations:",
		"  - {entity: FruitTag, name: fruit, type: belongs_to, to: Fruit}",
		"  - {entity: FruitTag, name: tag, type: belongs_to, to: Tag}",
		"  - entity: Fruit",
		"    name: tags",
		"    to: Tag",
		"    through: [{relation: FruitTag.fruit, reverse: true}, {relation: FruitTag.tag}]",
		"links:",
		"  - {name: l, from: Fruit, to: Tag, path: [{relation: Fruit.tags}]}",
	}, "\n")
	_, err := load.Load([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `hop "Fruit.tags" is not a direct relation`)

	reg, err := load.Load([]byte(strings.Split(doc, "\nlinks:")[0]))
	require.NoError(t, err)
	tags, err := reg.Relation("Fruit", "tags")
	require.NoError(t, err)
	query, _ := tags.Def().JoinCondition("", "").Query()
	assert.Equal(t, `"fruit_tag"."tag_id" = "tag"."id"`, query)
}

func TestParse(t *testing.T) {
	t.Parallel()
	f, err := load.Parse(strings.NewReader(`
entities:
  - name: Cake
    table: cakes
    schema: bakery
    columns:
      - {name: id, type: uuid, sql_type: "char(36)"}
`))
	require.NoError(t, err)
	require.Len(t, f.Entities, 1)
	assert.Equal(t, load.Column{Name: "id", Type: "uuid", SQLType: "char(36)"}, f.Entities[0].Columns[0])

	reg, err := f.Registry()
	require.NoError(t, err)
	cake, err := reg.Entity("Cake")
	require.NoError(t, err)
	assert.Equal(t, "cakes", cake.Table().Name())
	assert.Equal(t, "bakery", cake.Table().Schema())
	col, _ := cake.Column("id")
	assert.Equal(t, relation.TypeUUID, col.Type)
	assert.Equal(t, "char(36)", col.Annotation.ColumnType)
}
