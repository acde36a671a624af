package schema

import (
	"strings"
	"testing"

	"ariga.io/atlas/sql/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relgraph"
	"github.com/syssam/relgraph/dialect"
	"github.com/syssam/relgraph/dialect/sqlschema"
	"github.com/syssam/relgraph/relation"
)

func TestTables(t *testing.T) {
	tables := bakeryTables(t)
	require.Equal(t, []string{"cake", "fruit", "vendor", "filling", "cake_filling"}, tableNames(tables))

	byName := make(map[string]*Table)
	for _, tbl := range tables {
		byName[tbl.Name] = tbl
	}
	fruit := byName["fruit"]
	require.Len(t, fruit.ForeignKeys, 1)
	fk := fruit.ForeignKeys[0]
	assert.Equal(t, "fk-fruit-cake_id", fk.Symbol)
	assert.Same(t, byName["cake"], fk.RefTable)
	assert.Equal(t, []string{"cake_id"}, columnNames(fk.Columns))
	assert.Equal(t, []string{"id"}, columnNames(fk.RefColumns))
	assert.Equal(t, sqlschema.SetNull, fk.OnDelete)
	assert.True(t, fk.Columns[0].Nullable)

	join := byName["cake_filling"]
	assert.Equal(t, []string{"cake_id", "filling_id"}, columnNames(join.PrimaryKey))
	var symbols []string
	for _, fk := range join.ForeignKeys {
		symbols = append(symbols, fk.Symbol)
	}
	assert.Equal(t, []string{"fk-cake_filling-filling_id", "fk-cake_filling-cake_id"}, symbols)
	assert.Empty(t, byName["cake"].ForeignKeys, "the non-owner side declares no key")
}

func TestTables_Errors(t *testing.T) {
	t.Run("NoColumns", func(t *testing.T) {
		reg := relation.NewRegistry()
		require.NoError(t, reg.AddEntity(relation.NewEntity("Marker")))
		_, err := Tables(reg)
		require.Error(t, err)
		assert.True(t, relgraph.IsValidationError(err))
		assert.Contains(t, err.Error(), "entity Marker declares no columns")
	})
	t.Run("SetNullOnRequiredColumn", func(t *testing.T) {
		owner := relation.NewEntity("Owner", relation.Columns(relation.Int("id")))
		pet := relation.NewEntity("Pet", relation.Columns(relation.Int("id"), relation.Int("owner_id")))
		reg := relation.NewRegistry()
		require.NoError(t, reg.AddEntity(owner))
		require.NoError(t, reg.AddEntity(pet))
		def := relation.NewBelongsTo(pet, owner).From("owner_id").To("id").OnDelete(sqlschema.SetNull).Def()
		require.NoError(t, reg.AddRelation("owner", relation.Direct(pet, owner, def)))
		_, err := Tables(reg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `pet.owner_id: foreign key "fk-pet-owner_id": SET NULL action on a NOT NULL column`)
	})
}

func TestSort(t *testing.T) {
	link := func(from, to *Table) {
		from.AddForeignKey(&ForeignKey{Symbol: from.Name + "_" + to.Name, RefTable: to})
	}
	a, b, c, d := NewTable("a"), NewTable("b"), NewTable("c"), NewTable("d")
	link(a, b)
	link(b, c)
	link(d, d)
	assert.Equal(t, []*Table{c, d, b, a}, Sort([]*Table{a, b, c, d}))

	// Tables on a cycle come last in their original order.
	x, y, z := NewTable("x"), NewTable("y"), NewTable("z")
	link(x, y)
	link(y, x)
	assert.Equal(t, []*Table{z, x, y}, Sort([]*Table{x, y, z}))

	// References to tables outside the list are ignored.
	e := NewTable("e")
	link(e, NewTable("external"))
	assert.Equal(t, []*Table{e}, Sort([]*Table{e}))
}

func TestValidate(t *testing.T) {
	newPair := func() (*Table, *Table) {
		cake := NewTable("cake").
			AddPrimary(&Column{Name: "id", Type: relation.TypeInt}).
			AddColumn(&Column{Name: "code", Type: relation.TypeString})
		fruit := NewTable("fruit").
			AddPrimary(&Column{Name: "id", Type: relation.TypeInt64}).
			AddColumn(&Column{Name: "cake_id", Type: relation.TypeInt64})
		return cake, fruit
	}
	fk := func(cake, fruit *Table, from, to string) *ForeignKey {
		c, _ := fruit.Column(from)
		r, _ := cake.Column(to)
		return &ForeignKey{Symbol: "fk-fruit-" + from, Columns: []*Column{c}, RefTable: cake, RefColumns: []*Column{r}}
	}

	t.Run("Valid", func(t *testing.T) {
		cake, fruit := newPair()
		fruit.AddForeignKey(fk(cake, fruit, "cake_id", "id"))
		r := Validate([]*Table{cake, fruit})
		assert.False(t, r.HasErrors())
		assert.False(t, r.HasWarnings(), r.String())
		assert.NoError(t, r.Err())
		assert.Equal(t, "No issues found", r.String())
	})
	t.Run("TypeMismatch", func(t *testing.T) {
		cake, fruit := newPair()
		f := fk(cake, fruit, "cake_id", "code")
		fruit.AddForeignKey(f)
		r := Validate([]*Table{cake, fruit})
		require.Len(t, r.Errors, 1)
		assert.Equal(t, `fruit.cake_id: foreign key "fk-fruit-cake_id": type int64 does not match cake.code type string`, r.Errors[0].Error())
		require.Len(t, r.Warnings, 1)
		assert.Contains(t, r.Warnings[0].Message, "are not its primary key")
		assert.True(t, r.HasBreakingChanges())
		assert.Contains(t, r.String(), "[BREAKING]")
	})
	t.Run("Arity", func(t *testing.T) {
		cake, fruit := newPair()
		f := fk(cake, fruit, "cake_id", "id")
		f.RefColumns = append(f.RefColumns, f.RefColumns[0])
		fruit.AddForeignKey(f)
		r := ValidateTable(fruit)
		require.Len(t, r.Errors, 1)
		assert.Equal(t, `fruit: foreign key "fk-fruit-cake_id": 1 columns reference 2 columns`, r.Errors[0].Error())
	})
	t.Run("DuplicateSymbol", func(t *testing.T) {
		cake, fruit := newPair()
		fruit.AddForeignKey(fk(cake, fruit, "cake_id", "id"))
		cake.AddForeignKey(&ForeignKey{
			Symbol:     "fk-fruit-cake_id",
			Columns:    []*Column{cake.Columns[0]},
			RefTable:   cake,
			RefColumns: []*Column{cake.Columns[0]},
		})
		r := Validate([]*Table{cake, fruit})
		require.Len(t, r.Errors, 1)
		assert.Equal(t, `fruit: foreign key name "fk-fruit-cake_id" is already used by table "cake"`, r.Errors[0].Error())
	})
	t.Run("MissingTable", func(t *testing.T) {
		cake, fruit := newPair()
		fruit.AddForeignKey(fk(cake, fruit, "cake_id", "id"))
		r := Validate([]*Table{fruit})
		require.Len(t, r.Errors, 1)
		assert.Equal(t, `fruit: foreign key "fk-fruit-cake_id" references non-existent table "cake"`, r.Errors[0].Error())
		assert.True(t, relgraph.IsValidationError(r.Err()))
	})
	t.Run("Warnings", func(t *testing.T) {
		cake, fruit := newPair()
		f := fk(cake, fruit, "cake_id", "id")
		f.OnDelete = sqlschema.SetDefault
		f.Symbol = "fk_" + strings.Repeat("x", maxIdentLen)
		fruit.AddForeignKey(f)
		noKey := NewTable("log").AddColumn(&Column{Name: "line", Type: relation.TypeString})
		r := Validate([]*Table{cake, fruit, noKey})
		assert.False(t, r.HasErrors(), r.String())
		assert.Len(t, r.Warnings, 3)
		assert.False(t, r.HasBreakingChanges())
	})
}

func TestSQLType(t *testing.T) {
	tests := []struct {
		dialect string
		column  *Column
		want    string
	}{
		{dialect.SQLite, &Column{Type: relation.TypeString, Size: 10}, "text"},
		{dialect.SQLite, &Column{Type: relation.TypeInt64}, "integer"},
		{dialect.Postgres, &Column{Type: relation.TypeString}, "character varying"},
		{dialect.Postgres, &Column{Type: relation.TypeString, Size: 64}, "character varying(64)"},
		{dialect.Postgres, &Column{Type: relation.TypeTime}, "timestamp with time zone"},
		{dialect.Postgres, &Column{Type: relation.TypeUUID}, "uuid"},
		{dialect.MySQL, &Column{Type: relation.TypeString}, "varchar(255)"},
		{dialect.MySQL, &Column{Type: relation.TypeUUID}, "char(36)"},
		{dialect.MySQL, &Column{Type: relation.TypeFloat}, "double"},
		{dialect.MySQL, &Column{Type: relation.TypeFloat, SchemaType: "decimal(10,2)"}, "decimal(10,2)"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.want, func(t *testing.T) {
			got, err := SQLType(tt.dialect, tt.column)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	_, err := SQLType("oracle", &Column{Type: relation.TypeInt})
	assert.EqualError(t, err, `schema: unsupported dialect "oracle"`)
	_, err = SQLType(dialect.SQLite, &Column{Name: "blob", Type: "bytes"})
	assert.EqualError(t, err, `schema: unsupported type "bytes" for column "blob"`)
}

func TestAtlasType(t *testing.T) {
	typ, err := AtlasType(dialect.Postgres, &Column{Type: relation.TypeInt64})
	require.NoError(t, err)
	assert.Equal(t, &schema.IntegerType{T: "bigint"}, typ)

	typ, err = AtlasType(dialect.MySQL, &Column{Type: relation.TypeString})
	require.NoError(t, err)
	assert.Equal(t, &schema.StringType{T: "varchar", Size: 255}, typ)

	typ, err = AtlasType(dialect.MySQL, &Column{Type: relation.TypeUUID})
	require.NoError(t, err)
	assert.Equal(t, &schema.StringType{T: "char", Size: 36}, typ)

	typ, err = AtlasType(dialect.SQLite, &Column{Type: relation.TypeBool})
	require.NoError(t, err)
	assert.Equal(t, &schema.BoolType{T: "bool"}, typ)

	_, err = AtlasType("oracle", &Column{Type: relation.TypeInt})
	assert.Error(t, err)
}

func TestStatements(t *testing.T) {
	t.Run("SQLite", func(t *testing.T) {
		stmts, err := Statements(dialect.SQLite, bakeryTables(t))
		require.NoError(t, err)
		assert.Equal(t, []string{
			`CREATE TABLE "cake"("id" integer NOT NULL, "name" text NOT NULL, PRIMARY KEY("id"))`,
			`CREATE TABLE "fruit"("id" integer NOT NULL, "name" text NOT NULL, "cake_id" integer NULL, PRIMARY KEY("id"), CONSTRAINT "fk-fruit-cake_id" FOREIGN KEY ("cake_id") REFERENCES "cake" ("id") ON DELETE SET NULL)`,
			`CREATE TABLE "vendor"("id" integer NOT NULL, "name" text NOT NULL, PRIMARY KEY("id"))`,
			`CREATE TABLE "filling"("id" integer NOT NULL, "name" text NOT NULL, "vendor_id" integer NULL, PRIMARY KEY("id"), CONSTRAINT "fk-filling-vendor_id" FOREIGN KEY ("vendor_id") REFERENCES "vendor" ("id"))`,
			`CREATE TABLE "cake_filling"("cake_id" integer NOT NULL, "filling_id" integer NOT NULL, PRIMARY KEY("cake_id", "filling_id"), CONSTRAINT "fk-cake_filling-filling_id" FOREIGN KEY ("filling_id") REFERENCES "filling" ("id") ON DELETE CASCADE, CONSTRAINT "fk-cake_filling-cake_id" FOREIGN KEY ("cake_id") REFERENCES "cake" ("id") ON DELETE CASCADE ON UPDATE CASCADE)`,
		}, stmts)
	})
	t.Run("MySQL", func(t *testing.T) {
		stmts, err := Statements(dialect.MySQL, bakeryTables(t)[:2])
		require.NoError(t, err)
		assert.Equal(t, []string{
			"CREATE TABLE `cake`(`id` int NOT NULL, `name` varchar(255) NOT NULL, PRIMARY KEY(`id`))",
			"CREATE TABLE `fruit`(`id` int NOT NULL, `name` varchar(255) NOT NULL, `cake_id` int NULL, PRIMARY KEY(`id`), CONSTRAINT `fk-fruit-cake_id` FOREIGN KEY (`cake_id`) REFERENCES `cake` (`id`) ON DELETE SET NULL)",
		}, stmts)
	})
	t.Run("Cycle", func(t *testing.T) {
		employee := NewTable("employee").SetSchema("hr").
			AddPrimary(&Column{Name: "id", Type: relation.TypeInt}).
			AddColumn(&Column{Name: "team_id", Type: relation.TypeInt, Nullable: true})
		team := NewTable("team").SetSchema("hr").
			AddPrimary(&Column{Name: "id", Type: relation.TypeInt}).
			AddColumn(&Column{Name: "lead_id", Type: relation.TypeInt, Nullable: true})
		employee.AddForeignKey(&ForeignKey{Symbol: "fk-employee-team_id", Columns: employee.Columns[1:], RefTable: team, RefColumns: team.Columns[:1]})
		team.AddForeignKey(&ForeignKey{Symbol: "fk-team-lead_id", Columns: team.Columns[1:], RefTable: employee, RefColumns: employee.Columns[:1]})
		stmts, err := Statements(dialect.Postgres, Sort([]*Table{employee, team}))
		require.NoError(t, err)
		assert.Equal(t, []string{
			`CREATE TABLE "hr"."employee"("id" integer NOT NULL, "team_id" integer NULL, PRIMARY KEY("id"))`,
			`CREATE TABLE "hr"."team"("id" integer NOT NULL, "lead_id" integer NULL, PRIMARY KEY("id"), CONSTRAINT "fk-team-lead_id" FOREIGN KEY ("lead_id") REFERENCES "hr"."employee" ("id"))`,
			`ALTER TABLE "hr"."employee" ADD CONSTRAINT "fk-employee-team_id" FOREIGN KEY ("team_id") REFERENCES "hr"."team" ("id")`,
		}, stmts)
	})
	t.Run("UnsupportedType", func(t *testing.T) {
		tbl := NewTable("blob").AddColumn(&Column{Name: "data", Type: "bytes"})
		_, err := Statements(dialect.Postgres, []*Table{tbl})
		require.Error(t, err)
	})
}

func TestTable(t *testing.T) {
	tbl := &Table{Name: "cake", Columns: []*Column{{Name: "id"}}}
	c, ok := tbl.Column("id")
	require.True(t, ok)
	assert.Equal(t, "id", c.Name)
	_, ok = tbl.Column("name")
	assert.False(t, ok)

	assert.Equal(t, "cake", tbl.Ref().String())
	assert.Equal(t, "bakery.cake", NewTable("cake").SetSchema("bakery").Ref().String())

	col := NewColumn(relation.String("name").Optional().Annotations(sqlschema.Size(64)))
	assert.Equal(t, &Column{Name: "name", Type: relation.TypeString, Nullable: true, Size: 64}, col)
}
