// Package load reads entity graphs declared in YAML into a relation.Registry.
//
//	entities:
//	  - name: Cake
//	    columns:
//	      - {name: id, type: int}
//	      - {name: name, type: string}
//	  - name: Fruit
//	    columns:
//	      - {name: id, type: int}
//	      - {name: cake_id, type: int, optional: true}
//	relations:
//	  - {entity: Fruit, name: cake, type: belongs_to, to: Cake, on_delete: set null}
//	  - {entity: Cake, name: fruits, type: has_many, to: Fruit}
//
// Omitted relation columns default to the primary key of the referenced
// side and to inflect.ForeignKey of its entity name on the referencing
// side, e.g. "cake_id" for Cake.
package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-openapi/inflect"
	"gopkg.in/yaml.v3"

	"github.com/syssam/relgraph"
	"github.com/syssam/relgraph/dialect/sql"
	"github.com/syssam/relgraph/dialect/sqlschema"
	"github.com/syssam/relgraph/relation"
)

type (
	// File is the document root.
	File struct {
		Entities  []Entity   `yaml:"entities"`
		Relations []Relation `yaml:"relations"`
		Links     []Link     `yaml:"links"`
	}

	// Entity declares an entity and its table.
	Entity struct {
		Name       string   `yaml:"name"`
		Table      string   `yaml:"table"`
		Schema     string   `yaml:"schema"`
		Plural     bool     `yaml:"plural"`
		Columns    []Column `yaml:"columns"`
		PrimaryKey []string `yaml:"primary_key"`
	}

	// Column declares a table column.
	Column struct {
		Name     string `yaml:"name"`
		Type     string `yaml:"type"`
		Optional bool   `yaml:"optional"`
		SQLType  string `yaml:"sql_type"`
		Size     int64  `yaml:"size"`
	}

	// Relation declares a relation named Name on Entity. A relation with
	// Through hops is declared over a junction table; any other relation
	// is direct.
	Relation struct {
		Entity        string      `yaml:"entity"`
		Name          string      `yaml:"name"`
		Type          string      `yaml:"type"`
		To            string      `yaml:"to"`
		FromColumns   []string    `yaml:"from_columns"`
		ToColumns     []string    `yaml:"to_columns"`
		OnDelete      string      `yaml:"on_delete"`
		OnUpdate      string      `yaml:"on_update"`
		FKName        string      `yaml:"fk_name"`
		ConditionType string      `yaml:"condition_type"`
		Where         []Predicate `yaml:"where"`
		Through       []Hop       `yaml:"through"`
	}

	// Hop references a direct relation as "Entity.name", optionally
	// walked in reverse and restricted by extra predicates.
	Hop struct {
		Relation string      `yaml:"relation"`
		Reverse  bool        `yaml:"reverse"`
		Where    []Predicate `yaml:"where"`
	}

	// Predicate compares a column of one side of a join with a value.
	Predicate struct {
		// Side is "left" (the source table) or "right" (the target table, the default).
		Side   string `yaml:"side"`
		Column string `yaml:"column"`
		// Op is one of eq, neq, gt, gte, lt, lte, like, in, is_null and not_null.
		Op    string `yaml:"op"`
		Value any    `yaml:"value"`
	}

	// Link declares a named multi-hop path.
	Link struct {
		Name string `yaml:"name"`
		From string `yaml:"from"`
		To   string `yaml:"to"`
		Path []Hop  `yaml:"path"`
	}
)

// Parse decodes a YAML document. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("load: decode: %w", err)
	}
	return &f, nil
}

// Load decodes a YAML document and builds its registry.
func Load(data []byte) (*relation.Registry, error) {
	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return f.Registry()
}

// LoadFile reads and loads the named YAML file.
func LoadFile(path string) (*relation.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	reg, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Registry builds the registry of f. Direct relations are registered
// first, so relations through a junction table and links may reference
// any of them regardless of their order in the file.
func (f *File) Registry() (*relation.Registry, error) {
	reg := relation.NewRegistry()
	for _, e := range f.Entities {
		ent, err := e.entity()
		if err != nil {
			return nil, fmt.Errorf("load: entity %s: %w", e.Name, err)
		}
		if err := reg.AddEntity(ent); err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
	}
	for _, through := range []bool{false, true} {
		for _, r := range f.Relations {
			if (len(r.Through) > 0) != through {
				continue
			}
			rel, err := r.related(reg)
			if err != nil {
				return nil, fmt.Errorf("load: relation %s.%s: %w", r.Entity, r.Name, err)
			}
			if err := reg.AddRelation(r.Name, rel); err != nil {
				return nil, fmt.Errorf("load: %w", err)
			}
		}
	}
	for _, l := range f.Links {
		link, err := l.link(reg)
		if err != nil {
			return nil, fmt.Errorf("load: link %s: %w", l.Name, err)
		}
		if err := reg.AddLink(link); err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
	}
	return reg, nil
}

func (e Entity) entity() (ent *relation.Entity, err error) {
	defer relgraph.Recover(&err)
	cols := make([]relation.Column, 0, len(e.Columns))
	for _, c := range e.Columns {
		col := relation.Column{Name: c.Name, Type: relation.ColumnType(strings.ToLower(c.Type)), Nullable: c.Optional}
		if c.SQLType != "" || c.Size > 0 {
			col = col.Annotations(sqlschema.Annotation{ColumnType: c.SQLType, Size: c.Size})
		}
		cols = append(cols, col)
	}
	opts := []relation.EntityOption{relation.Columns(cols...)}
	if len(e.PrimaryKey) > 0 {
		opts = append(opts, relation.PrimaryKey(e.PrimaryKey...))
	}
	if e.Table != "" {
		opts = append(opts, relation.TableName(e.Table))
	}
	if e.Plural {
		opts = append(opts, relation.PluralTable())
	}
	if e.Schema != "" {
		opts = append(opts, relation.Annotations(sqlschema.Schema(e.Schema)))
	}
	return relation.NewEntity(e.Name, opts...), nil
}

func (r Relation) related(reg *relation.Registry) (rel relation.Related, err error) {
	defer relgraph.Recover(&err)
	from, err := reg.Entity(r.Entity)
	if err != nil {
		return relation.Related{}, err
	}
	if r.To == "" {
		return relation.Related{}, errors.New("missing target entity")
	}
	to, err := reg.Entity(r.To)
	if err != nil {
		return relation.Related{}, err
	}
	if len(r.Through) > 0 {
		if len(r.Through) != 2 {
			return relation.Related{}, fmt.Errorf("through expects 2 hops, got %d", len(r.Through))
		}
		via, err := r.Through[0].def(reg)
		if err != nil {
			return relation.Related{}, err
		}
		def, err := r.Through[1].def(reg)
		if err != nil {
			return relation.Related{}, err
		}
		return relation.Through(from, to, via, def), nil
	}
	def, err := r.def(from, to)
	if err != nil {
		return relation.Related{}, err
	}
	return relation.Direct(from, to, def), nil
}

// def builds a direct relation. It panics on malformed declarations.
func (r Relation) def(from, to *relation.Entity) (relation.Def, error) {
	var (
		b        *relation.Builder
		fromCols = r.FromColumns
		toCols   = r.ToColumns
	)
	switch strings.ToLower(strings.TrimSpace(r.Type)) {
	case "belongs_to":
		b = relation.NewBelongsTo(from, to)
		if len(fromCols) == 0 {
			fromCols = []string{inflect.ForeignKey(to.Name())}
		}
		if len(toCols) == 0 {
			toCols = to.PrimaryKey().Columns()
		}
	default:
		typ, err := relation.ParseType(r.Type)
		if err != nil {
			return relation.Def{}, err
		}
		b = relation.NewBuilder(typ, from, to, false)
		if len(fromCols) == 0 {
			fromCols = from.PrimaryKey().Columns()
		}
		if len(toCols) == 0 {
			toCols = []string{inflect.ForeignKey(from.Name())}
		}
	}
	onDelete, err := sqlschema.ParseCascadeAction(r.OnDelete)
	if err != nil {
		return relation.Def{}, err
	}
	onUpdate, err := sqlschema.ParseCascadeAction(r.OnUpdate)
	if err != nil {
		return relation.Def{}, err
	}
	ct, err := sql.ParseConditionType(r.ConditionType)
	if err != nil {
		return relation.Def{}, err
	}
	b.From(fromCols...).
		To(toCols...).
		OnDelete(onDelete).
		OnUpdate(onUpdate).
		ConditionType(ct).
		FKName(r.FKName)
	if len(r.Where) > 0 {
		cond, err := condition(r.Where)
		if err != nil {
			return relation.Def{}, err
		}
		b.OnCondition(cond)
	}
	return b.Def(), nil
}

// def resolves the hop to the relation it references.
func (h Hop) def(reg *relation.Registry) (relation.Def, error) {
	entity, name, ok := strings.Cut(h.Relation, ".")
	if !ok {
		return relation.Def{}, fmt.Errorf("hop %q is not of the form Entity.relation", h.Relation)
	}
	rel, err := reg.Relation(entity, name)
	if err != nil {
		return relation.Def{}, err
	}
	if _, through := rel.Via(); through {
		return relation.Def{}, fmt.Errorf("hop %q is not a direct relation", h.Relation)
	}
	def := rel.Def()
	if h.Reverse {
		def = def.Rev()
	}
	if len(h.Where) > 0 {
		cond, err := condition(h.Where)
		if err != nil {
			return relation.Def{}, err
		}
		def = def.WithCondition(cond)
	}
	return def, nil
}

func (l Link) link(reg *relation.Registry) (link relation.Linked, err error) {
	defer relgraph.Recover(&err)
	from, err := reg.Entity(l.From)
	if err != nil {
		return relation.Linked{}, err
	}
	to, err := reg.Entity(l.To)
	if err != nil {
		return relation.Linked{}, err
	}
	path := make([]relation.Def, 0, len(l.Path))
	for _, h := range l.Path {
		def, err := h.def(reg)
		if err != nil {
			return relation.Linked{}, err
		}
		path = append(path, def)
	}
	return relation.Link(l.Name, from, to, path...), nil
}

// condition compiles the predicates into a custom join predicate. The
// predicates are validated once, and combined with AND.
func condition(preds []Predicate) (relation.OnConditionFunc, error) {
	for _, p := range preds {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}
	return func(left, right string) sql.Expr {
		exprs := make([]sql.Expr, len(preds))
		for i, p := range preds {
			table := right
			if strings.EqualFold(p.Side, "left") {
				table = left
			}
			exprs[i] = p.expr(sql.C(table, p.Column))
		}
		if len(exprs) == 1 {
			return exprs[0]
		}
		return sql.And(exprs...)
	}, nil
}

func (p Predicate) validate() error {
	switch strings.ToLower(p.Side) {
	case "", "left", "right":
	default:
		return fmt.Errorf("predicate on %q: unknown side %q", p.Column, p.Side)
	}
	if p.Column == "" {
		return errors.New("predicate without column")
	}
	switch strings.ToLower(p.Op) {
	case "eq", "neq", "gt", "gte", "lt", "lte", "is_null", "not_null":
	case "like":
		if _, ok := p.Value.(string); !ok {
			return fmt.Errorf("predicate on %q: like expects a string pattern, got %T", p.Column, p.Value)
		}
	case "in":
		if _, ok := p.Value.([]any); !ok {
			return fmt.Errorf("predicate on %q: in expects a list, got %T", p.Column, p.Value)
		}
	default:
		return fmt.Errorf("predicate on %q: unknown operator %q", p.Column, p.Op)
	}
	return nil
}

func (p Predicate) expr(c sql.Column) sql.Expr {
	switch strings.ToLower(p.Op) {
	case "neq":
		return c.NEQ(p.Value)
	case "gt":
		return c.GT(p.Value)
	case "gte":
		return c.GTE(p.Value)
	case "lt":
		return c.LT(p.Value)
	case "lte":
		return c.LTE(p.Value)
	case "like":
		return c.Like(p.Value.(string))
	case "in":
		return c.In(p.Value.([]any)...)
	case "is_null":
		return c.IsNull()
	case "not_null":
		return c.NotNull()
	default:
		return c.EQ(p.Value)
	}
}
