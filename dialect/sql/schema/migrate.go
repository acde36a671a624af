package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/relgraph/dialect"
	"github.com/syssam/relgraph/dialect/sql"
	"github.com/syssam/relgraph/dialect/sql/sqlgraph"
)

type (
	// Differ is the interface that wraps the Diff method.
	Differ interface {
		// Diff returns the changes migrating current to desired.
		Diff(current, desired *schema.Schema) ([]schema.Change, error)
	}

	// The DiffFunc type is an adapter to allow the use of ordinary function as Differ.
	// If f is a function with the appropriate signature, DiffFunc(f) is a Differ that calls f.
	DiffFunc func(current, desired *schema.Schema) ([]schema.Change, error)

	// DiffHook defines the "diff middleware". A function that gets a Differ and returns a Differ.
	DiffHook func(Differ) Differ

	// Applier is the interface that wraps the Apply method.
	Applier interface {
		// Apply executes the plan on conn.
		Apply(ctx context.Context, conn dialect.ExecQuerier, plan *migrate.Plan) error
	}

	// The ApplyFunc type is an adapter to allow the use of ordinary function as Applier.
	ApplyFunc func(context.Context, dialect.ExecQuerier, *migrate.Plan) error

	// ApplyHook defines the "migration applying middleware".
	ApplyHook func(Applier) Applier

	// Creator is the interface that wraps the Create method.
	Creator interface {
		// Create creates the given tables in the database.
		Create(context.Context, ...*Table) error
	}

	// The CreateFunc type is an adapter to allow the use of ordinary function as Creator.
	CreateFunc func(context.Context, ...*Table) error

	// Hook defines the "create middleware".
	Hook func(Creator) Creator
)

// Diff calls f(current, desired).
func (f DiffFunc) Diff(current, desired *schema.Schema) ([]schema.Change, error) {
	return f(current, desired)
}

// Apply calls f(ctx, conn, plan).
func (f ApplyFunc) Apply(ctx context.Context, conn dialect.ExecQuerier, plan *migrate.Plan) error {
	return f(ctx, conn, plan)
}

// Create calls f(ctx, tables...).
func (f CreateFunc) Create(ctx context.Context, tables ...*Table) error {
	return f(ctx, tables...)
}

// ChangeKind describes a kind of schema change.
type ChangeKind uint

// List of change types.
const (
	NoChange  ChangeKind = 0
	AddSchema ChangeKind = 1 << (iota - 1)
	ModifySchema
	DropSchema
	AddTable
	ModifyTable
	DropTable
	AddColumn
	ModifyColumn
	DropColumn
	AddIndex
	ModifyIndex
	DropIndex
	AddForeignKey
	ModifyForeignKey
	DropForeignKey
	AddCheck
	ModifyCheck
	DropCheck
)

// Is reports whether k contains the change kind c.
func (k ChangeKind) Is(c ChangeKind) bool {
	return k == c || k&c != 0
}

// kindOf returns the kind of an Atlas change.
func kindOf(c schema.Change) ChangeKind {
	switch c.(type) {
	case *schema.AddSchema:
		return AddSchema
	case *schema.ModifySchema:
		return ModifySchema
	case *schema.DropSchema:
		return DropSchema
	case *schema.AddTable:
		return AddTable
	case *schema.ModifyTable:
		return ModifyTable
	case *schema.DropTable:
		return DropTable
	case *schema.AddColumn:
		return AddColumn
	case *schema.ModifyColumn:
		return ModifyColumn
	case *schema.DropColumn:
		return DropColumn
	case *schema.AddIndex:
		return AddIndex
	case *schema.ModifyIndex:
		return ModifyIndex
	case *schema.DropIndex:
		return DropIndex
	case *schema.AddForeignKey:
		return AddForeignKey
	case *schema.ModifyForeignKey:
		return ModifyForeignKey
	case *schema.DropForeignKey:
		return DropForeignKey
	case *schema.AddCheck:
		return AddCheck
	case *schema.ModifyCheck:
		return ModifyCheck
	case *schema.DropCheck:
		return DropCheck
	}
	return NoChange
}

// MigrateOption allows configuring Atlas using functional arguments.
type MigrateOption func(*Atlas)

// WithSchemaName sets the database schema of tables that declare none.
// The connection's current schema is used by default.
func WithSchemaName(name string) MigrateOption {
	return func(a *Atlas) {
		a.schema = name
	}
}

// WithLogger sets the logger of applied changes.
func WithLogger(logger *slog.Logger) MigrateOption {
	return func(a *Atlas) {
		a.logger = logger
	}
}

// WithForeignKeys enables creating foreign keys in DDL (the default).
func WithForeignKeys(b bool) MigrateOption {
	return func(a *Atlas) {
		a.withForeignKeys = b
	}
}

// WithDropColumn sets the columns dropping option to the migration.
// Defaults to false.
func WithDropColumn(b bool) MigrateOption {
	return func(a *Atlas) {
		a.dropColumns = b
	}
}

// WithDropIndex sets the indexes dropping option to the migration.
// Defaults to false.
func WithDropIndex(b bool) MigrateOption {
	return func(a *Atlas) {
		a.dropIndexes = b
	}
}

// WithSkipChanges allows skipping/filtering list of changes
// returned by the Differ before executing migration planning.
//
//	WithSkipChanges(schema.DropTable|schema.DropColumn)
func WithSkipChanges(skip ChangeKind) MigrateOption {
	return func(a *Atlas) {
		a.skip = skip
	}
}

// WithDiffHook adds a list of DiffHook to the schema migration.
//
//	schema.WithDiffHook(func(next schema.Differ) schema.Differ {
//		return schema.DiffFunc(func(current, desired *atlas.Schema) ([]atlas.Change, error) {
//			// Code before standard diff.
//			changes, err := next.Diff(current, desired)
//			if err != nil {
//				return nil, err
//			}
//			// After diff, you can filter
//			// changes or return new ones.
//			return changes, nil
//		})
//	})
func WithDiffHook(hooks ...DiffHook) MigrateOption {
	return func(a *Atlas) {
		a.diffHooks = append(a.diffHooks, hooks...)
	}
}

// WithApplyHook adds a list of ApplyHook to the schema migration.
func WithApplyHook(hooks ...ApplyHook) MigrateOption {
	return func(a *Atlas) {
		a.applyHook = append(a.applyHook, hooks...)
	}
}

// WithHooks adds a list of hooks to the schema migration.
func WithHooks(hooks ...Hook) MigrateOption {
	return func(a *Atlas) {
		a.hooks = append(a.hooks, hooks...)
	}
}

// WithExecDriver routes the applied statements through drv, e.g. a
// dialect.Debug or sql.StatsDriver wrapping the migrated database.
// The schema is still inspected through the migrated database.
func WithExecDriver(drv dialect.Driver) MigrateOption {
	return func(a *Atlas) {
		a.exec = drv
	}
}

// Atlas is the Atlas based migration engine.
type Atlas struct {
	drv     *sql.Driver
	exec    dialect.Driver
	dialect string
	schema  string
	logger  *slog.Logger

	withForeignKeys bool
	dropColumns     bool
	dropIndexes     bool
	skip            ChangeKind

	diffHooks []DiffHook
	applyHook []ApplyHook
	hooks     []Hook
}

// NewMigrate creates a new Atlas from the given driver. The database is
// not accessed before the first Plan or Create.
func NewMigrate(drv *sql.Driver, opts ...MigrateOption) (*Atlas, error) {
	if drv == nil {
		return nil, errors.New("schema: nil driver")
	}
	a := &Atlas{
		drv:             drv,
		exec:            drv,
		dialect:         drv.Dialect(),
		withForeignKeys: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a, nil
}

// Create creates all schema resources in the database. It works in an "append-only"
// mode by default: tables, columns and foreign keys are added, but columns and indexes
// are dropped only when WithDropColumn or WithDropIndex is set.
func (a *Atlas) Create(ctx context.Context, tables ...*Table) error {
	var creator Creator = CreateFunc(a.create)
	for i := len(a.hooks) - 1; i >= 0; i-- {
		creator = a.hooks[i](creator)
	}
	return creator.Create(ctx, tables...)
}

func (a *Atlas) create(ctx context.Context, tables ...*Table) error {
	plan, err := a.Plan(ctx, tables...)
	if err != nil {
		return err
	}
	if len(plan.Changes) == 0 {
		a.logger.DebugContext(ctx, "schema is up to date", "tables", len(tables))
		return nil
	}
	var applier Applier = ApplyFunc(a.apply)
	for i := len(a.applyHook) - 1; i >= 0; i-- {
		applier = a.applyHook[i](applier)
	}
	// MySQL commits DDL implicitly.
	if a.dialect == dialect.MySQL {
		return applier.Apply(ctx, a.exec, plan)
	}
	tx, err := a.exec.Tx(ctx)
	if err != nil {
		return fmt.Errorf("schema: begin transaction: %w", err)
	}
	if err := applier.Apply(ctx, tx, plan); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	return tx.Commit()
}

func (a *Atlas) apply(ctx context.Context, conn dialect.ExecQuerier, plan *migrate.Plan) error {
	for _, c := range plan.Changes {
		a.logger.DebugContext(ctx, "applying schema change", "change", c.Comment)
		args := c.Args
		if args == nil {
			args = []any{}
		}
		if err := conn.Exec(ctx, c.Cmd, args, nil); err != nil {
			return fmt.Errorf("schema: %s: %w", c.Comment, sqlgraph.WrapConstraintError(err))
		}
	}
	return nil
}

// Plan inspects the database schemas of tables and returns the changes
// migrating them to the given tables. Tables are grouped by schema and
// each schema is inspected concurrently.
func (a *Atlas) Plan(ctx context.Context, tables ...*Table) (*migrate.Plan, error) {
	drv, err := a.atlasDriver()
	if err != nil {
		return nil, err
	}
	names, groups := a.group(tables)
	var (
		g, gctx = errgroup.WithContext(ctx)
		current = make([]*schema.Schema, len(names))
		missing = make([]bool, len(names))
	)
	for i, name := range names {
		g.Go(func() error {
			s, err := drv.InspectSchema(gctx, name, &schema.InspectOptions{
				Tables: tableNames(groups[name]),
			})
			switch {
			case schema.IsNotExistError(err):
				current[i], missing[i] = schema.New(name), true
			case err != nil:
				return fmt.Errorf("schema: inspect schema %q: %w", name, err)
			default:
				current[i] = s
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	desired, err := a.realm(names, groups, current)
	if err != nil {
		return nil, err
	}
	var differ Differ = DiffFunc(func(current, desired *schema.Schema) ([]schema.Change, error) {
		return drv.SchemaDiff(current, desired)
	})
	if !a.withForeignKeys {
		differ = withoutForeignKeys(differ)
	}
	for i := len(a.diffHooks) - 1; i >= 0; i-- {
		differ = a.diffHooks[i](differ)
	}
	var changes []schema.Change
	for i := range names {
		diff, err := differ.Diff(current[i], desired[i])
		if err != nil {
			return nil, fmt.Errorf("schema: diff schema %q: %w", names[i], err)
		}
		if missing[i] {
			changes = append(changes, &schema.AddSchema{S: desired[i]})
		}
		changes = append(changes, diff...)
	}
	changes = filterChanges(a.skipKinds(), changes)
	if len(changes) == 0 {
		return &migrate.Plan{Name: "changes"}, nil
	}
	var opts []migrate.PlanOption
	if a.dialect == dialect.SQLite {
		// SQLite rejects qualified names in REFERENCES clauses.
		opts = append(opts, func(o *migrate.PlanOptions) {
			q := ""
			o.SchemaQualifier = &q
		})
	}
	plan, err := drv.PlanChanges(ctx, "changes", changes, opts...)
	if err != nil {
		return nil, fmt.Errorf("schema: plan changes: %w", err)
	}
	return plan, nil
}

func (a *Atlas) atlasDriver() (migrate.Driver, error) {
	var (
		drv migrate.Driver
		err error
	)
	switch a.dialect {
	case dialect.SQLite:
		drv, err = sqlite.Open(a.drv.DB())
	case dialect.Postgres:
		drv, err = postgres.Open(a.drv.DB())
	case dialect.MySQL:
		drv, err = mysql.Open(a.drv.DB())
	default:
		return nil, fmt.Errorf("schema: unsupported dialect %q", a.dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("schema: open %s driver: %w", a.dialect, err)
	}
	return drv, nil
}

// group returns the schema names of tables in order of appearance and
// the tables of each.
func (a *Atlas) group(tables []*Table) ([]string, map[string][]*Table) {
	var (
		names  []string
		groups = make(map[string][]*Table)
	)
	for _, t := range tables {
		name := t.Schema
		if name == "" {
			name = a.schema
		}
		if _, ok := groups[name]; !ok {
			names = append(names, name)
		}
		groups[name] = append(groups[name], t)
	}
	return names, groups
}

// realm converts the tables into Atlas schemas named after the inspected ones.
func (a *Atlas) realm(names []string, groups map[string][]*Table, current []*schema.Schema) ([]*schema.Schema, error) {
	var (
		desired = make([]*schema.Schema, len(names))
		byTable = make(map[*Table]*schema.Table)
	)
	for i, name := range names {
		desired[i] = schema.New(current[i].Name)
		for _, t := range groups[name] {
			at, err := a.atlasTable(t)
			if err != nil {
				return nil, err
			}
			desired[i].AddTables(at)
			byTable[t] = at
		}
	}
	for _, ts := range groups {
		for _, t := range ts {
			at := byTable[t]
			for _, fk := range t.ForeignKeys {
				ref, ok := byTable[fk.RefTable]
				if !ok {
					return nil, fmt.Errorf("schema: foreign key %q references table %q that is not migrated", fk.Symbol, fk.RefTable.Name)
				}
				afk := schema.NewForeignKey(fk.Symbol).
					SetTable(at).
					SetRefTable(ref).
					SetOnDelete(referenceOption(fk.OnDelete.ReferenceOption())).
					SetOnUpdate(referenceOption(fk.OnUpdate.ReferenceOption()))
				for i, c := range fk.Columns {
					col, ok1 := at.Column(c.Name)
					refCol, ok2 := ref.Column(fk.RefColumns[i].Name)
					if !ok1 || !ok2 {
						return nil, fmt.Errorf("schema: foreign key %q has unknown columns", fk.Symbol)
					}
					afk.AddColumns(col)
					afk.AddRefColumns(refCol)
				}
				at.AddForeignKeys(afk)
			}
		}
	}
	return desired, nil
}

func (a *Atlas) atlasTable(t *Table) (*schema.Table, error) {
	at := schema.NewTable(t.Name)
	for _, c := range t.Columns {
		typ, err := AtlasType(a.dialect, c)
		if err != nil {
			return nil, fmt.Errorf("schema: table %q: %w", t.Name, err)
		}
		at.AddColumns(schema.NewColumn(c.Name).SetType(typ).SetNull(c.Nullable))
	}
	if len(t.PrimaryKey) > 0 {
		pk := make([]*schema.Column, 0, len(t.PrimaryKey))
		for _, c := range t.PrimaryKey {
			col, ok := at.Column(c.Name)
			if !ok {
				return nil, fmt.Errorf("schema: table %q: primary key column %q is not declared", t.Name, c.Name)
			}
			pk = append(pk, col)
		}
		at.SetPrimaryKey(schema.NewPrimaryKey(pk...))
	}
	return at, nil
}

// referenceOption defaults undeclared actions to NO ACTION, as inspected
// from the database.
func referenceOption(o schema.ReferenceOption) schema.ReferenceOption {
	if o == "" {
		return schema.NoAction
	}
	return o
}

func (a *Atlas) skipKinds() ChangeKind {
	skip := a.skip
	if !a.dropColumns {
		skip |= DropColumn
	}
	if !a.dropIndexes {
		skip |= DropIndex
	}
	return skip
}

// filterChanges removes the changes of the skipped kinds, including the
// nested changes of modified tables.
func filterChanges(skip ChangeKind, changes []schema.Change) []schema.Change {
	if skip == NoChange {
		return changes
	}
	out := make([]schema.Change, 0, len(changes))
	for _, c := range changes {
		if skip.Is(kindOf(c)) {
			continue
		}
		if m, ok := c.(*schema.ModifyTable); ok {
			m.Changes = filterChanges(skip, m.Changes)
			if len(m.Changes) == 0 {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// withoutForeignKeys strips foreign keys from the changes of next.
func withoutForeignKeys(next Differ) Differ {
	return DiffFunc(func(current, desired *schema.Schema) ([]schema.Change, error) {
		changes, err := next.Diff(current, desired)
		if err != nil {
			return nil, err
		}
		for _, c := range changes {
			switch c := c.(type) {
			case *schema.AddTable:
				c.T.ForeignKeys = nil
			case *schema.ModifyTable:
				c.Changes = slices.DeleteFunc(c.Changes, func(c schema.Change) bool {
					switch c.(type) {
					case *schema.AddForeignKey, *schema.DropForeignKey, *schema.ModifyForeignKey:
						return true
					}
					return false
				})
			}
		}
		return changes, nil
	})
}

func tableNames(tables []*Table) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}
