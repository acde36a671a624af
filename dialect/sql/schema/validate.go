package schema

import (
	"fmt"
	"strings"

	"github.com/syssam/relgraph"
	"github.com/syssam/relgraph/dialect/sqlschema"
	"github.com/syssam/relgraph/relation"
)

// maxIdentLen is the identifier length limit of PostgreSQL and MySQL.
const maxIdentLen = 63

// ValidationError represents a schema validation error.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking indicates the schema cannot be created as declared.
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges returns true if any error or warning is breaking.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, e := range r.Errors {
		if e.Breaking {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Breaking {
			return true
		}
	}
	return false
}

// Err returns the errors as a single error, or nil.
func (r *ValidationResult) Err() error {
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = relgraph.NewValidationError(e.Table, e)
	}
	return relgraph.NewAggregateError(errs...)
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	write := func(title string, list []*ValidationError) {
		if len(list) == 0 {
			return
		}
		sb.WriteString(title + ":\n")
		for _, e := range list {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	write("Errors", r.Errors)
	write("Warnings", r.Warnings)
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

func (r *ValidationResult) merge(o *ValidationResult) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// ValidateTable validates a single table definition and its foreign keys.
func ValidateTable(t *Table) *ValidationResult {
	result := &ValidationResult{}
	if len(t.PrimaryKey) == 0 {
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:   t.Name,
			Message: "table has no primary key",
		})
	}
	colNames := make(map[string]bool)
	for _, c := range t.Columns {
		if colNames[c.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:    t.Name,
				Column:   c.Name,
				Message:  "duplicate column name",
				Breaking: true,
			})
		}
		colNames[c.Name] = true
	}
	for _, fk := range t.ForeignKeys {
		validateForeignKey(t, fk, colNames, result)
	}
	return result
}

func validateForeignKey(t *Table, fk *ForeignKey, colNames map[string]bool, result *ValidationResult) {
	fail := func(column, format string, args ...any) {
		result.Errors = append(result.Errors, &ValidationError{
			Table:    t.Name,
			Column:   column,
			Message:  fmt.Sprintf("foreign key %q: ", fk.Symbol) + fmt.Sprintf(format, args...),
			Breaking: true,
		})
	}
	warn := func(column, format string, args ...any) {
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:   t.Name,
			Column:  column,
			Message: fmt.Sprintf("foreign key %q: ", fk.Symbol) + fmt.Sprintf(format, args...),
		})
	}
	if len(fk.Columns) == 0 {
		fail("", "no columns")
		return
	}
	if fk.RefTable == nil {
		fail("", "no referenced table")
		return
	}
	if len(fk.Columns) != len(fk.RefColumns) {
		fail("", "%d columns reference %d columns", len(fk.Columns), len(fk.RefColumns))
		return
	}
	if len(fk.Symbol) > maxIdentLen {
		warn("", "name exceeds %d characters and may be truncated", maxIdentLen)
	}
	for i, c := range fk.Columns {
		if !colNames[c.Name] {
			fail(c.Name, "references non-existent column %q", c.Name)
			continue
		}
		ref := fk.RefColumns[i]
		if _, ok := fk.RefTable.Column(ref.Name); !ok {
			fail(c.Name, "referenced column %q does not exist in %q", ref.Name, fk.RefTable.Name)
			continue
		}
		if !compatible(c, ref) {
			fail(c.Name, "type %s does not match %s.%s type %s", c.Type, fk.RefTable.Name, ref.Name, ref.Type)
		}
		if !c.Nullable && (fk.OnDelete == sqlschema.SetNull || fk.OnUpdate == sqlschema.SetNull) {
			fail(c.Name, "SET NULL action on a NOT NULL column")
		}
	}
	if !fk.RefTable.IsPrimary(fk.RefColumns) {
		warn("", "referenced columns (%s) of %q are not its primary key and must be unique",
			strings.Join(columnNames(fk.RefColumns), ", "), fk.RefTable.Name)
	}
	if fk.OnDelete == sqlschema.SetDefault || fk.OnUpdate == sqlschema.SetDefault {
		warn("", "SET DEFAULT action without column defaults behaves like SET NULL")
	}
}

// compatible reports whether a referencing column can hold the values of
// the referenced one. int and int64 are interchangeable.
func compatible(c, ref *Column) bool {
	if c.SchemaType != "" || ref.SchemaType != "" {
		return strings.EqualFold(c.SchemaType, ref.SchemaType) || c.SchemaType == "" || ref.SchemaType == ""
	}
	integer := func(c *Column) bool { return c.Type == relation.TypeInt || c.Type == relation.TypeInt64 }
	return c.Type == ref.Type || integer(c) && integer(ref)
}

// Validate validates all tables, their foreign keys and the uniqueness of
// table and constraint names.
func Validate(tables []*Table) *ValidationResult {
	result := &ValidationResult{}
	tableNames := make(map[string]bool)
	symbols := make(map[string]string)
	for _, t := range tables {
		if tableNames[t.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:    t.Name,
				Message:  "duplicate table name",
				Breaking: true,
			})
		}
		tableNames[t.Name] = true
		result.merge(ValidateTable(t))
		for _, fk := range t.ForeignKeys {
			if owner, ok := symbols[fk.Symbol]; ok {
				result.Errors = append(result.Errors, &ValidationError{
					Table:    t.Name,
					Message:  fmt.Sprintf("foreign key name %q is already used by table %q", fk.Symbol, owner),
					Breaking: true,
				})
			}
			symbols[fk.Symbol] = t.Name
		}
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			if fk.RefTable == nil || !tableNames[fk.RefTable.Name] {
				name := "<nil>"
				if fk.RefTable != nil {
					name = fk.RefTable.Name
				}
				result.Errors = append(result.Errors, &ValidationError{
					Table:    t.Name,
					Message:  fmt.Sprintf("foreign key %q references non-existent table %q", fk.Symbol, name),
					Breaking: true,
				})
			}
		}
	}
	return result
}
