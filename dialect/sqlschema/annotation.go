// Package sqlschema provides SQL-specific settings for relgraph entities,
// columns and relations.
//
//	relation.NewEntity("Cake", relation.Annotations(sqlschema.Table("cakes"), sqlschema.Schema("bakery")))
//	relation.Int("price").Annotations(sqlschema.ColumnType("numeric(10,2)"))
//	relation.NewBelongsTo(fruit, cake).Annotations(sqlschema.OnDelete(sqlschema.Cascade))
//
// # Cascade Actions
//
// Available constants for OnDelete and OnUpdate:
//
//	sqlschema.Cascade    - Delete/update related rows
//	sqlschema.SetNull    - Set foreign key to NULL
//	sqlschema.Restrict   - Prevent delete/update if related rows exist
//	sqlschema.SetDefault - Set foreign key to default value
//	sqlschema.NoAction   - No action (database default)
package sqlschema

import (
	"fmt"
	"strings"

	"ariga.io/atlas/sql/schema"
)

// CascadeAction defines cascade behavior for foreign key constraints.
// The zero value means no action was declared.
type CascadeAction string

const (
	Cascade    CascadeAction = "CASCADE"
	SetNull    CascadeAction = "SET NULL"
	Restrict   CascadeAction = "RESTRICT"
	SetDefault CascadeAction = "SET DEFAULT"
	NoAction   CascadeAction = "NO ACTION"
)

// Valid reports whether a is one of the declared actions.
func (a CascadeAction) Valid() bool {
	switch a {
	case Cascade, SetNull, Restrict, SetDefault, NoAction:
		return true
	}
	return false
}

// String returns the SQL keyword of the action.
func (a CascadeAction) String() string {
	return string(a)
}

// ReferenceOption converts the action to its atlas counterpart.
func (a CascadeAction) ReferenceOption() schema.ReferenceOption {
	switch a {
	case Cascade:
		return schema.Cascade
	case SetNull:
		return schema.SetNull
	case Restrict:
		return schema.Restrict
	case SetDefault:
		return schema.SetDefault
	case NoAction:
		return schema.NoAction
	}
	return ""
}

// FromReferenceOption converts an atlas reference option to a CascadeAction.
func FromReferenceOption(o schema.ReferenceOption) CascadeAction {
	return CascadeAction(strings.ToUpper(string(o)))
}

// ParseCascadeAction parses an action name. Case, underscores and hyphens
// are ignored, so "cascade", "set_null" and "Set-Default" all parse.
// The empty string parses as the zero action.
func ParseCascadeAction(s string) (CascadeAction, error) {
	norm := strings.ToUpper(strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(s)))
	a := CascadeAction(strings.Join(strings.Fields(norm), " "))
	if a == "" || a.Valid() {
		return a, nil
	}
	return "", fmt.Errorf("sqlschema: unknown cascade action %q", s)
}

// Annotation holds SQL-specific settings for entities, columns and relations.
// Can be used with functional constructors or struct literals:
//
//	sqlschema.OnDelete(sqlschema.Cascade)
//	sqlschema.Annotation{Table: "cakes", Schema: "bakery"}
type Annotation struct {
	// Table overrides the database table name for an entity.
	Table string

	// Schema specifies the database schema of an entity.
	Schema string

	// ColumnType sets a custom database column type.
	ColumnType string

	// Size overrides the column size (e.g., VARCHAR(Size)).
	Size int64

	// OnDelete sets the ON DELETE action of a relation.
	OnDelete CascadeAction

	// OnUpdate sets the ON UPDATE action of a relation.
	OnUpdate CascadeAction
}

// Table returns a table name annotation.
func Table(name string) Annotation {
	return Annotation{Table: name}
}

// Schema returns a schema annotation.
func Schema(name string) Annotation {
	return Annotation{Schema: name}
}

// ColumnType returns a column type annotation.
func ColumnType(typ string) Annotation {
	return Annotation{ColumnType: typ}
}

// Size returns a column size annotation.
func Size(size int64) Annotation {
	return Annotation{Size: size}
}

// OnDelete returns an ON DELETE annotation.
func OnDelete(action CascadeAction) Annotation {
	return Annotation{OnDelete: action}
}

// OnUpdate returns an ON UPDATE annotation.
func OnUpdate(action CascadeAction) Annotation {
	return Annotation{OnUpdate: action}
}

// Merge combines multiple annotations into one.
// Later annotations override earlier ones for the same setting.
func Merge(annotations ...Annotation) Annotation {
	result := Annotation{}
	for _, a := range annotations {
		if a.Table != "" {
			result.Table = a.Table
		}
		if a.Schema != "" {
			result.Schema = a.Schema
		}
		if a.ColumnType != "" {
			result.ColumnType = a.ColumnType
		}
		if a.Size != 0 {
			result.Size = a.Size
		}
		if a.OnDelete != "" {
			result.OnDelete = a.OnDelete
		}
		if a.OnUpdate != "" {
			result.OnUpdate = a.OnUpdate
		}
	}
	return result
}
