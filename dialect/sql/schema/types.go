package schema

import (
	"fmt"
	"strconv"
	"strings"

	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/relgraph/dialect"
	"github.com/syssam/relgraph/relation"
)

// defaultStringSize is the VARCHAR size of MySQL string columns.
const defaultStringSize = 255

// typeNames maps column types to the base type name of each dialect.
var typeNames = map[string]map[relation.ColumnType]string{
	dialect.SQLite: {
		relation.TypeInt:    "integer",
		relation.TypeInt64:  "integer",
		relation.TypeFloat:  "real",
		relation.TypeString: "text",
		relation.TypeBool:   "bool",
		relation.TypeTime:   "datetime",
		relation.TypeUUID:   "uuid",
	},
	dialect.Postgres: {
		relation.TypeInt:    "integer",
		relation.TypeInt64:  "bigint",
		relation.TypeFloat:  "double precision",
		relation.TypeString: "character varying",
		relation.TypeBool:   "boolean",
		relation.TypeTime:   "timestamp with time zone",
		relation.TypeUUID:   "uuid",
	},
	dialect.MySQL: {
		relation.TypeInt:    "int",
		relation.TypeInt64:  "bigint",
		relation.TypeFloat:  "double",
		relation.TypeString: "varchar",
		relation.TypeBool:   "bool",
		relation.TypeTime:   "timestamp",
		relation.TypeUUID:   "char",
	},
}

// SQLType returns the column type of c in the given dialect, as written
// in a CREATE TABLE statement.
func SQLType(dialectName string, c *Column) (string, error) {
	if c.SchemaType != "" {
		return c.SchemaType, nil
	}
	names, ok := typeNames[dialectName]
	if !ok {
		return "", fmt.Errorf("schema: unsupported dialect %q", dialectName)
	}
	name, ok := names[c.Type]
	if !ok {
		return "", fmt.Errorf("schema: unsupported type %q for column %q", c.Type, c.Name)
	}
	if size := stringSize(dialectName, c); size > 0 {
		return name + "(" + strconv.FormatInt(size, 10) + ")", nil
	}
	return name, nil
}

// stringSize returns the size of sized string types, or 0.
func stringSize(dialectName string, c *Column) int64 {
	switch {
	case dialectName == dialect.MySQL && c.Type == relation.TypeUUID:
		return 36
	case c.Type != relation.TypeString || dialectName == dialect.SQLite:
		return 0
	case c.Size > 0:
		return c.Size
	case dialectName == dialect.MySQL:
		return defaultStringSize
	}
	return 0
}

// AtlasType returns the Atlas type of c in the given dialect.
func AtlasType(dialectName string, c *Column) (schema.Type, error) {
	if c.SchemaType != "" {
		return parseType(dialectName, strings.ToLower(c.SchemaType))
	}
	names, ok := typeNames[dialectName]
	if !ok {
		return nil, fmt.Errorf("schema: unsupported dialect %q", dialectName)
	}
	name := names[c.Type]
	switch c.Type {
	case relation.TypeInt, relation.TypeInt64:
		return &schema.IntegerType{T: name}, nil
	case relation.TypeFloat:
		return &schema.FloatType{T: name}, nil
	case relation.TypeString:
		return &schema.StringType{T: name, Size: int(stringSize(dialectName, c))}, nil
	case relation.TypeBool:
		return &schema.BoolType{T: name}, nil
	case relation.TypeTime:
		return &schema.TimeType{T: name}, nil
	case relation.TypeUUID:
		if dialectName == dialect.MySQL {
			return &schema.StringType{T: name, Size: 36}, nil
		}
		return &schema.UUIDType{T: name}, nil
	}
	return nil, fmt.Errorf("schema: unsupported type %q for column %q", c.Type, c.Name)
}

func parseType(dialectName, typ string) (schema.Type, error) {
	switch dialectName {
	case dialect.SQLite:
		return sqlite.ParseType(typ)
	case dialect.Postgres:
		return postgres.ParseType(typ)
	case dialect.MySQL:
		return mysql.ParseType(typ)
	}
	return nil, fmt.Errorf("schema: unsupported dialect %q", dialectName)
}
