package sqlgraph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// ConstraintKind is the kind of a violated constraint.
type ConstraintKind int

// Constraint kinds.
const (
	NoConstraint ConstraintKind = iota
	UniqueConstraint
	ForeignKeyConstraint
	CheckConstraint
)

// String returns the name of the kind.
func (k ConstraintKind) String() string {
	switch k {
	case UniqueConstraint:
		return "unique"
	case ForeignKeyConstraint:
		return "foreign key"
	case CheckConstraint:
		return "check"
	default:
		return "none"
	}
}

// ConstraintError wraps a driver error caused by a constraint violation.
type ConstraintError struct {
	Kind ConstraintKind
	Err  error
}

// Error implements the error interface.
func (e *ConstraintError) Error() string {
	return fmt.Sprintf("sqlgraph: %s constraint violation: %v", e.Kind, e.Err)
}

// Unwrap returns the driver error.
func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// WrapConstraintError wraps err in a *ConstraintError when it is a
// constraint violation, and returns it unchanged otherwise.
func WrapConstraintError(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return err
	}
	if kind := Classify(err); kind != NoConstraint {
		return &ConstraintError{Kind: kind, Err: err}
	}
	return err
}

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	var e *ConstraintError
	return errors.As(err, &e) || Classify(err) != NoConstraint
}

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
func IsUniqueConstraintError(err error) bool {
	return kindOf(err) == UniqueConstraint
}

// IsForeignKeyConstraintError reports if the error resulted from a database
// foreign-key constraint violation, e.g. the parent row does not exist or
// is still referenced.
func IsForeignKeyConstraintError(err error) bool {
	return kindOf(err) == ForeignKeyConstraint
}

// IsCheckConstraintError reports if the error resulted from a database check constraint violation.
func IsCheckConstraintError(err error) bool {
	return kindOf(err) == CheckConstraint
}

func kindOf(err error) ConstraintKind {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return Classify(err)
}

// sqlStateError is implemented by errors carrying a SQLSTATE code, e.g. pgx.
type sqlStateError interface {
	SQLState() string
}

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
// See: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// Classify returns the kind of constraint err violates. Driver error codes
// are checked first; messages are matched for drivers without codes (SQLite).
func Classify(err error) ConstraintKind {
	if err == nil {
		return NoConstraint
	}
	var state string
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		state = string(pqErr.Code)
	} else if e, ok := asError[sqlStateError](err); ok {
		state = e.SQLState()
	}
	switch state {
	case pgUniqueViolation:
		return UniqueConstraint
	case pgForeignKeyViolation:
		return ForeignKeyConstraint
	case pgCheckViolation:
		return CheckConstraint
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlDuplicateEntry:
			return UniqueConstraint
		case mysqlForeignKeyParent, mysqlForeignKeyChild:
			return ForeignKeyConstraint
		case mysqlCheckConstraintViolate:
			return CheckConstraint
		}
	}
	msg := err.Error()
	switch {
	case containsAny(msg,
		"Error 1062",                 // MySQL
		"violates unique constraint", // Postgres
		"UNIQUE constraint failed",   // SQLite
	):
		return UniqueConstraint
	case containsAny(msg,
		"Error 1451",
		"Error 1452",
		"violates foreign key constraint",
		"FOREIGN KEY constraint failed",
	):
		return ForeignKeyConstraint
	case containsAny(msg,
		"Error 3819",
		"violates check constraint",
		"CHECK constraint failed",
	):
		return CheckConstraint
	}
	return NoConstraint
}

// asError attempts to extract an error implementing interface T from the error chain.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
