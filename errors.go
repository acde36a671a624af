package relgraph

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors.
var (
	// ErrNotFound is returned when a named entity, relation or link is not registered.
	ErrNotFound = errors.New("relgraph: not found")

	// ErrInvalidDeclaration is matched by every DeclarationError.
	ErrInvalidDeclaration = errors.New("relgraph: invalid declaration")

	// ErrDuplicate is returned when a name is registered twice.
	ErrDuplicate = errors.New("relgraph: duplicate declaration")
)

// NotFoundError is returned by registry lookups.
type NotFoundError struct {
	kind string // "entity", "relation" or "link"
	name string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("relgraph: %s %q not found", e.kind, e.name)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Kind returns the kind of the missing declaration.
func (e *NotFoundError) Kind() string {
	return e.kind
}

// Name returns the name that was looked up.
func (e *NotFoundError) Name() string {
	return e.name
}

// NewNotFoundError returns a new NotFoundError.
func NewNotFoundError(kind, name string) *NotFoundError {
	return &NotFoundError{kind: kind, name: name}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// DeclarationError describes a malformed relation or entity declaration.
// Declarations are programmer input, so builders panic with a *DeclarationError
// instead of returning it.
type DeclarationError struct {
	Subject string // Entity, relation or link the declaration belongs to.
	Msg     string
}

// Error returns the error string.
func (e *DeclarationError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("relgraph: invalid declaration of %s: %s", e.Subject, e.Msg)
	}
	return fmt.Sprintf("relgraph: invalid declaration: %s", e.Msg)
}

// Is reports whether the target error matches DeclarationError.
func (e *DeclarationError) Is(err error) bool {
	return err == ErrInvalidDeclaration
}

// NewDeclarationError returns a new DeclarationError.
func NewDeclarationError(subject, format string, args ...any) *DeclarationError {
	return &DeclarationError{Subject: subject, Msg: fmt.Sprintf(format, args...)}
}

// IsDeclarationError returns true if the error is a DeclarationError.
func IsDeclarationError(err error) bool {
	if err == nil {
		return false
	}
	var e *DeclarationError
	return errors.As(err, &e)
}

// Recover converts a DeclarationError panic into a returned error.
// Other panics are re-raised. It must be called from a deferred function:
//
//	defer relgraph.Recover(&err)
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*DeclarationError); ok {
		*errp = e
		return
	}
	panic(r)
}

// DuplicateError is returned when a declaration name is already taken.
type DuplicateError struct {
	kind string
	name string
}

// Error returns the error string.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("relgraph: %s %q already declared", e.kind, e.name)
}

// Is reports whether the target error matches DuplicateError.
func (e *DuplicateError) Is(err error) bool {
	return err == ErrDuplicate
}

// NewDuplicateError returns a new DuplicateError.
func NewDuplicateError(kind, name string) *DuplicateError {
	return &DuplicateError{kind: kind, name: name}
}

// ValidationError represents a failed schema validation check.
type ValidationError struct {
	Name string // Table, constraint or column name
	Err  error  // Underlying validation error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("relgraph: validation failed for %q: %s", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError returns a new ValidationError.
func NewValidationError(name string, err error) *ValidationError {
	return &ValidationError{Name: name, Err: err}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "relgraph: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("relgraph: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
