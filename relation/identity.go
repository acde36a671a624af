package relation

import "strings"

// Identity is the ordered, non-empty list of columns one side of a relation
// is keyed on. Single and composite keys are handled the same way.
type Identity struct {
	cols []string
}

// Unary returns a single-column identity.
func Unary(col string) Identity {
	return Identity{cols: []string{col}}
}

// Binary returns a two-column identity.
func Binary(c1, c2 string) Identity {
	return Identity{cols: []string{c1, c2}}
}

// Ternary returns a three-column identity.
func Ternary(c1, c2, c3 string) Identity {
	return Identity{cols: []string{c1, c2, c3}}
}

// Many returns an identity over cols.
func Many(cols ...string) Identity {
	return Identity{cols: append([]string(nil), cols...)}
}

// Columns returns a copy of the column names.
func (i Identity) Columns() []string {
	return append([]string(nil), i.cols...)
}

// Arity returns the number of columns.
func (i Identity) Arity() int {
	return len(i.cols)
}

// IsZero reports whether the identity holds no columns.
func (i Identity) IsZero() bool {
	return len(i.cols) == 0
}

// Equal reports whether both identities name the same columns in the same order.
func (i Identity) Equal(o Identity) bool {
	if len(i.cols) != len(o.cols) {
		return false
	}
	for k := range i.cols {
		if i.cols[k] != o.cols[k] {
			return false
		}
	}
	return true
}

// String returns the column for unary identities and "(c1, c2, ...)" otherwise.
func (i Identity) String() string {
	if len(i.cols) == 1 {
		return i.cols[0]
	}
	return "(" + strings.Join(i.cols, ", ") + ")"
}
