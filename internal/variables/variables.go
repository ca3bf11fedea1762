// Package variables implements the scope-chained environment used to check
// and evaluate stanza bodies.
//
// A Map is one lexical scope. Each stanza gets a root Map; every loop body,
// conditional arm and scan arm gets a child whose lookups fall through to its
// parent. A child's declarations are invisible to its parent and siblings.
package variables

import "errors"

// Scoping errors returned by Map operations. Callers attach the variable
// name for display.
var (
	ErrAlreadyDefined        = errors.New("variable already defined")
	ErrUndefined             = errors.New("undefined variable")
	ErrCannotAssignImmutable = errors.New("cannot assign immutable variable")
)

type binding[V any] struct {
	value   V
	mutable bool
}

// Map is a single scope in a chain of scopes.
type Map[K comparable, V any] struct {
	parent *Map[K, V]
	values map[K]*binding[V]
}

// NewMap creates a root scope.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{values: make(map[K]*binding[V])}
}

// NewChild creates a scope nested in parent.
func NewChild[K comparable, V any](parent *Map[K, V]) *Map[K, V] {
	return &Map[K, V]{parent: parent, values: make(map[K]*binding[V])}
}

// Parent returns the enclosing scope, or nil for a root scope.
func (m *Map[K, V]) Parent() *Map[K, V] {
	return m.parent
}

// Add declares name in this scope. Shadowing a binding of an enclosing scope
// is allowed; redeclaring a name in the same scope is ErrAlreadyDefined,
// whatever the mutability of either declaration.
func (m *Map[K, V]) Add(name K, value V, mutable bool) error {
	if _, exists := m.values[name]; exists {
		return ErrAlreadyDefined
	}
	m.values[name] = &binding[V]{value: value, mutable: mutable}
	return nil
}

// Set overwrites the nearest binding of name. The last write wins for
// later lookups in that scope and its descendants.
func (m *Map[K, V]) Set(name K, value V) error {
	b := m.lookup(name)
	if b == nil {
		return ErrUndefined
	}
	if !b.mutable {
		return ErrCannotAssignImmutable
	}
	b.value = value
	return nil
}

// Get returns the value of the nearest binding of name.
func (m *Map[K, V]) Get(name K) (V, bool) {
	if b := m.lookup(name); b != nil {
		return b.value, true
	}
	var zero V
	return zero, false
}

// IsMutable reports whether the nearest binding of name is mutable.
func (m *Map[K, V]) IsMutable(name K) bool {
	b := m.lookup(name)
	return b != nil && b.mutable
}

// Len returns the number of bindings declared in this scope, excluding
// enclosing scopes.
func (m *Map[K, V]) Len() int {
	return len(m.values)
}

func (m *Map[K, V]) lookup(name K) *binding[V] {
	for cur := m; cur != nil; cur = cur.parent {
		if b, ok := cur.values[name]; ok {
			return b
		}
	}
	return nil
}
