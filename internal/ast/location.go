package ast

import (
	"fmt"
	"sync"
)

// Location is a zero-based position in a program source.
type Location struct {
	Row    int
	Column int
}

// String renders the location one-based, as editors display it.
func (l Location) String() string {
	return fmt.Sprintf("(%d, %d)", l.Row+1, l.Column+1)
}

// Symbol is an interned name. Resolve it through the SymbolTable that
// produced it.
type Symbol uint32

// SymbolTable interns names. The zero value is ready to use and safe for
// concurrent use.
type SymbolTable struct {
	mu      sync.RWMutex
	names   []string
	symbols map[string]Symbol
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]Symbol)}
}

// Add interns name and returns its symbol. Adding the same name twice
// returns the same symbol.
func (t *SymbolTable) Add(name string) Symbol {
	t.mu.Lock()
	defer t.mu.Unlock()

	if sym, ok := t.symbols[name]; ok {
		return sym
	}
	if t.symbols == nil {
		t.symbols = make(map[string]Symbol)
	}
	sym := Symbol(len(t.names))
	t.names = append(t.names, name)
	t.symbols[name] = sym
	return sym
}

// Resolve returns the text of sym. Symbols from another table resolve to a
// placeholder rather than panicking.
func (t *SymbolTable) Resolve(sym Symbol) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if int(sym) >= len(t.names) {
		return fmt.Sprintf("#%d", sym)
	}
	return t.names[sym]
}

// Len returns the number of interned names.
func (t *SymbolTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}
