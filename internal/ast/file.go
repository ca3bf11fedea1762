package ast

import "github.com/roach88/tsg/internal/query"

// File is a whole program: stanzas in declaration order plus the combined
// query spanning every stanza pattern.
type File struct {
	Stanzas []*Stanza

	// Query is the file query. Pattern i of it is stanza i's pattern.
	Query query.Query

	// Captures is the arena of capture nodes, indexed by NodeID.
	Captures []*Capture
}

// NewFile creates an empty file.
func NewFile() *File {
	return &File{}
}

// NewCapture allocates a capture node in the file's arena.
func (f *File) NewCapture(name Symbol, loc Location) *Capture {
	c := &Capture{ID: NodeID(len(f.Captures)), Name: name, Location: loc}
	f.Captures = append(f.Captures, c)
	return c
}

// AddStanza appends a stanza. Its Index is set to its position in the file,
// which is also its pattern index in the file query.
func (f *File) AddStanza(s *Stanza) *Stanza {
	s.Index = len(f.Stanzas)
	f.Stanzas = append(f.Stanzas, s)
	return s
}

// Stanza is one pattern/body block.
type Stanza struct {
	// Pattern is the query source text, kept for diagnostics.
	Pattern string

	// Query is the stanza pattern compiled on its own. Its capture indices
	// are the stanza-local namespace.
	Query query.Query

	Statements []Statement

	// Index is the stanza's pattern index within the file query.
	Index int

	Location Location
}

// NodeID addresses a capture node in File.Captures.
type NodeID int

// Attribute is a `name = value` pair on a node or edge.
type Attribute struct {
	Name     Symbol
	Value    Expression
	Location Location
}
