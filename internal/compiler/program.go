package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/tsg/internal/ast"
	"github.com/roach88/tsg/internal/ir"
	"github.com/roach88/tsg/internal/query"
)

// Program is a compiled graph program, ready for checking.
type Program struct {
	File    *ast.File
	Symbols *ast.SymbolTable
}

// CompileSource compiles CUE source text. filename is used in positions.
func CompileSource(src []byte, filename string) (*Program, error) {
	v := cuecontext.New().CompileBytes(src, cue.Filename(filename))
	return CompileFile(v)
}

// CompileFile builds a Program from a CUE value of the form
//
//	stanzas: [{
//		pattern:  "(call function: (_) @fn) @call"
//		captures: {fn: "1", call: "1"}
//		body: [...]
//	}, ...]
//
// Every stanza pattern is compiled on its own, and all of them together
// form the file query.
func CompileFile(v cue.Value) (*Program, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	c := &compiler{file: ast.NewFile(), symbols: ast.NewSymbolTable()}

	stanzasVal := v.LookupPath(cue.ParsePath("stanzas"))
	if !stanzasVal.Exists() {
		return nil, errorAt(v, "stanzas", "stanzas is required")
	}
	iter, err := stanzasVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var patterns []*query.Pattern
	for i := 0; iter.Next(); i++ {
		p, err := c.stanza(iter.Value(), fmt.Sprintf("stanzas[%d]", i))
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	c.file.Query = query.Combine(patterns...)

	return &Program{File: c.file, Symbols: c.symbols}, nil
}

type compiler struct {
	file    *ast.File
	symbols *ast.SymbolTable
}

// location converts a CUE position (one-based) to an ast.Location
// (zero-based). Values without a position map to the origin.
func location(v cue.Value) ast.Location {
	pos := v.Pos()
	if !pos.IsValid() {
		return ast.Location{}
	}
	return ast.Location{Row: pos.Line() - 1, Column: pos.Column() - 1}
}

func (c *compiler) stanza(v cue.Value, field string) (*query.Pattern, error) {
	source, err := requireString(v, "pattern", field)
	if err != nil {
		return nil, err
	}

	captures, err := parseCaptures(v, field)
	if err != nil {
		return nil, err
	}
	pattern, err := query.NewPattern(source, captures)
	if err != nil {
		return nil, errorAt(v, field+".captures", "%v", err)
	}

	body, err := c.block(v, field)
	if err != nil {
		return nil, err
	}

	c.file.AddStanza(&ast.Stanza{
		Pattern:    source,
		Query:      pattern,
		Statements: body,
		Location:   location(v),
	})
	return pattern, nil
}

// parseCaptures reads the capture declarations in field order, which is
// the stanza-local capture order.
func parseCaptures(v cue.Value, field string) ([]query.Capture, error) {
	capsVal := v.LookupPath(cue.ParsePath("captures"))
	if !capsVal.Exists() {
		return nil, nil
	}
	iter, err := capsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var captures []query.Capture
	for iter.Next() {
		name := fieldName(iter)
		s, err := iter.Value().String()
		if err != nil {
			return nil, errorAt(iter.Value(), field+".captures."+name, "quantifier must be a string")
		}
		q, err := ir.ParseQuantifier(s)
		if err != nil || q == ir.Zero {
			return nil, errorAt(iter.Value(), field+".captures."+name, "invalid quantifier %q: must be one of 1, ?, *, +", s)
		}
		captures = append(captures, query.Capture{Name: name, Quantifier: q})
	}
	return captures, nil
}

func requireString(v cue.Value, name, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return "", errorAt(v, field+"."+name, "%s is required", name)
	}
	s, err := fv.String()
	if err != nil {
		return "", errorAt(fv, field+"."+name, "%s must be a string", name)
	}
	return s, nil
}

// fieldName returns the unquoted label of the current field, so quoted
// labels such as "doc-comment" read as written.
func fieldName(iter *cue.Iterator) string {
	sel := iter.Selector()
	if sel.LabelType() == cue.StringLabel {
		return sel.Unquoted()
	}
	return sel.String()
}
