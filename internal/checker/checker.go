package checker

import (
	"fmt"

	"github.com/roach88/tsg/internal/ast"
	"github.com/roach88/tsg/internal/ir"
	"github.com/roach88/tsg/internal/query"
	"github.com/roach88/tsg/internal/variables"
)

// SymbolResolver maps interned names back to text. *ast.SymbolTable
// implements it.
type SymbolResolver interface {
	Resolve(sym ast.Symbol) string
}

// ExpressionResult summarizes what checking an expression learned.
type ExpressionResult struct {
	Quantifier ir.Quantifier
}

var single = ExpressionResult{Quantifier: ir.ExactlyOne}

type scope = variables.Map[ast.Symbol, ExpressionResult]

// checkContext is the state threaded through the walk of one stanza.
type checkContext struct {
	symbols     SymbolResolver
	locals      *scope
	fileQuery   query.Query
	stanzaIndex int
	stanzaQuery query.Query
	annotations *ir.Annotations
	annotation  int // position of the current stanza in annotations
}

// child returns a context for a nested block. Lookups fall through to the
// current scope; declarations stay in the block.
func (c *checkContext) child() *checkContext {
	nested := *c
	nested.locals = variables.NewChild(c.locals)
	return &nested
}

// Check checks every stanza of file in order and returns the resolved
// capture side table. The first violation aborts the check and is returned
// as a *CheckError.
//
// file.Query must contain every capture name of every stanza query,
// including query.FullMatch; a file query built with query.Combine does.
// Violations of that contract panic.
func Check(file *ast.File, symbols SymbolResolver) (*ir.Annotations, error) {
	annotations := ir.NewAnnotations(len(file.Stanzas))
	for _, stanza := range file.Stanzas {
		if err := checkStanza(stanza, symbols, file.Query, annotations); err != nil {
			return nil, err
		}
	}
	return annotations, nil
}

func checkStanza(stanza *ast.Stanza, symbols SymbolResolver, fileQuery query.Query, annotations *ir.Annotations) error {
	fullMatch, ok := fileQuery.CaptureIndexForName(query.FullMatch)
	if !ok {
		panic(fmt.Sprintf("file query has no %s capture", query.FullMatch))
	}
	annotations.AddStanza(stanza.Index, fullMatch)

	ctx := &checkContext{
		symbols:     symbols,
		locals:      variables.NewMap[ast.Symbol, ExpressionResult](),
		fileQuery:   fileQuery,
		stanzaIndex: stanza.Index,
		stanzaQuery: stanza.Query,
		annotations: annotations,
		annotation:  len(annotations.Stanzas) - 1,
	}
	return ctx.checkStatements(stanza.Statements)
}
