package checker

import (
	"fmt"

	"github.com/roach88/tsg/internal/ast"
	"github.com/roach88/tsg/internal/ir"
)

func (c *checkContext) checkExpression(expr ast.Expression) (ExpressionResult, error) {
	switch e := expr.(type) {
	case *ast.TrueLiteral, *ast.FalseLiteral, *ast.NullLiteral,
		*ast.IntegerConstant, *ast.StringConstant, *ast.RegexCapture:
		return single, nil
	case *ast.ListComprehension:
		return c.checkElements(e.Elements)
	case *ast.SetComprehension:
		return c.checkElements(e.Elements)
	case *ast.Capture:
		return c.checkCapture(e)
	case *ast.UnscopedVariable:
		return c.getCheck(e)
	case *ast.ScopedVariable:
		return c.getCheck(e)
	case *ast.Call:
		for _, param := range e.Parameters {
			if _, err := c.checkExpression(param); err != nil {
				return ExpressionResult{}, err
			}
		}
		// Return cardinality of functions is unknown; assume a single value.
		return single, nil
	default:
		panic(fmt.Sprintf("checker: unhandled expression %T", expr))
	}
}

// checkScanExpression checks the restricted grammar allowed as a scan value.
func (c *checkContext) checkScanExpression(expr ast.ScanExpression) (ExpressionResult, error) {
	switch e := expr.(type) {
	case *ast.StringConstant, *ast.RegexCapture:
		return single, nil
	case *ast.Capture:
		return c.checkCapture(e)
	case ast.Variable:
		return c.getCheck(e)
	default:
		panic(fmt.Sprintf("checker: unhandled scan expression %T", expr))
	}
}

// checkElements checks comprehension elements. A comprehension is always
// ZeroOrMore whatever its elements.
func (c *checkContext) checkElements(elements []ast.Expression) (ExpressionResult, error) {
	for _, elem := range elements {
		if _, err := c.checkExpression(elem); err != nil {
			return ExpressionResult{}, err
		}
	}
	return ExpressionResult{Quantifier: ir.ZeroOrMore}, nil
}

// checkCapture resolves a capture in both query namespaces and records the
// result in the side table.
func (c *checkContext) checkCapture(capture *ast.Capture) (ExpressionResult, error) {
	name := c.symbols.Resolve(capture.Name)

	stanzaIndex, ok := c.stanzaQuery.CaptureIndexForName(name)
	if !ok {
		return ExpressionResult{}, undefinedSyntaxCapture(name, capture.Location)
	}
	fileIndex, ok := c.fileQuery.CaptureIndexForName(name)
	if !ok {
		panic(fmt.Sprintf("file query has no capture @%s defined by stanza %d", name, c.stanzaIndex))
	}
	quantifier := c.fileQuery.CaptureQuantifiers(c.stanzaIndex)[fileIndex]

	c.annotations.Resolve(c.annotation, ir.CaptureResolution{
		Node:               int(capture.ID),
		Name:               name,
		StanzaCaptureIndex: stanzaIndex,
		FileCaptureIndex:   fileIndex,
		Quantifier:         quantifier,
	})
	return ExpressionResult{Quantifier: quantifier}, nil
}
