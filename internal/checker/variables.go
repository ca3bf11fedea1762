package checker

import (
	"fmt"

	"github.com/roach88/tsg/internal/ast"
)

// addCheck declares v with the given result. Scoped variables name an
// attribute of some other value, so only their scope is checked.
func (c *checkContext) addCheck(v ast.Variable, value ExpressionResult, mutable bool) error {
	switch v := v.(type) {
	case *ast.UnscopedVariable:
		if err := c.locals.Add(v.Name, value, mutable); err != nil {
			return variableError(err, c.symbols.Resolve(v.Name), v.Location)
		}
		return nil
	case *ast.ScopedVariable:
		_, err := c.checkExpression(v.Scope)
		return err
	default:
		panic(fmt.Sprintf("checker: unhandled variable %T", v))
	}
}

// setCheck assigns to v, which must be declared mutable in an enclosing
// scope. The recorded result is replaced; it is not unified with the old one.
func (c *checkContext) setCheck(v ast.Variable, value ExpressionResult) error {
	switch v := v.(type) {
	case *ast.UnscopedVariable:
		if err := c.locals.Set(v.Name, value); err != nil {
			return variableError(err, c.symbols.Resolve(v.Name), v.Location)
		}
		return nil
	case *ast.ScopedVariable:
		_, err := c.checkExpression(v.Scope)
		return err
	default:
		panic(fmt.Sprintf("checker: unhandled variable %T", v))
	}
}

// getCheck reads v.
//
// A name not declared in any enclosing scope is not an error: it may be a
// global supplied when the program runs, and is approximated as ExactlyOne
// until globals are declared to the checker. Scoped variables are
// approximated the same way.
func (c *checkContext) getCheck(v ast.Variable) (ExpressionResult, error) {
	switch v := v.(type) {
	case *ast.UnscopedVariable:
		if value, ok := c.locals.Get(v.Name); ok {
			return value, nil
		}
		return single, nil
	case *ast.ScopedVariable:
		if _, err := c.checkExpression(v.Scope); err != nil {
			return ExpressionResult{}, err
		}
		return single, nil
	default:
		panic(fmt.Sprintf("checker: unhandled variable %T", v))
	}
}
