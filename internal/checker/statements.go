package checker

import (
	"fmt"

	"github.com/roach88/tsg/internal/ast"
)

func (c *checkContext) checkStatements(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := c.checkStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *checkContext) checkStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.DeclareImmutable:
		return c.checkDeclare(s.Variable, s.Value, false)
	case *ast.DeclareMutable:
		return c.checkDeclare(s.Variable, s.Value, true)
	case *ast.Assign:
		value, err := c.checkExpression(s.Value)
		if err != nil {
			return err
		}
		return c.setCheck(s.Variable, value)
	case *ast.CreateGraphNode:
		// A fresh node is always a single value.
		return c.addCheck(s.Node, single, false)
	case *ast.AddGraphNodeAttribute:
		if _, err := c.checkExpression(s.Node); err != nil {
			return err
		}
		return c.checkAttributes(s.Attributes)
	case *ast.CreateEdge:
		return c.checkEndpoints(s.Source, s.Sink)
	case *ast.AddEdgeAttribute:
		if err := c.checkEndpoints(s.Source, s.Sink); err != nil {
			return err
		}
		return c.checkAttributes(s.Attributes)
	case *ast.Scan:
		return c.checkScan(s)
	case *ast.Print:
		for _, value := range s.Values {
			if _, err := c.checkExpression(value); err != nil {
				return err
			}
		}
		return nil
	case *ast.If:
		return c.checkIf(s)
	case *ast.ForIn:
		return c.checkForIn(s)
	default:
		panic(fmt.Sprintf("checker: unhandled statement %T", stmt))
	}
}

func (c *checkContext) checkDeclare(v ast.Variable, value ast.Expression, mutable bool) error {
	result, err := c.checkExpression(value)
	if err != nil {
		return err
	}
	return c.addCheck(v, result, mutable)
}

func (c *checkContext) checkEndpoints(source, sink ast.Expression) error {
	if _, err := c.checkExpression(source); err != nil {
		return err
	}
	_, err := c.checkExpression(sink)
	return err
}

// checkAttributes checks attribute values only; attribute names are not
// validated against any schema.
func (c *checkContext) checkAttributes(attrs []ast.Attribute) error {
	for _, attr := range attrs {
		if _, err := c.checkExpression(attr.Value); err != nil {
			return err
		}
	}
	return nil
}

func (c *checkContext) checkScan(s *ast.Scan) error {
	if _, err := c.checkScanExpression(s.Value); err != nil {
		return err
	}
	for _, arm := range s.Arms {
		if err := c.child().checkStatements(arm.Statements); err != nil {
			return err
		}
	}
	return nil
}

// checkIf checks each arm's conditions in the enclosing scope, then the arm
// body in a scope of its own.
func (c *checkContext) checkIf(s *ast.If) error {
	for _, arm := range s.Arms {
		for _, cond := range arm.Conditions {
			if err := c.checkCondition(cond); err != nil {
				return err
			}
		}
		if err := c.child().checkStatements(arm.Statements); err != nil {
			return err
		}
	}
	return nil
}

func (c *checkContext) checkCondition(cond ast.Condition) error {
	result, err := c.checkExpression(cond.Value)
	if err != nil {
		return err
	}
	if !result.Quantifier.IsOptional() {
		return expectedOptionalValue(cond.Value.Pos())
	}
	return nil
}

func (c *checkContext) checkForIn(s *ast.ForIn) error {
	result, err := c.checkExpression(s.Value)
	if err != nil {
		return err
	}
	if !result.Quantifier.IsList() {
		return expectedListValue(s.Location)
	}

	body := c.child()
	// Each iteration binds one element of the list.
	if err := body.addCheck(s.Variable, single, false); err != nil {
		return err
	}
	return body.checkStatements(s.Statements)
}
