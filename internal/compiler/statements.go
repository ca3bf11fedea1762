package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/tsg/internal/ast"
)

// statementKeys are the discriminating keys of a statement struct. Exactly
// one must be present.
var statementKeys = []string{
	"val", "var", "assign",
	"node", "node_attr", "edge", "edge_attr",
	"scan", "print", "cond", "loop",
}

// block parses the optional body list of v.
func (c *compiler) block(v cue.Value, field string) ([]ast.Statement, error) {
	bodyVal := v.LookupPath(cue.ParsePath("body"))
	if !bodyVal.Exists() {
		return nil, nil
	}
	iter, err := bodyVal.List()
	if err != nil {
		return nil, errorAt(bodyVal, field+".body", "body must be a list of statements")
	}

	var stmts []ast.Statement
	for i := 0; iter.Next(); i++ {
		stmt, err := c.statement(iter.Value(), fmt.Sprintf("%s.body[%d]", field, i))
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (c *compiler) statement(v cue.Value, field string) (ast.Statement, error) {
	if v.Kind() != cue.StructKind {
		return nil, errorAt(v, field, "statement must be a struct")
	}

	key, keyVal, err := discriminate(v, statementKeys, "statement", field)
	if err != nil {
		return nil, err
	}
	field = field + "." + key
	loc := location(v)

	switch key {
	case "val", "var", "assign":
		variable, err := c.variable(keyVal, field)
		if err != nil {
			return nil, err
		}
		value, err := c.requireExpression(v, "value", field)
		if err != nil {
			return nil, err
		}
		switch key {
		case "val":
			return &ast.DeclareImmutable{Variable: variable, Value: value, Location: loc}, nil
		case "var":
			return &ast.DeclareMutable{Variable: variable, Value: value, Location: loc}, nil
		default:
			return &ast.Assign{Variable: variable, Value: value, Location: loc}, nil
		}

	case "node":
		variable, err := c.variable(keyVal, field)
		if err != nil {
			return nil, err
		}
		return &ast.CreateGraphNode{Node: variable, Location: loc}, nil

	case "node_attr":
		node, err := c.expression(keyVal, field)
		if err != nil {
			return nil, err
		}
		attrs, err := c.attributes(v, field)
		if err != nil {
			return nil, err
		}
		return &ast.AddGraphNodeAttribute{Node: node, Attributes: attrs, Location: loc}, nil

	case "edge":
		source, sink, err := c.endpoints(keyVal, field)
		if err != nil {
			return nil, err
		}
		return &ast.CreateEdge{Source: source, Sink: sink, Location: loc}, nil

	case "edge_attr":
		source, sink, err := c.endpoints(keyVal, field)
		if err != nil {
			return nil, err
		}
		attrs, err := c.attributes(v, field)
		if err != nil {
			return nil, err
		}
		return &ast.AddEdgeAttribute{Source: source, Sink: sink, Attributes: attrs, Location: loc}, nil

	case "scan":
		return c.scan(v, keyVal, field)

	case "print":
		values, err := c.expressionList(keyVal, field)
		if err != nil {
			return nil, err
		}
		return &ast.Print{Values: values, Location: loc}, nil

	case "cond":
		return c.conditional(keyVal, field)

	case "loop":
		variable, err := c.variable(keyVal, field)
		if err != nil {
			return nil, err
		}
		over, err := c.requireExpression(v, "over", field)
		if err != nil {
			return nil, err
		}
		body, err := c.block(v, field)
		if err != nil {
			return nil, err
		}
		return &ast.ForIn{Variable: variable, Value: over, Statements: body, Location: loc}, nil
	}
	panic(fmt.Sprintf("compiler: unhandled statement key %q", key))
}

func (c *compiler) endpoints(v cue.Value, field string) (ast.Expression, ast.Expression, error) {
	source, err := c.requireExpression(v, "source", field)
	if err != nil {
		return nil, nil, err
	}
	sink, err := c.requireExpression(v, "sink", field)
	if err != nil {
		return nil, nil, err
	}
	return source, sink, nil
}

// attributes parses the optional attrs struct in field order.
func (c *compiler) attributes(v cue.Value, field string) ([]ast.Attribute, error) {
	attrsVal := v.LookupPath(cue.ParsePath("attrs"))
	if !attrsVal.Exists() {
		return nil, nil
	}
	iter, err := attrsVal.Fields()
	if err != nil {
		return nil, errorAt(attrsVal, field+".attrs", "attrs must be a struct")
	}

	var attrs []ast.Attribute
	for iter.Next() {
		name := fieldName(iter)
		value, err := c.expression(iter.Value(), field+".attrs."+name)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, ast.Attribute{
			Name:     c.symbols.Add(name),
			Value:    value,
			Location: location(iter.Value()),
		})
	}
	return attrs, nil
}

func (c *compiler) scan(v, keyVal cue.Value, field string) (ast.Statement, error) {
	value, err := c.scanExpression(keyVal, field)
	if err != nil {
		return nil, err
	}

	armsVal := v.LookupPath(cue.ParsePath("arms"))
	if !armsVal.Exists() {
		return nil, errorAt(v, field+".arms", "scan requires arms")
	}
	iter, err := armsVal.List()
	if err != nil {
		return nil, errorAt(armsVal, field+".arms", "arms must be a list")
	}

	s := &ast.Scan{Value: value, Location: location(v)}
	for i := 0; iter.Next(); i++ {
		armField := fmt.Sprintf("%s.arms[%d]", field, i)
		regex, err := requireString(iter.Value(), "regex", armField)
		if err != nil {
			return nil, err
		}
		body, err := c.block(iter.Value(), armField)
		if err != nil {
			return nil, err
		}
		s.Arms = append(s.Arms, ast.ScanArm{Regex: regex, Statements: body, Location: location(iter.Value())})
	}
	return s, nil
}

func (c *compiler) conditional(v cue.Value, field string) (ast.Statement, error) {
	iter, err := v.List()
	if err != nil {
		return nil, errorAt(v, field, "cond must be a list of arms")
	}

	s := &ast.If{Location: location(v)}
	for i := 0; iter.Next(); i++ {
		armVal := iter.Value()
		armField := fmt.Sprintf("%s[%d]", field, i)

		arm := ast.IfArm{Location: location(armVal)}
		if whenVal := armVal.LookupPath(cue.ParsePath("when")); whenVal.Exists() {
			conds, err := c.conditions(whenVal, armField+".when")
			if err != nil {
				return nil, err
			}
			arm.Conditions = conds
		}
		if arm.Statements, err = c.block(armVal, armField); err != nil {
			return nil, err
		}
		s.Arms = append(s.Arms, arm)
	}
	if len(s.Arms) == 0 {
		return nil, errorAt(v, field, "cond requires at least one arm")
	}
	return s, nil
}

func (c *compiler) conditions(v cue.Value, field string) ([]ast.Condition, error) {
	iter, err := v.List()
	if err != nil {
		return nil, errorAt(v, field, "when must be a list of conditions")
	}

	var conds []ast.Condition
	for i := 0; iter.Next(); i++ {
		condField := fmt.Sprintf("%s[%d]", field, i)
		condVal := iter.Value()

		some := condVal.LookupPath(cue.ParsePath("some"))
		none := condVal.LookupPath(cue.ParsePath("none"))
		var (
			kind  ast.ConditionKind
			value cue.Value
		)
		switch {
		case some.Exists() && none.Exists():
			return nil, errorAt(condVal, condField, "condition must have exactly one of some, none")
		case some.Exists():
			kind, value = ast.ConditionSome, some
		case none.Exists():
			kind, value = ast.ConditionNone, none
		default:
			return nil, errorAt(condVal, condField, "condition must have one of some, none")
		}

		expr, err := c.expression(value, condField+"."+kind.String())
		if err != nil {
			return nil, err
		}
		conds = append(conds, ast.Condition{Kind: kind, Value: expr, Location: location(condVal)})
	}
	return conds, nil
}
