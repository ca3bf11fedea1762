package compiler

import (
	"fmt"
	"math"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/tsg/internal/ast"
)

var expressionKeys = []string{"str", "capture", "ref", "call", "list", "set", "regex"}

// expression parses an expression. Plain CUE scalars are literals: a
// string is a string constant, an int an integer constant.
func (c *compiler) expression(v cue.Value, field string) (ast.Expression, error) {
	loc := location(v)
	switch v.Kind() {
	case cue.NullKind:
		return &ast.NullLiteral{Location: loc}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if b {
			return &ast.TrueLiteral{Location: loc}, nil
		}
		return &ast.FalseLiteral{Location: loc}, nil
	case cue.IntKind:
		n, err := uint32Value(v, field)
		if err != nil {
			return nil, err
		}
		return &ast.IntegerConstant{Value: n, Location: loc}, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &ast.StringConstant{Value: s, Location: loc}, nil
	case cue.StructKind:
		return c.structExpression(v, field)
	case cue.FloatKind, cue.NumberKind:
		return nil, errorAt(v, field, "float values are not supported - use int instead")
	default:
		return nil, errorAt(v, field, "unsupported expression of kind %v", v.IncompleteKind())
	}
}

func (c *compiler) structExpression(v cue.Value, field string) (ast.Expression, error) {
	key, keyVal, err := discriminate(v, expressionKeys, "expression", field)
	if err != nil {
		return nil, err
	}
	field = field + "." + key
	loc := location(v)

	switch key {
	case "str":
		s, err := keyVal.String()
		if err != nil {
			return nil, errorAt(keyVal, field, "str must be a string")
		}
		return &ast.StringConstant{Value: s, Location: loc}, nil

	case "capture":
		name, err := keyVal.String()
		if err != nil {
			return nil, errorAt(keyVal, field, "capture must be a string")
		}
		name = strings.TrimPrefix(name, "@")
		if name == "" {
			return nil, errorAt(keyVal, field, "capture name must be non-empty")
		}
		return c.file.NewCapture(c.symbols.Add(name), loc), nil

	case "ref":
		return c.variable(keyVal, field)

	case "call":
		name, err := keyVal.String()
		if err != nil {
			return nil, errorAt(keyVal, field, "call must be a function name")
		}
		call := &ast.Call{Function: c.symbols.Add(name), Location: loc}
		if argsVal := v.LookupPath(cue.ParsePath("args")); argsVal.Exists() {
			if call.Parameters, err = c.expressionList(argsVal, field+".args"); err != nil {
				return nil, err
			}
		}
		return call, nil

	case "list":
		elems, err := c.expressionList(keyVal, field)
		if err != nil {
			return nil, err
		}
		return &ast.ListComprehension{Elements: elems, Location: loc}, nil

	case "set":
		elems, err := c.expressionList(keyVal, field)
		if err != nil {
			return nil, err
		}
		return &ast.SetComprehension{Elements: elems, Location: loc}, nil

	case "regex":
		n, err := uint32Value(keyVal, field)
		if err != nil {
			return nil, err
		}
		return &ast.RegexCapture{Match: n, Location: loc}, nil
	}
	panic(fmt.Sprintf("compiler: unhandled expression key %q", key))
}

// scanExpression parses the value of a scan statement, which is limited to
// strings, captures, regex captures and variables.
func (c *compiler) scanExpression(v cue.Value, field string) (ast.ScanExpression, error) {
	expr, err := c.expression(v, field)
	if err != nil {
		return nil, err
	}
	scan, ok := expr.(ast.ScanExpression)
	if !ok {
		return nil, errorAt(v, field, "scan value must be a string, capture, regex capture or variable")
	}
	return scan, nil
}

// variable parses a variable: a string names an unscoped variable, and
// {scope, name} a variable scoped to the value of scope.
func (c *compiler) variable(v cue.Value, field string) (ast.Variable, error) {
	loc := location(v)
	switch v.Kind() {
	case cue.StringKind:
		name, _ := v.String()
		if name == "" {
			return nil, errorAt(v, field, "variable name must be non-empty")
		}
		return &ast.UnscopedVariable{Name: c.symbols.Add(name), Location: loc}, nil

	case cue.StructKind:
		scopeVal := v.LookupPath(cue.ParsePath("scope"))
		if !scopeVal.Exists() {
			return nil, errorAt(v, field+".scope", "scoped variable requires scope")
		}
		scope, err := c.expression(scopeVal, field+".scope")
		if err != nil {
			return nil, err
		}
		name, err := requireString(v, "name", field)
		if err != nil {
			return nil, err
		}
		return &ast.ScopedVariable{Scope: scope, Name: c.symbols.Add(name), Location: loc}, nil

	default:
		return nil, errorAt(v, field, "variable must be a name or {scope, name}")
	}
}

func (c *compiler) requireExpression(v cue.Value, name, field string) (ast.Expression, error) {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return nil, errorAt(v, field+"."+name, "%s is required", name)
	}
	return c.expression(fv, field+"."+name)
}

func (c *compiler) expressionList(v cue.Value, field string) ([]ast.Expression, error) {
	iter, err := v.List()
	if err != nil {
		return nil, errorAt(v, field, "expected a list of expressions")
	}
	var exprs []ast.Expression
	for i := 0; iter.Next(); i++ {
		expr, err := c.expression(iter.Value(), fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

// discriminate finds the single key of keys present in v. what names the
// construct in error messages.
func discriminate(v cue.Value, keys []string, what, field string) (string, cue.Value, error) {
	var (
		found  string
		keyVal cue.Value
	)
	for _, key := range keys {
		kv := v.LookupPath(cue.ParsePath(key))
		if !kv.Exists() {
			continue
		}
		if found != "" {
			return "", cue.Value{}, errorAt(v, field, "ambiguous %s: has %s and %s", what, found, key)
		}
		found, keyVal = key, kv
	}
	if found == "" {
		return "", cue.Value{}, errorAt(v, field, "%s must have one of: %s", what, strings.Join(keys, ", "))
	}
	return found, keyVal, nil
}

func uint32Value(v cue.Value, field string) (uint32, error) {
	n, err := v.Int64()
	if err != nil || n < 0 || n > math.MaxUint32 {
		return 0, errorAt(v, field, "integer must be between 0 and %d", uint32(math.MaxUint32))
	}
	return uint32(n), nil
}
