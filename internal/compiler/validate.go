package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/tsg/internal/ast"
)

// Validation error codes (E100-E199)
const (
	ErrEmptyPattern       = "E101" // stanza pattern is empty
	ErrInvalidRegex       = "E102" // scan arm regex does not compile
	ErrRegexCaptureRange  = "E103" // regex capture index exceeds the arm's groups
	ErrRegexCaptureNoScan = "E104" // regex capture outside any scan arm
	ErrDuplicateAttribute = "E105" // attribute named twice in one list
)

// ValidationError represents a program lint error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate lints a compiled program for problems the checker does not look
// at: scan regexes and the regex captures that refer to them, duplicate
// attributes and empty patterns.
// Returns all errors found (does not fail-fast).
func Validate(p *Program) []ValidationError {
	v := &validator{symbols: p.Symbols}
	for i, stanza := range p.File.Stanzas {
		field := fmt.Sprintf("stanzas[%d]", i)
		if strings.TrimSpace(stanza.Pattern) == "" {
			v.add(field+".pattern", ErrEmptyPattern, stanza.Location, "pattern is required and must be non-empty")
		}
		v.statements(stanza.Statements, field, -1)
	}
	return v.errs
}

type validator struct {
	symbols *ast.SymbolTable
	errs    []ValidationError
}

func (v *validator) add(field, code string, loc ast.Location, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
		Line:    loc.Row + 1,
	})
}

// groups is the number of capture groups of the innermost enclosing scan
// arm regex, or -1 outside any arm.
func (v *validator) statements(stmts []ast.Statement, field string, groups int) {
	for i, stmt := range stmts {
		v.statement(stmt, fmt.Sprintf("%s.body[%d]", field, i), groups)
	}
}

func (v *validator) statement(stmt ast.Statement, field string, groups int) {
	switch s := stmt.(type) {
	case *ast.DeclareImmutable:
		v.variable(s.Variable, field, groups)
		v.expression(s.Value, field, groups)
	case *ast.DeclareMutable:
		v.variable(s.Variable, field, groups)
		v.expression(s.Value, field, groups)
	case *ast.Assign:
		v.variable(s.Variable, field, groups)
		v.expression(s.Value, field, groups)
	case *ast.CreateGraphNode:
		v.variable(s.Node, field, groups)
	case *ast.AddGraphNodeAttribute:
		v.expression(s.Node, field, groups)
		v.attributes(s.Attributes, field, groups)
	case *ast.CreateEdge:
		v.expression(s.Source, field, groups)
		v.expression(s.Sink, field, groups)
	case *ast.AddEdgeAttribute:
		v.expression(s.Source, field, groups)
		v.expression(s.Sink, field, groups)
		v.attributes(s.Attributes, field, groups)
	case *ast.Scan:
		v.expression(s.Value, field, groups)
		for i, arm := range s.Arms {
			armField := fmt.Sprintf("%s.arms[%d]", field, i)
			re, err := regexp.Compile(arm.Regex)
			if err != nil {
				v.add(armField+".regex", ErrInvalidRegex, arm.Location, "invalid regex %q: %v", arm.Regex, err)
				// Captures in this arm cannot be range-checked.
				v.statements(arm.Statements, armField, -1)
				continue
			}
			v.statements(arm.Statements, armField, re.NumSubexp())
		}
	case *ast.Print:
		for _, value := range s.Values {
			v.expression(value, field, groups)
		}
	case *ast.If:
		for i, arm := range s.Arms {
			armField := fmt.Sprintf("%s.arms[%d]", field, i)
			for _, cond := range arm.Conditions {
				v.expression(cond.Value, armField, groups)
			}
			v.statements(arm.Statements, armField, groups)
		}
	case *ast.ForIn:
		v.variable(s.Variable, field, groups)
		v.expression(s.Value, field, groups)
		v.statements(s.Statements, field, groups)
	default:
		panic(fmt.Sprintf("compiler: unhandled statement %T", stmt))
	}
}

func (v *validator) attributes(attrs []ast.Attribute, field string, groups int) {
	seen := make(map[ast.Symbol]bool, len(attrs))
	for _, attr := range attrs {
		if seen[attr.Name] {
			v.add(field+".attrs", ErrDuplicateAttribute, attr.Location, "duplicate attribute %q", v.symbols.Resolve(attr.Name))
		}
		seen[attr.Name] = true
		v.expression(attr.Value, field, groups)
	}
}

func (v *validator) variable(variable ast.Variable, field string, groups int) {
	if scoped, ok := variable.(*ast.ScopedVariable); ok {
		v.expression(scoped.Scope, field, groups)
	}
}

func (v *validator) expression(expr ast.Expression, field string, groups int) {
	switch e := expr.(type) {
	case *ast.RegexCapture:
		switch {
		case groups < 0:
			v.add(field, ErrRegexCaptureNoScan, e.Location, "regex capture $%d used outside a scan arm", e.Match)
		case int(e.Match) > groups:
			v.add(field, ErrRegexCaptureRange, e.Location, "regex capture $%d exceeds the %d group(s) of the arm regex", e.Match, groups)
		}
	case *ast.ListComprehension:
		for _, elem := range e.Elements {
			v.expression(elem, field, groups)
		}
	case *ast.SetComprehension:
		for _, elem := range e.Elements {
			v.expression(elem, field, groups)
		}
	case *ast.Call:
		for _, param := range e.Parameters {
			v.expression(param, field, groups)
		}
	case *ast.ScopedVariable:
		v.expression(e.Scope, field, groups)
	}
}
