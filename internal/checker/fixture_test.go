package checker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tsg/internal/ast"
	"github.com/roach88/tsg/internal/ir"
	"github.com/roach88/tsg/internal/query"
)

// fixture builds files by hand, standing in for the front-end.
type fixture struct {
	t        *testing.T
	symbols  *ast.SymbolTable
	file     *ast.File
	patterns []*query.Pattern
	row      int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, symbols: ast.NewSymbolTable(), file: ast.NewFile()}
}

// loc hands out distinct locations so tests can tell nodes apart.
func (f *fixture) loc() ast.Location {
	f.row++
	return ast.Location{Row: f.row, Column: 4}
}

func (f *fixture) stanza(captures []query.Capture, stmts ...ast.Statement) *ast.Stanza {
	f.t.Helper()
	p, err := query.NewPattern("(_)", captures)
	require.NoError(f.t, err)
	f.patterns = append(f.patterns, p)
	return f.file.AddStanza(&ast.Stanza{Pattern: p.Source, Query: p, Statements: stmts, Location: f.loc()})
}

func (f *fixture) check() (*ir.Annotations, error) {
	f.file.Query = query.Combine(f.patterns...)
	return Check(f.file, f.symbols)
}

func caps(pairs ...any) []query.Capture {
	out := make([]query.Capture, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, query.Capture{Name: pairs[i].(string), Quantifier: pairs[i+1].(ir.Quantifier)})
	}
	return out
}

func (f *fixture) capture(name string) *ast.Capture {
	return f.file.NewCapture(f.symbols.Add(name), f.loc())
}

func (f *fixture) v(name string) *ast.UnscopedVariable {
	return &ast.UnscopedVariable{Name: f.symbols.Add(name), Location: f.loc()}
}

func (f *fixture) scoped(scope ast.Expression, name string) *ast.ScopedVariable {
	return &ast.ScopedVariable{Scope: scope, Name: f.symbols.Add(name), Location: f.loc()}
}

func (f *fixture) let(name string, value ast.Expression) *ast.DeclareImmutable {
	return &ast.DeclareImmutable{Variable: f.v(name), Value: value, Location: f.loc()}
}

func (f *fixture) mut(name string, value ast.Expression) *ast.DeclareMutable {
	return &ast.DeclareMutable{Variable: f.v(name), Value: value, Location: f.loc()}
}

func (f *fixture) set(name string, value ast.Expression) *ast.Assign {
	return &ast.Assign{Variable: f.v(name), Value: value, Location: f.loc()}
}

func (f *fixture) forIn(name string, value ast.Expression, body ...ast.Statement) *ast.ForIn {
	return &ast.ForIn{Variable: f.v(name), Value: value, Statements: body, Location: f.loc()}
}

func (f *fixture) ifSome(value ast.Expression, body ...ast.Statement) *ast.If {
	return f.ifArms(ast.IfArm{Conditions: []ast.Condition{f.cond(ast.ConditionSome, value)}, Statements: body})
}

func (f *fixture) ifNone(value ast.Expression, body ...ast.Statement) *ast.If {
	return f.ifArms(ast.IfArm{Conditions: []ast.Condition{f.cond(ast.ConditionNone, value)}, Statements: body})
}

func (f *fixture) ifArms(arms ...ast.IfArm) *ast.If {
	return &ast.If{Arms: arms, Location: f.loc()}
}

func (f *fixture) cond(kind ast.ConditionKind, value ast.Expression) ast.Condition {
	return ast.Condition{Kind: kind, Value: value, Location: f.loc()}
}

func (f *fixture) print(values ...ast.Expression) *ast.Print {
	return &ast.Print{Values: values, Location: f.loc()}
}

func (f *fixture) int(n uint32) *ast.IntegerConstant {
	return &ast.IntegerConstant{Value: n, Location: f.loc()}
}

func (f *fixture) str(s string) *ast.StringConstant {
	return &ast.StringConstant{Value: s, Location: f.loc()}
}

func requireCheckError(t *testing.T, err error, code CheckErrorCode) *CheckError {
	t.Helper()
	require.Error(t, err)
	ce, ok := err.(*CheckError)
	require.True(t, ok, "expected *CheckError, got %T", err)
	require.Equal(t, code, ce.Code, "error: %v", err)
	return ce
}

var allQuantifiers = []ir.Quantifier{ir.ExactlyOne, ir.ZeroOrOne, ir.ZeroOrMore, ir.OneOrMore}
