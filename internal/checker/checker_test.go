package checker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tsg/internal/ast"
	"github.com/roach88/tsg/internal/ir"
	"github.com/roach88/tsg/internal/query"
	"github.com/roach88/tsg/internal/variables"
)

func TestForLoopSourceMustBeList(t *testing.T) {
	for _, q := range allQuantifiers {
		t.Run(q.String(), func(t *testing.T) {
			f := newFixture(t)
			loop := f.forIn("n", f.capture("c"))
			f.stanza(caps("c", q), loop)

			_, err := f.check()
			if q.IsList() {
				require.NoError(t, err)
				return
			}
			ce := requireCheckError(t, err, ErrCodeExpectedListValue)
			assert.Equal(t, loop.Location, ce.Location)
			assert.True(t, IsExpectedListValue(err))
			assert.Equal(t, fmt.Sprintf("Expected list value at %s", loop.Location), err.Error())
		})
	}
}

func TestConditionValueMustBeOptional(t *testing.T) {
	for _, kind := range []ast.ConditionKind{ast.ConditionSome, ast.ConditionNone} {
		for _, q := range allQuantifiers {
			t.Run(kind.String()+"/"+q.String(), func(t *testing.T) {
				f := newFixture(t)
				cond := f.cond(kind, f.capture("c"))
				f.stanza(caps("c", q), f.ifArms(ast.IfArm{Conditions: []ast.Condition{cond}}))

				_, err := f.check()
				if q == ir.ZeroOrOne {
					require.NoError(t, err)
					return
				}
				ce := requireCheckError(t, err, ErrCodeExpectedOptionalValue)
				assert.Equal(t, cond.Value.Pos(), ce.Location)
				assert.NotEqual(t, cond.Location, ce.Location)
				assert.True(t, IsExpectedOptionalValue(err))
			})
		}
	}
}

func TestEveryConditionOfAnArmIsChecked(t *testing.T) {
	f := newFixture(t)
	bad := f.cond(ast.ConditionSome, f.capture("many"))
	f.stanza(caps("opt", ir.ZeroOrOne, "many", ir.ZeroOrMore),
		f.ifArms(ast.IfArm{Conditions: []ast.Condition{
			f.cond(ast.ConditionSome, f.capture("opt")),
			bad,
		}}),
	)

	_, err := f.check()
	ce := requireCheckError(t, err, ErrCodeExpectedOptionalValue)
	assert.Equal(t, bad.Value.Pos(), ce.Location)
}

func TestLaterArmConditionsAreChecked(t *testing.T) {
	f := newFixture(t)
	bad := f.cond(ast.ConditionNone, f.capture("one"))
	f.stanza(caps("opt", ir.ZeroOrOne, "one", ir.ExactlyOne),
		f.ifArms(
			ast.IfArm{Conditions: []ast.Condition{f.cond(ast.ConditionSome, f.capture("opt"))}},
			ast.IfArm{Conditions: []ast.Condition{bad}},
			ast.IfArm{}, // else
		),
	)

	_, err := f.check()
	ce := requireCheckError(t, err, ErrCodeExpectedOptionalValue)
	assert.Equal(t, bad.Value.Pos(), ce.Location)
}

func TestDuplicateDeclarationInSameScope(t *testing.T) {
	tests := []struct {
		name  string
		first func(f *fixture) ast.Statement
		again func(f *fixture) ast.Statement
	}{
		{"let then let", func(f *fixture) ast.Statement { return f.let("y", f.int(1)) }, func(f *fixture) ast.Statement { return f.let("y", f.int(2)) }},
		{"var then let", func(f *fixture) ast.Statement { return f.mut("y", f.int(1)) }, func(f *fixture) ast.Statement { return f.let("y", f.int(2)) }},
		{"let then var", func(f *fixture) ast.Statement { return f.let("y", f.int(1)) }, func(f *fixture) ast.Statement { return f.mut("y", f.int(2)) }},
		{"node then let", func(f *fixture) ast.Statement { return &ast.CreateGraphNode{Node: f.v("y")} }, func(f *fixture) ast.Statement { return f.let("y", f.int(2)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.stanza(caps(), tt.first(f), tt.again(f))

			_, err := f.check()
			requireCheckError(t, err, ErrCodeVariable)
			assert.True(t, IsVariableError(err))
			assert.True(t, errors.Is(err, variables.ErrAlreadyDefined))
			assert.Equal(t, "variable already defined: y", err.Error())
		})
	}
}

func TestShadowingInChildScopeLeavesParentUntouched(t *testing.T) {
	f := newFixture(t)
	f.stanza(caps("opt", ir.ZeroOrOne, "list", ir.ZeroOrMore),
		f.let("x", f.capture("opt")),
		f.forIn("n", f.capture("list"),
			// Shadows x with a list; legal in the loop body.
			f.let("x", f.capture("list")),
			f.forIn("m", f.v("x")),
		),
		// Back in the stanza scope x is still optional.
		f.ifSome(f.v("x")),
	)

	_, err := f.check()
	require.NoError(t, err)
}

func TestAssignment(t *testing.T) {
	t.Run("immutable", func(t *testing.T) {
		f := newFixture(t)
		f.stanza(caps(), f.let("x", f.int(1)), f.set("x", f.int(2)))

		_, err := f.check()
		requireCheckError(t, err, ErrCodeVariable)
		assert.True(t, errors.Is(err, variables.ErrCannotAssignImmutable))
		assert.Equal(t, "cannot assign immutable variable: x", err.Error())
	})

	t.Run("graph node is immutable", func(t *testing.T) {
		f := newFixture(t)
		f.stanza(caps(), &ast.CreateGraphNode{Node: f.v("n")}, f.set("n", f.int(2)))

		_, err := f.check()
		assert.True(t, errors.Is(err, variables.ErrCannotAssignImmutable))
	})

	t.Run("undefined", func(t *testing.T) {
		f := newFixture(t)
		f.stanza(caps(), f.set("x", f.int(2)))

		_, err := f.check()
		requireCheckError(t, err, ErrCodeVariable)
		assert.True(t, errors.Is(err, variables.ErrUndefined))
		assert.Equal(t, "undefined variable: x", err.Error())
	})

	t.Run("mutable updates the recorded quantifier", func(t *testing.T) {
		f := newFixture(t)
		f.stanza(caps("opt", ir.ZeroOrOne, "list", ir.OneOrMore),
			f.mut("x", f.capture("opt")),
			f.ifSome(f.v("x")),
			f.set("x", f.capture("list")),
			f.forIn("n", f.v("x")),
		)

		_, err := f.check()
		require.NoError(t, err)
	})

	t.Run("last write wins", func(t *testing.T) {
		f := newFixture(t)
		f.stanza(caps("list", ir.OneOrMore),
			f.mut("x", f.capture("list")),
			f.set("x", f.int(1)),
			f.forIn("n", f.v("x")),
		)

		_, err := f.check()
		requireCheckError(t, err, ErrCodeExpectedListValue)
	})

	t.Run("assignment in a child scope reaches the parent binding", func(t *testing.T) {
		f := newFixture(t)
		f.stanza(caps("opt", ir.ZeroOrOne, "list", ir.ZeroOrMore),
			f.mut("x", f.capture("opt")),
			f.ifSome(f.capture("opt"),
				f.set("x", f.capture("list")),
			),
			f.forIn("n", f.v("x")),
		)

		_, err := f.check()
		require.NoError(t, err)
	})
}

func TestUndefinedSyntaxCapture(t *testing.T) {
	f := newFixture(t)
	missing := f.capture("missing")
	f.stanza(caps("child", ir.ExactlyOne), f.print(missing))

	_, err := f.check()
	ce := requireCheckError(t, err, ErrCodeUndefinedSyntaxCapture)
	assert.True(t, IsUndefinedSyntaxCapture(err))
	assert.Equal(t, "missing", ce.Name)
	assert.Equal(t, missing.Location, ce.Location)
	assert.Equal(t, fmt.Sprintf("Undefined syntax capture @missing at %s", missing.Location), err.Error())
}

func TestCaptureOfSiblingStanzaIsUndefined(t *testing.T) {
	f := newFixture(t)
	f.stanza(caps("only_here", ir.ExactlyOne), f.print(f.capture("only_here")))
	f.stanza(caps("other", ir.ExactlyOne), f.print(f.capture("only_here")))

	_, err := f.check()
	ce := requireCheckError(t, err, ErrCodeUndefinedSyntaxCapture)
	assert.Equal(t, "only_here", ce.Name)
}

func TestCaptureQuantifierComesFromOwnStanzaRow(t *testing.T) {
	// The same name is a list in the first stanza and single in the second.
	f := newFixture(t)
	f.stanza(caps("x", ir.ZeroOrMore), f.forIn("n", f.capture("x")))
	f.stanza(caps("x", ir.ExactlyOne), f.forIn("n", f.capture("x")))

	_, err := f.check()
	requireCheckError(t, err, ErrCodeExpectedListValue)
}

func TestUndeclaredVariableIsTreatedAsSingle(t *testing.T) {
	t.Run("reads succeed", func(t *testing.T) {
		f := newFixture(t)
		f.stanza(caps(), f.print(f.v("FILE_PATH")), f.let("x", f.v("ROOT")))

		_, err := f.check()
		require.NoError(t, err)
	})

	t.Run("cannot be iterated", func(t *testing.T) {
		f := newFixture(t)
		f.stanza(caps(), f.forIn("n", f.v("ROOT")))

		_, err := f.check()
		requireCheckError(t, err, ErrCodeExpectedListValue)
	})

	t.Run("cannot be tested", func(t *testing.T) {
		f := newFixture(t)
		f.stanza(caps(), f.ifNone(f.v("ROOT")))

		_, err := f.check()
		requireCheckError(t, err, ErrCodeExpectedOptionalValue)
	})
}

func TestLoopOverCaptureViaVariable(t *testing.T) {
	f := newFixture(t)
	f.stanza(caps("child", ir.ZeroOrMore),
		f.let("x", f.capture("child")),
		f.forIn("n", f.v("x"),
			&ast.CreateEdge{Source: f.v("n"), Sink: f.v("x")},
		),
	)

	_, err := f.check()
	require.NoError(t, err)
}

func TestLoopVariableVisibleOnlyInBody(t *testing.T) {
	t.Run("not visible after the loop", func(t *testing.T) {
		f := newFixture(t)
		f.stanza(caps("child", ir.ZeroOrMore),
			f.forIn("n", f.capture("child")),
			f.set("n", f.int(1)),
		)

		_, err := f.check()
		assert.True(t, errors.Is(err, variables.ErrUndefined))
	})

	t.Run("declared in the body scope", func(t *testing.T) {
		f := newFixture(t)
		f.stanza(caps("child", ir.ZeroOrMore),
			f.forIn("n", f.capture("child"),
				f.let("n", f.int(1)),
			),
		)

		_, err := f.check()
		assert.True(t, errors.Is(err, variables.ErrAlreadyDefined))
	})

	t.Run("bound to a single element", func(t *testing.T) {
		f := newFixture(t)
		f.stanza(caps("child", ir.ZeroOrMore),
			f.forIn("n", f.capture("child"),
				f.forIn("m", f.v("n")),
			),
		)

		_, err := f.check()
		requireCheckError(t, err, ErrCodeExpectedListValue)
	})

	t.Run("immutable", func(t *testing.T) {
		f := newFixture(t)
		f.stanza(caps("child", ir.ZeroOrMore),
			f.forIn("n", f.capture("child"),
				f.set("n", f.int(1)),
			),
		)

		_, err := f.check()
		assert.True(t, errors.Is(err, variables.ErrCannotAssignImmutable))
	})
}

func TestNoneOnListVariableFails(t *testing.T) {
	f := newFixture(t)
	f.stanza(caps("child", ir.ZeroOrMore),
		f.let("x", f.capture("child")),
		f.ifNone(f.v("x")),
	)

	_, err := f.check()
	requireCheckError(t, err, ErrCodeExpectedOptionalValue)
}

func TestArmBindingsDoNotLeak(t *testing.T) {
	t.Run("into later guards", func(t *testing.T) {
		// y is declared optional inside the first arm. The second guard sees
		// no y and falls back to a single value, which is not optional.
		f := newFixture(t)
		f.stanza(caps("opt", ir.ZeroOrOne),
			f.ifArms(
				ast.IfArm{
					Conditions: []ast.Condition{f.cond(ast.ConditionSome, f.capture("opt"))},
					Statements: []ast.Statement{f.let("y", f.capture("opt"))},
				},
				ast.IfArm{
					Conditions: []ast.Condition{f.cond(ast.ConditionSome, f.v("y"))},
				},
			),
		)

		_, err := f.check()
		requireCheckError(t, err, ErrCodeExpectedOptionalValue)
	})

	t.Run("into sibling arms", func(t *testing.T) {
		f := newFixture(t)
		f.stanza(caps("opt", ir.ZeroOrOne),
			f.ifArms(
				ast.IfArm{
					Conditions: []ast.Condition{f.cond(ast.ConditionSome, f.capture("opt"))},
					Statements: []ast.Statement{f.let("y", f.int(1))},
				},
				ast.IfArm{Statements: []ast.Statement{f.let("y", f.int(2))}},
			),
			f.let("y", f.int(3)),
		)

		_, err := f.check()
		require.NoError(t, err)
	})
}

func TestScanArmsHaveSeparateScopes(t *testing.T) {
	f := newFixture(t)
	f.stanza(caps("name", ir.ExactlyOne),
		&ast.Scan{
			Value: f.capture("name"),
			Arms: []ast.ScanArm{
				{Regex: "^get", Statements: []ast.Statement{f.let("kind", f.str("getter")), f.print(&ast.RegexCapture{Match: 0})}},
				{Regex: "^set", Statements: []ast.Statement{f.let("kind", f.str("setter"))}},
			},
		},
		f.let("kind", f.str("other")),
	)

	_, err := f.check()
	require.NoError(t, err)
}

func TestScanArmErrorsPropagate(t *testing.T) {
	f := newFixture(t)
	f.stanza(caps("name", ir.ExactlyOne),
		&ast.Scan{
			Value: f.v("name_var"),
			Arms: []ast.ScanArm{
				{Regex: ".", Statements: []ast.Statement{f.print(f.capture("nope"))}},
			},
		},
	)

	_, err := f.check()
	requireCheckError(t, err, ErrCodeUndefinedSyntaxCapture)
}

func TestComprehensionsAreLists(t *testing.T) {
	f := newFixture(t)
	f.stanza(caps("one", ir.ExactlyOne),
		f.forIn("a", &ast.ListComprehension{Elements: []ast.Expression{f.capture("one"), f.int(1)}}),
		f.forIn("b", &ast.SetComprehension{}),
	)

	_, err := f.check()
	require.NoError(t, err)
}

func TestComprehensionElementsAreChecked(t *testing.T) {
	f := newFixture(t)
	f.stanza(caps(),
		f.let("xs", &ast.ListComprehension{Elements: []ast.Expression{f.capture("ghost")}}),
	)

	_, err := f.check()
	requireCheckError(t, err, ErrCodeUndefinedSyntaxCapture)
}

func TestCallResultIsSingle(t *testing.T) {
	f := newFixture(t)
	f.stanza(caps("list", ir.ZeroOrMore),
		f.forIn("n", &ast.Call{Function: f.symbols.Add("node"), Parameters: []ast.Expression{f.capture("list")}}),
	)

	_, err := f.check()
	requireCheckError(t, err, ErrCodeExpectedListValue)
}

func TestCallParametersAreChecked(t *testing.T) {
	f := newFixture(t)
	f.stanza(caps(),
		f.print(&ast.Call{Function: f.symbols.Add("source-text"), Parameters: []ast.Expression{f.capture("ghost")}}),
	)

	_, err := f.check()
	requireCheckError(t, err, ErrCodeUndefinedSyntaxCapture)
}

func TestScopedVariables(t *testing.T) {
	t.Run("scope expression is checked", func(t *testing.T) {
		f := newFixture(t)
		f.stanza(caps(),
			&ast.DeclareImmutable{Variable: f.scoped(f.capture("ghost"), "def"), Value: f.int(1)},
		)

		_, err := f.check()
		requireCheckError(t, err, ErrCodeUndefinedSyntaxCapture)
	})

	t.Run("not recorded in the local scope", func(t *testing.T) {
		f := newFixture(t)
		f.stanza(caps("node", ir.ExactlyOne),
			&ast.DeclareImmutable{Variable: f.scoped(f.capture("node"), "def"), Value: f.int(1)},
			&ast.DeclareImmutable{Variable: f.scoped(f.capture("node"), "def"), Value: f.int(2)},
			&ast.Assign{Variable: f.scoped(f.capture("node"), "def"), Value: f.int(3)},
			f.let("def", f.int(4)),
		)

		_, err := f.check()
		require.NoError(t, err)
	})

	t.Run("reads are single", func(t *testing.T) {
		f := newFixture(t)
		f.stanza(caps("node", ir.ExactlyOne),
			f.forIn("n", f.scoped(f.capture("node"), "defs")),
		)

		_, err := f.check()
		requireCheckError(t, err, ErrCodeExpectedListValue)
	})
}

func TestGraphStatementsCheckTheirExpressions(t *testing.T) {
	tests := []struct {
		name string
		stmt func(f *fixture) ast.Statement
	}{
		{"node attribute target", func(f *fixture) ast.Statement {
			return &ast.AddGraphNodeAttribute{Node: f.capture("ghost")}
		}},
		{"node attribute value", func(f *fixture) ast.Statement {
			return &ast.AddGraphNodeAttribute{Node: f.v("n"), Attributes: []ast.Attribute{{Name: f.symbols.Add("type"), Value: f.capture("ghost")}}}
		}},
		{"edge source", func(f *fixture) ast.Statement {
			return &ast.CreateEdge{Source: f.capture("ghost"), Sink: f.v("n")}
		}},
		{"edge sink", func(f *fixture) ast.Statement {
			return &ast.CreateEdge{Source: f.v("n"), Sink: f.capture("ghost")}
		}},
		{"edge attribute value", func(f *fixture) ast.Statement {
			return &ast.AddEdgeAttribute{Source: f.v("n"), Sink: f.v("n"), Attributes: []ast.Attribute{{Name: f.symbols.Add("precedence"), Value: f.capture("ghost")}}}
		}},
		{"print", func(f *fixture) ast.Statement { return f.print(f.str("ok"), f.capture("ghost")) }},
		{"assign value", func(f *fixture) ast.Statement { return f.set("n", f.capture("ghost")) }},
		{"loop source", func(f *fixture) ast.Statement { return f.forIn("m", f.capture("ghost")) }},
		{"condition", func(f *fixture) ast.Statement { return f.ifSome(f.capture("ghost")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.stanza(caps(), &ast.CreateGraphNode{Node: f.v("n")}, tt.stmt(f))

			_, err := f.check()
			requireCheckError(t, err, ErrCodeUndefinedSyntaxCapture)
		})
	}
}

func TestStanzasDoNotShareScope(t *testing.T) {
	f := newFixture(t)
	f.stanza(caps(), f.let("x", f.int(1)))
	f.stanza(caps(), f.let("x", f.int(2)), f.set("x", f.int(3)))

	_, err := f.check()
	// The second stanza's x is its own immutable binding.
	assert.True(t, errors.Is(err, variables.ErrCannotAssignImmutable))
}

func TestFirstErrorWins(t *testing.T) {
	f := newFixture(t)
	first := f.capture("a")
	f.stanza(caps(), f.print(first))
	f.stanza(caps(), f.forIn("n", f.int(1)))

	_, err := f.check()
	ce := requireCheckError(t, err, ErrCodeUndefinedSyntaxCapture)
	assert.Equal(t, first.Location, ce.Location)
}

func TestAnnotationsRecordResolvedCaptures(t *testing.T) {
	f := newFixture(t)
	callee := f.capture("callee")
	args := f.capture("args")
	f.stanza(caps("callee", ir.ExactlyOne, "args", ir.ZeroOrMore),
		f.print(callee),
		f.forIn("a", args),
	)
	// Second stanza introduces "body" and reuses "args" with a different
	// quantifier.
	body := f.capture("body")
	args2 := f.capture("args")
	f.stanza(caps("body", ir.ZeroOrOne, "args", ir.OneOrMore),
		f.ifSome(body),
		f.forIn("a", args2),
	)

	ann, err := f.check()
	require.NoError(t, err)
	require.Len(t, ann.Stanzas, 2)

	// File namespace: callee=0 args=1 full_match=2 body=3.
	assert.Equal(t, ir.StanzaAnnotation{
		Index:                     0,
		FullMatchFileCaptureIndex: 2,
		Captures: []ir.CaptureResolution{
			{Node: int(callee.ID), Name: "callee", StanzaCaptureIndex: 0, FileCaptureIndex: 0, Quantifier: ir.ExactlyOne},
			{Node: int(args.ID), Name: "args", StanzaCaptureIndex: 1, FileCaptureIndex: 1, Quantifier: ir.ZeroOrMore},
		},
	}, ann.Stanzas[0])
	assert.Equal(t, ir.StanzaAnnotation{
		Index:                     1,
		FullMatchFileCaptureIndex: 2,
		Captures: []ir.CaptureResolution{
			{Node: int(body.ID), Name: "body", StanzaCaptureIndex: 0, FileCaptureIndex: 3, Quantifier: ir.ZeroOrOne},
			{Node: int(args2.ID), Name: "args", StanzaCaptureIndex: 1, FileCaptureIndex: 1, Quantifier: ir.OneOrMore},
		},
	}, ann.Stanzas[1])

	res, ok := ann.Capture(int(args2.ID))
	require.True(t, ok)
	assert.Equal(t, ir.OneOrMore, res.Quantifier)
	assert.Equal(t, 4, ann.CaptureCount())
}

func TestAnnotationsCoverEveryStanza(t *testing.T) {
	f := newFixture(t)
	f.stanza(caps())
	f.stanza(caps("x", ir.ExactlyOne))

	ann, err := f.check()
	require.NoError(t, err)
	require.Len(t, ann.Stanzas, 2)
	for i, s := range ann.Stanzas {
		assert.Equal(t, i, s.Index)
		assert.Empty(t, s.Captures)
	}
	// Stanza 0 only defines the full match, so it takes file index 0.
	assert.Equal(t, 0, ann.Stanzas[1].FullMatchFileCaptureIndex)
}

func TestFullMatchCaptureCanBeReferenced(t *testing.T) {
	f := newFixture(t)
	full := f.capture(query.FullMatch)
	f.stanza(caps("x", ir.ExactlyOne), f.print(full))

	ann, err := f.check()
	require.NoError(t, err)
	res, ok := ann.Capture(int(full.ID))
	require.True(t, ok)
	assert.Equal(t, ir.ExactlyOne, res.Quantifier)
	assert.Equal(t, 1, res.FileCaptureIndex)
}

func TestEmptyFile(t *testing.T) {
	f := newFixture(t)
	ann, err := f.check()
	require.NoError(t, err)
	assert.Empty(t, ann.Stanzas)
}

func TestMissingFileCapturePanics(t *testing.T) {
	f := newFixture(t)
	f.stanza(caps("x", ir.ExactlyOne), f.print(f.capture("x")))
	// A file query built without the stanza's pattern breaks the contract.
	other, err := query.NewPattern("(_)", caps("y", ir.ExactlyOne))
	require.NoError(t, err)
	f.file.Query = query.Combine(other)

	assert.Panics(t, func() { _, _ = Check(f.file, f.symbols) })
}
