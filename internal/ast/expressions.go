package ast

// Expression is a sealed sum over the expression grammar.
type Expression interface {
	expressionNode()
	Pos() Location
}

// ScanExpression is the restricted grammar allowed as the value of a Scan:
// StringConstant, Capture, UnscopedVariable, ScopedVariable and
// RegexCapture.
type ScanExpression interface {
	Expression
	scanExpressionNode()
}

// Variable is either an UnscopedVariable or a ScopedVariable. Variables are
// also expressions (a variable reference).
type Variable interface {
	ScanExpression
	variableNode()
}

// TrueLiteral is `#true`.
type TrueLiteral struct{ Location Location }

// FalseLiteral is `#false`.
type FalseLiteral struct{ Location Location }

// NullLiteral is `#null`.
type NullLiteral struct{ Location Location }

// IntegerConstant is a non-negative integer literal.
type IntegerConstant struct {
	Value    uint32
	Location Location
}

// StringConstant is a string literal.
type StringConstant struct {
	Value    string
	Location Location
}

// ListComprehension builds a list from its elements.
type ListComprehension struct {
	Elements []Expression
	Location Location
}

// SetComprehension builds a set from its elements.
type SetComprehension struct {
	Elements []Expression
	Location Location
}

// Capture references a named capture of the stanza's query (`@name`).
// Allocate with File.NewCapture so it gets an arena id.
type Capture struct {
	ID       NodeID
	Name     Symbol
	Location Location
}

// Call invokes a named function.
type Call struct {
	Function   Symbol
	Parameters []Expression
	Location   Location
}

// RegexCapture references group Match of the enclosing scan arm's regex
// (`$1`).
type RegexCapture struct {
	Match    uint32
	Location Location
}

// UnscopedVariable is a bare name resolved through the lexical scope.
type UnscopedVariable struct {
	Name     Symbol
	Location Location
}

// ScopedVariable is a name qualified by a scope expression, such as
// `@node.kind`. Resolution happens at run time.
type ScopedVariable struct {
	Scope    Expression
	Name     Symbol
	Location Location
}

func (*TrueLiteral) expressionNode()       {}
func (*FalseLiteral) expressionNode()      {}
func (*NullLiteral) expressionNode()       {}
func (*IntegerConstant) expressionNode()   {}
func (*StringConstant) expressionNode()    {}
func (*ListComprehension) expressionNode() {}
func (*SetComprehension) expressionNode()  {}
func (*Capture) expressionNode()           {}
func (*Call) expressionNode()              {}
func (*RegexCapture) expressionNode()      {}
func (*UnscopedVariable) expressionNode()  {}
func (*ScopedVariable) expressionNode()    {}

func (*StringConstant) scanExpressionNode()   {}
func (*Capture) scanExpressionNode()          {}
func (*RegexCapture) scanExpressionNode()     {}
func (*UnscopedVariable) scanExpressionNode() {}
func (*ScopedVariable) scanExpressionNode()   {}

func (*UnscopedVariable) variableNode() {}
func (*ScopedVariable) variableNode()   {}

func (e *TrueLiteral) Pos() Location       { return e.Location }
func (e *FalseLiteral) Pos() Location      { return e.Location }
func (e *NullLiteral) Pos() Location       { return e.Location }
func (e *IntegerConstant) Pos() Location   { return e.Location }
func (e *StringConstant) Pos() Location    { return e.Location }
func (e *ListComprehension) Pos() Location { return e.Location }
func (e *SetComprehension) Pos() Location  { return e.Location }
func (e *Capture) Pos() Location           { return e.Location }
func (e *Call) Pos() Location              { return e.Location }
func (e *RegexCapture) Pos() Location      { return e.Location }
func (e *UnscopedVariable) Pos() Location  { return e.Location }
func (e *ScopedVariable) Pos() Location    { return e.Location }
