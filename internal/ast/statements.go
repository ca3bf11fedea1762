package ast

// Statement is a sealed sum over the statement grammar.
//
// Statement types:
//   - DeclareImmutable: let x = value
//   - DeclareMutable: var x = value
//   - Assign: set x = value
//   - CreateGraphNode: node x
//   - AddGraphNodeAttribute: attr (node) name = value, ...
//   - CreateEdge: edge source -> sink
//   - AddEdgeAttribute: attr (source -> sink) name = value, ...
//   - Scan: scan value { "regex" { ... } ... }
//   - Print: print value, ...
//   - If: if some/none ... { ... } elif ... { ... } else { ... }
//   - ForIn: for x in value { ... }
type Statement interface {
	statementNode()
	Pos() Location
}

// DeclareImmutable binds a new, non-reassignable variable.
type DeclareImmutable struct {
	Variable Variable
	Value    Expression
	Location Location
}

// DeclareMutable binds a new variable that later Assign statements may
// overwrite.
type DeclareMutable struct {
	Variable Variable
	Value    Expression
	Location Location
}

// Assign overwrites a mutable variable declared earlier.
type Assign struct {
	Variable Variable
	Value    Expression
	Location Location
}

// CreateGraphNode creates a graph node and binds it to Node.
type CreateGraphNode struct {
	Node     Variable
	Location Location
}

// AddGraphNodeAttribute sets attributes on an existing node.
type AddGraphNodeAttribute struct {
	Node       Expression
	Attributes []Attribute
	Location   Location
}

// CreateEdge creates an edge between two existing nodes.
type CreateEdge struct {
	Source   Expression
	Sink     Expression
	Location Location
}

// AddEdgeAttribute sets attributes on an existing edge.
type AddEdgeAttribute struct {
	Source     Expression
	Sink       Expression
	Attributes []Attribute
	Location   Location
}

// Scan matches a string value against regex arms; the first arm that
// matches runs.
type Scan struct {
	Value    ScanExpression
	Arms     []ScanArm
	Location Location
}

// ScanArm is one regex arm of a Scan. RegexCapture expressions in its body
// refer to groups of Regex.
type ScanArm struct {
	Regex      string
	Statements []Statement
	Location   Location
}

// Print writes its values to the debug output.
type Print struct {
	Values   []Expression
	Location Location
}

// If is an if/elif/else chain. An arm with no conditions is the else arm.
type If struct {
	Arms     []IfArm
	Location Location
}

// IfArm runs Statements when every condition holds.
type IfArm struct {
	Conditions []Condition
	Statements []Statement
	Location   Location
}

// ConditionKind selects what a Condition tests.
type ConditionKind int

const (
	// ConditionSome holds when the optional value is present.
	ConditionSome ConditionKind = iota
	// ConditionNone holds when the optional value is absent.
	ConditionNone
)

// String returns the keyword form of the condition kind.
func (k ConditionKind) String() string {
	if k == ConditionNone {
		return "none"
	}
	return "some"
}

// Condition tests an optional value for presence or absence.
type Condition struct {
	Kind     ConditionKind
	Value    Expression
	Location Location
}

// ForIn runs Statements once per element of a list value.
type ForIn struct {
	Variable   Variable
	Value      Expression
	Statements []Statement
	Location   Location
}

func (*DeclareImmutable) statementNode()      {}
func (*DeclareMutable) statementNode()        {}
func (*Assign) statementNode()                {}
func (*CreateGraphNode) statementNode()       {}
func (*AddGraphNodeAttribute) statementNode() {}
func (*CreateEdge) statementNode()            {}
func (*AddEdgeAttribute) statementNode()      {}
func (*Scan) statementNode()                  {}
func (*Print) statementNode()                 {}
func (*If) statementNode()                    {}
func (*ForIn) statementNode()                 {}

func (s *DeclareImmutable) Pos() Location      { return s.Location }
func (s *DeclareMutable) Pos() Location        { return s.Location }
func (s *Assign) Pos() Location                { return s.Location }
func (s *CreateGraphNode) Pos() Location       { return s.Location }
func (s *AddGraphNodeAttribute) Pos() Location { return s.Location }
func (s *CreateEdge) Pos() Location            { return s.Location }
func (s *AddEdgeAttribute) Pos() Location      { return s.Location }
func (s *Scan) Pos() Location                  { return s.Location }
func (s *Print) Pos() Location                 { return s.Location }
func (s *If) Pos() Location                    { return s.Location }
func (s *ForIn) Pos() Location                 { return s.Location }
