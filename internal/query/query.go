package query

import (
	"fmt"

	"github.com/roach88/tsg/internal/ir"
)

// FullMatch is the capture appended to every stanza pattern. It binds the
// root node of the whole match.
const FullMatch = "__tsg__full_match"

// Query is a compiled syntax-tree query.
type Query interface {
	// CaptureIndexForName returns the index of the named capture, or false
	// if the query does not define it.
	CaptureIndexForName(name string) (int, bool)

	// CaptureQuantifiers returns, for the given pattern, one quantifier per
	// capture index of this query.
	CaptureQuantifiers(patternIndex int) []ir.Quantifier
}

// Capture declares one named capture of a pattern.
type Capture struct {
	Name       string
	Quantifier ir.Quantifier
}

// Pattern is a single compiled stanza pattern.
type Pattern struct {
	Source string

	names       []string
	quantifiers []ir.Quantifier
	index       map[string]int
}

// NewPattern compiles a stanza pattern from its declared captures. The
// FullMatch capture is appended with quantifier ExactlyOne.
// Returns error on duplicate or reserved capture names.
func NewPattern(source string, captures []Capture) (*Pattern, error) {
	p := &Pattern{
		Source:      source,
		names:       make([]string, 0, len(captures)+1),
		quantifiers: make([]ir.Quantifier, 0, len(captures)+1),
		index:       make(map[string]int, len(captures)+1),
	}
	for _, c := range captures {
		if c.Name == "" {
			return nil, fmt.Errorf("capture name must be non-empty")
		}
		if c.Name == FullMatch {
			return nil, fmt.Errorf("capture name %q is reserved", FullMatch)
		}
		if _, dup := p.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate capture @%s", c.Name)
		}
		if c.Quantifier == ir.Zero {
			return nil, fmt.Errorf("capture @%s must have a quantifier", c.Name)
		}
		p.add(c.Name, c.Quantifier)
	}
	p.add(FullMatch, ir.ExactlyOne)
	return p, nil
}

func (p *Pattern) add(name string, q ir.Quantifier) {
	p.index[name] = len(p.names)
	p.names = append(p.names, name)
	p.quantifiers = append(p.quantifiers, q)
}

// CaptureIndexForName implements Query.
func (p *Pattern) CaptureIndexForName(name string) (int, bool) {
	i, ok := p.index[name]
	return i, ok
}

// CaptureQuantifiers implements Query. A Pattern has a single pattern, so
// any index other than 0 returns nil.
func (p *Pattern) CaptureQuantifiers(patternIndex int) []ir.Quantifier {
	if patternIndex != 0 {
		return nil
	}
	return p.quantifiers
}

// CaptureNames returns the capture names in index order, FullMatch last.
func (p *Pattern) CaptureNames() []string {
	return p.names
}

// Combined is the file query: all stanza patterns compiled together.
type Combined struct {
	names []string
	index map[string]int
	rows  [][]ir.Quantifier
}

// Combine builds the file query from stanza patterns in file order. Capture
// indices are assigned in order of first appearance; each row is padded
// with ir.Zero for captures its pattern does not bind.
func Combine(patterns ...*Pattern) *Combined {
	c := &Combined{index: make(map[string]int)}
	for _, p := range patterns {
		for _, name := range p.names {
			if _, ok := c.index[name]; !ok {
				c.index[name] = len(c.names)
				c.names = append(c.names, name)
			}
		}
	}

	c.rows = make([][]ir.Quantifier, len(patterns))
	for i, p := range patterns {
		row := make([]ir.Quantifier, len(c.names))
		for j, name := range p.names {
			row[c.index[name]] = p.quantifiers[j]
		}
		c.rows[i] = row
	}
	return c
}

// CaptureIndexForName implements Query.
func (c *Combined) CaptureIndexForName(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

// CaptureQuantifiers implements Query.
func (c *Combined) CaptureQuantifiers(patternIndex int) []ir.Quantifier {
	if patternIndex < 0 || patternIndex >= len(c.rows) {
		return nil
	}
	return c.rows[patternIndex]
}

// PatternCount returns the number of combined patterns.
func (c *Combined) PatternCount() int {
	return len(c.rows)
}

// CaptureNames returns the file-level capture names in index order.
func (c *Combined) CaptureNames() []string {
	return c.names
}
