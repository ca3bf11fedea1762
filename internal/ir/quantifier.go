package ir

import (
	"encoding/json"
	"fmt"
)

// Quantifier is the statically known multiplicity of a capture or of the
// value an expression produces.
//
// The quantifier of a capture is fixed by the query compiler and does not
// depend on the syntax tree being matched. The checker propagates it through
// expressions and variables and compares it exactly (no subsumption) at the
// two sites that care:
//
//   - for-loop sources must be ZeroOrMore or OneOrMore (IsList)
//   - conditional some/none arms must be exactly ZeroOrOne (IsOptional)
type Quantifier int

const (
	// Zero marks a capture that a pattern does not bind. It only appears as
	// padding in combined-query rows; a stanza-local capture never has it.
	Zero Quantifier = iota
	ExactlyOne
	ZeroOrOne
	ZeroOrMore
	OneOrMore
)

var quantifierSuffixes = map[Quantifier]string{
	Zero:       "0",
	ExactlyOne: "1",
	ZeroOrOne:  "?",
	ZeroOrMore: "*",
	OneOrMore:  "+",
}

var quantifierNames = map[string]Quantifier{
	"0":            Zero,
	"zero":         Zero,
	"1":            ExactlyOne,
	"one":          ExactlyOne,
	"exactly-one":  ExactlyOne,
	"?":            ZeroOrOne,
	"zero-or-one":  ZeroOrOne,
	"optional":     ZeroOrOne,
	"*":            ZeroOrMore,
	"zero-or-more": ZeroOrMore,
	"+":            OneOrMore,
	"one-or-more":  OneOrMore,
}

// String returns the query-suffix form of the quantifier ("1", "?", "*", "+").
func (q Quantifier) String() string {
	if s, ok := quantifierSuffixes[q]; ok {
		return s
	}
	return fmt.Sprintf("Quantifier(%d)", int(q))
}

// ParseQuantifier accepts the suffix forms and the long names
// ("one", "zero-or-one", "zero-or-more", "one-or-more").
func ParseQuantifier(s string) (Quantifier, error) {
	q, ok := quantifierNames[s]
	if !ok {
		return Zero, fmt.Errorf("invalid quantifier %q: must be one of 1, ?, *, +", s)
	}
	return q, nil
}

// IsList reports whether a value with this quantifier can be iterated.
func (q Quantifier) IsList() bool {
	return q == ZeroOrMore || q == OneOrMore
}

// IsOptional reports whether a value with this quantifier can be tested for
// presence. Only ZeroOrOne qualifies.
func (q Quantifier) IsOptional() bool {
	return q == ZeroOrOne
}

// MarshalJSON encodes the quantifier as its suffix form.
func (q Quantifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.String())
}

// UnmarshalJSON decodes any form accepted by ParseQuantifier.
func (q *Quantifier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseQuantifier(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// MarshalYAML encodes the quantifier as its suffix form.
func (q Quantifier) MarshalYAML() (any, error) {
	return q.String(), nil
}

// UnmarshalYAML decodes any form accepted by ParseQuantifier.
func (q *Quantifier) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseQuantifier(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
