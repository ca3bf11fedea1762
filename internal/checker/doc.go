// Package checker implements the static checking pass that runs before a
// program executes.
//
// Check walks every stanza body and enforces:
//   - variable scoping: no redeclaration in one scope, no assignment to
//     undeclared or immutable variables
//   - capture binding: every @capture in a body is defined by that stanza's
//     own pattern
//   - cardinality: for-loops iterate only list-valued (* or +) sources and
//     some/none conditions test only optional (?) values
//
// Checking is fail-fast: the first error aborts the whole file. Stanzas are
// independent and share no variable scope.
//
// Resolved capture indices and quantifiers are written to an
// ir.Annotations side table keyed by capture node id; the syntax tree is
// never mutated.
//
// KNOWN APPROXIMATIONS:
//
// Function calls, scoped variables and variables not declared in any
// enclosing scope are all reported as ExactlyOne. The last case lets
// programs read globals injected at run time; an unbound name surfaces only
// when the program executes.
package checker
