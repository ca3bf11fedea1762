// Package query holds the compiled-query contract the checker relies on.
//
// Two namespaces exist for every capture a stanza body references:
//
//	stanza query:  the stanza's pattern compiled alone; capture indices are
//	               local to the stanza
//	file query:    every stanza pattern compiled together; capture indices
//	               address the per-match capture table shared by all stanzas,
//	               and pattern i carries stanza i's quantifiers
//
// Pattern and Combined are in-memory implementations built by the
// front-end. Any other query engine can stand in by implementing Query.
package query
