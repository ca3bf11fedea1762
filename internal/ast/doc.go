// Package ast defines the syntax tree of a tsg program.
//
// A File is an ordered list of Stanzas. Each Stanza pairs a compiled
// syntax-tree query with a body of Statements that run once per match.
//
// SEALED INTERFACES:
//
// Statement, Expression, ScanExpression and Variable are sealed with marker
// methods; only types in this package implement them. Every pass that walks
// the tree dispatches with an exhaustive type switch:
//
//	switch stmt := stmt.(type) {
//	case *DeclareImmutable:
//	    ...
//	default:
//	    // unreachable for trees built by this package
//	}
//
// ARENA:
//
// Capture nodes are allocated through File.NewCapture and carry a stable
// NodeID. Passes that learn something about a capture record it in a side
// table keyed by that id (see ir.Annotations) instead of mutating the node.
package ast
