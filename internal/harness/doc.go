// Package harness runs check scenarios.
//
// A scenario is a YAML file naming a CUE graph program and the outcome its
// check must produce:
//
//	name: for_over_optional
//	description: iterating a ? capture is rejected
//	program: programs/for_over_optional.cue
//	expect:
//	  ok: false
//	  error: EXPECTED_LIST_VALUE
//
// Run compiles the program, validates it, checks it and compares the result
// with the expectation. RunWithGolden additionally snapshots the resolved
// capture table (or the check error) in canonical JSON under
// testdata/golden, so any change to capture resolution shows up as a diff.
package harness
