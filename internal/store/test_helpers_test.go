package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/tsg/internal/ir"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates an ok run with minimal required fields.
func createTestRun(id, programHash string) CheckRun {
	return CheckRun{
		ID:             id,
		ProgramPath:    "program.cue",
		ProgramHash:    programHash,
		Status:         RunOK,
		CheckerVersion: ir.CheckerVersion,
		IRVersion:      ir.IRVersion,
	}
}

// createTestAnnotations builds a two-stanza side table. The second stanza
// resolves its captures out of node order.
func createTestAnnotations() *ir.Annotations {
	a := ir.NewAnnotations(2)
	a.AddStanza(0, 2)
	a.Resolve(0, ir.CaptureResolution{Node: 0, Name: "callee", StanzaCaptureIndex: 0, FileCaptureIndex: 0, Quantifier: ir.ExactlyOne})
	a.Resolve(0, ir.CaptureResolution{Node: 1, Name: "args", StanzaCaptureIndex: 1, FileCaptureIndex: 1, Quantifier: ir.ZeroOrMore})
	a.AddStanza(1, 2)
	a.Resolve(1, ir.CaptureResolution{Node: 4, Name: "body", StanzaCaptureIndex: 0, FileCaptureIndex: 3, Quantifier: ir.ZeroOrOne})
	a.Resolve(1, ir.CaptureResolution{Node: 3, Name: "args", StanzaCaptureIndex: 1, FileCaptureIndex: 1, Quantifier: ir.OneOrMore})
	return a
}
