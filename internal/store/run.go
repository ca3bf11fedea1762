package store

import (
	"github.com/google/uuid"

	"github.com/roach88/tsg/internal/ir"
)

// RunStatus is the outcome of a check run.
type RunStatus string

const (
	RunOK     RunStatus = "ok"
	RunFailed RunStatus = "error"
)

// CheckRun records one run of the checker over a program.
type CheckRun struct {
	ID string `json:"id"`

	// Seq orders runs. Assigned by WriteRun when zero.
	Seq int64 `json:"seq"`

	ProgramPath string    `json:"program_path"`
	ProgramHash string    `json:"program_hash"`
	Status      RunStatus `json:"status"`

	// ErrorCode and ErrorMessage are set for failed runs.
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	// AnnotationsHash identifies the side table of a successful run.
	AnnotationsHash string `json:"annotations_hash,omitempty"`

	CheckerVersion string `json:"checker_version"`
	IRVersion      string `json:"ir_version"`
}

// NewRunID returns a time-ordered run ID (UUIDv7).
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewCheckRun starts a run record for the program with the current
// checker and IR versions.
func NewCheckRun(path string, source []byte) CheckRun {
	return CheckRun{
		ID:             NewRunID(),
		ProgramPath:    path,
		ProgramHash:    ir.ProgramHash(source),
		CheckerVersion: ir.CheckerVersion,
		IRVersion:      ir.IRVersion,
	}
}
