package harness

import (
	"github.com/roach88/tsg/internal/checker"
	"github.com/roach88/tsg/internal/ir"
)

// Result is the outcome of running a scenario.
type Result struct {
	// Pass indicates the check outcome matched the expectation.
	Pass bool `json:"pass"`

	// Errors contains mismatch and validation messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Annotations is the resolved capture table of a passing check.
	Annotations *ir.Annotations `json:"-"`

	// CheckError is the check failure, if the check failed.
	CheckError *checker.CheckError `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds an error message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
