package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/tsg/internal/checker"
	"github.com/roach88/tsg/internal/compiler"
	"github.com/roach88/tsg/internal/ir"
)

// Harness runs scenarios.
type Harness struct {
	logger *slog.Logger
}

// New returns a harness that logs to logger. A nil logger discards.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// Run executes a scenario with logging suppressed.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(scenario)
}

// Run compiles and checks the scenario's program and compares the outcome
// with scenario.Expect.
//
// A returned error means the scenario could not be executed (unreadable
// program, CUE or compile errors). Check outcomes that differ from the
// expectation are reported in Result.Errors.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	src, filename, err := scenarioSource(scenario)
	if err != nil {
		return nil, err
	}

	prog, err := compiler.CompileSource(src, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to compile program: %w", err)
	}

	result := NewResult()

	if verrs := compiler.Validate(prog); len(verrs) > 0 {
		for _, verr := range verrs {
			result.AddError(verr.Error())
		}
		h.logger.Debug("scenario program invalid", "scenario", scenario.Name, "errors", len(verrs))
		return result, nil
	}

	annotations, err := checker.Check(prog.File, prog.Symbols)
	if err != nil {
		var ce *checker.CheckError
		if !errors.As(err, &ce) {
			return nil, fmt.Errorf("unexpected check failure: %w", err)
		}
		result.CheckError = ce
	} else {
		result.Annotations = annotations
	}

	h.evaluate(scenario.Expect, result)
	h.logger.Debug("scenario executed",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"captures", captureCount(result.Annotations),
	)
	return result, nil
}

func (h *Harness) evaluate(expect Expect, result *Result) {
	ce := result.CheckError
	switch {
	case expect.OK && ce != nil:
		result.AddError(fmt.Sprintf("expected check to pass, got %s: %v", ce.Code, ce))
	case !expect.OK && ce == nil:
		result.AddError(fmt.Sprintf("expected %s, but check passed", expect.Error))
	case !expect.OK:
		if string(ce.Code) != expect.Error {
			result.AddError(fmt.Sprintf("expected %s, got %s: %v", expect.Error, ce.Code, ce))
		}
		if expect.Name != "" && ce.Name != expect.Name {
			result.AddError(fmt.Sprintf("expected error naming %q, got %q", expect.Name, ce.Name))
		}
	}
}

func scenarioSource(s *Scenario) ([]byte, string, error) {
	if s.Source != "" {
		return []byte(s.Source), s.Name + ".cue", nil
	}
	src, err := os.ReadFile(s.Program)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read program: %w", err)
	}
	return src, s.Program, nil
}

func captureCount(a *ir.Annotations) int {
	if a == nil {
		return 0
	}
	return a.CaptureCount()
}
