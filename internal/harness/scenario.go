package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tsg/internal/checker"
)

// Scenario defines a check scenario: a program and the outcome its check
// must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario covers.
	Description string `yaml:"description"`

	// Program is the path to a CUE program file. Relative paths are
	// resolved against the scenario file's directory by LoadScenario.
	Program string `yaml:"program,omitempty"`

	// Source is an inline CUE program, used instead of Program.
	Source string `yaml:"source,omitempty"`

	// Expect is the expected check outcome.
	Expect Expect `yaml:"expect"`
}

// Expect is the expected outcome of checking a scenario's program.
type Expect struct {
	// OK is true if the program must pass the check.
	OK bool `yaml:"ok"`

	// Error is the expected check error code when OK is false
	// (e.g. "EXPECTED_LIST_VALUE").
	Error string `yaml:"error,omitempty"`

	// Name optionally pins the capture or variable the error names.
	Name string `yaml:"name,omitempty"`
}

var errorCodes = map[string]bool{
	string(checker.ErrCodeExpectedListValue):      true,
	string(checker.ErrCodeExpectedOptionalValue):  true,
	string(checker.ErrCodeUndefinedSyntaxCapture): true,
	string(checker.ErrCodeVariable):               true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "expects:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Program != "" && !filepath.IsAbs(scenario.Program) {
		scenario.Program = filepath.Join(filepath.Dir(path), scenario.Program)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file directly under dir, sorted by
// file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	switch {
	case s.Program == "" && s.Source == "":
		return fmt.Errorf("one of program or source is required")
	case s.Program != "" && s.Source != "":
		return fmt.Errorf("program and source are mutually exclusive")
	}

	if s.Program != "" {
		if _, err := os.Stat(s.Program); os.IsNotExist(err) {
			return fmt.Errorf("program file not found: %s", s.Program)
		}
	}

	if s.Expect.OK {
		if s.Expect.Error != "" || s.Expect.Name != "" {
			return fmt.Errorf("expect: error and name must be empty when ok is true")
		}
		return nil
	}
	if s.Expect.Error == "" {
		return fmt.Errorf("expect: error is required when ok is false")
	}
	if !errorCodes[s.Expect.Error] {
		return fmt.Errorf("expect: unknown error code %q", s.Expect.Error)
	}
	return nil
}
