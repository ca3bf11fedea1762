package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tsg/internal/ir"
)

// Snapshot returns the canonical golden form of a check outcome: the resolved
// capture table of a passing check, or the error of a failing one.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	doc := map[string]any{
		"scenario_name": scenarioName,
	}
	if ce := result.CheckError; ce != nil {
		errDoc := map[string]any{
			"code":    string(ce.Code),
			"message": ce.Error(),
			"row":     ce.Location.Row,
			"column":  ce.Location.Column,
		}
		if ce.Name != "" {
			errDoc["name"] = ce.Name
		}
		doc["error"] = errDoc
	}
	if result.Annotations != nil {
		doc["annotations"] = result.Annotations.CanonicalMap()
	}
	return ir.MarshalCanonical(doc)
}

// RunWithGolden executes a scenario and compares its outcome against a
// golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario could not be executed. A golden mismatch
// fails t through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
