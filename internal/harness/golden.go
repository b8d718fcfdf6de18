package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/isomorph/internal/value"
)

// Canonical returns the canonical JSON of a scenario's trace: the exact
// bytes golden files hold.
func Canonical(name string, result *Result) ([]byte, error) {
	trace := make(value.Array, len(result.Trace))
	for i, ev := range result.Trace {
		trace[i] = ev.Object()
	}
	return value.MarshalCanonical(value.Object{
		"scenario": value.String(name),
		"trace":    trace,
	})
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Execution errors are returned; trace mismatches fail t through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file
// without running the scenario again.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Canonical(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
