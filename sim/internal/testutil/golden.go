// Package testutil provides shared test infrastructure for the process simulator.
// It holds the golden dataset types and assertion helpers used by the sim/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one scenario file and the summary it must produce.
type GoldenTestCase struct {
	Name     string        `json:"name"`
	Scenario string        `json:"scenario"` // file under testdata/scenarios/
	Metrics  GoldenMetrics `json:"metrics"`
}

// GoldenMetrics represents the expected summary of a golden test case.
type GoldenMetrics struct {
	// Exact match counts
	Arrivals int `json:"arrivals"`
	Finished int `json:"finished"`
	Aborted  int `json:"aborted"`

	// Means over finished arrivals, in simulated time units
	MeanFlowTime float64 `json:"mean_flow_time"`
	MeanActivity float64 `json:"mean_activity"`

	Resources map[string]GoldenResource `json:"resources"`
}

// GoldenResource is the expected usage of one resource.
type GoldenResource struct {
	Releases     int     `json:"releases"`
	MeanActivity float64 `json:"mean_activity"`
}

// testdataDir resolves the repo root testdata/ directory relative to this source file.
func testdataDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata")
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(testdataDir(t), "goldendataset.json"))
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// ScenarioPath returns the path of a scenario file under testdata/scenarios/.
func ScenarioPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(testdataDir(t), "scenarios", name)
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
