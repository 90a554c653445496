// Package testutil provides shared test infrastructure for the stagesim engine.
// It holds the golden scenario types and assertion helpers used by sim tests.
// It must not import sim, so sim's internal tests can use it.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one fully deterministic scenario. Ranges are [min, max].
type GoldenTestCase struct {
	Name             string        `json:"name"`
	TableCount       int           `json:"table_count"`
	PeoplePerTable   int           `json:"people_per_table"`
	PrepServers      int           `json:"prep_servers"`
	TransportServers int           `json:"transport_servers"`
	FinishServers    int           `json:"finish_servers"`
	TransportWorkers int           `json:"transport_workers"`
	FinishWorkers    int           `json:"finish_workers"`
	PrepTime         [2]float64    `json:"prep_time"`
	TransportTime    [2]float64    `json:"transport_time"`
	FinishTime       [2]float64    `json:"finish_time"`
	TransportBatch   [2]int        `json:"transport_batch"`
	PollInterval     float64       `json:"poll_interval"`
	Seed             int64         `json:"seed"`
	Metrics          GoldenMetrics `json:"metrics"`
}

// GoldenMetrics represents the expected outcome of a golden scenario.
// Per-unit slices are indexed by unit id.
type GoldenMetrics struct {
	CompletedUnits int       `json:"completed_units"`
	PrepEnd        []float64 `json:"prep_end"`
	TransportEnd   []float64 `json:"transport_end"`
	FinishStart    []float64 `json:"finish_start"`
	FinishEnd      []float64 `json:"finish_end"`

	TotalDuration float64  `json:"total_duration"`
	MeanLatency   float64  `json:"mean_latency"`
	MinLatency    float64  `json:"min_latency"`
	MaxLatency    float64  `json:"max_latency"`
	StdLatency    *float64 `json:"std_latency"` // absent when fewer than two units

	Utilization map[string]float64 `json:"utilization"` // stage → fraction
	BatchSizes  []int              `json:"batch_sizes"` // in departure order
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
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

// AssertFloat64SliceEqual compares two slices element-wise with relative tolerance.
func AssertFloat64SliceEqual(t *testing.T, name string, want, got []float64, relTol float64) {
	t.Helper()
	if len(want) != len(got) {
		t.Errorf("%s: got %d values, want %d", name, len(got), len(want))
		return
	}
	for i := range want {
		AssertFloat64Equal(t, name+"["+strconv.Itoa(i)+"]", want[i], got[i], relTol)
	}
}
