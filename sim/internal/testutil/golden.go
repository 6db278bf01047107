// Package testutil provides shared test infrastructure for the OTDR simulator.
// It consolidates golden dataset types and assertion helpers used across
// sim/ and its sub-package tests. It does not import sim, so sim's own
// tests can use it.
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

// GoldenTestCase is one fiber with its expected ground-truth outputs.
type GoldenTestCase struct {
	Name         string         `json:"name"`
	WavelengthNm int            `json:"wavelength_nm"`
	CutKm        *float64       `json:"cut_km"`
	Events       []GoldenEvent  `json:"events"`
	Expected     GoldenExpected `json:"expected"`
}

// GoldenEvent mirrors sim.FiberEvent without importing sim.
type GoldenEvent struct {
	Type          string  `json:"type"`
	DistanceKm    float64 `json:"distance_km"`
	LossDb        float64 `json:"loss_db"`
	ReflectanceDb float64 `json:"reflectance_db"`
}

// GoldenExpected holds the expected analysis and auto-range outputs.
type GoldenExpected struct {
	RecordTypes      []string  `json:"record_types"`
	CumulativeLossDb []float64 `json:"cumulative_loss_db"`
	RangeKm          float64   `json:"range_km"`
	PulseWidthNs     float64   `json:"pulse_width_ns"`
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

// AssertNonDecreasing fails if values ever decrease.
func AssertNonDecreasing(t *testing.T, name string, values []float64) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			t.Errorf("%s: value %d (%v) < value %d (%v)", name, i, values[i], i-1, values[i-1])
			return
		}
	}
}
