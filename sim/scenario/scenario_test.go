package scenario

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiberlab/otdr-sim/sim"
	"github.com/fiberlab/otdr-sim/sim/journal"
)

const referenceYAML = `
version: "1"
name: reference
seed: 9
config:
  wavelength_nm: 1310
  auto_mode: true
  test_duration_s: 5
events:
  - {id: start, type: start, distance_km: 0, loss_db: 0.5, reflectance_db: -45}
  - {id: splice-1, type: splice, distance_km: 5.2, loss_db: 0.1, reflectance_db: -70}
  - {id: conn-1, type: connector, distance_km: 12.5, loss_db: 0.5, reflectance_db: -45}
  - {id: end, type: end, distance_km: 18, loss_db: 0, reflectance_db: -14}
`

func TestParse_ReferenceScenario(t *testing.T) {
	s, err := Parse([]byte(referenceYAML))
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	cfg := s.SimConfig()
	assert.Equal(t, sim.Wavelength1310, cfg.Wavelength)
	assert.Equal(t, 5.0, cfg.TestDurationSec)
	// omitted fields come from the defaults
	assert.Equal(t, sim.DefaultSimulationConfig().IOR, cfg.IOR)
	assert.Equal(t, sim.DefaultSimulationConfig().NoiseFloorDb, cfg.NoiseFloorDb)
	assert.Len(t, s.Events, 4)
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	_, err := Parse([]byte("version: \"1\"\nconfig:\n  range: 20\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "range")
}

func TestParse_EmptyDocument(t *testing.T) {
	_, err := Parse(nil)
	assert.Error(t, err)
}

func TestParse_MissingVersionDefaultsToCurrent(t *testing.T) {
	s, err := Parse([]byte("seed: 1\nevents: []\n"))
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, s.Version)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"future version", "version: \"2\"\n", "version"},
		{"bad wavelength", "config: {wavelength_nm: 850}\n", "wavelength_nm"},
		{"unknown event type", "events: [{id: x, type: kink, distance_km: 1, loss_db: 0, reflectance_db: -80}]\n", "kink"},
		{"event past end", "events: [{id: x, type: splice, distance_km: 30, loss_db: 0, reflectance_db: -80}]\n", "end"},
		{"manual range too short", "config: {auto_mode: false, range_km: 10}\nevents: [{id: end, type: end, distance_km: 18, loss_db: 0, reflectance_db: -14}]\n", "range_km"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Parse([]byte(tc.yaml))
			require.NoError(t, err)

			err = s.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidate_CutOutsideFiber(t *testing.T) {
	s, err := Preset("default")
	require.NoError(t, err)
	s.CutKm = ptr(18.0)

	assert.ErrorIs(t, s.Validate(), sim.ErrInvalidCut)
}

func TestTopology_SynthesizesTerminals(t *testing.T) {
	// GIVEN a scenario listing only a splice
	s, err := Parse([]byte("config: {range_km: 10}\nevents: [{id: s1, type: splice, distance_km: 4, loss_db: 0.1, reflectance_db: -80}]\n"))
	require.NoError(t, err)

	// WHEN the topology is built
	topo, err := s.Topology()
	require.NoError(t, err)

	// THEN a start at 0 and an end at the range bracket the splice
	events := topo.Events()
	require.Len(t, events, 3)
	assert.Equal(t, sim.EventStart, events[0].Type)
	assert.Equal(t, 0.0, events[0].DistanceKm)
	assert.Equal(t, sim.EventEnd, events[2].Type)
	assert.Equal(t, 10.0, events[2].DistanceKm)
}

func TestTopology_AssignsMissingIDs(t *testing.T) {
	s, err := Parse([]byte("events: [{type: bend, distance_km: 2, loss_db: 0.2, reflectance_db: -90}]\n"))
	require.NoError(t, err)

	topo, err := s.Topology()
	require.NoError(t, err)

	bend := topo.Events()[1]
	assert.Equal(t, sim.EventBend, bend.Type)
	assert.Len(t, bend.ID, 36, "uuid")
}

func TestBuild_AppliesCutAndSeed(t *testing.T) {
	// GIVEN the reference scenario cut at 10 km
	s, err := Parse([]byte(referenceYAML + "cut_km: 10\n"))
	require.NoError(t, err)

	// WHEN built
	in, err := s.Build(journal.New(journal.LevelTransitions))
	require.NoError(t, err)

	// THEN the instrument sees the cut and auto-ranges to it
	require.NotNil(t, in.Cut())
	assert.Equal(t, 20.0, in.Config().RangeKm)
	table := in.AnalysisTable()
	assert.Equal(t, sim.EventCut, table[len(table)-1].Type)
	assert.NotEmpty(t, in.Journal().AutoRanges)
}

func TestBuild_SameScenarioSameTrace(t *testing.T) {
	trace := func() []float64 {
		s, err := Preset("default")
		require.NoError(t, err)
		in, err := s.Build(nil)
		require.NoError(t, err)
		samples, err := in.DisplaySamples()
		require.NoError(t, err)
		return samples
	}

	assert.Equal(t, trace(), trace())
}

func TestWrite_RoundTripsThroughParse(t *testing.T) {
	orig, err := Preset("long-haul")
	require.NoError(t, err)
	orig.CutKm = ptr(60.0)

	var buf bytes.Buffer
	require.NoError(t, orig.Write(&buf))
	back, err := Parse(buf.Bytes())
	require.NoError(t, err)

	if diff := cmp.Diff(orig, back); diff != "" {
		t.Errorf("scenario changed after write/parse (-want +got):\n%s", diff)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fiber.yaml")
	require.NoError(t, os.WriteFile(path, []byte(referenceYAML), 0o644))

	s, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "reference", s.Name)
	assert.Equal(t, int64(9), s.Seed)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestPresets_AllValid(t *testing.T) {
	assert.Equal(t, []string{"default", "long-haul"}, PresetNames())
	for _, name := range PresetNames() {
		s, err := Preset(name)
		require.NoError(t, err)
		assert.NoError(t, s.Validate(), name)
	}

	_, err := Preset("metro")
	assert.Error(t, err)
}

func TestPreset_ReturnsFreshCopy(t *testing.T) {
	a, err := Preset("default")
	require.NoError(t, err)
	a.Events[1].LossDb = 9

	b, err := Preset("default")
	require.NoError(t, err)

	assert.Equal(t, 0.1, b.Events[1].LossDb)
}
